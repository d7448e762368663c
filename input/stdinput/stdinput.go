// Package stdinput reads acceleration readings piped on stdin.
package stdinput

import (
	"io"
	"os"

	"github.com/noriah/tremor/input"
	"github.com/noriah/tremor/input/common/execread"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("stdin", StdinBackend{})
}

type StdinBackend struct{}

func (b StdinBackend) Init() error {
	return nil
}

func (b StdinBackend) Close() error {
	return nil
}

func (b StdinBackend) Devices() ([]input.Device, error) {
	return []input.Device{
		StdInputDevice(execread.Text),
		StdInputDevice(execread.Float32LE),
	}, nil
}

func (b StdinBackend) DefaultDevice() (input.Device, error) {
	return StdInputDevice(execread.Text), nil
}

func (b StdinBackend) Start(cfg input.SessionConfig) (input.Session, error) {
	dv, ok := cfg.Device.(StdInputDevice)
	if !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	return NewStdinSession(os.Stdin, dv), nil
}

// StdInputDevice is the stream format on stdin.
type StdInputDevice execread.Format

func (d StdInputDevice) String() string {
	return execread.Format(d).String()
}

// NewStdinSession reads from r. r is not closed by the session.
func NewStdinSession(r io.Reader, dv StdInputDevice) *execread.Session {
	return execread.NewSession(io.NopCloser(r), execread.Format(dv))
}
