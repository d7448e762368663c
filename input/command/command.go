// Package command reads acceleration readings from the stdout of a command,
// for example a serial port reader attached to the sensor board.
package command

import (
	"strings"

	"github.com/noriah/tremor/input"
	"github.com/noriah/tremor/input/common/execread"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("command", Backend{})
}

// binaryPrefix selects packed float32 output instead of text lines.
const binaryPrefix = "f32le:"

type Backend struct{}

func (b Backend) Init() error {
	return nil
}

func (b Backend) Close() error {
	return nil
}

func (b Backend) Devices() ([]input.Device, error) {
	return nil, nil
}

func (b Backend) DefaultDevice() (input.Device, error) {
	return nil, errors.New("the command backend needs a device: the command line to run")
}

// ParseDevice turns a command line into a Device. A leading "f32le:" marks a
// command that writes packed float32 triples.
func (b Backend) ParseDevice(line string) (input.Device, error) {
	dv := Device{format: execread.Text}

	if strings.HasPrefix(line, binaryPrefix) {
		dv.format = execread.Float32LE
		line = strings.TrimPrefix(line, binaryPrefix)
	}

	dv.argv = strings.Fields(line)
	if len(dv.argv) == 0 {
		return nil, errors.New("empty command")
	}

	return dv, nil
}

func (b Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	dv, ok := cfg.Device.(Device)
	if !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	return execread.NewCommandSession(dv.argv, dv.format)
}

// Device is a command line.
type Device struct {
	argv   []string
	format execread.Format
}

func (d Device) String() string {
	s := strings.Join(d.argv, " ")
	if d.format == execread.Float32LE {
		return binaryPrefix + s
	}
	return s
}
