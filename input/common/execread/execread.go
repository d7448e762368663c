// Package execread provides a shared session that decodes acceleration
// readings from a byte stream, either a spawned command's stdout or any
// other reader such as stdin.
package execread

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"unicode"

	"github.com/noriah/tremor/input"
	"github.com/pkg/errors"
)

// Format is the encoding of readings in the stream.
type Format int

const (
	// Text is one "x y z" reading per line, separated by spaces, tabs or
	// commas. Blank lines and lines starting with '#' are skipped.
	Text Format = iota
	// Float32LE is packed little-endian float32 triples.
	Float32LE
)

func (f Format) String() string {
	switch f {
	case Text:
		return "text"
	case Float32LE:
		return "f32le"
	}
	return "unknown"
}

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "text", "csv", "":
		return Text, nil
	case "f32le", "float32le":
		return Float32LE, nil
	}
	return 0, errors.Errorf("unknown stream format %q", name)
}

// Session reads vectors from a stream.
type Session struct {
	format Format
	rd     *bufio.Reader
	src    io.Closer

	cmd    *exec.Cmd
	cancel context.CancelFunc

	raw [12]byte
}

// NewSession wraps src. Closing the session closes src.
func NewSession(src io.ReadCloser, format Format) *Session {
	return &Session{
		format: format,
		rd:     bufio.NewReader(src),
		src:    src,
	}
}

// NewCommandSession starts argv and reads readings from its stdout. The
// command's stderr is passed through.
func NewCommandSession(argv []string, format Format) (*Session, error) {
	if len(argv) < 1 {
		return nil, errors.New("argv has no arg0")
	}

	ctx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stderr = os.Stderr

	o, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "failed to get stdout pipe")
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, errors.Wrap(err, "failed to start "+argv[0])
	}

	s := NewSession(o, format)
	s.cmd = cmd
	s.cancel = cancel

	return s, nil
}

// Read returns the next reading in the stream. A malformed text reading is
// returned as a NaN vector rather than an error; input.ErrEndOfStream is
// returned once the stream is exhausted.
func (s *Session) Read() (input.Vector, error) {
	if s.format == Float32LE {
		return s.readFloat32()
	}
	return s.readText()
}

func (s *Session) readFloat32() (input.Vector, error) {
	if _, err := io.ReadFull(s.rd, s.raw[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return input.Vector{}, input.ErrEndOfStream
		}
		return input.Vector{}, errors.Wrap(err, "failed to read reading")
	}

	next := func(b []byte) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}

	return input.Vector{
		X: next(s.raw[0:4]),
		Y: next(s.raw[4:8]),
		Z: next(s.raw[8:12]),
	}, nil
}

func (s *Session) readText() (input.Vector, error) {
	for {
		line, err := s.rd.ReadString('\n')
		if line == "" && err != nil {
			if errors.Is(err, io.EOF) {
				return input.Vector{}, input.ErrEndOfStream
			}
			return input.Vector{}, errors.Wrap(err, "failed to read reading")
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			if err != nil {
				return input.Vector{}, input.ErrEndOfStream
			}
			continue
		}

		return ParseVector(line), nil
	}
}

// ParseVector parses "x y z". Missing or malformed fields are NaN.
func ParseVector(line string) input.Vector {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})

	var values [3]float64
	for idx := range values {
		values[idx] = math.NaN()
		if idx < len(fields) {
			if v, err := strconv.ParseFloat(fields[idx], 64); err == nil {
				values[idx] = v
			}
		}
	}

	return input.Vector{X: values[0], Y: values[1], Z: values[2]}
}

// Close closes the stream and stops the command, if any.
func (s *Session) Close() error {
	err := s.src.Close()

	if s.cmd != nil {
		s.cancel()
		// the command is killed, its exit status is of no interest
		_ = s.cmd.Wait()
	}

	return err
}
