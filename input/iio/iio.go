// Package iio reads accelerometers exposed through the Linux industrial I/O
// sysfs interface.
package iio

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/noriah/tremor/input"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("iio", Backend{})
}

var axes = [3]string{"x", "y", "z"}

type Backend struct{}

func (b Backend) Init() error {
	return nil
}

func (b Backend) Close() error {
	return nil
}

// Devices lists every IIO device with an x axis raw accel channel.
func (b Backend) Devices() ([]input.Device, error) {
	matches, err := filepath.Glob(filepath.Join(input.IIORoot, "iio:device*", "in_accel_x_raw"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan iio devices")
	}

	sort.Strings(matches)

	devices := make([]input.Device, 0, len(matches))
	for _, m := range matches {
		dir := filepath.Dir(m)
		devices = append(devices, Device{
			ID:   filepath.Base(dir),
			Name: readString(filepath.Join(dir, "name")),
		})
	}

	return devices, nil
}

func (b Backend) DefaultDevice() (input.Device, error) {
	devices, err := b.Devices()
	if err != nil {
		return nil, err
	}

	if len(devices) == 0 {
		return nil, errors.Errorf("no accelerometer found under %s", input.IIORoot)
	}

	return devices[0], nil
}

// ParseDevice accepts the device id with or without its name.
func (b Backend) ParseDevice(name string) (input.Device, error) {
	devices, err := b.Devices()
	if err != nil {
		return nil, err
	}

	for _, dv := range devices {
		if dv.String() == name || dv.(Device).ID == name {
			return dv, nil
		}
	}

	return nil, errors.Errorf("device %q not found; check list-devices", name)
}

func (b Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	dv, ok := cfg.Device.(Device)
	if !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	return NewSession(filepath.Join(input.IIORoot, dv.ID))
}

// Device is one IIO device directory.
type Device struct {
	ID   string // iio:deviceN
	Name string // driver reported name, may be empty
}

func (d Device) String() string {
	if d.Name == "" {
		return d.ID
	}
	return d.ID + " (" + d.Name + ")"
}

type channel struct {
	raw    string
	scale  float64
	offset float64
}

// Session reads one raw value per axis for every reading.
type Session struct {
	channels [3]channel
}

// NewSession prepares the channel files of the device directory dir.
func NewSession(dir string) (*Session, error) {
	s := &Session{}

	shared, sharedErr := readFloat(filepath.Join(dir, "in_accel_scale"))
	sharedOffset, _ := readFloat(filepath.Join(dir, "in_accel_offset"))

	for idx, axis := range axes {
		ch := channel{
			raw:    filepath.Join(dir, "in_accel_"+axis+"_raw"),
			scale:  shared,
			offset: sharedOffset,
		}

		if _, err := os.Stat(ch.raw); err != nil {
			return nil, errors.Wrapf(err, "missing %s axis", axis)
		}

		if v, err := readFloat(filepath.Join(dir, "in_accel_"+axis+"_scale")); err == nil {
			ch.scale = v
		} else if sharedErr != nil {
			return nil, errors.Wrapf(sharedErr, "no scale for %s axis", axis)
		}

		if v, err := readFloat(filepath.Join(dir, "in_accel_"+axis+"_offset")); err == nil {
			ch.offset = v
		}

		s.channels[idx] = ch
	}

	return s, nil
}

// Read returns the current acceleration in m/s^2. An axis that can not be
// read or parsed is NaN, so the block it lands in is treated as out of range.
func (s *Session) Read() (input.Vector, error) {
	var values [3]float64

	for idx, ch := range s.channels {
		raw, err := readFloat(ch.raw)
		if err != nil {
			values[idx] = math.NaN()
			continue
		}

		values[idx] = (raw + ch.offset) * ch.scale
	}

	return input.Vector{X: values[0], Y: values[1], Z: values[2]}, nil
}

func (s *Session) Close() error {
	return nil
}

func readString(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func readFloat(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
}
