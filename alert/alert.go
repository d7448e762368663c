// Package alert provides the audible alert raised once per sustained tremor.
package alert

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Tone is the alert sound.
type Tone struct {
	Frequency float64       // Hz
	Duration  time.Duration // length of the tone
}

// DefaultTone is an 880 Hz tone lasting one second.
func DefaultTone() Tone {
	return Tone{Frequency: 880, Duration: time.Second}
}

// fadeTime ramps the tone in and out to avoid clicks.
const fadeTime = 5 * time.Millisecond

// Samples renders the tone as float32 samples at sampleRate.
func (t Tone) Samples(sampleRate float64) []float32 {
	count := int(t.Duration.Seconds() * sampleRate)
	if count <= 0 {
		return nil
	}

	fade := int(fadeTime.Seconds() * sampleRate)
	if fade*2 > count {
		fade = count / 2
	}

	out := make([]float32, count)
	step := 2 * math.Pi * t.Frequency / sampleRate

	for idx := range out {
		gain := 1.0
		switch {
		case idx < fade:
			gain = float64(idx) / float64(fade)
		case idx >= count-fade:
			gain = float64(count-1-idx) / float64(fade)
		}

		out[idx] = float32(0.5 * gain * math.Sin(step*float64(idx)))
	}

	return out
}

// EncodeFloat32LE writes samples as packed little-endian float32.
func EncodeFloat32LE(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for idx, s := range samples {
		binary.LittleEndian.PutUint32(out[idx*4:], math.Float32bits(s))
	}
	return out
}

// Alerter sounds one alert per call. Alert blocks until the alert finished.
type Alerter interface {
	Alert(ctx context.Context) error
}

// Backend opens alerters on one of its devices.
type Backend interface {
	Devices() ([]string, error)
	Open(device string, tone Tone) (Alerter, error)
}

type NamedBackend struct {
	Name string
	Backend
}

var Backends []NamedBackend

// RegisterBackend registers an alert backend. It is not thread-safe and is
// meant to be called on init().
func RegisterBackend(name string, b Backend) {
	Backends = append(Backends, NamedBackend{
		Name:    name,
		Backend: b,
	})
}

// FindBackend returns nil if no backend has the name.
func FindBackend(name string) Backend {
	for _, backend := range Backends {
		if backend.Name == name {
			return backend.Backend
		}
	}
	return nil
}

// Open finds the backend and opens device on it.
func Open(name, device string, tone Tone) (Alerter, error) {
	backend := FindBackend(name)
	if backend == nil {
		return nil, errors.Errorf("alert backend not found: %q; check list-alerts", name)
	}

	a, err := backend.Open(device, tone)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s alert", name)
	}

	return a, nil
}

func init() {
	RegisterBackend("none", NoneBackend{})
	RegisterBackend("bell", BellBackend{Output: os.Stderr})
}

// NoneBackend discards alerts.
type NoneBackend struct{}

func (NoneBackend) Devices() ([]string, error) {
	return nil, nil
}

func (NoneBackend) Open(string, Tone) (Alerter, error) {
	return None{}, nil
}

// None is an Alerter that does nothing.
type None struct{}

func (None) Alert(context.Context) error {
	return nil
}

// BellBackend rings the terminal bell.
type BellBackend struct {
	Output io.Writer
}

func (b BellBackend) Devices() ([]string, error) {
	return []string{"terminal"}, nil
}

func (b BellBackend) Open(_ string, tone Tone) (Alerter, error) {
	return &Bell{W: b.Output, Hold: tone.Duration}, nil
}

// Bell writes BEL and then waits Hold, so it paces like a real tone.
type Bell struct {
	W    io.Writer
	Hold time.Duration
}

func (b *Bell) Alert(ctx context.Context) error {
	if _, err := io.WriteString(b.W, "\a"); err != nil {
		return errors.Wrap(err, "failed to ring bell")
	}

	if b.Hold <= 0 {
		return nil
	}

	timer := time.NewTimer(b.Hold)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
