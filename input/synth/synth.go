// Package synth provides a synthetic accelerometer, useful without hardware
// and for exercising the detector end to end.
package synth

import (
	"math"
	"math/rand"

	"github.com/noriah/tremor/input"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("synth", Backend{})
}

const (
	// Gravity is the resting magnitude in m/s^2.
	Gravity = 9.81
	// TremorFrequency is the frequency of the simulated tremor.
	TremorFrequency = 4.5
	// TremorAmplitude is the peak amplitude of the simulated tremor in m/s^2.
	TremorAmplitude = 6.0
	// NoiseLevel is the standard deviation of the sensor noise.
	NoiseLevel = 0.05
	// BurstPeriod is the length of one on or off phase of the burst device.
	BurstPeriod = 10.0
)

// Device is a synthetic motion profile.
type Device string

const (
	Rest   Device = "rest"   // still hand, gravity and noise only
	Tremor Device = "tremor" // continuous tremor
	Burst  Device = "burst"  // tremor switching on and off every BurstPeriod seconds
)

func (d Device) String() string {
	return string(d)
}

type Backend struct{}

func (b Backend) Init() error {
	return nil
}

func (b Backend) Close() error {
	return nil
}

func (b Backend) Devices() ([]input.Device, error) {
	return []input.Device{Rest, Tremor, Burst}, nil
}

func (b Backend) DefaultDevice() (input.Device, error) {
	return Tremor, nil
}

func (b Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	dv, ok := cfg.Device.(Device)
	if !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	return NewSession(dv, cfg.SampleRate, 1)
}

// Session generates readings for a profile. Readings are a pure function of
// the sample index and seed.
type Session struct {
	device Device
	rate   float64
	index  int
	rng    *rand.Rand
}

func NewSession(device Device, sampleRate float64, seed int64) (*Session, error) {
	switch device {
	case Rest, Tremor, Burst:
	default:
		return nil, errors.Errorf("unknown synth device %q", device)
	}

	if sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}

	return &Session{
		device: device,
		rate:   sampleRate,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Shaking reports whether the profile shakes at time t seconds.
func (s *Session) Shaking(t float64) bool {
	switch s.device {
	case Tremor:
		return true
	case Burst:
		return int(math.Floor(t/BurstPeriod))%2 == 0
	}
	return false
}

func (s *Session) Read() (input.Vector, error) {
	t := float64(s.index) / s.rate
	s.index++

	z := Gravity
	if s.Shaking(t) {
		z += TremorAmplitude * math.Sin(2*math.Pi*TremorFrequency*t)
	}

	return input.Vector{
		X: NoiseLevel * s.rng.NormFloat64(),
		Y: NoiseLevel * s.rng.NormFloat64(),
		Z: z + NoiseLevel*s.rng.NormFloat64(),
	}, nil
}

func (s *Session) Close() error {
	return nil
}
