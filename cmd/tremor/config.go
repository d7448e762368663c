package main

import (
	"strings"
	"time"

	"github.com/noriah/tremor"
	"github.com/noriah/tremor/alert"
	profiles "github.com/noriah/tremor/config"
	"github.com/noriah/tremor/input"
	"github.com/pkg/errors"
)

// config holds the flag values.
type config struct {
	// profile is the YAML profile path
	profile string
	// backend is the backend name from list-backends
	backend string
	// device is the device name from list-devices
	device string
	// sampleRate is the rate at which readings are taken
	sampleRate float64
	// sampleSize is the block length
	sampleSize int
	// freeRun reads without pacing
	freeRun bool

	minFrequency float64
	maxFrequency float64
	window       string
	binMethod    string

	rangeLow          float64
	rangeHigh         float64
	durationThreshold int
	minDuration       time.Duration

	displayInterval time.Duration
	intensityMax    float64
	pixels          int
	noClamp         bool

	alert         string
	alertDevice   string
	toneFrequency float64
	toneDuration  time.Duration

	// terminal draws with termbox instead of plain lines
	terminal bool
	verbose  bool
}

// newZeroConfig returns the flag defaults.
func newZeroConfig() config {
	cfg := config{}
	cfg.fromTremor(tremor.NewZeroConfig())
	return cfg
}

func (cfg *config) fromTremor(t tremor.Config) {
	cfg.backend = t.Backend
	cfg.device = t.Device
	cfg.sampleRate = t.SampleRate
	cfg.sampleSize = t.SampleSize
	cfg.freeRun = t.FreeRun
	cfg.minFrequency = t.MinFrequency
	cfg.maxFrequency = t.MaxFrequency
	cfg.window = t.Window
	cfg.binMethod = t.BinMethod
	cfg.rangeLow = t.RangeLow
	cfg.rangeHigh = t.RangeHigh
	cfg.durationThreshold = t.DurationThreshold
	cfg.minDuration = t.MinDuration
	cfg.displayInterval = t.DisplayInterval
	cfg.intensityMax = t.IntensityMax
	cfg.pixels = t.Pixels
	cfg.noClamp = !t.ClampColor
	cfg.alert = t.Alert
	cfg.alertDevice = t.AlertDevice
	cfg.toneFrequency = t.Tone.Frequency
	cfg.toneDuration = t.Tone.Duration
}

func (cfg *config) tremorConfig() tremor.Config {
	return tremor.Config{
		Backend:           cfg.backend,
		Device:            cfg.device,
		SampleRate:        cfg.sampleRate,
		SampleSize:        cfg.sampleSize,
		FreeRun:           cfg.freeRun,
		MinFrequency:      cfg.minFrequency,
		MaxFrequency:      cfg.maxFrequency,
		Window:            cfg.window,
		BinMethod:         cfg.binMethod,
		RangeLow:          cfg.rangeLow,
		RangeHigh:         cfg.rangeHigh,
		DurationThreshold: cfg.durationThreshold,
		MinDuration:       cfg.minDuration,
		DisplayInterval:   cfg.displayInterval,
		IntensityMax:      cfg.intensityMax,
		ClampColor:        !cfg.noClamp,
		Pixels:            cfg.pixels,
		Alert:             cfg.alert,
		AlertDevice:       cfg.alertDevice,
		Tone: alert.Tone{
			Frequency: cfg.toneFrequency,
			Duration:  cfg.toneDuration,
		},
	}
}

// loadProfile applies the profile named by -c or --config in args, so that
// flags parsed afterwards take precedence.
func (cfg *config) loadProfile(args []string) error {
	path := profilePath(args)
	if path == "" {
		return nil
	}

	profile, err := profiles.Load(path)
	if err != nil {
		return err
	}

	t := cfg.tremorConfig()
	profile.Apply(&t)
	cfg.fromTremor(t)
	cfg.profile = path

	return nil
}

func profilePath(args []string) string {
	for idx, arg := range args {
		name, value, hasValue := strings.Cut(arg, "=")

		if name != "-c" && name != "--config" {
			continue
		}

		if hasValue {
			return value
		}

		if idx+1 < len(args) {
			return args[idx+1]
		}
	}

	return ""
}

// validate checks the flags before the pipeline does its own checks.
func (cfg *config) validate() error {
	if cfg.backend != "" && !input.HasBackend(cfg.backend) {
		return errors.Errorf("backend not found: %q; check list-backends", cfg.backend)
	}

	t := cfg.tremorConfig()
	return t.Validate()
}
