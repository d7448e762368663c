package tremor

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/noriah/tremor/alert"
	"github.com/noriah/tremor/detect"
	"github.com/noriah/tremor/dsp"
	"github.com/noriah/tremor/dsp/window"
	"github.com/noriah/tremor/fft"
	"github.com/noriah/tremor/report"
	"github.com/pkg/errors"
)

type SetupFunc func() error
type StartFunc func(ctx context.Context) (context.Context, error)
type CleanupFunc func() error

type Config struct {
	// The name of the backend from the input package
	Backend string
	// The name of the device to pull readings from
	Device string
	// The rate that readings are taken
	SampleRate float64
	// The number of readings per block
	SampleSize int
	// Read as fast as the source allows instead of at SampleRate
	FreeRun bool

	// Tremor frequency band
	MinFrequency float64
	MaxFrequency float64
	// Window name from the window package
	Window string
	// Band reduction, see dsp.BinMethodByName
	BinMethod string

	// Band energy range that counts as tremor
	RangeLow  float64
	RangeHigh float64
	// Duration threshold in readings groups; a tenth of it is the number of
	// consecutive blocks that make a sustained tremor
	DurationThreshold int
	// Optional wall clock length a run must also reach
	MinDuration time.Duration

	// Minimum time between display updates
	DisplayInterval time.Duration
	// Energy mapped to full red
	IntensityMax float64
	// Clamp the color channels to [0, 255]
	ClampColor bool
	// Number of display elements
	Pixels int

	// Alert backend name and device
	Alert       string
	AlertDevice string
	// Tone played on sustained tremor
	Tone alert.Tone

	// Function to call when setting up the pipeline
	SetupFunc SetupFunc
	// Function to call when starting the pipeline
	StartFunc StartFunc
	// Function to call when cleaning up the pipeline
	CleanupFunc CleanupFunc
	// Where status lines go
	Output io.Writer
	// Where display colors go, may be nil
	Display report.Display
	// Diagnostics, defaults to slog.Default()
	Logger *slog.Logger
}

// NewZeroConfig returns the reference detector configuration.
func NewZeroConfig() Config {
	return Config{
		SampleRate:        50,
		SampleSize:        128,
		MinFrequency:      3.0,
		MaxFrequency:      6.0,
		Window:            "hamming",
		RangeLow:          200,
		RangeHigh:         10000,
		DurationThreshold: 100,
		DisplayInterval:   10 * time.Second,
		IntensityMax:      1000,
		ClampColor:        true,
		Pixels:            10,
		Alert:             "bell",
		Tone:              alert.DefaultTone(),
	}
}

// Threshold returns the consecutive block threshold.
func (cfg *Config) Threshold() int {
	return detect.ConsecutiveThreshold(cfg.DurationThreshold)
}

func (cfg *Config) Validate() error {
	switch {
	case cfg.SampleRate <= 0:
		return errors.New("sample rate must be positive")

	case cfg.SampleSize < 4:
		return errors.New("sample size too small (4+ required)")

	case !fft.ValidSize(cfg.SampleSize):
		return errors.Wrapf(fft.ErrSize, "sample size %d", cfg.SampleSize)
	}

	nyquist := cfg.SampleRate / 2

	switch {
	case cfg.MinFrequency <= 0 || cfg.MaxFrequency > nyquist:
		return errors.Errorf("band [%g, %g] Hz must be within (0, %g]",
			cfg.MinFrequency, cfg.MaxFrequency, nyquist)

	case cfg.MinFrequency > cfg.MaxFrequency:
		return errors.New("band low frequency above high frequency")

	case cfg.RangeLow > cfg.RangeHigh:
		return errors.New("range low above range high")

	case cfg.Threshold() < 1:
		return errors.Errorf("duration threshold %d gives no blocks (10+ required)",
			cfg.DurationThreshold)

	case cfg.MinDuration < 0:
		return errors.New("min duration can not be negative")

	case cfg.DisplayInterval < 0:
		return errors.New("display interval can not be negative")

	case cfg.IntensityMax <= 0:
		return errors.New("intensity max must be positive")

	case cfg.Pixels < 1:
		return errors.New("too few pixels (1 min)")

	case cfg.Tone.Frequency <= 0 || cfg.Tone.Duration < 0:
		return errors.New("invalid alert tone")
	}

	if cfg.Window != "" {
		if _, err := window.Lookup(cfg.Window); err != nil {
			return err
		}
	}

	if _, err := dsp.BinMethodByName(cfg.BinMethod); err != nil {
		return err
	}

	return nil
}
