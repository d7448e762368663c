// Package tremor detects sustained hand tremor from a 3-axis accelerometer.
// A block of acceleration magnitudes is windowed and transformed, the energy
// in the tremor band is debounced over consecutive blocks and an alert fires
// once the tremor has lasted long enough.
package tremor

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/noriah/tremor/alert"
	"github.com/noriah/tremor/detect"
	"github.com/noriah/tremor/dsp"
	"github.com/noriah/tremor/dsp/window"
	"github.com/noriah/tremor/input"
	"github.com/noriah/tremor/input/common/timer"
	"github.com/noriah/tremor/processor"
	"github.com/noriah/tremor/report"
	"github.com/pkg/errors"
)

// Run builds the pipeline from cfg and processes blocks until ctx is done or
// the input ends.
func Run(cfg *Config, ctx context.Context) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run", uuid.NewString())

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	// PIPELINE SETUP

	gen := window.Hamming
	if cfg.Window != "" {
		gen, _ = window.Lookup(cfg.Window)
	}

	tr, err := dsp.NewTransformer(dsp.TransformerConfig{
		SampleRate: cfg.SampleRate,
		SampleSize: cfg.SampleSize,
		Window:     gen,
	})
	if err != nil {
		return err
	}

	binMethod, _ := dsp.BinMethodByName(cfg.BinMethod)

	anlz := dsp.NewAnalyzer(dsp.AnalyzerConfig{
		SampleRate:   cfg.SampleRate,
		SampleSize:   cfg.SampleSize,
		MinFrequency: cfg.MinFrequency,
		MaxFrequency: cfg.MaxFrequency,
		BinMethod:    binMethod,
	})

	lo, hi := anlz.Band()
	log.Debug("tremor band",
		"low_bin", lo,
		"high_bin", hi,
		"bin_width", cfg.SampleRate/float64(cfg.SampleSize))

	acc, err := detect.NewAccumulator(detect.AccumulatorConfig{
		Threshold:   cfg.Threshold(),
		MinDuration: cfg.MinDuration,
	})
	if err != nil {
		return err
	}

	rep, err := report.New(report.Config{
		Output:   out,
		Display:  cfg.Display,
		Pixels:   cfg.Pixels,
		Interval: cfg.DisplayInterval,
		Mapper: report.Mapper{
			InMax:  cfg.IntensityMax,
			OutMax: 255,
			Clamp:  cfg.ClampColor,
		},
	})
	if err != nil {
		return err
	}

	var alerter alert.Alerter
	if cfg.Alert != "" {
		if alerter, err = alert.Open(cfg.Alert, cfg.AlertDevice, cfg.Tone); err != nil {
			return err
		}
	}

	// INPUT SETUP

	if cfg.Backend == "" {
		cfg.Backend = input.DefaultBackend()
	}

	backend, err := input.InitBackend(cfg.Backend)
	if err != nil {
		return err
	}
	defer backend.Close()

	sessConfig := input.SessionConfig{
		SampleRate: cfg.SampleRate,
		SampleSize: cfg.SampleSize,
	}

	if sessConfig.Device, err = input.GetDevice(backend, cfg.Device); err != nil {
		return err
	}

	sess, err := backend.Start(sessConfig)
	if err != nil {
		return errors.Wrap(err, "failed to start the input backend")
	}
	defer sess.Close()

	log.Info("reading input",
		"backend", cfg.Backend,
		"device", sessConfig.Device.String(),
		"rate", cfg.SampleRate,
		"samples", cfg.SampleSize)

	period := timer.Period(cfg.SampleRate)
	if cfg.FreeRun {
		period = 0
	}

	sampler := timer.NewSampler(period)
	defer sampler.Stop()

	proc, err := processor.New(processor.Config{
		Session:     sess,
		Sampler:     sampler,
		Transformer: tr,
		Analyzer:    anlz,
		Range:       detect.Range{Low: cfg.RangeLow, High: cfg.RangeHigh},
		Accumulator: acc,
		Reporter:    rep,
		Alerter:     alerter,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	// DISPLAY SETUP

	if cfg.SetupFunc != nil {
		if err := cfg.SetupFunc(); err != nil {
			return err
		}
	}

	if cfg.CleanupFunc != nil {
		defer cfg.CleanupFunc()
	}

	if cfg.StartFunc != nil {
		if ctx, err = cfg.StartFunc(ctx); err != nil {
			return err
		}
	}

	return proc.Process(ctx)
}
