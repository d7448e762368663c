// Package processor runs the detection loop: collect a block of readings,
// measure the tremor band energy, debounce it and report.
package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/noriah/tremor/alert"
	"github.com/noriah/tremor/detect"
	"github.com/noriah/tremor/dsp"
	"github.com/noriah/tremor/input"
	"github.com/noriah/tremor/input/common/timer"
	"github.com/noriah/tremor/report"
	"github.com/noriah/tremor/util"
	"github.com/pkg/errors"
)

type Config struct {
	Session     input.Session       // reading source, may be nil for ProcessBlock only use
	Sampler     *timer.Sampler      // read pacing
	Transformer *dsp.Transformer    // block to spectrum
	Analyzer    dsp.Analyzer        // spectrum to band energy
	Range       detect.Range        // tremor energy range
	Accumulator *detect.Accumulator // debounce state
	Reporter    *report.Reporter    // status and display output
	Alerter     alert.Alerter       // sustained tremor alert, may be nil
	Logger      *slog.Logger        // diagnostics, defaults to slog.Default()
	Now         func() time.Time    // clock, defaults to time.Now
}

// Result is the outcome of one block.
type Result struct {
	Energy         float64
	InRange        bool
	Count          int
	Phase          detect.Phase
	DisplayUpdated bool
	Report         *detect.Report // set when a reporting window completed
}

type Processor struct {
	sess    input.Session
	sampler *timer.Sampler
	tr      *dsp.Transformer
	anlz    dsp.Analyzer
	rng     detect.Range
	acc     *detect.Accumulator
	rep     *report.Reporter
	alerter alert.Alerter
	log     *slog.Logger
	now     func() time.Time

	block []float64
	stats *util.MovingWindow
}

func New(cfg Config) (*Processor, error) {
	switch {
	case cfg.Transformer == nil:
		return nil, errors.New("no transformer")
	case cfg.Analyzer == nil:
		return nil, errors.New("no analyzer")
	case cfg.Accumulator == nil:
		return nil, errors.New("no accumulator")
	case cfg.Reporter == nil:
		return nil, errors.New("no reporter")
	}

	if err := cfg.Range.Validate(); err != nil {
		return nil, err
	}

	if cfg.Session != nil && cfg.Sampler == nil {
		return nil, errors.New("session given without a sampler")
	}

	proc := &Processor{
		sess:    cfg.Session,
		sampler: cfg.Sampler,
		tr:      cfg.Transformer,
		anlz:    cfg.Analyzer,
		rng:     cfg.Range,
		acc:     cfg.Accumulator,
		rep:     cfg.Reporter,
		alerter: cfg.Alerter,
		log:     cfg.Logger,
		now:     cfg.Now,
		block:   make([]float64, cfg.Transformer.SampleSize()),
		stats:   util.NewMovingWindow(cfg.Accumulator.Threshold()),
	}

	if proc.log == nil {
		proc.log = slog.Default()
	}

	if proc.now == nil {
		proc.now = time.Now
	}

	return proc, nil
}

// Process runs blocks until ctx is cancelled or the session ends. Neither is
// reported as an error.
func (proc *Processor) Process(ctx context.Context) error {
	if err := proc.rep.Ready(); err != nil {
		return errors.Wrap(err, "failed to write status")
	}

	for {
		_, err := proc.Tick(ctx)

		switch {
		case err == nil:
			continue

		case errors.Is(err, input.ErrEndOfStream):
			proc.log.Info("input ended")
			return nil

		case ctx.Err() != nil:
			return nil
		}

		return err
	}
}

// Tick collects one block from the session and processes it. A block cut
// short by the end of the stream is dropped.
func (proc *Processor) Tick(ctx context.Context) (Result, error) {
	if proc.sess == nil {
		return Result{}, errors.New("no input session")
	}

	if err := proc.sampler.Collect(ctx, proc.sess, proc.block); err != nil {
		if errors.Is(err, input.ErrEndOfStream) || ctx.Err() != nil {
			return Result{}, err
		}
		return Result{}, errors.Wrap(err, "failed to read input")
	}

	return proc.processBlock(ctx, proc.now(), proc.block)
}

// ProcessBlock runs the pipeline on a caller supplied block taken at now.
func (proc *Processor) ProcessBlock(now time.Time, block []float64) (Result, error) {
	return proc.processBlock(context.Background(), now, block)
}

func (proc *Processor) processBlock(ctx context.Context, now time.Time, block []float64) (Result, error) {
	spectrum, err := proc.tr.Transform(block)
	if err != nil {
		return Result{}, err
	}

	res := Result{Energy: proc.anlz.Energy(spectrum)}

	// output failures are logged; the block is still classified
	if res.DisplayUpdated, err = proc.rep.Show(res.Energy, now); err != nil {
		proc.log.Warn("display update failed", "error", err)
	}

	res.InRange = proc.rng.Classify(res.Energy, proc.acc)
	res.Phase = proc.acc.Observe(res.InRange, now)
	res.Count = proc.acc.State().Count

	if res.InRange {
		proc.stats.Update(res.Energy)
	} else {
		proc.stats.Reset()
	}

	proc.log.Debug("block",
		"energy", res.Energy,
		"in_range", res.InRange,
		"phase", res.Phase)

	proc.status(proc.rep.Intensity(res.Energy))
	proc.status(proc.rep.Count(res.Count))

	rep, ok := proc.acc.Check(now)
	if !ok {
		return res, nil
	}

	res.Report = &rep
	res.Phase = proc.acc.Phase()

	proc.status(proc.rep.Window(rep))
	proc.window(ctx, rep)

	return res, nil
}

func (proc *Processor) status(err error) {
	if err != nil {
		proc.log.Warn("failed to write status", "error", err)
	}
}

func (proc *Processor) window(ctx context.Context, rep detect.Report) {
	mean, stddev := proc.stats.Stats()
	proc.stats.Reset()

	log := proc.log.With("event", uuid.NewString())

	log.Debug("window energy",
		"mean", mean,
		"stddev", stddev,
		"blocks", rep.Count)

	if !rep.Sustained {
		log.Info("window too short", "duration", rep.Duration())
		return
	}

	log.Info("sustained tremor",
		"blocks", rep.Count,
		"duration", rep.Duration())

	if proc.alerter == nil {
		return
	}

	if err := proc.alerter.Alert(ctx); err != nil {
		log.Warn("alert failed", "error", err)
	}
}
