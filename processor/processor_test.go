package processor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/noriah/tremor/detect"
	"github.com/noriah/tremor/dsp"
	"github.com/noriah/tremor/input/common/execread"
	"github.com/noriah/tremor/input/common/timer"
	"github.com/noriah/tremor/input/synth"
	"github.com/noriah/tremor/report"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	SampleRate = 50.0
	SampleSize = 128
	Threshold  = 10
)

var (
	epoch     = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	blockTime = 2560 * time.Millisecond
)

type countAlerter struct {
	calls   int
	err     error
	onAlert func()
}

func (a *countAlerter) Alert(context.Context) error {
	a.calls++
	if a.onAlert != nil {
		a.onAlert()
	}
	return a.err
}

type recordDisplay struct {
	shows [][]report.Color
	err   error
}

func (d *recordDisplay) Show(colors []report.Color) error {
	d.shows = append(d.shows, append([]report.Color(nil), colors...))
	return d.err
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("stdout closed")
}

type harness struct {
	proc    *Processor
	out     bytes.Buffer
	logs    bytes.Buffer
	alerter countAlerter
	display recordDisplay
}

func newHarness(t *testing.T, mod func(*Config)) *harness {
	h := &harness{}

	tr, err := dsp.NewTransformer(dsp.TransformerConfig{
		SampleRate: SampleRate,
		SampleSize: SampleSize,
	})
	require.NoError(t, err)

	acc, err := detect.NewAccumulator(detect.AccumulatorConfig{Threshold: Threshold})
	require.NoError(t, err)

	rep, err := report.New(report.Config{
		Output:   &h.out,
		Display:  &h.display,
		Pixels:   10,
		Interval: 10 * time.Second,
		Mapper:   report.DefaultMapper(),
	})
	require.NoError(t, err)

	cfg := Config{
		Transformer: tr,
		Analyzer: dsp.NewAnalyzer(dsp.AnalyzerConfig{
			SampleRate:   SampleRate,
			SampleSize:   SampleSize,
			MinFrequency: 3.0,
			MaxFrequency: 6.0,
		}),
		Range:       detect.Range{Low: 200, High: 10000},
		Accumulator: acc,
		Reporter:    rep,
		Alerter:     &h.alerter,
		Logger: slog.New(slog.NewTextHandler(&h.logs, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})),
	}

	if mod != nil {
		mod(&cfg)
	}

	h.proc, err = New(cfg)
	require.NoError(t, err)

	return h
}

func tremorBlock() []float64 {
	block := make([]float64, SampleSize)
	dsp.Constant(block, synth.Gravity)
	dsp.BinSine(block, 10, 20)
	return block
}

func restBlock() []float64 {
	block := make([]float64, SampleSize)
	dsp.Constant(block, synth.Gravity)
	return block
}

// feed runs blocks spaced by blockTime starting at epoch.
func (h *harness) feed(t *testing.T, blocks ...[]float64) []Result {
	results := make([]Result, len(blocks))
	for idx, block := range blocks {
		res, err := h.proc.ProcessBlock(epoch.Add(time.Duration(idx)*blockTime), block)
		require.NoError(t, err)
		results[idx] = res
	}
	return results
}

func repeat(block []float64, n int) [][]float64 {
	out := make([][]float64, n)
	for idx := range out {
		out[idx] = block
	}
	return out
}

func TestStatusLineOrder(t *testing.T) {
	h := newHarness(t, nil)

	h.feed(t, make([]float64, SampleSize))

	assert.Equal(t, "Tremor Intensity: 0.00\nConsecutive Tremor Blocks: 0\n", h.out.String())
}

func TestSustainedTremorAlertsOnce(t *testing.T) {
	h := newHarness(t, nil)

	results := h.feed(t, repeat(tremorBlock(), Threshold)...)

	for idx, res := range results[:Threshold-1] {
		assert.True(t, res.InRange)
		assert.Equal(t, idx+1, res.Count)
		assert.Equal(t, detect.Accumulating, res.Phase)
		assert.Nil(t, res.Report)
	}

	last := results[Threshold-1]
	require.NotNil(t, last.Report)
	assert.True(t, last.Report.Sustained)
	assert.Equal(t, Threshold, last.Report.Count)
	assert.Equal(t, detect.Idle, last.Phase)

	assert.Equal(t, 1, h.alerter.calls)
	assert.Equal(t, 1, strings.Count(h.out.String(), report.MsgSustained))
	assert.Contains(t, h.out.String(),
		fmt.Sprintf("Consecutive Tremor Blocks: %d\n%s\n", Threshold, report.MsgSustained))
	assert.Contains(t, h.logs.String(), "sustained tremor")
	assert.Contains(t, h.logs.String(), "window energy")
}

func TestInterruptedRunDoesNotAlert(t *testing.T) {
	h := newHarness(t, nil)

	blocks := repeat(tremorBlock(), Threshold-1)
	blocks = append(blocks, restBlock())
	blocks = append(blocks, repeat(tremorBlock(), Threshold-1)...)

	results := h.feed(t, blocks...)

	assert.Equal(t, Threshold-1, results[Threshold-2].Count)
	assert.Equal(t, 0, results[Threshold-1].Count)
	assert.Equal(t, Threshold-1, results[len(results)-1].Count)

	assert.Equal(t, 0, h.alerter.calls)
	assert.NotContains(t, h.out.String(), report.MsgSustained)
}

func TestContinuousTremorAlertsEveryWindow(t *testing.T) {
	h := newHarness(t, nil)

	h.feed(t, repeat(tremorBlock(), 3*Threshold)...)

	assert.Equal(t, 3, h.alerter.calls)
}

func TestAlertFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, nil)
	h.alerter.err = errors.New("no speaker")

	results := h.feed(t, repeat(tremorBlock(), Threshold)...)

	require.NotNil(t, results[Threshold-1].Report)
	assert.Equal(t, 1, h.alerter.calls)
	assert.Contains(t, h.logs.String(), "alert failed")
	assert.Contains(t, h.out.String(), report.MsgSustained)
}

func TestVerdictPrintedBeforeAlert(t *testing.T) {
	h := newHarness(t, nil)

	var atAlert string
	h.alerter.onAlert = func() {
		atAlert = h.out.String()
	}

	h.feed(t, repeat(tremorBlock(), Threshold)...)

	require.Equal(t, 1, h.alerter.calls)
	assert.True(t, strings.HasSuffix(atAlert, report.MsgSustained+"\n"))
}

func TestDisplayFailureDoesNotStopDetection(t *testing.T) {
	h := newHarness(t, nil)
	h.display.err = errors.New("display gone")

	res, err := h.proc.ProcessBlock(epoch, tremorBlock())
	require.NoError(t, err)
	assert.False(t, res.DisplayUpdated)
	assert.True(t, res.InRange)
	assert.Equal(t, 1, res.Count)
	assert.Contains(t, h.logs.String(), "display update failed")
	assert.Contains(t, h.out.String(), "Tremor Intensity:")
}

func TestProcessSurvivesDisplayFailure(t *testing.T) {
	sess, err := synth.NewSession(synth.Tremor, SampleRate, 5)
	require.NoError(t, err)

	var text strings.Builder
	for i := 0; i < 12*SampleSize; i++ {
		v, err := sess.Read()
		require.NoError(t, err)
		fmt.Fprintf(&text, "%f %f %f\n", v.X, v.Y, v.Z)
	}

	h := newHarness(t, func(cfg *Config) {
		cfg.Session = execread.NewSession(
			nopCloser{strings.NewReader(text.String())}, execread.Text)
		cfg.Sampler = timer.NewSampler(0)
	})
	h.display.err = errors.New("display gone")

	require.NoError(t, h.proc.Process(context.Background()))

	assert.Equal(t, 12, strings.Count(h.out.String(), "Tremor Intensity:"))
	assert.Equal(t, 1, h.alerter.calls)
	assert.Equal(t, 2, h.proc.acc.State().Count)
}

func TestStatusFailureDoesNotStopDetection(t *testing.T) {
	h := newHarness(t, nil)

	rep, err := report.New(report.Config{Output: brokenWriter{}, Pixels: 10})
	require.NoError(t, err)
	h.proc.rep = rep

	results := h.feed(t, repeat(tremorBlock(), Threshold)...)

	require.NotNil(t, results[Threshold-1].Report)
	assert.Equal(t, 1, h.alerter.calls)
	assert.Contains(t, h.logs.String(), "failed to write status")
}

func TestDisplayCadence(t *testing.T) {
	h := newHarness(t, nil)

	// 12 blocks span 28.16 seconds, updates at 0, 10.24 and 20.48
	results := h.feed(t, repeat(tremorBlock(), 12)...)

	require.Len(t, h.display.shows, 3)
	for idx, res := range results {
		want := idx == 0 || idx == 4 || idx == 8
		assert.Equal(t, want, res.DisplayUpdated, "block %d", idx)
	}

	assert.Equal(t, 12, strings.Count(h.out.String(), "Tremor Intensity:"))
}

func TestMinDurationWindow(t *testing.T) {
	h := newHarness(t, func(cfg *Config) {
		acc, err := detect.NewAccumulator(detect.AccumulatorConfig{
			Threshold:   Threshold,
			MinDuration: time.Minute,
		})
		require.NoError(t, err)
		cfg.Accumulator = acc
	})

	results := h.feed(t, repeat(tremorBlock(), Threshold)...)

	require.NotNil(t, results[Threshold-1].Report)
	assert.False(t, results[Threshold-1].Report.Sustained)
	assert.Equal(t, 0, h.alerter.calls)
	assert.Contains(t, h.out.String(), report.MsgNone)
}

func TestTickWithSynthSession(t *testing.T) {
	for _, tc := range []struct {
		device synth.Device
		alerts int
	}{
		{synth.Tremor, 1},
		{synth.Rest, 0},
	} {
		t.Run(tc.device.String(), func(t *testing.T) {
			sess, err := synth.NewSession(tc.device, SampleRate, 7)
			require.NoError(t, err)

			sampler := timer.NewSampler(0)
			defer sampler.Stop()

			now := epoch
			h := newHarness(t, func(cfg *Config) {
				cfg.Session = sess
				cfg.Sampler = sampler
				cfg.Now = func() time.Time {
					now = now.Add(blockTime)
					return now
				}
			})

			for i := 0; i < Threshold; i++ {
				res, err := h.proc.Tick(context.Background())
				require.NoError(t, err)
				assert.Equal(t, tc.alerts == 1, res.InRange, "energy %f", res.Energy)
			}

			assert.Equal(t, tc.alerts, h.alerter.calls)
		})
	}
}

func TestProcessEndsWithStream(t *testing.T) {
	var text strings.Builder
	for i := 0; i < 2*SampleSize+5; i++ {
		text.WriteString("0 0 9.81\n")
	}

	sess := execread.NewSession(
		nopCloser{strings.NewReader(text.String())}, execread.Text)

	h := newHarness(t, func(cfg *Config) {
		cfg.Session = sess
		cfg.Sampler = timer.NewSampler(0)
	})

	require.NoError(t, h.proc.Process(context.Background()))

	out := h.out.String()
	assert.True(t, strings.HasPrefix(out, report.MsgReady+"\n"))
	assert.Equal(t, 2, strings.Count(out, "Tremor Intensity:"))
	assert.Contains(t, h.logs.String(), "input ended")
}

func TestProcessStopsOnCancel(t *testing.T) {
	sess, err := synth.NewSession(synth.Tremor, SampleRate, 1)
	require.NoError(t, err)

	sampler := timer.NewSampler(timer.Period(SampleRate))
	defer sampler.Stop()

	h := newHarness(t, func(cfg *Config) {
		cfg.Session = sess
		cfg.Sampler = sampler
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, h.proc.Process(ctx))
	assert.Equal(t, report.MsgReady+"\n", h.out.String())
}

func TestTickWithoutSession(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.proc.Tick(context.Background())
	assert.Error(t, err)
}

func TestNewValidates(t *testing.T) {
	h := newHarness(t, nil)
	base := Config{
		Transformer: h.proc.tr,
		Analyzer:    h.proc.anlz,
		Range:       h.proc.rng,
		Accumulator: h.proc.acc,
		Reporter:    h.proc.rep,
	}

	_, err := New(base)
	require.NoError(t, err)

	cfg := base
	cfg.Transformer = nil
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = base
	cfg.Range = detect.Range{Low: 10, High: 1}
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = base
	cfg.Session, err = synth.NewSession(synth.Rest, SampleRate, 1)
	require.NoError(t, err)
	_, err = New(cfg)
	assert.Error(t, err)
}

func BenchmarkProcessBlock(b *testing.B) {
	tr, _ := dsp.NewTransformer(dsp.TransformerConfig{SampleRate: SampleRate, SampleSize: SampleSize})
	acc, _ := detect.NewAccumulator(detect.AccumulatorConfig{Threshold: Threshold})
	rep, _ := report.New(report.Config{Output: &bytes.Buffer{}, Pixels: 10})

	proc, err := New(Config{
		Transformer: tr,
		Analyzer: dsp.NewAnalyzer(dsp.AnalyzerConfig{
			SampleRate: SampleRate, SampleSize: SampleSize, MinFrequency: 3, MaxFrequency: 6,
		}),
		Range:       detect.Range{Low: 200, High: 10000},
		Accumulator: acc,
		Reporter:    rep,
		Logger:      slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	if err != nil {
		b.Fatal(err)
	}

	block := tremorBlock()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		proc.ProcessBlock(epoch, block)
	}
}

type nopCloser struct {
	*strings.Reader
}

func (nopCloser) Close() error {
	return nil
}
