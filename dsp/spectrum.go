package dsp

import (
	"github.com/cwbudde/algo-vecmath"
	"github.com/noriah/tremor/dsp/window"
	"github.com/noriah/tremor/fft"
	"github.com/pkg/errors"
)

// Spectrum holds one magnitude per frequency bin. Index i is at
// i * (rate / len) Hz. Only indices [0, len/2] carry information for a real
// input block; the upper half mirrors the lower.
type Spectrum []float64

// BinWidth returns the frequency step between two bins.
func (s Spectrum) BinWidth(sampleRate float64) float64 {
	return sampleRate / float64(len(s))
}

// Frequency returns the center frequency of bin idx.
func (s Spectrum) Frequency(idx int, sampleRate float64) float64 {
	return float64(idx) * s.BinWidth(sampleRate)
}

// Peak returns the index of the largest bin in [lo, hi].
func (s Spectrum) Peak(lo, hi int) int {
	peak := lo
	for idx := lo + 1; idx <= hi && idx < len(s); idx++ {
		if s[idx] > s[peak] {
			peak = idx
		}
	}
	return peak
}

type TransformerConfig struct {
	SampleRate float64             // rate at which samples are read
	SampleSize int                 // number of samples per block
	Window     window.Coefficients // window applied before the transform, Hamming if nil
}

// Transformer turns a time domain sample block into a magnitude Spectrum.
// It owns every buffer it touches; a Transformer must not be shared between
// goroutines.
type Transformer struct {
	sampleRate float64
	sampleSize int

	input  []float64    // windowed copy of the real block
	fftBuf []complex128 // transform output, size/2+1 bins
	re, im []float64    // split fftBuf for the magnitude kernel
	mags   Spectrum

	windower window.Function
	plan     *fft.Plan
}

// NewTransformer validates the block size and builds the transform plan.
func NewTransformer(cfg TransformerConfig) (*Transformer, error) {
	if cfg.SampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}

	if !fft.ValidSize(cfg.SampleSize) {
		return nil, errors.Wrapf(fft.ErrSize, "sample size %d", cfg.SampleSize)
	}

	if cfg.Window == nil {
		cfg.Window = window.Hamming
	}

	half := fft.OutputSize(cfg.SampleSize)

	tr := &Transformer{
		sampleRate: cfg.SampleRate,
		sampleSize: cfg.SampleSize,
		input:      make([]float64, cfg.SampleSize),
		fftBuf:     make([]complex128, half),
		re:         make([]float64, half),
		im:         make([]float64, half),
		mags:       make(Spectrum, cfg.SampleSize),
		windower:   window.New(cfg.Window, cfg.SampleSize),
	}

	if err := fft.InitPlan(&tr.plan, tr.input, tr.fftBuf); err != nil {
		return nil, errors.Wrap(err, "failed to plan transform")
	}

	return tr, nil
}

// SampleRate returns the configured rate.
func (tr *Transformer) SampleRate() float64 {
	return tr.sampleRate
}

// SampleSize returns the configured block size.
func (tr *Transformer) SampleSize() int {
	return tr.sampleSize
}

// Transform windows a copy of block, runs the forward transform and reduces
// every bin to its magnitude. block is not modified. The returned Spectrum is
// reused by the next call.
func (tr *Transformer) Transform(block []float64) (Spectrum, error) {
	if len(block) != tr.sampleSize {
		return nil, errors.Errorf(
			"block has %d samples, expected %d", len(block), tr.sampleSize)
	}

	copy(tr.input, block)
	tr.windower(tr.input)
	tr.plan.Execute()

	for idx, c := range tr.fftBuf {
		tr.re[idx] = real(c)
		tr.im[idx] = imag(c)
	}

	half := len(tr.fftBuf)
	vecmath.Magnitude(tr.mags[:half], tr.re, tr.im)

	// conjugate symmetry of a real input
	for idx := half; idx < tr.sampleSize; idx++ {
		tr.mags[idx] = tr.mags[tr.sampleSize-idx]
	}

	return tr.mags, nil
}
