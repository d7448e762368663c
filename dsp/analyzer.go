// Package dsp provides the spectral side of tremor detection: turning a
// block of acceleration magnitudes into a spectrum and reducing a frequency
// band of that spectrum to a single energy value.
//
// Some notes:
//
// https://stackoverflow.com/questions/3694918/how-to-extract-frequency-associated-with-fft-values-in-python
//   - https://stackoverflow.com/a/27191172
package dsp

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// BinMethod folds one bin magnitude into the running band value.
type BinMethod func(int, float64, float64) float64

type AnalyzerConfig struct {
	SampleRate   float64   // sensor sample rate
	SampleSize   int       // number of samples per block
	MinFrequency float64   // low edge of the band, rounded down to a bin
	MaxFrequency float64   // high edge of the band, rounded up to a bin
	BinMethod    BinMethod // method used for the band value, sum if nil
}

type Analyzer interface {
	Band() (int, int)
	Energy(Spectrum) float64
}

// analyzer reduces a fixed bin range of a spectrum to one value
type analyzer struct {
	cfg      AnalyzerConfig
	fftSize  int // number of meaningful bins
	floorFFT int // first bin in the band
	ceilFFT  int // last bin in the band, inclusive
}

// Average all the samples together.
func AverageSamples() BinMethod {
	return func(count int, current, new float64) float64 {
		return current + (new / float64(count))
	}
}

// Sum all the samples together.
func SumSamples() BinMethod {
	return func(_ int, current, new float64) float64 {
		return current + new
	}
}

// Return the maximum value of all the samples.
func MaxSampleValue() BinMethod {
	return func(_ int, current, new float64) float64 {
		if current < new {
			return new
		}
		return current
	}
}

// BinMethodByName maps "average" and "max" to a BinMethod. "sum" and "" map
// to nil, which makes the analyzer sum the band with floats.Sum.
func BinMethodByName(name string) (BinMethod, error) {
	switch name {
	case "", "sum":
		return nil, nil
	case "average", "avg":
		return AverageSamples(), nil
	case "max":
		return MaxSampleValue(), nil
	}

	return nil, errors.Errorf("unknown bin method %q", name)
}

func NewAnalyzer(cfg AnalyzerConfig) Analyzer {
	az := &analyzer{
		cfg:     cfg,
		fftSize: cfg.SampleSize/2 + 1,
	}

	az.floorFFT = az.freqToIdx(cfg.MinFrequency, math.Floor)
	az.ceilFFT = az.freqToIdx(cfg.MaxFrequency, math.Ceil)

	return az
}

// Band returns the inclusive bin range the analyzer sums over.
func (az *analyzer) Band() (int, int) {
	return az.floorFFT, az.ceilFFT
}

// Energy reduces the band of src to a single value.
func (az *analyzer) Energy(src Spectrum) float64 {
	hi := az.ceilFFT
	if hi >= len(src) {
		hi = len(src) - 1
	}

	if az.floorFFT > hi {
		return 0.0
	}

	src = src[az.floorFFT : hi+1]

	if az.cfg.BinMethod == nil {
		return floats.Sum(src)
	}

	mag := 0.0
	count := len(src)
	for _, power := range src {
		mag = az.cfg.BinMethod(count, mag, power)
	}

	return mag
}

type mathFunc func(float64) float64

// freqToIdx maps a frequency to a bin, clamped to [0, size/2].
func (az *analyzer) freqToIdx(freq float64, round mathFunc) int {
	b := round(freq * float64(az.cfg.SampleSize) / az.cfg.SampleRate)

	switch {
	case math.IsNaN(b), b < 0:
		return 0
	case b < float64(az.fftSize):
		return int(b)
	}

	return az.fftSize - 1
}
