package dsp

import (
	"math"
	"testing"

	"github.com/noriah/tremor/dsp/window"
	"github.com/noriah/tremor/fft"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRate = 50.0
	testSize = 128
)

func newTestTransformer(t testing.TB) *Transformer {
	tr, err := NewTransformer(TransformerConfig{
		SampleRate: testRate,
		SampleSize: testSize,
	})
	require.NoError(t, err)
	return tr
}

func newTestAnalyzer() Analyzer {
	return NewAnalyzer(AnalyzerConfig{
		SampleRate:   testRate,
		SampleSize:   testSize,
		MinFrequency: 3.0,
		MaxFrequency: 6.0,
	})
}

func TestNewTransformerRejectsSize(t *testing.T) {
	_, err := NewTransformer(TransformerConfig{SampleRate: testRate, SampleSize: 100})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fft.ErrSize))

	_, err = NewTransformer(TransformerConfig{SampleRate: 0, SampleSize: testSize})
	assert.Error(t, err)
}

func TestTransformWrongLength(t *testing.T) {
	tr := newTestTransformer(t)
	_, err := tr.Transform(make([]float64, 64))
	assert.Error(t, err)
}

func TestZeroBlockHasNoEnergy(t *testing.T) {
	tr := newTestTransformer(t)

	mags, err := tr.Transform(make([]float64, testSize))
	require.NoError(t, err)
	require.Len(t, mags, testSize)

	for _, v := range mags {
		assert.Equal(t, 0.0, v)
	}

	assert.Equal(t, 0.0, newTestAnalyzer().Energy(mags))
}

func TestSpectrumIsSymmetric(t *testing.T) {
	tr := newTestTransformer(t)

	block := make([]float64, testSize)
	Constant(block, 9.81)
	Sine(block, testRate, 4.2, 3.0, 0.3)
	Sine(block, testRate, 17.0, 1.0, 0.0)

	mags, err := tr.Transform(block)
	require.NoError(t, err)

	for k := 1; k < testSize/2; k++ {
		assert.InDelta(t, mags[k], mags[testSize-k], 1e-9, "bin %d", k)
	}

	for _, v := range mags {
		assert.True(t, v >= 0)
	}
}

func TestTransformDoesNotTouchBlock(t *testing.T) {
	tr := newTestTransformer(t)

	block := make([]float64, testSize)
	Constant(block, 1.0)

	_, err := tr.Transform(block)
	require.NoError(t, err)

	for _, v := range block {
		assert.Equal(t, 1.0, v)
	}
}

func TestTransformIsRepeatable(t *testing.T) {
	tr := newTestTransformer(t)
	az := newTestAnalyzer()

	block := make([]float64, testSize)
	Constant(block, 9.81)
	Sine(block, testRate, 4.5, 4.0, 0.0)

	mags, err := tr.Transform(block)
	require.NoError(t, err)
	first := append(Spectrum(nil), mags...)
	firstEnergy := az.Energy(mags)

	mags, err = tr.Transform(block)
	require.NoError(t, err)

	assert.Equal(t, first, mags)
	assert.Equal(t, firstEnergy, az.Energy(mags))
}

func TestBandIndices(t *testing.T) {
	lo, hi := newTestAnalyzer().Band()
	assert.Equal(t, 7, lo)
	assert.Equal(t, 16, hi)
}

func TestBandIndicesClamped(t *testing.T) {
	az := NewAnalyzer(AnalyzerConfig{
		SampleRate:   testRate,
		SampleSize:   testSize,
		MinFrequency: -2.0,
		MaxFrequency: 40.0,
	})

	lo, hi := az.Band()
	assert.Equal(t, 0, lo)
	assert.Equal(t, testSize/2, hi)
}

func TestEnergySumsOnlyTheBand(t *testing.T) {
	mags := make(Spectrum, testSize)
	for idx := range mags {
		mags[idx] = 1.0
	}

	assert.Equal(t, 10.0, newTestAnalyzer().Energy(mags))

	mags = make(Spectrum, testSize)
	mags[6] = 1000
	mags[17] = 1000
	mags[10] = 42
	assert.Equal(t, 42.0, newTestAnalyzer().Energy(mags))
}

func TestEnergyBinMethods(t *testing.T) {
	mags := make(Spectrum, testSize)
	for idx := 7; idx <= 16; idx++ {
		mags[idx] = float64(idx)
	}

	for _, tc := range []struct {
		name string
		want float64
	}{
		{"", 115},
		{"sum", 115},
		{"average", 11.5},
		{"max", 16},
	} {
		method, err := BinMethodByName(tc.name)
		require.NoError(t, err)

		az := NewAnalyzer(AnalyzerConfig{
			SampleRate:   testRate,
			SampleSize:   testSize,
			MinFrequency: 3.0,
			MaxFrequency: 6.0,
			BinMethod:    method,
		})

		assert.InDelta(t, tc.want, az.Energy(mags), 1e-9, tc.name)
	}

	for _, name := range []string{"", "sum"} {
		method, err := BinMethodByName(name)
		require.NoError(t, err)
		assert.Nil(t, method, "%q uses floats.Sum", name)
	}

	sum := NewAnalyzer(AnalyzerConfig{
		SampleRate:   testRate,
		SampleSize:   testSize,
		MinFrequency: 3.0,
		MaxFrequency: 6.0,
		BinMethod:    SumSamples(),
	})
	assert.InDelta(t, 115.0, sum.Energy(mags), 1e-9)

	_, err := BinMethodByName("median")
	assert.Error(t, err)
}

func TestInBandSineHasEnergy(t *testing.T) {
	tr := newTestTransformer(t)
	az := newTestAnalyzer()

	// bin 10 is 3.90625 Hz
	block := make([]float64, testSize)
	BinSine(block, 10, 20.0)

	mags, err := tr.Transform(block)
	require.NoError(t, err)

	lo, hi := az.Band()
	assert.Equal(t, 10, mags.Peak(lo, hi))
	assert.InDelta(t, 3.90625, mags.Frequency(10, testRate), 1e-12)

	energy := az.Energy(mags)
	assert.Greater(t, energy, 200.0)
	assert.Less(t, energy, 10000.0)
}

func TestOutOfBandSineHasLittleEnergy(t *testing.T) {
	tr := newTestTransformer(t)
	az := newTestAnalyzer()

	// bin 40 is 15.6 Hz
	block := make([]float64, testSize)
	BinSine(block, 40, 5.0)

	mags, err := tr.Transform(block)
	require.NoError(t, err)

	assert.Less(t, az.Energy(mags), 200.0)
}

func TestNaNPropagates(t *testing.T) {
	tr := newTestTransformer(t)

	block := make([]float64, testSize)
	block[3] = math.NaN()

	mags, err := tr.Transform(block)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(newTestAnalyzer().Energy(mags)))
}

func TestTransformerWindow(t *testing.T) {
	tr, err := NewTransformer(TransformerConfig{
		SampleRate: testRate,
		SampleSize: testSize,
		Window:     window.Rectangle,
	})
	require.NoError(t, err)

	block := make([]float64, testSize)
	Constant(block, 2.0)

	mags, err := tr.Transform(block)
	require.NoError(t, err)

	assert.InDelta(t, 2.0*testSize, mags[0], 1e-9)
	assert.InDelta(t, 0.0, mags[1], 1e-9)
}

func BenchmarkTransform(b *testing.B) {
	tr := newTestTransformer(b)
	az := newTestAnalyzer()

	block := make([]float64, testSize)
	Constant(block, 9.81)
	Sine(block, testRate, 4.5, 4.0, 0.0)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		mags, _ := tr.Transform(block)
		az.Energy(mags)
	}
}
