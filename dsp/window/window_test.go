package window

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHammingEndpoints(t *testing.T) {
	coeffs := Hamming(128)
	require.Len(t, coeffs, 128)

	assert.InDelta(t, 0.08, coeffs[0], 1e-12)
	assert.InDelta(t, 0.08, coeffs[127], 1e-12)

	// symmetric around the center
	for n := 0; n < 64; n++ {
		assert.InDelta(t, coeffs[n], coeffs[127-n], 1e-12)
	}

	for _, c := range coeffs {
		assert.True(t, c > 0.0 && c <= 1.0)
	}
}

func TestNewAppliesInPlace(t *testing.T) {
	buf := []float64{2, 2, 2, 2, 2}
	New(Hann, len(buf))(buf)

	assert.InDelta(t, 0.0, buf[0], 1e-12)
	assert.InDelta(t, 1.0, buf[1], 1e-12)
	assert.InDelta(t, 2.0, buf[2], 1e-12)
	assert.InDelta(t, 1.0, buf[3], 1e-12)
	assert.InDelta(t, 0.0, buf[4], 1e-12)
}

func TestRectangleIsIdentity(t *testing.T) {
	buf := []float64{1, -3, math.Pi}
	New(Rectangle, 3)(buf)
	assert.Equal(t, []float64{1, -3, math.Pi}, buf)
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		gen, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Len(t, gen(8), 8)
	}

	gen, err := Lookup("HAMMING")
	require.NoError(t, err)
	assert.Equal(t, Hamming(16), gen(16))

	_, err = Lookup("kaiser")
	assert.Error(t, err)
}

func BenchmarkHamming(b *testing.B) {
	buf := make([]float64, 128)
	fn := New(Hamming, len(buf))

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for n := range buf {
			buf[n] = 1.0
		}
		fn(buf)
	}
}
