package dsp

import "math"

// Sine adds amp * sin(2 pi freq t + phase) to dst, with t stepping at
// sampleRate. It returns the phase following the last sample so consecutive
// blocks stay continuous.
func Sine(dst []float64, sampleRate, freq, amp, phase float64) float64 {
	step := 2.0 * math.Pi * freq / sampleRate
	for idx := range dst {
		dst[idx] += amp * math.Sin(phase)
		phase += step
	}

	return math.Mod(phase, 2.0*math.Pi)
}

// BinSine adds a sine that lands exactly on spectrum bin idx of a len(dst)
// block.
func BinSine(dst []float64, idx int, amp float64) {
	step := 2.0 * math.Pi * float64(idx) / float64(len(dst))
	for n := range dst {
		dst[n] += amp * math.Sin(step*float64(n))
	}
}

// Constant sets every sample of dst to value.
func Constant(dst []float64, value float64) {
	for idx := range dst {
		dst[idx] = value
	}
}
