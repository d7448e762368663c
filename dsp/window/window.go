// Package window provides Window Functions for signal analysis
//
// See https://wikipedia.org/wiki/Window_function
package window

import (
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
	"github.com/pkg/errors"
)

// Function modifies a sample block in place.
type Function func(buf []float64)

// Coefficients generates window coefficients for a block of size samples.
type Coefficients func(size int) []float64

// Rectangle is just do nothing
func Rectangle(size int) []float64 {
	coeffs := make([]float64, size)
	for n := range coeffs {
		coeffs[n] = 1.0
	}
	return coeffs
}

// CosSum generates a symmetric two term cosine sum window following a0.
func CosSum(size int, a0 float64) []float64 {
	coeffs := make([]float64, size)
	if size == 1 {
		coeffs[0] = 1.0
		return coeffs
	}

	var a1 = 1.0 - a0
	var coef = 2.0 * math.Pi / float64(size-1)
	for n := range coeffs {
		coeffs[n] = a0 - a1*math.Cos(coef*float64(n))
	}

	return coeffs
}

// Hamming generates Hamming window coefficients (0.54 - 0.46cos).
func Hamming(size int) []float64 {
	return CosSum(size, 0.54)
}

// Hann generates Hann window coefficients
func Hann(size int) []float64 {
	return CosSum(size, 0.5)
}

// Blackman generates Blackman window coefficients
func Blackman(size int) []float64 {
	coeffs := make([]float64, size)
	if size == 1 {
		coeffs[0] = 1.0
		return coeffs
	}

	var coef = 2.0 * math.Pi / float64(size-1)
	for n := range coeffs {
		x := coef * float64(n)
		coeffs[n] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2.0*x)
	}

	return coeffs
}

var byName = map[string]Coefficients{
	"rectangle": Rectangle,
	"hamming":   Hamming,
	"hann":      Hann,
	"blackman":  Blackman,
}

// Names returns the known window names.
func Names() []string {
	return []string{"rectangle", "hamming", "hann", "blackman"}
}

// Lookup finds the coefficient generator for a window name.
func Lookup(name string) (Coefficients, error) {
	gen, ok := byName[strings.ToLower(name)]
	if !ok {
		return nil, errors.Errorf("unknown window %q", name)
	}
	return gen, nil
}

// New precomputes the coefficients for a fixed block size and returns a
// Function applying them. The buffer passed to the Function must have size
// elements.
func New(gen Coefficients, size int) Function {
	coeffs := gen(size)

	return func(buf []float64) {
		vecmath.MulBlockInPlace(buf[:len(coeffs)], coeffs)
	}
}
