// Package fft provides a forward real-input transform plan around gonum.
package fft

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrSize is returned when a block size can not be planned.
var ErrSize = errors.New("block size must be a power of two (4+)")

// Plan holds a gonum FFT plan bound to an input and output buffer.
type Plan struct {
	input  []float64
	output []complex128
	fft    *fourier.FFT
}

// OutputSize returns the number of complex bins produced for size samples.
func OutputSize(size int) int {
	return size/2 + 1
}

// ValidSize reports whether size is a supported block size.
func ValidSize(size int) bool {
	return size >= 4 && size&(size-1) == 0
}

// NewPlan returns a plan reading from in and writing len(in)/2+1 complex bins
// to out.
func NewPlan(in []float64, out []complex128) (*Plan, error) {
	if !ValidSize(len(in)) {
		return nil, errors.Wrapf(ErrSize, "got %d", len(in))
	}

	if len(out) != OutputSize(len(in)) {
		return nil, errors.Errorf(
			"output size %d does not match input size %d", len(out), len(in))
	}

	return &Plan{
		input:  in,
		output: out,
		fft:    fourier.NewFFT(len(in)),
	}, nil
}

// InitPlan creates a plan into pointer.
func InitPlan(pointer **Plan, input []float64, output []complex128) error {
	plan, err := NewPlan(input, output)
	if err != nil {
		return err
	}

	*pointer = plan
	return nil
}

// Execute runs the plan
func (p *Plan) Execute() {
	p.fft.Coefficients(p.output, p.input)
}

// Len returns the input length of the plan.
func (p *Plan) Len() int {
	return len(p.input)
}
