// Package detect decides whether band energy looks like tremor and debounces
// that decision across consecutive blocks.
package detect

import "github.com/pkg/errors"

// Range is an inclusive band energy window.
type Range struct {
	Low  float64
	High float64
}

// Validate checks the bounds are ordered.
func (r Range) Validate() error {
	if r.Low > r.High {
		return errors.Errorf("range low %g above high %g", r.Low, r.High)
	}
	return nil
}

// Contains reports whether low <= energy <= high. NaN is never contained.
func (r Range) Contains(energy float64) bool {
	return energy >= r.Low && energy <= r.High
}

// Classify tests energy against r and feeds the verdict to acc. An out of
// range energy resets any run in progress.
func (r Range) Classify(energy float64, acc *Accumulator) bool {
	in := r.Contains(energy)
	if !in && acc != nil {
		acc.Reset()
	}
	return in
}
