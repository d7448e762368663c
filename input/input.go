// Package input provides 3-axis acceleration sources.
package input

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
)

// ErrEndOfStream is returned by a Session whose source has no more readings.
var ErrEndOfStream = io.EOF

// Vector is one 3-axis acceleration reading.
type Vector struct {
	X, Y, Z float64
}

// Magnitude returns the Euclidean norm of the reading.
func (v Vector) Magnitude() float64 {
	return floats.Norm([]float64{v.X, v.Y, v.Z}, 2)
}

func (v Vector) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Device is a named source within a backend.
type Device interface {
	fmt.Stringer
}

// SessionConfig is the configuration a backend session is started with.
type SessionConfig struct {
	Device     Device  // device to read from
	SampleRate float64 // readings per second
	SampleSize int     // readings per block
}

// Session yields one reading per Read call.
type Session interface {
	// Read returns the current acceleration. It returns ErrEndOfStream once a
	// finite source is exhausted.
	Read() (Vector, error)
	Close() error
}
