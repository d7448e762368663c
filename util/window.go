// Package util holds small helpers shared by the pipeline.
package util

import "math"

// MovingWindow keeps running mean and standard deviation over the last
// capacity values.
type MovingWindow struct {
	values []float64
	head   int
	length int

	sum      float64
	variance float64 // running sum of squares

	average float64
	stddev  float64
}

// NewMovingWindow returns a new moving window.
func NewMovingWindow(size int) *MovingWindow {
	if size < 1 {
		size = 1
	}

	return &MovingWindow{
		values: make([]float64, size),
	}
}

func (mw *MovingWindow) calcFinal() (float64, float64) {
	if mw.length > 0 {
		mw.average = mw.sum / float64(mw.length)
	} else {
		mw.average = 0
	}

	if mw.length > 1 {
		n := float64(mw.length)
		mw.stddev = (mw.variance - n*mw.average*mw.average) / (n - 1)
		mw.stddev = math.Sqrt(math.Abs(mw.stddev))
	} else {
		mw.stddev = 0
	}

	return mw.average, mw.stddev
}

// Update pushes value, dropping the oldest value if the window is full.
func (mw *MovingWindow) Update(value float64) (float64, float64) {
	if mw.length < len(mw.values) {
		mw.length++
	} else {
		old := mw.values[mw.head]
		mw.sum -= old
		mw.variance -= old * old
	}

	mw.values[mw.head] = value
	mw.head = (mw.head + 1) % len(mw.values)

	mw.sum += value
	mw.variance += value * value

	return mw.calcFinal()
}

// Reset empties the window
func (mw *MovingWindow) Reset() {
	mw.head = 0
	mw.length = 0
	mw.sum = 0
	mw.variance = 0
	mw.calcFinal()
}

// Len returns how many items in the window
func (mw *MovingWindow) Len() int {
	return mw.length
}

// Cap returns max size of window
func (mw *MovingWindow) Cap() int {
	return len(mw.values)
}

// Mean is the moving window average
func (mw *MovingWindow) Mean() float64 {
	return mw.average
}

// StdDev is the moving window sample standard deviation
func (mw *MovingWindow) StdDev() float64 {
	return mw.stddev
}

// Stats returns the statistics of this window
func (mw *MovingWindow) Stats() (float64, float64) {
	return mw.average, mw.stddev
}
