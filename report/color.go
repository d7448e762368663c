package report

import (
	"fmt"
	"math"
)

// Color is one display element value. Channels are ints so an unclamped
// mapping can carry values outside [0, 255].
type Color struct {
	R, G, B int
}

func (c Color) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// Mapper linearly maps band energy from [0, InMax] to [0, OutMax].
type Mapper struct {
	InMax  float64 // energy mapped to OutMax
	OutMax int     // largest channel value
	Clamp  bool    // clamp the result to [0, OutMax]
}

// DefaultMapper maps [0, 1000] to [0, 255] with clamping.
func DefaultMapper() Mapper {
	return Mapper{
		InMax:  1000,
		OutMax: 255,
		Clamp:  true,
	}
}

// Map truncates energy to an integer and scales it with integer arithmetic.
// NaN maps to 0.
func (m Mapper) Map(energy float64) int {
	if math.IsNaN(energy) {
		return 0
	}

	// keep the integer math inside int64
	energy = math.Max(math.MinInt32, math.Min(math.MaxInt32, energy))

	inMax := int64(m.InMax)
	if inMax == 0 {
		inMax = 1
	}

	value := int(int64(energy) * int64(m.OutMax) / inMax)

	if m.Clamp {
		switch {
		case value < 0:
			value = 0
		case value > m.OutMax:
			value = m.OutMax
		}
	}

	return value
}

// Color returns the green to red color for energy: (v, OutMax - v, 0).
func (m Mapper) Color(energy float64) Color {
	v := m.Map(energy)
	return Color{R: v, G: m.OutMax - v, B: 0}
}
