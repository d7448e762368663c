package detect

import (
	"time"

	"github.com/pkg/errors"
)

// Phase is the debounce state of an Accumulator.
type Phase int

const (
	Idle Phase = iota
	Accumulating
	Sustained
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	case Sustained:
		return "sustained"
	}
	return "unknown"
}

// State is the detection state carried from one block to the next.
type State struct {
	Count     int       // consecutive in range blocks
	Sustained bool      // threshold reached in the current run
	Start     time.Time // first in range block of the current run
}

// Phase derives the debounce phase from the state.
func (s State) Phase() Phase {
	switch {
	case s.Sustained:
		return Sustained
	case s.Count > 0:
		return Accumulating
	}
	return Idle
}

// Report is produced once per completed reporting window.
type Report struct {
	Sustained bool
	Count     int
	Start     time.Time
	End       time.Time
}

// Duration is the time between the first and the last block of the window.
func (r Report) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// ConsecutiveThreshold derives the block count threshold from a duration
// threshold expressed in collected samples groups of ten.
func ConsecutiveThreshold(durationThreshold int) int {
	return durationThreshold / 10
}

type AccumulatorConfig struct {
	Threshold   int           // consecutive in range blocks for a window
	MinDuration time.Duration // optional wall clock run length, 0 disables
}

// Accumulator counts consecutive in range blocks and raises a sustained
// report once the threshold is reached. Reports are edge triggered: Check
// resets the state after returning one.
type Accumulator struct {
	threshold   int
	minDuration time.Duration
	state       State
}

func NewAccumulator(cfg AccumulatorConfig) (*Accumulator, error) {
	if cfg.Threshold < 1 {
		return nil, errors.Errorf("threshold must be at least 1, got %d", cfg.Threshold)
	}

	if cfg.MinDuration < 0 {
		return nil, errors.New("min duration can not be negative")
	}

	return &Accumulator{
		threshold:   cfg.Threshold,
		minDuration: cfg.MinDuration,
	}, nil
}

// Threshold returns the consecutive block threshold.
func (a *Accumulator) Threshold() int {
	return a.threshold
}

// State returns a copy of the current detection state.
func (a *Accumulator) State() State {
	return a.state
}

// Phase returns the current debounce phase.
func (a *Accumulator) Phase() Phase {
	return a.state.Phase()
}

// Observe feeds one block verdict taken at now.
func (a *Accumulator) Observe(inRange bool, now time.Time) Phase {
	if !inRange {
		a.Reset()
		return Idle
	}

	if a.state.Count == 0 {
		a.state.Start = now
	}

	a.state.Count++

	if a.state.Count >= a.threshold && a.longEnough(now) {
		a.state.Sustained = true
	}

	return a.state.Phase()
}

// Check is run once per block. When the counter has reached the threshold it
// returns the window report and resets to Idle.
func (a *Accumulator) Check(now time.Time) (Report, bool) {
	if a.state.Count < a.threshold {
		return Report{}, false
	}

	report := Report{
		Sustained: a.state.Sustained,
		Count:     a.state.Count,
		Start:     a.state.Start,
		End:       now,
	}

	a.Reset()

	return report, true
}

// Reset drops any run in progress.
func (a *Accumulator) Reset() {
	a.state = State{}
}

func (a *Accumulator) longEnough(now time.Time) bool {
	return a.minDuration == 0 || now.Sub(a.state.Start) >= a.minDuration
}
