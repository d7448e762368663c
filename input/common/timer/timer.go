// Package timer paces sensor reads so that a block of readings is collected
// at a consistent sample rate, independent of how the reads are processed.
package timer

import (
	"context"
	"time"

	"github.com/noriah/tremor/input"
)

// Sampler collects blocks of acceleration magnitudes from a session.
type Sampler struct {
	period time.Duration
	ticker *time.Ticker
}

// Period returns the time between two reads for sampleRate.
func Period(sampleRate float64) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / sampleRate)
}

// NewSampler returns a sampler ticking every period. A zero period reads as
// fast as the session allows, which suits recorded or synthetic data.
func NewSampler(period time.Duration) *Sampler {
	s := &Sampler{period: period}

	if period > 0 {
		s.ticker = time.NewTicker(period)
	}

	return s
}

// Period returns the configured read period.
func (s *Sampler) Period() time.Duration {
	return s.period
}

// Collect fills dst with one magnitude per tick. It returns early with the
// context error on cancellation or with the session error on a failed read.
func (s *Sampler) Collect(ctx context.Context, sess input.Session, dst []float64) error {
	for idx := range dst {
		if s.ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		v, err := sess.Read()
		if err != nil {
			return err
		}

		dst[idx] = v.Magnitude()
	}

	return nil
}

// Stop releases the ticker.
func (s *Sampler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
}
