// Package report turns pipeline results into status lines and rate limited
// display updates.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/noriah/tremor/detect"
	"github.com/pkg/errors"
)

const (
	MsgReady     = "Ready to detect tremors using accelerometer"
	MsgSustained = "Tremor detected for the majority of the time!"
	MsgNone      = "No significant tremor detected."
)

// Display receives one color per display element.
type Display interface {
	Show([]Color) error
}

// Cadence rate limits an action to once per Interval. The first call to Due
// always fires, so the display shows the first block instead of staying dark
// for the first Interval after startup.
type Cadence struct {
	Interval time.Duration
	last     time.Time
	fired    bool
}

// Due reports whether the interval has passed since the last fire and, if so,
// records now as the last fire.
func (c *Cadence) Due(now time.Time) bool {
	if c.fired && now.Sub(c.last) < c.Interval {
		return false
	}

	c.last = now
	c.fired = true
	return true
}

// Last returns the time of the last fire.
func (c *Cadence) Last() time.Time {
	return c.last
}

type Config struct {
	Output   io.Writer     // status lines
	Display  Display       // color output, may be nil
	Pixels   int           // number of display elements
	Interval time.Duration // minimum time between display updates
	Mapper   Mapper        // energy to color mapping
}

type Reporter struct {
	out     io.Writer
	display Display
	mapper  Mapper
	cadence Cadence
	pixels  []Color
}

func New(cfg Config) (*Reporter, error) {
	if cfg.Output == nil {
		return nil, errors.New("no status output")
	}

	if cfg.Pixels < 1 {
		return nil, errors.Errorf("pixel count must be at least 1, got %d", cfg.Pixels)
	}

	if cfg.Interval < 0 {
		return nil, errors.New("display interval can not be negative")
	}

	return &Reporter{
		out:     cfg.Output,
		display: cfg.Display,
		mapper:  cfg.Mapper,
		cadence: Cadence{Interval: cfg.Interval},
		pixels:  make([]Color, cfg.Pixels),
	}, nil
}

// Ready writes the startup banner.
func (r *Reporter) Ready() error {
	return r.line(MsgReady)
}

// Show pushes a new display color if the cadence allows it. It reports
// whether the display was updated. A failed update still counts as a fire of
// the cadence.
func (r *Reporter) Show(energy float64, now time.Time) (bool, error) {
	if r.display == nil || !r.cadence.Due(now) {
		return false, nil
	}

	color := r.mapper.Color(energy)
	for idx := range r.pixels {
		r.pixels[idx] = color
	}

	if err := r.display.Show(r.pixels); err != nil {
		return false, errors.Wrap(err, "failed to update display")
	}

	return true, nil
}

// Intensity writes the energy status line.
func (r *Reporter) Intensity(energy float64) error {
	return r.line(fmt.Sprintf("Tremor Intensity: %.2f", energy))
}

// Count writes the consecutive in range block count.
func (r *Reporter) Count(count int) error {
	return r.line(fmt.Sprintf("Consecutive Tremor Blocks: %d", count))
}

// Window writes the verdict of a completed reporting window.
func (r *Reporter) Window(rep detect.Report) error {
	if rep.Sustained {
		return r.line(MsgSustained)
	}
	return r.line(MsgNone)
}

// Pixels returns the last colors pushed to the display.
func (r *Reporter) Pixels() []Color {
	return r.pixels
}

func (r *Reporter) line(s string) error {
	_, err := io.WriteString(r.out, s+"\n")
	return err
}

// TextDisplay writes display updates as status lines.
type TextDisplay struct {
	W io.Writer
}

// Show writes the colors, collapsing runs of equal values.
func (d TextDisplay) Show(colors []Color) error {
	var sb strings.Builder
	sb.WriteString("Display:")

	for idx := 0; idx < len(colors); {
		run := 1
		for idx+run < len(colors) && colors[idx+run] == colors[idx] {
			run++
		}

		fmt.Fprintf(&sb, " %s x%d", colors[idx], run)
		idx += run
	}

	sb.WriteByte('\n')

	_, err := io.WriteString(d.W, sb.String())
	return err
}
