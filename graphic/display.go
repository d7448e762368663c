// Package graphic draws the display elements and the status lines in the
// terminal.
package graphic

import (
	"context"
	"strings"
	"sync"

	"github.com/noriah/tremor/report"
	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
)

const (
	// PixelWidth is the number of cells a display element takes.
	PixelWidth = 4

	// PixelSpace is the number of cells between two elements.
	PixelSpace = 1

	// MaxLines is how many status lines are kept for the status pane.
	MaxLines = 256
)

// Display draws colored display elements on a termbox screen and keeps a
// pane of recent status lines below them. It implements report.Display and
// io.Writer.
type Display struct {
	mu sync.Mutex

	pixels  []report.Color
	lines   []string
	partial strings.Builder

	active  bool
	restore func()
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewDisplay() *Display {
	return &Display{}
}

// Init sets up the terminal.
func (d *Display) Init() error {
	restore, err := normalizeTerminal()
	if err != nil {
		return errors.Wrap(err, "failed to normalize terminal")
	}

	if err = termbox.Init(); err != nil {
		restore()
		return errors.Wrap(err, "failed to init termbox")
	}

	termbox.SetOutputMode(termbox.Output256)
	termbox.HideCursor()

	d.mu.Lock()
	d.active = true
	d.restore = restore
	d.mu.Unlock()

	return d.redraw()
}

// Start polls terminal events until q, Esc or Ctrl-C is pressed, cancelling
// the returned context.
func (d *Display) Start(ctx context.Context) context.Context {
	ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})

	go func() {
		defer close(d.done)

		for {
			switch ev := termbox.PollEvent(); ev.Type {
			case termbox.EventKey:
				if ev.Key == termbox.KeyCtrlC || ev.Key == termbox.KeyEsc ||
					ev.Ch == 'q' || ev.Ch == 'Q' {
					d.cancel()
					return
				}

			case termbox.EventResize:
				d.redraw()

			case termbox.EventInterrupt, termbox.EventError:
				return
			}
		}
	}()

	return ctx
}

// Stop ends event polling.
func (d *Display) Stop() {
	if d.done == nil {
		return
	}

	termbox.Interrupt()
	<-d.done
	d.cancel()
}

// Close will stop display and clean up the terminal
func (d *Display) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}

	d.active = false
	termbox.Close()
	d.restore()

	return nil
}

// Show sets the display elements.
func (d *Display) Show(colors []report.Color) error {
	d.mu.Lock()
	d.pixels = append(d.pixels[:0], colors...)
	d.mu.Unlock()

	return d.redraw()
}

// Write appends status text. Complete lines are added to the status pane.
func (d *Display) Write(p []byte) (int, error) {
	d.mu.Lock()

	for _, b := range p {
		if b != '\n' {
			d.partial.WriteByte(b)
			continue
		}

		d.lines = append(d.lines, d.partial.String())
		d.partial.Reset()
	}

	if over := len(d.lines) - MaxLines; over > 0 {
		d.lines = append(d.lines[:0], d.lines[over:]...)
	}

	d.mu.Unlock()

	return len(p), d.redraw()
}

// Lines returns a copy of the status pane.
func (d *Display) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]string(nil), d.lines...)
}

func (d *Display) redraw() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}

	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return err
	}

	width, height := termbox.Size()
	row := drawPixels(d.pixels, width)
	drawLines(d.lines, row+1, width, height)

	return termbox.Flush()
}
