package graphic

import (
	"github.com/mattn/go-runewidth"
	"github.com/noriah/tremor/report"
	"github.com/nsf/termbox-go"
)

// BarRune is the block used to draw display elements.
const BarRune = '█'

var (
	StyleDefault     = termbox.ColorDefault
	StyleDefaultBack = termbox.ColorDefault
	StyleLabel       = termbox.ColorDefault | termbox.AttrBold
)

// xtermIndex maps a color to the closest entry of the xterm 6x6x6 cube.
func xtermIndex(c report.Color) int {
	level := func(v int) int {
		switch {
		case v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		return (v*5 + 127) / 255
	}

	return 16 + 36*level(c.R) + 6*level(c.G) + level(c.B)
}

// attribute returns the termbox attribute of c in 256 color mode.
func attribute(c report.Color) termbox.Attribute {
	return termbox.Attribute(xtermIndex(c) + 1)
}

// drawPixels draws the elements centered in a two row band under a label and
// returns the next free row.
func drawPixels(pixels []report.Color, width int) int {
	drawText(0, 0, width, "tremor", StyleLabel)

	count := len(pixels)
	total := count*(PixelWidth+PixelSpace) - PixelSpace

	xCol := (width - total) / 2
	if xCol < 0 {
		xCol = 0
	}

	for _, c := range pixels {
		fg := attribute(c)
		for x := xCol; x < xCol+PixelWidth && x < width; x++ {
			termbox.SetCell(x, 2, BarRune, fg, StyleDefaultBack)
			termbox.SetCell(x, 3, BarRune, fg, StyleDefaultBack)
		}
		xCol += PixelWidth + PixelSpace
	}

	return 4
}

// drawLines fills the rows from top to the screen bottom with the most recent
// lines.
func drawLines(lines []string, top, width, height int) {
	rows := height - top
	if rows <= 0 {
		return
	}

	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}

	for idx, line := range lines {
		drawText(0, top+idx, width, line, StyleDefault)
	}
}

// drawText writes s at row y, stopping at width. Wide runes take two cells.
func drawText(x, y, width int, s string, fg termbox.Attribute) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}

		if x+w > width {
			return
		}

		termbox.SetCell(x, y, r, fg, StyleDefaultBack)
		x += w
	}
}
