package cpu

import (
	"strings"

	"gochip8/pkg/grid"
)

const (
	// DisplayWidth is the framebuffer width in pixels.
	DisplayWidth = 64
	// DisplayHeight is the framebuffer height in pixels.
	DisplayHeight = 32
	// SpriteWidth is the fixed width of every sprite row.
	SpriteWidth = 8
)

// Display is the monochrome framebuffer, stored row-major. A true cell is lit.
type Display [DisplayWidth * DisplayHeight]bool

// Pixel reports whether the cell at (x, y) is lit. Coordinates wrap.
func (d *Display) Pixel(x, y int) bool {
	x, y = grid.Wrap(x, y, DisplayWidth, DisplayHeight)
	return d[grid.Index(x, y, DisplayWidth)]
}

// Clear turns every cell dark.
func (d *Display) Clear() {
	*d = Display{}
}

// Lit returns the number of lit cells.
func (d *Display) Lit() int {
	n := 0
	for _, on := range d {
		if on {
			n++
		}
	}
	return n
}

// DrawSprite XORs the sprite rows onto the framebuffer with the top-left
// corner at (x, y). Each row is one byte, most significant bit leftmost.
// Target cells wrap toroidally on both axes. It reports whether any set
// sprite bit landed on a cell that was already lit.
func (d *Display) DrawSprite(x, y uint8, sprite []byte) bool {
	collision := false
	for row, bits := range sprite {
		for col := 0; col < SpriteWidth; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px, py := grid.Wrap(int(x)+col, int(y)+row, DisplayWidth, DisplayHeight)
			i := grid.Index(px, py, DisplayWidth)
			if d[i] {
				collision = true
			}
			d[i] = !d[i]
		}
	}
	return collision
}

// String renders the framebuffer one text line per row using '#' for lit
// cells and '.' for dark ones.
func (d *Display) String() string {
	var sb strings.Builder
	sb.Grow((DisplayWidth + 1) * DisplayHeight)
	for i, on := range d {
		if on {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('.')
		}
		if x, _ := grid.Coords(i, DisplayWidth); x == DisplayWidth-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
