// Package textview renders the framebuffer as terminal text, packing two
// pixel rows into each character cell with Unicode half blocks.
package textview

import (
	"strings"

	"gochip8/pkg/cpu"
)

const (
	// Home moves the cursor to the top-left corner without clearing.
	Home = "\x1b[H"
	// ClearScreen erases the terminal and homes the cursor.
	ClearScreen = "\x1b[2J\x1b[H"
	// HideCursor and ShowCursor toggle the terminal cursor.
	HideCursor = "\x1b[?25l"
	ShowCursor = "\x1b[?25h"
)

var cells = [4]rune{' ', '▀', '▄', '█'}

// Render returns DisplayHeight/2 lines of DisplayWidth characters, each
// terminated by newline. Raw-mode terminals need "\r\n".
func Render(d *cpu.Display, newline string) string {
	var sb strings.Builder
	sb.Grow((cpu.DisplayWidth*3 + len(newline)) * cpu.DisplayHeight / 2)
	for y := 0; y < cpu.DisplayHeight; y += 2 {
		for x := 0; x < cpu.DisplayWidth; x++ {
			i := 0
			if d.Pixel(x, y) {
				i |= 1
			}
			if d.Pixel(x, y+1) {
				i |= 2
			}
			sb.WriteRune(cells[i])
		}
		sb.WriteString(newline)
	}
	return sb.String()
}
