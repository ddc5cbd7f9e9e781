// Package grid converts between row-major indices and x/y coordinates on
// fixed-width grids such as the framebuffer.
package grid

// Coords returns the column and row of a row-major index.
func Coords(index, cols int) (x, y int) {
	x = index % cols
	y = index / cols
	return x, y
}

// Index returns the row-major index of (x, y).
func Index(x, y, cols int) int {
	return y*cols + x
}

// Wrap folds (x, y) onto a w×h torus. Negative values wrap from the far edge.
func Wrap(x, y, w, h int) (int, int) {
	x %= w
	if x < 0 {
		x += w
	}
	y %= h
	if y < 0 {
		y += h
	}
	return x, y
}
