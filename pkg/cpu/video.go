package cpu

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

var (
	// White is the reference colour of a lit cell.
	White = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	// Black is the reference colour of a dark cell.
	Black = color.RGBA{A: 0xFF}
)

// RGBA converts the framebuffer into a DisplayWidth×DisplayHeight RGBA8888
// byte slice in row-major order, writing each channel explicitly.
func (d *Display) RGBA(on, off color.RGBA) []byte {
	pixels := make([]byte, len(d)*4)
	for i, lit := range d {
		c := off
		if lit {
			c = on
		}
		pixels[i*4+0] = c.R
		pixels[i*4+1] = c.G
		pixels[i*4+2] = c.B
		pixels[i*4+3] = c.A
	}
	return pixels
}

// Image returns the framebuffer as an *image.RGBA.
func (d *Display) Image(on, off color.RGBA) *image.RGBA {
	return &image.RGBA{
		Pix:    d.RGBA(on, off),
		Stride: DisplayWidth * 4,
		Rect:   image.Rect(0, 0, DisplayWidth, DisplayHeight),
	}
}

// ScaledImage returns the framebuffer enlarged by an integer factor using
// nearest-neighbour sampling so cells stay sharp.
func (d *Display) ScaledImage(on, off color.RGBA, scale int) *image.RGBA {
	src := d.Image(on, off)
	if scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, DisplayWidth*scale, DisplayHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SaveScreenshot encodes the framebuffer as a PNG scaled by scale and writes
// it to filename.
func (d *Display) SaveScreenshot(filename string, on, off color.RGBA, scale int) error {
	img := d.ScaledImage(on, off, scale)
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating screenshot %q: %w", filename, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding screenshot: %w", err)
	}
	return f.Close()
}
