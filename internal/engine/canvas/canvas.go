// Package canvas provides a software RGBA surface for headless rendering.
package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/Faultbox/isomap/internal/engine/surface"
)

// Canvas is an in-memory surface backed by an NRGBA image.
type Canvas struct {
	img        *image.NRGBA
	background color.NRGBA
	draws      int
}

var _ surface.Surface = (*Canvas)(nil)

// New creates a canvas of the given size filled with black.
func New(width, height int) *Canvas {
	c := &Canvas{
		img:        image.NewNRGBA(image.Rect(0, 0, width, height)),
		background: color.NRGBA{A: 255},
	}
	c.Clear()
	return c
}

// SetBackground changes the colour used by Clear.
func (c *Canvas) SetBackground(bg color.NRGBA) {
	c.background = bg
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear fills the canvas with the background colour.
func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(c.background), image.Point{}, draw.Src)
	c.draws = 0
}

// DrawImage alpha-blends img with its top-left corner at (x, y).
// Fractional positions round to the nearest pixel.
func (c *Canvas) DrawImage(img *image.NRGBA, x, y float64) {
	if img == nil {
		return
	}
	src := img.Bounds()
	at := image.Pt(int(math.Round(x)), int(math.Round(y)))
	dst := image.Rectangle{Min: at, Max: at.Add(src.Size())}
	if !dst.Overlaps(c.img.Bounds()) {
		return
	}
	draw.Draw(c.img, dst, img, src.Min, draw.Over)
	c.draws++
}

// Draws returns the number of images blitted since the last Clear.
func (c *Canvas) Draws() int {
	return c.draws
}

// Image returns the backing image. It is overwritten by later frames.
func (c *Canvas) Image() *image.NRGBA {
	return c.img
}

// Scaled returns a copy of the canvas magnified by an integer factor
// with nearest-neighbour sampling, keeping pixel art crisp.
func (c *Canvas) Scaled(factor int) *image.NRGBA {
	if factor <= 1 {
		out := image.NewNRGBA(c.img.Bounds())
		copy(out.Pix, c.img.Pix)
		return out
	}
	w, h := c.Size()
	out := image.NewNRGBA(image.Rect(0, 0, w*factor, h*factor))
	draw.NearestNeighbor.Scale(out, out.Bounds(), c.img, c.img.Bounds(), draw.Src, nil)
	return out
}
