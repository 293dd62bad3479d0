// Package surfacetest provides a recording surface for viewer tests.
package surfacetest

import (
	"image"

	"github.com/Faultbox/isomap/internal/engine/surface"
)

// Draw is one recorded DrawImage call.
type Draw struct {
	Image *image.NRGBA
	X, Y  float64
}

// Recorder implements surface.Surface and remembers every draw since the last Clear.
type Recorder struct {
	Width, Height int
	Draws         []Draw
	Clears        int
	Released      []*image.NRGBA
}

var (
	_ surface.Surface  = (*Recorder)(nil)
	_ surface.Releaser = (*Recorder)(nil)
)

// New creates a recorder reporting the given size.
func New(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height}
}

// Size returns the configured size.
func (r *Recorder) Size() (int, int) {
	return r.Width, r.Height
}

// Clear drops recorded draws.
func (r *Recorder) Clear() {
	r.Draws = r.Draws[:0]
	r.Clears++
}

// DrawImage records the call.
func (r *Recorder) DrawImage(img *image.NRGBA, x, y float64) {
	r.Draws = append(r.Draws, Draw{Image: img, X: x, Y: y})
}

// Release records a released image.
func (r *Recorder) Release(img *image.NRGBA) {
	r.Released = append(r.Released, img)
}

// Index returns the position of the first draw of img, or -1.
func (r *Recorder) Index(img *image.NRGBA) int {
	for i, d := range r.Draws {
		if d.Image == img {
			return i
		}
	}
	return -1
}

// Count returns how many times img was drawn.
func (r *Recorder) Count(img *image.NRGBA) int {
	n := 0
	for _, d := range r.Draws {
		if d.Image == img {
			n++
		}
	}
	return n
}

// Find returns the first draw of img.
func (r *Recorder) Find(img *image.NRGBA) (Draw, bool) {
	if i := r.Index(img); i >= 0 {
		return r.Draws[i], true
	}
	return Draw{}, false
}
