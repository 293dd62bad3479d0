// Package surface defines the draw target shared by the map viewer and its backends.
package surface

import "image"

// Surface is anything the viewer can paint into.
// Positions are the top-left corner of the image in screen pixels.
type Surface interface {
	Size() (width, height int)
	Clear()
	DrawImage(img *image.NRGBA, x, y float64)
}

// Releaser is implemented by surfaces that keep per-image GPU resources.
type Releaser interface {
	Release(img *image.NRGBA)
}

// Drawable blits itself anchored at (x, y), where x is the horizontal centre
// and y the bottom edge of the image.
type Drawable interface {
	Draw(dst Surface, x, y float64, hflip, vflip bool)
}

// DrawMidBottom draws img so that its bottom-centre lands on (x, y).
func DrawMidBottom(dst Surface, img *image.NRGBA, x, y float64) {
	if img == nil {
		return
	}
	b := img.Bounds()
	dst.DrawImage(img, x-float64(b.Dx()/2), y-float64(b.Dy()))
}
