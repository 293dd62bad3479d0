package tilemap

import (
	"image"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/Faultbox/isomap/internal/engine/surface"
)

// Tile is one drawable catalog entry. Flipped variants are built from the
// base image on first use and cached for the life of the tile.
type Tile struct {
	ID   int
	base *image.NRGBA

	mu       sync.Mutex
	variants [orientCount]*image.NRGBA
}

var _ surface.Drawable = (*Tile)(nil)

// NewTile creates a tile from its unflipped image.
func NewTile(id int, img *image.NRGBA) *Tile {
	t := &Tile{ID: id, base: img}
	t.variants[0] = img
	return t
}

// Image returns the unflipped image.
func (t *Tile) Image() *image.NRGBA {
	return t.base
}

// Variant returns the image for an orientation, building it if needed.
// The diagonal flip is applied first, then the horizontal and vertical ones.
func (t *Tile) Variant(o Orientation) *image.NRGBA {
	o &= orientCount - 1

	t.mu.Lock()
	defer t.mu.Unlock()

	if v := t.variants[o]; v != nil {
		return v
	}

	img := t.base
	if o&OrientFlipD != 0 {
		img = imaging.Transpose(img)
	}
	if o&OrientFlipH != 0 {
		img = imaging.FlipH(img)
	}
	if o&OrientFlipV != 0 {
		img = imaging.FlipV(img)
	}
	t.variants[o] = img
	return img
}

// Prepare builds the listed variants ahead of time.
func (t *Tile) Prepare(orients ...Orientation) {
	for _, o := range orients {
		t.Variant(o)
	}
}

// Draw blits the tile with its bottom-centre at (x, y).
func (t *Tile) Draw(dst surface.Surface, x, y float64, hflip, vflip bool) {
	t.DrawOriented(dst, x, y, MakeOrientation(hflip, vflip, false))
}

// DrawOriented blits the given orientation variant with its bottom-centre at (x, y).
func (t *Tile) DrawOriented(dst surface.Surface, x, y float64, o Orientation) {
	surface.DrawMidBottom(dst, t.Variant(o), x, y)
}
