// Package iso implements the isometric diamond projection used by the map viewer.
//
// Map coordinates are real numbers. The diamond of tile (tx, ty) covers the
// half-open square [tx-1, tx) x [ty-1, ty) in exact map coordinates, and its
// bottom vertex is the tile's mid-bottom anchor returned by ScreenCoords.
package iso

import "math"

// Projection converts between map coordinates and screen pixels for one tile size.
// Tile dimensions should be even; odd sizes are truncated to the lower half.
type Projection struct {
	TileWidth  int
	TileHeight int
}

// New creates a projection for the given tile size.
func New(tileWidth, tileHeight int) Projection {
	return Projection{TileWidth: tileWidth, TileHeight: tileHeight}
}

// HalfWidth returns half the tile width in pixels.
func (p Projection) HalfWidth() float64 {
	return float64(p.TileWidth / 2)
}

// HalfHeight returns half the tile height in pixels.
func (p Projection) HalfHeight() float64 {
	return float64(p.TileHeight / 2)
}

// RelativeX returns the pixel x of map point (x, y), ignoring any camera offset.
func (p Projection) RelativeX(x, y float64) float64 {
	return (x - y) * p.HalfWidth()
}

// RelativeY returns the pixel y of map point (x, y), ignoring any camera offset.
// It doubles as the painter's depth key.
func (p Projection) RelativeY(x, y float64) float64 {
	return (x + y) * p.HalfHeight()
}

// ScreenCoords returns the mid-bottom anchor of tile (x, y) shifted by (offX, offY).
// The anchor sits one tile back along both axes from RelativeX/RelativeY of (x, y).
func (p Projection) ScreenCoords(x, y, offX, offY float64) (float64, float64) {
	return p.RelativeX(x-1, y-1) + offX, p.RelativeY(x-1, y-1) + offY
}

// MapX returns the exact map x under the offset-free pixel (rx, ry).
func (p Projection) MapX(rx, ry float64) float64 {
	hw, hh := p.HalfWidth(), p.HalfHeight()

	// x origin of the column through ry
	ox := -ry*hw/hh - 2*hw
	return (rx - ox) / (2 * hw)
}

// MapY returns the exact map y under the offset-free pixel (rx, ry).
func (p Projection) MapY(rx, ry float64) float64 {
	hw, hh := p.HalfWidth(), p.HalfHeight()

	oy := rx*hh/hw - 2*hh
	return (ry - oy) / (2 * hh)
}

// MapXInt returns the tile column whose diamond contains (rx, ry).
func (p Projection) MapXInt(rx, ry float64) int {
	return Tile(p.MapX(rx, ry))
}

// MapYInt returns the tile row whose diamond contains (rx, ry).
func (p Projection) MapYInt(rx, ry float64) int {
	return Tile(p.MapY(rx, ry))
}

// Tile snaps an exact map coordinate to the tile that contains it.
// Floor rather than truncation, so negative coordinates land on the right tile.
func Tile(c float64) int {
	return int(math.Floor(c)) + 1
}

// TileCenter returns the exact map coordinate of a tile's diamond centre.
func TileCenter(t int) float64 {
	return float64(t) - 0.5
}
