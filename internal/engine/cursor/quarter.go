package cursor

import (
	"image"
	"math"

	"github.com/Faultbox/isomap/internal/engine/input"
	"github.com/Faultbox/isomap/internal/engine/surface"
	"github.com/Faultbox/isomap/internal/engine/tilemap"
	"github.com/Faultbox/isomap/internal/engine/viewer"
)

// QuarterCursor selects a quarter of a tile. Its position is kept as doubled
// tile coordinates, so each step is half a tile along one axis.
type QuarterCursor struct {
	Visible bool

	dx, dy int
	img    *image.NRGBA
	layer  *tilemap.Layer
}

// NewQuarterCursor creates a visible quarter cursor at tile position (x, y).
func NewQuarterCursor(layer *tilemap.Layer, img *image.NRGBA, x, y float64) *QuarterCursor {
	c := &QuarterCursor{Visible: true, img: img, layer: layer}
	c.SetPosition(x, y)
	return c
}

// SetPosition places the cursor on the quarter cell containing tile position
// (x, y), where tile t spans [t, t+1).
func (c *QuarterCursor) SetPosition(x, y float64) {
	c.dx = int(math.Floor(x * 2))
	c.dy = int(math.Floor(y * 2))
}

// Doubled returns the raw doubled coordinates.
func (c *QuarterCursor) Doubled() (int, int) {
	return c.dx, c.dy
}

// X returns the whole tile column.
func (c *QuarterCursor) X() int {
	return floorDiv2(c.dx)
}

// Y returns the whole tile row.
func (c *QuarterCursor) Y() int {
	return floorDiv2(c.dy)
}

// Tile returns the whole tile the cursor is in.
func (c *QuarterCursor) Tile() (int, int) {
	return c.X(), c.Y()
}

// Layer returns the reference layer.
func (c *QuarterCursor) Layer() *tilemap.Layer {
	return c.layer
}

// Focus centres the view on the cursor's quarter cell.
func (c *QuarterCursor) Focus(v *viewer.Viewer) {
	v.FocusExact(float64(c.dx)/2-0.75, float64(c.dy)/2-0.75)
}

// Update follows the pointer at quarter-tile resolution and steps half a tile
// on the numeric keypad.
func (c *QuarterCursor) Update(v *viewer.Viewer, ev input.Event) {
	switch ev.Type {
	case input.EventMouseMove:
		x, y := v.TilePosition(float64(ev.MouseX), float64(ev.MouseY))
		c.SetPosition(x, y)
	case input.EventKeyDown:
		s, ok := keypadSteps[ev.Key]
		if !ok {
			return
		}
		c.dx += s.dx
		c.dy += s.dy
		c.Focus(v)
	}
}

// Draw paints the marker on the bottom vertex of the quarter cell, lifted
// two pixels.
func (c *QuarterCursor) Draw(dst surface.Surface, v *viewer.Viewer) {
	if !c.Visible || c.img == nil {
		return
	}
	var ox, oy float64
	if c.layer != nil {
		ox, oy = float64(c.layer.OffsetX), float64(c.layer.OffsetY)
	}
	sx, sy := v.ScreenCoordsOffset(float64(c.dx-1)/2, float64(c.dy-1)/2, ox, oy)
	surface.DrawMidBottom(dst, c.img, sx, sy-2)
}

// floorDiv2 halves n rounding toward negative infinity.
func floorDiv2(n int) int {
	return n >> 1
}
