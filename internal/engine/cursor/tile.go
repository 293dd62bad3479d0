package cursor

import (
	"github.com/Faultbox/isomap/internal/engine/input"
	"github.com/Faultbox/isomap/internal/engine/sprite"
	"github.com/Faultbox/isomap/internal/engine/surface"
	"github.com/Faultbox/isomap/internal/engine/tilemap"
	"github.com/Faultbox/isomap/internal/engine/viewer"
)

// TileCursor selects one whole tile.
type TileCursor struct {
	X, Y  int
	Frame int

	Visible bool
	// MustBeVisible limits the cursor to tiles revealed on the map's
	// visibility set.
	MustBeVisible bool

	sheet *sprite.Sheet
	layer *tilemap.Layer
	keys  input.Bindings
}

// NewTileCursor creates a visible cursor drawn from sheet on the given layer.
// A nil bindings table uses the defaults.
func NewTileCursor(layer *tilemap.Layer, sheet *sprite.Sheet, keys input.Bindings) *TileCursor {
	if keys == nil {
		keys = input.DefaultBindings()
	}
	return &TileCursor{
		Visible: true,
		sheet:   sheet,
		layer:   layer,
		keys:    keys,
	}
}

// Layer returns the reference layer.
func (c *TileCursor) Layer() *tilemap.Layer {
	return c.layer
}

// Tile returns the selected tile.
func (c *TileCursor) Tile() (int, int) {
	return c.X, c.Y
}

// SetPosition moves the cursor to (x, y) if that tile is on the map and,
// when MustBeVisible is set, visible. It reports whether the cursor moved.
func (c *TileCursor) SetPosition(m *tilemap.Map, x, y int) bool {
	if !m.OnTheMap(x, y) {
		return false
	}
	if c.MustBeVisible && !m.IsVisible(x, y) {
		return false
	}
	c.X, c.Y = x, y
	return true
}

// Update follows the pointer, and steps one tile on a direction key with the
// camera following.
func (c *TileCursor) Update(v *viewer.Viewer, ev input.Event) {
	switch ev.Type {
	case input.EventMouseMove:
		sx, sy := float64(ev.MouseX), float64(ev.MouseY)
		c.SetPosition(v.Map(), v.MapX(sx, sy), v.MapY(sx, sy))
	case input.EventKeyDown:
		dx, dy, ok := Direction(c.keys, ev.Key)
		if !ok {
			return
		}
		c.SetPosition(v.Map(), c.X+dx, c.Y+dy)
		v.Focus(c.X, c.Y)
	}
}

// Draw paints the current frame anchored on the selected tile.
func (c *TileCursor) Draw(dst surface.Surface, v *viewer.Viewer) {
	if !c.Visible || c.sheet == nil || c.sheet.Len() == 0 {
		return
	}
	var ox, oy float64
	if c.layer != nil {
		ox, oy = float64(c.layer.OffsetX), float64(c.layer.OffsetY)
	}
	sx, sy := v.ScreenCoordsOffset(float64(c.X), float64(c.Y), ox, oy)
	c.sheet.Draw(dst, sx, sy, c.Frame)
}
