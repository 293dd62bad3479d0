package viewer

import (
	"github.com/Faultbox/isomap/internal/engine/input"
	"github.com/Faultbox/isomap/internal/engine/iso"
)

// RelativeX returns the camera-free pixel x of map point (x, y).
func (v *Viewer) RelativeX(x, y float64) float64 {
	return v.proj.RelativeX(x, y)
}

// RelativeY returns the camera-free pixel y of map point (x, y).
func (v *Viewer) RelativeY(x, y float64) float64 {
	return v.proj.RelativeY(x, y)
}

// ScreenCoords returns the screen anchor of tile (x, y).
func (v *Viewer) ScreenCoords(x, y float64) (float64, float64) {
	return v.proj.ScreenCoords(x, y, v.xOff, v.yOff)
}

// ScreenCoordsOffset returns the screen anchor of (x, y) shifted by an extra
// layer or group offset.
func (v *Viewer) ScreenCoordsOffset(x, y, extraX, extraY float64) (float64, float64) {
	return v.proj.ScreenCoords(x, y, v.xOff+extraX, v.yOff+extraY)
}

// MapX returns the tile column under screen point (sx, sy).
func (v *Viewer) MapX(sx, sy float64) int {
	return v.proj.MapXInt(sx-v.xOff, sy-v.yOff)
}

// MapY returns the tile row under screen point (sx, sy).
func (v *Viewer) MapY(sx, sy float64) int {
	return v.proj.MapYInt(sx-v.xOff, sy-v.yOff)
}

// MapXExact returns the exact map x under screen point (sx, sy).
func (v *Viewer) MapXExact(sx, sy float64) float64 {
	return v.proj.MapX(sx-v.xOff, sy-v.yOff)
}

// MapYExact returns the exact map y under screen point (sx, sy).
func (v *Viewer) MapYExact(sx, sy float64) float64 {
	return v.proj.MapY(sx-v.xOff, sy-v.yOff)
}

// TilePosition returns the fractional tile position under (sx, sy): tile t
// spans [t, t+1) on each axis.
func (v *Viewer) TilePosition(sx, sy float64) (float64, float64) {
	return v.MapXExact(sx, sy) + 1, v.MapYExact(sx, sy) + 1
}

// MouseTile returns the cursor's tile if there is a cursor, otherwise the
// tile under the pointer during the last frame.
func (v *Viewer) MouseTile() (int, int) {
	if v.opts.Cursor != nil {
		return v.opts.Cursor.Tile()
	}
	return v.hovered.X, v.hovered.Y
}

// Offset returns the camera offset: where map origin projects on screen.
func (v *Viewer) Offset() (float64, float64) {
	return v.xOff, v.yOff
}

// SetOffset moves the camera without bounds checks.
func (v *Viewer) SetOffset(x, y float64) {
	v.xOff, v.yOff = x, y
}

// Center returns the tile under the middle of the screen.
func (v *Viewer) Center() (int, int) {
	cx, cy := v.screenCenter()
	return v.MapX(cx, cy), v.MapY(cx, cy)
}

func (v *Viewer) screenCenter() (float64, float64) {
	return float64(v.screenW / 2), float64(v.screenH / 2)
}

// Focus centres the screen on tile (x, y), clamped to the nearest on-map tile.
func (v *Viewer) Focus(x, y int) {
	x, y = v.m.Clamp(x, y)
	v.FocusExact(iso.TileCenter(x), iso.TileCenter(y))
}

// FocusExact centres the screen on an exact map point. The point is clamped to
// the centres of the edge tiles so the view centre never leaves the map.
func (v *Viewer) FocusExact(x, y float64) {
	x = clampf(x, iso.TileCenter(0), iso.TileCenter(v.m.Width-1))
	y = clampf(y, iso.TileCenter(0), iso.TileCenter(v.m.Height-1))

	cx, cy := v.screenCenter()
	v.xOff = cx - v.proj.RelativeX(x-1, y-1)
	v.yOff = cy - v.proj.RelativeY(x-1, y-1)
}

// CheckOrigin refocuses on the nearest edge tile when the centre of the
// screen has drifted off the map.
func (v *Viewer) CheckOrigin() {
	x, y := v.Center()
	if !v.m.OnTheMap(x, y) {
		v.Focus(x, y)
	}
}

// scroll nudges the camera when the pointer is near a screen edge. A nudge
// that would move the screen centre off the map is dropped.
func (v *Viewer) scroll(px, py float64) {
	margin, step := v.opts.ScrollMargin, v.opts.ScrollStep
	if margin <= 0 || step == 0 {
		return
	}
	w, h := float64(v.screenW), float64(v.screenH)

	nx, ny := v.xOff, v.yOff
	switch {
	case px < margin:
		nx += step
	case px > w-margin:
		nx -= step
	}
	switch {
	case py < margin:
		ny += step
	case py > h-margin:
		ny -= step
	}
	if nx == v.xOff && ny == v.yOff {
		return
	}

	cx, cy := v.screenCenter()
	mx := v.proj.MapXInt(cx-nx, cy-ny)
	my := v.proj.MapYInt(cx-nx, cy-ny)
	if v.m.OnTheMap(mx, my) {
		v.xOff, v.yOff = nx, ny
	}
}

// HandleEvent records pointer motion and forwards the event to the cursor.
func (v *Viewer) HandleEvent(ev input.Event) {
	if ev.Type == input.EventMouseMove {
		v.pointerX, v.pointerY = float64(ev.MouseX), float64(ev.MouseY)
		v.hasPoint = true
	}
	if v.opts.Cursor != nil {
		v.opts.Cursor.Update(v, ev)
	}
}

// Pointer returns the last known pointer position.
func (v *Viewer) Pointer() (float64, float64) {
	return v.pointerX, v.pointerY
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
