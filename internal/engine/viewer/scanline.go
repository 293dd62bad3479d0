package viewer

import "github.com/Faultbox/isomap/internal/engine/tilemap"

// Rect is a pixel rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the x of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Inflate grows the rectangle by (dw, dh) keeping its centre.
func (r Rect) Inflate(dw, dh float64) Rect {
	return Rect{X: r.X - dw/2, Y: r.Y - dh/2, W: r.W + dw, H: r.H + dh}
}

// scanLine is one diagonal run of tiles. done marks the first line whose
// start has dropped below the visible area.
type scanLine struct {
	tiles []tilemap.Point
	done  bool
}

// LineCache keeps the lines enumerated during one frame so every layer
// replays the same enumeration. Storage is reused between frames.
type LineCache struct {
	lines []scanLine
	n     int
}

// Reset empties the cache without freeing its storage.
func (c *LineCache) Reset() {
	c.n = 0
}

// Len returns the number of cached lines.
func (c *LineCache) Len() int {
	return c.n
}

// At returns line i and whether it marks the end of the scan.
func (c *LineCache) At(i int) ([]tilemap.Point, bool) {
	l := &c.lines[i]
	return l.tiles, l.done
}

func (c *LineCache) next() *scanLine {
	if c.n == len(c.lines) {
		c.lines = append(c.lines, scanLine{})
	}
	l := &c.lines[c.n]
	l.tiles = l.tiles[:0]
	l.done = false
	c.n++
	return l
}

// Line enumerates scan-line n starting from tile (x0, y0) into buf.
//
// Line n holds the tiles (x0 + n/2 + k, y0 + (n+1)/2 - k) for k = 0, 1, ...
// while their anchor stays left of area's right edge. A coordinate is kept
// when it is on the map or its west neighbour is, so objects standing in the
// map's last column still get a slot to be painted from. The second result is
// false once the line's start lies below area.
func (v *Viewer) Line(buf []tilemap.Point, x0, y0, n int, area Rect) ([]tilemap.Point, bool) {
	x := x0 + n/2
	y := y0 + (n+1)/2

	if v.proj.RelativeY(float64(x), float64(y))+v.yOff > area.Bottom() {
		return buf, false
	}

	for v.proj.RelativeX(float64(x-1), float64(y-1))+v.xOff < area.Right() {
		if v.m.OnTheMap(x, y) || v.m.OnTheMap(x-1, y) {
			buf = append(buf, tilemap.Point{X: x, Y: y})
		}
		x++
		y--
	}
	return buf, true
}

// scan appends the next line of the frame to the cache.
func (v *Viewer) scan(x0, y0, n int, area Rect) {
	l := v.lines.next()
	var ok bool
	l.tiles, ok = v.Line(l.tiles, x0, y0, n, area)
	l.done = !ok
}

// visibleArea is the region of screen that needs tiles: the screen grown by
// a tile each way, plus room at the bottom for the top layer's lift. With
// objects on the map it reaches one more tile right, since an object is
// painted from the tile east of its own.
func (v *Viewer) visibleArea() Rect {
	tw, th := float64(v.m.TileWidth), float64(v.m.TileHeight)
	area := Rect{W: float64(v.screenW), H: float64(v.screenH)}.Inflate(tw, th)
	if top := v.m.LastLayer(); top != nil {
		area.H += th - float64(top.OffsetY)
	}
	if v.opts.Objects && len(v.m.Groups()) > 0 {
		area.W += tw
	}
	return area
}

// scanStart returns the tile that the first scan-line grows from: a little
// above and left of the tile under the screen's top-left corner.
func (v *Viewer) scanStart() (int, int) {
	return v.MapX(0, 0) - 2, v.MapY(0, 0) - 1
}

// maxLines bounds the scan so a frame always terminates.
func (v *Viewer) maxLines(area Rect) int {
	hh := v.proj.HalfHeight()
	return int(area.H/hh) + 2*len(v.m.Layers) + 8
}
