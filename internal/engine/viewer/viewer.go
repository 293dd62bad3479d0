// Package viewer renders an isometric tile map with depth-correct layering of
// terrain, objects and the cursor, and answers screen/map coordinate queries.
package viewer

import (
	"cmp"
	"image"
	"slices"

	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"

	"github.com/Faultbox/isomap/internal/engine/input"
	"github.com/Faultbox/isomap/internal/engine/iso"
	"github.com/Faultbox/isomap/internal/engine/surface"
	"github.com/Faultbox/isomap/internal/engine/tilemap"
)

// Cursor is a selection marker painted inline with the map.
type Cursor interface {
	// Draw paints the cursor. It is called while its tile is being painted.
	Draw(dst surface.Surface, v *Viewer)
	// Update reacts to pointer and key events.
	Update(v *Viewer, ev input.Event)
	// Layer is the layer whose depth and offset the cursor shares.
	Layer() *tilemap.Layer
	// Tile is the whole tile the cursor occupies.
	Tile() (x, y int)
}

// Options configure a Viewer.
type Options struct {
	ScrollMargin float64 // pointer distance from the edge that scrolls the view
	ScrollStep   float64 // pixels scrolled per frame
	PhaseModulus int     // animation phase wraps at this value

	Objects bool   // paint object groups
	Cursor  Cursor // optional

	// Hover, when set, is drawn over the tile under the pointer.
	Hover *image.NRGBA

	// PostFX runs after each frame is painted.
	PostFX func(dst surface.Surface)

	Logger *zap.Logger
}

// DefaultOptions returns the stock viewer settings.
func DefaultOptions() Options {
	return Options{
		ScrollMargin: 20,
		ScrollStep:   12,
		PhaseModulus: 600,
		Objects:      true,
	}
}

// Context is the per-frame rendering input.
type Context struct {
	Screen surface.Surface

	// Pointer position in screen pixels. HasPointer is false while the
	// pointer is outside the window, which suppresses edge scrolling.
	PointerX, PointerY float64
	HasPointer         bool
}

// Viewer owns the camera over one map.
type Viewer struct {
	m    *tilemap.Map
	proj iso.Projection
	opts Options
	log  *zap.Logger

	xOff, yOff       float64
	screenW, screenH int

	phase     int
	hovered   tilemap.Point
	pointerX  float64
	pointerY  float64
	hasPoint  bool
	lines     LineCache
	buckets   map[*tilemap.Layer]map[tilemap.Point][]tilemap.Placeable
	unknown   mapset.Set[tilemap.GID]
	lineCount int
}

// New creates a viewer for m on a screen of the given size, centred on the
// middle of the map.
func New(m *tilemap.Map, screenW, screenH int, opts Options) *Viewer {
	if opts.PhaseModulus <= 0 {
		opts.PhaseModulus = 600
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	v := &Viewer{
		m:       m,
		proj:    m.Projection(),
		opts:    opts,
		log:     log,
		screenW: screenW,
		screenH: screenH,
		hovered: tilemap.Point{X: -1, Y: -1},
		buckets: make(map[*tilemap.Layer]map[tilemap.Point][]tilemap.Placeable),
		unknown: mapset.New[tilemap.GID](),
	}
	v.Focus(m.Width/2, m.Height/2)
	return v
}

// Map returns the map being viewed.
func (v *Viewer) Map() *tilemap.Map {
	return v.m
}

// Projection returns the projection in use.
func (v *Viewer) Projection() iso.Projection {
	return v.proj
}

// Cursor returns the configured cursor, or nil.
func (v *Viewer) Cursor() Cursor {
	return v.opts.Cursor
}

// SetCursor replaces the cursor. nil removes it.
func (v *Viewer) SetCursor(c Cursor) {
	v.opts.Cursor = c
}

// Resize records a new screen size. The camera offset is kept unless the
// new screen centre falls off the map, in which case the view refocuses.
func (v *Viewer) Resize(w, h int) {
	if w == v.screenW && h == v.screenH {
		return
	}
	v.screenW, v.screenH = w, h
	v.CheckOrigin()
}

// ScreenSize returns the last known screen size.
func (v *Viewer) ScreenSize() (int, int) {
	return v.screenW, v.screenH
}

// Phase returns the animation phase counter.
func (v *Viewer) Phase() int {
	return v.phase
}

// Lines returns how many scan-lines the last frame enumerated.
func (v *Viewer) Lines() int {
	return v.lineCount
}

// Render paints one frame.
func (v *Viewer) Render(ctx Context) {
	dst := ctx.Screen
	v.Resize(dst.Size())
	v.pointerX, v.pointerY, v.hasPoint = ctx.PointerX, ctx.PointerY, ctx.HasPointer

	dst.Clear()
	if ctx.HasPointer {
		v.scroll(ctx.PointerX, ctx.PointerY)
	}

	x0, y0 := v.scanStart()
	area := v.visibleArea()
	limit := v.maxLines(area)

	v.bucketObjects()
	v.lines.Reset()

	for n := 1; n <= limit; n++ {
		v.scan(x0, y0, n, area)
		if !v.paintLine(dst) {
			break
		}
	}
	v.lineCount = v.lines.Len()

	v.hovered = tilemap.Point{X: v.MapX(v.pointerX, v.pointerY), Y: v.MapY(v.pointerX, v.pointerY)}
	if v.opts.Hover != nil && v.hasPoint && v.m.OnTheMap(v.hovered.X, v.hovered.Y) {
		sx, sy := v.ScreenCoords(float64(v.hovered.X), float64(v.hovered.Y))
		surface.DrawMidBottom(dst, v.opts.Hover, sx, sy)
	}

	v.phase = (v.phase + 1) % v.opts.PhaseModulus

	if v.opts.PostFX != nil {
		v.opts.PostFX(dst)
	}
}

// paintLine paints the newest cached line on the bottom layer and older lines
// on layers lifted above it, so a raised layer lines up with the terrain it
// overlaps on screen. It returns false once the top layer runs out of lines.
func (v *Viewer) paintLine(dst surface.Surface) bool {
	layers := v.m.Layers
	if len(layers) == 0 {
		return false
	}
	last := len(layers) - 1

	current := v.lines.Len() - 1
	currentOffset := layers[0].OffsetY

	for i, layer := range layers {
		if current < 0 {
			break
		}
		tiles, done := v.lines.At(current)
		if done {
			if i == last {
				return false
			}
		} else {
			v.paintTiles(dst, layer, tiles)
		}

		if layer.OffsetY < currentOffset {
			current--
			currentOffset = layer.OffsetY
		}
	}
	return true
}

// paintTiles draws one layer's share of a scan-line: for each tile the
// terrain, then objects standing one tile west, then the cursor.
func (v *Viewer) paintTiles(dst surface.Surface, layer *tilemap.Layer, tiles []tilemap.Point) {
	ox, oy := float64(layer.OffsetX), float64(layer.OffsetY)
	bucket := v.buckets[layer]
	group := v.m.Group(layer)

	var cursor Cursor
	if c := v.opts.Cursor; c != nil && c.Layer() == layer {
		cursor = c
	}

	for _, p := range tiles {
		if layer.Visible {
			g := layer.Get(p.X, p.Y)
			if tile := v.resolve(g); tile != nil {
				sx, sy := v.ScreenCoords(float64(p.X), float64(p.Y))
				tile.DrawOriented(dst, sx+ox, sy+oy, g.Orientation())
			}
		}

		if len(bucket) > 0 {
			if obs := bucket[tilemap.Point{X: p.X - 1, Y: p.Y}]; len(obs) > 0 {
				gx, gy := ox+float64(group.OffsetX), oy+float64(group.OffsetY)
				for _, ob := range obs {
					x, y := ob.Position()
					sx, sy := v.ScreenCoordsOffset(x, y, gx, gy)
					ob.Draw(dst, sx, sy, v.m)
				}
			}
		}

		if cursor != nil {
			if cx, cy := cursor.Tile(); cx == p.X && cy == p.Y {
				cursor.Draw(dst, v)
			}
		}
	}
}

// resolve maps an identifier to a tile. Unknown identifiers draw nothing and
// are logged once each.
func (v *Viewer) resolve(g tilemap.GID) *tilemap.Tile {
	if g.Empty() {
		return nil
	}
	t := v.m.Catalog.Tile(g)
	if key := g & tilemap.IndexMask; t == nil && !v.unknown.Has(key) {
		v.unknown.Put(key)
		v.log.Debug("unknown tile id", zap.Uint32("index", g.Index()))
	}
	return t
}

// bucketObjects groups every visible object by the tile its anchor falls in,
// each bucket sorted back to front.
func (v *Viewer) bucketObjects() {
	for _, b := range v.buckets {
		clear(b)
	}
	if !v.opts.Objects {
		return
	}

	for _, layer := range v.m.Layers {
		group := v.m.Group(layer)
		if group == nil || !group.Visible || group.Len() == 0 {
			continue
		}
		bucket, ok := v.buckets[layer]
		if !ok {
			bucket = make(map[tilemap.Point][]tilemap.Placeable)
			v.buckets[layer] = bucket
		}

		ox := float64(layer.OffsetX + group.OffsetX)
		oy := float64(layer.OffsetY + group.OffsetY)
		for _, ob := range group.Contents() {
			if !ob.IsVisible() {
				continue
			}
			x, y := ob.Position()
			sx, sy := v.ScreenCoordsOffset(x, y, ox, oy)
			key := tilemap.Point{X: v.MapX(sx, sy), Y: v.MapY(sx, sy)}
			bucket[key] = append(bucket[key], ob)
		}

		for _, obs := range bucket {
			if len(obs) > 1 {
				slices.SortStableFunc(obs, v.byDepth)
			}
		}
	}
}

func (v *Viewer) byDepth(a, b tilemap.Placeable) int {
	ax, ay := a.Position()
	bx, by := b.Position()
	return cmp.Compare(v.proj.RelativeY(ax, ay), v.proj.RelativeY(bx, by))
}
