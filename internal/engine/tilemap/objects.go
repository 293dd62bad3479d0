package tilemap

import (
	"slices"

	"github.com/Faultbox/isomap/internal/engine/surface"
)

// Positioned is anything with a fractional map position.
type Positioned interface {
	Position() (x, y float64)
}

// Placeable is an object that can live in an object group and be painted by
// the viewer. Draw receives the projected mid-bottom anchor.
type Placeable interface {
	Positioned
	IsVisible() bool
	Draw(dst surface.Surface, sx, sy float64, m *Map)
}

// Identified objects have a stable id used to key per-entity caches.
type Identified interface {
	ID() uint64
}

// ObjectGroup is an ordered list of placeables drawn relative to one layer.
type ObjectGroup struct {
	Name    string
	Visible bool
	OffsetX int
	OffsetY int

	layer    *Layer
	contents []Placeable
	onRemove []func(Placeable)
}

// NewObjectGroup creates an empty, visible group.
func NewObjectGroup(name string, offsetX, offsetY int) *ObjectGroup {
	return &ObjectGroup{
		Name:    name,
		Visible: true,
		OffsetX: offsetX,
		OffsetY: offsetY,
	}
}

// Layer returns the reference layer, or nil before the group is attached.
func (g *ObjectGroup) Layer() *Layer {
	return g.layer
}

// Add appends placeables.
func (g *ObjectGroup) Add(obs ...Placeable) {
	g.contents = append(g.contents, obs...)
}

// Remove deletes ob and runs the removal hooks. It reports whether ob was present.
func (g *ObjectGroup) Remove(ob Placeable) bool {
	i := slices.Index(g.contents, ob)
	if i < 0 {
		return false
	}
	g.contents = slices.Delete(g.contents, i, i+1)
	for _, fn := range g.onRemove {
		fn(ob)
	}
	return true
}

// OnRemove registers a hook run after a placeable leaves the group.
func (g *ObjectGroup) OnRemove(fn func(Placeable)) {
	g.onRemove = append(g.onRemove, fn)
}

// Contents returns the placeables in insertion order.
// The slice must not be modified by the caller.
func (g *ObjectGroup) Contents() []Placeable {
	return g.contents
}

// Len returns the number of placeables.
func (g *ObjectGroup) Len() int {
	return len(g.contents)
}

// TileObject is a placeable drawn straight from the tile catalog, the form
// objects take when loaded from a map file.
type TileObject struct {
	Name    string
	Type    string
	X, Y    float64
	GID     GID
	Visible bool
}

var _ Placeable = (*TileObject)(nil)

// Position returns the map position.
func (o *TileObject) Position() (float64, float64) {
	return o.X, o.Y
}

// IsVisible reports whether the object is drawn.
func (o *TileObject) IsVisible() bool {
	return o.Visible
}

// Draw resolves the object's tile through the map catalog.
func (o *TileObject) Draw(dst surface.Surface, sx, sy float64, m *Map) {
	if m == nil || m.Catalog == nil {
		return
	}
	if t := m.Catalog.Tile(o.GID); t != nil {
		t.DrawOriented(dst, sx, sy, o.GID.Orientation())
	}
}
