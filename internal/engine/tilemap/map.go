package tilemap

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/Faultbox/isomap/internal/engine/iso"
)

// Map validation errors.
var (
	ErrCellCount      = errors.New("cell count does not match layer size")
	ErrMissingLayer   = errors.New("object group reference layer not in map")
	ErrInvalidTile    = errors.New("tile size must be at least 2x2")
	ErrInvalidMapSize = errors.New("map size must be positive")
	ErrNoLayers       = errors.New("map has no layers")
)

// Point is an integer tile coordinate.
type Point struct {
	X, Y int
}

// Map is a loaded world: layers in paint order, the tile catalog and the
// object groups anchored to layers.
type Map struct {
	Width      int
	Height     int
	TileWidth  int
	TileHeight int

	Layers     []*Layer
	Catalog    *Catalog
	Properties map[string]string

	groups map[*Layer]*ObjectGroup

	fog     bool
	visible mapset.Set[Point]
}

// New creates an empty map.
func New(width, height, tileWidth, tileHeight int) *Map {
	return &Map{
		Width:      width,
		Height:     height,
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		Catalog:    NewCatalog(),
		Properties: make(map[string]string),
		groups:     make(map[*Layer]*ObjectGroup),
		visible:    mapset.New[Point](),
	}
}

// Projection returns the isometric projection for this map's tile size.
func (m *Map) Projection() iso.Projection {
	return iso.New(m.TileWidth, m.TileHeight)
}

// AddLayer appends a layer above the existing ones.
func (m *Map) AddLayer(l *Layer) {
	m.Layers = append(m.Layers, l)
}

// NewLayer creates, appends and returns a layer sized to the map.
func (m *Map) NewLayer(name string) *Layer {
	l := NewLayer(name, m.Width, m.Height)
	m.AddLayer(l)
	return l
}

// LastLayer returns the top layer, or nil.
func (m *Map) LastLayer() *Layer {
	if len(m.Layers) == 0 {
		return nil
	}
	return m.Layers[len(m.Layers)-1]
}

// Layer returns the first layer with the given name.
func (m *Map) Layer(name string) *Layer {
	for _, l := range m.Layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Attach anchors an object group to a layer, replacing any previous group.
func (m *Map) Attach(l *Layer, g *ObjectGroup) {
	g.layer = l
	m.groups[l] = g
}

// Group returns the object group anchored to l, or nil.
func (m *Map) Group(l *Layer) *ObjectGroup {
	return m.groups[l]
}

// Groups returns the object groups in layer paint order.
func (m *Map) Groups() []*ObjectGroup {
	var out []*ObjectGroup
	for _, l := range m.Layers {
		if g, ok := m.groups[l]; ok {
			out = append(out, g)
		}
	}
	return out
}

// GroupNamed returns the first object group with the given name.
func (m *Map) GroupNamed(name string) *ObjectGroup {
	for _, g := range m.Groups() {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// OnTheMap reports whether (x, y) is a tile of this map.
func (m *Map) OnTheMap(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// Clamp returns the nearest on-map tile to (x, y).
func (m *Map) Clamp(x, y int) (int, int) {
	return clamp(x, 0, m.Width-1), clamp(y, 0, m.Height-1)
}

// EnableFog hides every tile until it is revealed. Without fog all on-map
// tiles count as visible.
func (m *Map) EnableFog() {
	m.fog = true
}

// Reveal marks a tile as seen.
func (m *Map) Reveal(x, y int) {
	if m.OnTheMap(x, y) {
		m.visible.Put(Point{x, y})
	}
}

// Hide clears a revealed tile.
func (m *Map) Hide(x, y int) {
	m.visible.Remove(Point{x, y})
}

// IsVisible reports whether the player can see (x, y).
func (m *Map) IsVisible(x, y int) bool {
	if !m.OnTheMap(x, y) {
		return false
	}
	return !m.fog || m.visible.Has(Point{x, y})
}

// Validate checks the structural invariants a viewer relies on.
func (m *Map) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidMapSize, m.Width, m.Height)
	}
	if m.TileWidth < 2 || m.TileHeight < 2 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidTile, m.TileWidth, m.TileHeight)
	}
	if len(m.Layers) == 0 {
		return ErrNoLayers
	}

	present := make(map[*Layer]bool, len(m.Layers))
	for _, l := range m.Layers {
		if l.Len() != l.Width*l.Height || l.Width != m.Width || l.Height != m.Height {
			return fmt.Errorf("layer %q: %w", l.Name, ErrCellCount)
		}
		present[l] = true
	}
	for l, g := range m.groups {
		if !present[l] {
			return fmt.Errorf("object group %q: %w", g.Name, ErrMissingLayer)
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
