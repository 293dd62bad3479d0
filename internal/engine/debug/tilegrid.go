package debug

import (
	"fmt"
	"image"
	"strings"

	"github.com/Faultbox/isomap/internal/engine/iso"
	"github.com/Faultbox/isomap/internal/engine/surface"
	"github.com/Faultbox/isomap/internal/engine/tilemap"
	"github.com/Faultbox/isomap/internal/engine/viewer"
)

// LayerCell is one layer's identifier at a tile.
type LayerCell struct {
	Layer string
	GID   tilemap.GID
}

// TileInfo describes everything at one tile.
type TileInfo struct {
	X, Y    int
	OnMap   bool
	Visible bool
	Cells   []LayerCell // non-empty cells, bottom layer first
	Objects []string    // placeables standing on the tile
}

// GetTileInfo collects the layers and objects at tile (x, y).
func GetTileInfo(m *tilemap.Map, x, y int) TileInfo {
	info := TileInfo{
		X:       x,
		Y:       y,
		OnMap:   m.OnTheMap(x, y),
		Visible: m.IsVisible(x, y),
	}
	if !info.OnMap {
		return info
	}

	for _, l := range m.Layers {
		if g := l.Get(x, y); !g.Empty() {
			info.Cells = append(info.Cells, LayerCell{Layer: l.Name, GID: g})
		}
	}
	for _, g := range m.Groups() {
		for _, p := range g.Contents() {
			px, py := p.Position()
			if iso.Tile(px) == x && iso.Tile(py) == y {
				info.Objects = append(info.Objects, describe(p))
			}
		}
	}
	return info
}

func describe(p tilemap.Placeable) string {
	switch o := p.(type) {
	case *tilemap.TileObject:
		if o.Name != "" {
			return o.Name
		}
		return fmt.Sprintf("tile %d", o.GID.Index())
	case interface{ ID() uint64 }:
		return fmt.Sprintf("%T#%d", p, o.ID())
	}
	return fmt.Sprintf("%T", p)
}

func (i TileInfo) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%d,%d)", i.X, i.Y)
	if !i.OnMap {
		b.WriteString(" off map")
		return b.String()
	}
	if !i.Visible {
		b.WriteString(" hidden")
	}
	for _, c := range i.Cells {
		fmt.Fprintf(&b, " %s=%d", c.Layer, c.GID.Index())
		if c.GID.HFlip() {
			b.WriteString("h")
		}
		if c.GID.VFlip() {
			b.WriteString("v")
		}
	}
	if len(i.Objects) > 0 {
		fmt.Fprintf(&b, " objects=[%s]", strings.Join(i.Objects, ", "))
	}
	return b.String()
}

// DrawPath paints marker over every tile of path, on layer's offsets.
func DrawPath(dst surface.Surface, v *viewer.Viewer, layer *tilemap.Layer, marker *image.NRGBA, path []tilemap.Point) {
	var ox, oy float64
	if layer != nil {
		ox, oy = float64(layer.OffsetX), float64(layer.OffsetY)
	}
	for _, p := range path {
		sx, sy := v.ScreenCoordsOffset(float64(p.X), float64(p.Y), ox, oy)
		surface.DrawMidBottom(dst, marker, sx, sy)
	}
}
