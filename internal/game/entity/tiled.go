package entity

import (
	"fmt"
	"strconv"

	"github.com/Faultbox/isomap/internal/engine/iso"
	"github.com/Faultbox/isomap/internal/engine/sprite"
	"github.com/Faultbox/isomap/internal/engine/tilemap"
	"github.com/Faultbox/isomap/pkg/formats"
)

// Object types recognised in map files.
const (
	TypeProp   = "prop"
	TypePortal = "portal"
	TypeNPC    = "npc"
	TypeStart  = "start"
)

// Factory turns map objects into entities registered with a manager.
type Factory struct {
	Entities *Manager
	Arena    *sprite.Arena

	// Start is the tile of the last "start" object seen, or (-1, -1).
	Start tilemap.Point
}

// NewFactory creates a factory adding to m.
func NewFactory(m *Manager, arena *sprite.Arena) *Factory {
	return &Factory{Entities: m, Arena: arena, Start: tilemap.Point{X: -1, Y: -1}}
}

// Object builds the placeable for one map object. Objects of unknown type
// that carry a tile stay plain tile objects; others are dropped.
func (f *Factory) Object(ob formats.TiledObject, x, y float64) (tilemap.Placeable, error) {
	var a Actor
	switch ob.Type {
	case TypeProp:
		p := NewProp(f.id(ob.ID), ob.Name, x, y)
		solid, err := boolProperty(ob, "solid", true)
		if err != nil {
			return nil, err
		}
		p.Solid = solid
		a = p

	case TypePortal:
		p := NewPortal(f.id(ob.ID), ob.Name, x, y)
		p.Target, _ = formats.Property(ob.Properties, "target")
		dx, err := intProperty(ob, "dest_x", -1)
		if err != nil {
			return nil, err
		}
		dy, err := intProperty(ob, "dest_y", -1)
		if err != nil {
			return nil, err
		}
		p.Dest = tilemap.Point{X: dx, Y: dy}
		a = p

	case TypeNPC:
		a = New(f.id(ob.ID), KindNPC, ob.Name, x, y)

	case TypeStart:
		f.Start = tilemap.Point{X: iso.Tile(x), Y: iso.Tile(y)}
		return nil, nil

	default:
		if ob.GID == 0 {
			return nil, nil
		}
		return &tilemap.TileObject{
			Name:    ob.Name,
			Type:    ob.Type,
			X:       x,
			Y:       y,
			GID:     tilemap.GID(ob.GID),
			Visible: ob.Visible,
		}, nil
	}

	e := a.Base()
	e.Tile = tilemap.GID(ob.GID)
	if e.Kind != KindPortal {
		e.Visible = ob.Visible
	}
	e.UseArena(f.Arena)
	f.Entities.Add(a)
	return a, nil
}

// id keeps the map's object id when it is free.
func (f *Factory) id(want int) uint64 {
	if want > 0 {
		if _, taken := f.Entities.Get(uint64(want)); !taken {
			return uint64(want)
		}
	}
	return f.Entities.NextID()
}

func boolProperty(ob formats.TiledObject, name string, def bool) (bool, error) {
	s, ok := formats.Property(ob.Properties, name)
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("object %d property %s: %w", ob.ID, name, err)
	}
	return v, nil
}

func intProperty(ob formats.TiledObject, name string, def int) (int, error) {
	s, ok := formats.Property(ob.Properties, name)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("object %d property %s: %w", ob.ID, name, err)
	}
	return v, nil
}
