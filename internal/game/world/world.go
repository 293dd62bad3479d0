// Package world ties a loaded map to the entities living on it and answers
// scene queries: what stands on a tile and whether it can be walked on.
package world

import (
	"go.uber.org/zap"

	"github.com/Faultbox/isomap/internal/engine/iso"
	"github.com/Faultbox/isomap/internal/engine/sprite"
	"github.com/Faultbox/isomap/internal/engine/tilemap"
	"github.com/Faultbox/isomap/internal/game/entity"
)

// Layer names with special meaning.
const (
	WallsLayerName  = "walls"
	ActorsGroupName = "actors"
)

// Bumpable things react to an actor walking into their tile.
type Bumpable interface {
	tilemap.Positioned
	Bump(by entity.Actor)
}

// Waypoint things react to an actor arriving on their tile.
type Waypoint interface {
	tilemap.Positioned
	Arrive(by entity.Actor)
}

// Blocker things can stop movement into their tile.
type Blocker interface {
	BlocksWalking() bool
}

// Options configure a World.
type Options struct {
	Arena  *sprite.Arena
	Logger *zap.Logger
}

// World is the scene: map, entities and their sprites.
type World struct {
	Map      *tilemap.Map
	Entities *entity.Manager

	arena  *sprite.Arena
	walls  *tilemap.Layer
	actors *tilemap.ObjectGroup
	log    *zap.Logger
}

// New wraps a loaded map. Entities already placed in the map's object
// groups should be registered with ents. Removing an entity from any group
// evicts its sprite.
func New(m *tilemap.Map, ents *entity.Manager, opts Options) *World {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	arena := opts.Arena
	if arena == nil {
		arena = sprite.NewArena(nil, log)
	}
	if ents == nil {
		ents = entity.NewManager()
	}

	w := &World{
		Map:      m,
		Entities: ents,
		arena:    arena,
		walls:    m.Layer(WallsLayerName),
		log:      log,
	}

	for _, g := range m.Groups() {
		w.watch(g)
	}
	w.actors = m.GroupNamed(ActorsGroupName)
	if w.actors == nil {
		w.actors = w.addActorsGroup()
	}

	log.Debug("world ready",
		zap.Int("entities", ents.Count()),
		zap.Int("groups", len(m.Groups())),
		zap.Bool("walls", w.walls != nil),
	)
	return w
}

// addActorsGroup anchors a new group to the bottom layer that has no group yet,
// appending an invisible reference layer when every layer is taken.
func (w *World) addActorsGroup() *tilemap.ObjectGroup {
	g := tilemap.NewObjectGroup(ActorsGroupName, 0, 0)
	var ref *tilemap.Layer
	for _, l := range w.Map.Layers {
		if w.Map.Group(l) == nil {
			ref = l
			break
		}
	}
	if ref == nil {
		ref = tilemap.EmptyLayer(ActorsGroupName, w.Map.Width, w.Map.Height)
		if last := w.Map.LastLayer(); last != nil {
			ref.OffsetX, ref.OffsetY = last.OffsetX, last.OffsetY
		}
		w.Map.AddLayer(ref)
	}
	w.Map.Attach(ref, g)
	w.watch(g)
	return g
}

func (w *World) watch(g *tilemap.ObjectGroup) {
	g.OnRemove(func(p tilemap.Placeable) {
		if id, ok := p.(tilemap.Identified); ok {
			w.arena.Evict(id.ID())
			w.Entities.Remove(id.ID())
		}
	})
}

// Arena returns the sprite arena.
func (w *World) Arena() *sprite.Arena {
	return w.arena
}

// Actors returns the group new entities are spawned into.
func (w *World) Actors() *tilemap.ObjectGroup {
	return w.actors
}

// Spawn registers a and places it in the actors group.
func (w *World) Spawn(a entity.Actor) {
	a.Base().UseArena(w.arena)
	w.Entities.Add(a)
	w.actors.Add(a)
	w.log.Debug("entity spawned",
		zap.Uint64("id", a.ID()),
		zap.Stringer("kind", a.Base().Kind),
		zap.String("name", a.Base().Name),
	)
}

// Despawn removes the entity from whichever group holds it.
// It reports whether the entity was found.
func (w *World) Despawn(id uint64) bool {
	a, ok := w.Entities.Get(id)
	if !ok {
		return false
	}
	for _, g := range w.Map.Groups() {
		if g.Remove(a) {
			return true
		}
	}
	w.Entities.Remove(id)
	return true
}

// Contents returns every placeable in every group, in layer order.
func (w *World) Contents() []tilemap.Placeable {
	var out []tilemap.Placeable
	for _, g := range w.Map.Groups() {
		out = append(out, g.Contents()...)
	}
	return out
}

// At returns the placeables standing on tile (x, y).
func (w *World) At(x, y int) []tilemap.Placeable {
	var out []tilemap.Placeable
	for _, p := range w.Contents() {
		if onTile(p, x, y) {
			out = append(out, p)
		}
	}
	return out
}

// BumpablesAt returns every bumpable on tile (x, y).
func (w *World) BumpablesAt(x, y int) []Bumpable {
	var out []Bumpable
	for _, p := range w.At(x, y) {
		if b, ok := p.(Bumpable); ok {
			out = append(out, b)
		}
	}
	return out
}

// BumpableAt returns the first bumpable on tile (x, y), or nil.
func (w *World) BumpableAt(x, y int) Bumpable {
	if bs := w.BumpablesAt(x, y); len(bs) > 0 {
		return bs[0]
	}
	return nil
}

// WaypointsAt returns every waypoint on tile (x, y).
func (w *World) WaypointsAt(x, y int) []Waypoint {
	var out []Waypoint
	for _, p := range w.At(x, y) {
		if wp, ok := p.(Waypoint); ok {
			out = append(out, wp)
		}
	}
	return out
}

// WaypointAt returns the first waypoint on tile (x, y), or nil.
func (w *World) WaypointAt(x, y int) Waypoint {
	if wps := w.WaypointsAt(x, y); len(wps) > 0 {
		return wps[0]
	}
	return nil
}

// BlocksWalking reports whether tile (x, y) cannot be entered: off the map,
// a wall tile, or a blocking entity.
func (w *World) BlocksWalking(x, y int) bool {
	if !w.Map.OnTheMap(x, y) {
		return true
	}
	if w.walls != nil && !w.walls.Get(x, y).Empty() {
		return true
	}
	for _, p := range w.At(x, y) {
		if b, ok := p.(Blocker); ok && b.BlocksWalking() {
			return true
		}
	}
	return false
}

// Walkable is the inverse of BlocksWalking.
func (w *World) Walkable(x, y int) bool {
	return !w.BlocksWalking(x, y)
}

// Update advances every entity by dt seconds.
func (w *World) Update(dt float64) {
	w.Entities.Update(dt)
}

func onTile(p tilemap.Positioned, x, y int) bool {
	px, py := p.Position()
	return iso.Tile(px) == x && iso.Tile(py) == y
}
