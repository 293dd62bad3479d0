// Package entity implements the things that live on a map: the player,
// props that react to being bumped and portals that react to being entered.
package entity

import (
	"image/color"
	"sort"

	"github.com/Faultbox/isomap/internal/engine/iso"
	"github.com/Faultbox/isomap/internal/engine/sprite"
	"github.com/Faultbox/isomap/internal/engine/surface"
	"github.com/Faultbox/isomap/internal/engine/tilemap"
)

// Kind represents the type of entity.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindNPC
	KindProp
	KindPortal
)

var kindNames = map[Kind]string{
	KindPlayer: "player",
	KindNPC:    "npc",
	KindProp:   "prop",
	KindPortal: "portal",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// State represents what an entity is doing.
type State uint8

const (
	StateIdle State = iota
	StateWalking
)

// Actor is any entity kind. Every actor is backed by an *Entity.
type Actor interface {
	tilemap.Placeable
	tilemap.Identified
	Base() *Entity
}

// Entity is a positioned, drawable thing with a stable id.
// Positions are exact map coordinates: the entity stands on tile
// (iso.Tile(X), iso.Tile(Y)).
type Entity struct {
	id      uint64
	Kind    Kind
	Name    string
	X, Y    float64
	Visible bool

	Direction Direction
	State     State
	Speed     float64 // tiles per second

	// Appearance: a sprite built through the arena, or a catalog tile.
	Sprite sprite.BuildFunc
	Tile   tilemap.GID

	arena *sprite.Arena
	dest  *destination
	anim  float64
}

var _ Actor = (*Entity)(nil)

// New creates a visible, idle entity.
func New(id uint64, kind Kind, name string, x, y float64) *Entity {
	return &Entity{
		id:        id,
		Kind:      kind,
		Name:      name,
		X:         x,
		Y:         y,
		Visible:   true,
		Direction: DirS,
		Speed:     4,
	}
}

// ID returns the stable entity id.
func (e *Entity) ID() uint64 { return e.id }

// Base returns e.
func (e *Entity) Base() *Entity { return e }

// Position returns the map position.
func (e *Entity) Position() (float64, float64) { return e.X, e.Y }

// IsVisible reports whether the entity is drawn.
func (e *Entity) IsVisible() bool { return e.Visible }

// TilePos returns the tile the entity stands on.
func (e *Entity) TilePos() (int, int) {
	return iso.Tile(e.X), iso.Tile(e.Y)
}

// PlaceOn moves the entity to the centre of tile (x, y) and stops it.
func (e *Entity) PlaceOn(x, y int) {
	e.X, e.Y = iso.TileCenter(x), iso.TileCenter(y)
	e.ClearDestination()
}

// UseArena makes Draw fetch the sprite through a.
func (e *Entity) UseArena(a *sprite.Arena) {
	e.arena = a
}

// Frame returns the sprite frame for the current direction and walk cycle.
// Sheets with 16 frames hold two walk frames per direction, sheets with 8
// one frame per direction; anything else is a single image.
func (e *Entity) Frame(frames int) int {
	switch {
	case frames >= 16:
		step := 0
		if e.State == StateWalking {
			step = int(e.anim*4) % 2
		}
		return int(e.Direction)*2 + step
	case frames >= 8:
		return int(e.Direction)
	default:
		return 0
	}
}

// Draw paints the entity with its feet on (sx, sy).
func (e *Entity) Draw(dst surface.Surface, sx, sy float64, m *tilemap.Map) {
	if e.Sprite != nil && e.arena != nil {
		sheet, err := e.arena.Get(e.id, e.Sprite)
		if err == nil {
			sheet.Draw(dst, sx, sy, e.Frame(sheet.Len()))
			return
		}
	}
	if e.Tile.Empty() || m == nil || m.Catalog == nil {
		return
	}
	if t := m.Catalog.Tile(e.Tile); t != nil {
		t.DrawOriented(dst, sx, sy, e.Tile.Orientation())
	}
}

// MarkerSprite returns a build function for the procedural stand-in figure.
func MarkerSprite(width, height int, c color.NRGBA) sprite.BuildFunc {
	return func() (*sprite.Sheet, error) {
		return sprite.FromFrames(sprite.Marker(width, height, c)), nil
	}
}

// Prop is an entity that reacts when something walks into it.
type Prop struct {
	*Entity
	Solid  bool
	OnBump func(p *Prop, by Actor)

	bumps int
}

// NewProp creates a solid prop.
func NewProp(id uint64, name string, x, y float64) *Prop {
	return &Prop{Entity: New(id, KindProp, name, x, y), Solid: true}
}

// Bump is called when an actor tries to step onto the prop's tile.
func (p *Prop) Bump(by Actor) {
	p.bumps++
	if p.OnBump != nil {
		p.OnBump(p, by)
	}
}

// Bumps returns how many times the prop was bumped.
func (p *Prop) Bumps() int { return p.bumps }

// BlocksWalking reports whether the prop's tile can be entered.
func (p *Prop) BlocksWalking() bool { return p.Solid }

// Portal is an entity that reacts when an actor arrives on its tile.
type Portal struct {
	*Entity
	Target   string        // destination map, empty for the current one
	Dest     tilemap.Point // destination tile
	OnArrive func(p *Portal, by Actor)
}

// NewPortal creates an invisible portal.
func NewPortal(id uint64, name string, x, y float64) *Portal {
	e := New(id, KindPortal, name, x, y)
	e.Visible = false
	return &Portal{Entity: e, Dest: tilemap.Point{X: -1, Y: -1}}
}

// Arrive is called when an actor finishes a step on the portal's tile.
func (p *Portal) Arrive(by Actor) {
	if p.OnArrive != nil {
		p.OnArrive(p, by)
	}
}

// Manager manages all entities in the game.
type Manager struct {
	entities map[uint64]Actor
	player   *Entity
	nextID   uint64
}

// NewManager creates a new entity manager.
func NewManager() *Manager {
	return &Manager{
		entities: make(map[uint64]Actor),
		nextID:   1,
	}
}

// NextID reserves an unused id.
func (m *Manager) NextID() uint64 {
	for {
		id := m.nextID
		m.nextID++
		if _, taken := m.entities[id]; !taken {
			return id
		}
	}
}

// Add adds an entity, replacing any with the same id.
func (m *Manager) Add(a Actor) {
	m.entities[a.ID()] = a
	if a.ID() >= m.nextID {
		m.nextID = a.ID() + 1
	}
}

// Remove removes an entity.
func (m *Manager) Remove(id uint64) {
	if m.player != nil && m.player.ID() == id {
		m.player = nil
	}
	delete(m.entities, id)
}

// Get returns an entity by ID.
func (m *Manager) Get(id uint64) (Actor, bool) {
	a, ok := m.entities[id]
	return a, ok
}

// SetPlayer sets the local player entity.
func (m *Manager) SetPlayer(e *Entity) {
	m.player = e
	m.Add(e)
}

// Player returns the local player, or nil.
func (m *Manager) Player() *Entity {
	return m.player
}

// Update advances every entity by dt seconds.
func (m *Manager) Update(dt float64) {
	for _, a := range m.entities {
		a.Base().Update(dt)
	}
}

// All returns all entities ordered by id.
func (m *Manager) All() []Actor {
	out := make([]Actor, 0, len(m.entities))
	for _, a := range m.entities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// ByKind returns the entities of one kind ordered by id.
func (m *Manager) ByKind(k Kind) []Actor {
	var out []Actor
	for _, a := range m.All() {
		if a.Base().Kind == k {
			out = append(out, a)
		}
	}
	return out
}

// Count returns the total number of entities.
func (m *Manager) Count() int {
	return len(m.entities)
}

// Clear removes all entities except the player.
func (m *Manager) Clear() {
	for id := range m.entities {
		if m.player == nil || id != m.player.ID() {
			delete(m.entities, id)
		}
	}
}
