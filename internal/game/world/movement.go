package world

import (
	"github.com/Faultbox/isomap/internal/engine/iso"
	"github.com/Faultbox/isomap/internal/engine/tilemap"
	"github.com/Faultbox/isomap/internal/game/entity"
)

// MovementController walks one actor along paths through the world. Steps
// into a blocked tile bump whatever stands there; finishing a step on a tile
// triggers its waypoints.
type MovementController struct {
	world *World
	actor entity.Actor

	path      []tilemap.Point
	pathIndex int
	stepping  bool

	// IsFollowingPath is true while steps remain.
	IsFollowingPath bool
}

// NewMovementController creates a controller for actor.
func NewMovementController(w *World, actor entity.Actor) *MovementController {
	return &MovementController{world: w, actor: actor}
}

// SetActor changes the controlled actor and drops the current path.
func (mc *MovementController) SetActor(a entity.Actor) {
	mc.ClearPath()
	mc.actor = a
}

// Actor returns the controlled actor.
func (mc *MovementController) Actor() entity.Actor {
	return mc.actor
}

// MoveTo plans a path to tile (x, y) and starts following it.
// Returns the full path including the start tile, or nil if the tile
// cannot be reached.
func (mc *MovementController) MoveTo(x, y int) []tilemap.Point {
	if mc.actor == nil {
		return nil
	}
	sx, sy := mc.actor.Base().TilePos()
	path := mc.world.PathFinder().FindPath(sx, sy, x, y)
	if len(path) == 0 {
		return nil
	}
	mc.follow(path[1:])
	return path
}

// Step moves one tile by (dx, dy). A blocked destination is bumped instead.
// It reports whether the actor started moving.
func (mc *MovementController) Step(dx, dy int) bool {
	if mc.actor == nil {
		return false
	}
	x, y := mc.actor.Base().TilePos()
	nx, ny := x+dx, y+dy
	if mc.world.BlocksWalking(nx, ny) {
		mc.bump(nx, ny)
		mc.ClearPath()
		return false
	}
	mc.follow([]tilemap.Point{{X: nx, Y: ny}})
	return true
}

func (mc *MovementController) follow(path []tilemap.Point) {
	mc.ClearPath()
	mc.path = path
	mc.IsFollowingPath = len(path) > 0
	mc.next()
}

// Update advances along the path. Call after the world has moved entities.
func (mc *MovementController) Update() {
	if mc.actor == nil || !mc.IsFollowingPath {
		return
	}
	e := mc.actor.Base()
	if e.HasDestination() {
		return
	}

	if mc.stepping {
		mc.stepping = false
		mc.arrive()
	}
	if !mc.next() {
		mc.IsFollowingPath = false
	}
}

// next starts the step to the next tile. It returns false when the path is
// finished or the next tile has become blocked.
func (mc *MovementController) next() bool {
	if mc.pathIndex >= len(mc.path) {
		return false
	}
	p := mc.path[mc.pathIndex]
	if mc.world.BlocksWalking(p.X, p.Y) {
		mc.bump(p.X, p.Y)
		mc.path = mc.path[:mc.pathIndex]
		mc.IsFollowingPath = false
		return false
	}
	mc.actor.Base().SetDestination(iso.TileCenter(p.X), iso.TileCenter(p.Y))
	mc.pathIndex++
	mc.stepping = true
	return true
}

func (mc *MovementController) arrive() {
	x, y := mc.actor.Base().TilePos()
	for _, wp := range mc.world.WaypointsAt(x, y) {
		if tilemap.Positioned(wp) != tilemap.Positioned(mc.actor) {
			wp.Arrive(mc.actor)
		}
	}
}

func (mc *MovementController) bump(x, y int) {
	for _, b := range mc.world.BumpablesAt(x, y) {
		b.Bump(mc.actor)
	}
}

// ClearPath stops following the current path.
func (mc *MovementController) ClearPath() {
	mc.path = nil
	mc.pathIndex = 0
	mc.stepping = false
	mc.IsFollowingPath = false
	if mc.actor != nil {
		mc.actor.Base().ClearDestination()
	}
}

// Path returns the remaining planned tiles, including the one being walked to.
func (mc *MovementController) Path() []tilemap.Point {
	if mc.pathIndex == 0 {
		return mc.path
	}
	return mc.path[mc.pathIndex-1:]
}

// CanWalkTo checks if a tile is walkable.
func (mc *MovementController) CanWalkTo(x, y int) bool {
	return mc.world.Walkable(x, y)
}
