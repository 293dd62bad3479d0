package entity

import (
	"math"
)

// Direction is one of eight screen-relative facings.
type Direction uint8

// Facings in sprite sheet order.
const (
	DirS  Direction = iota // toward the viewer
	DirSW
	DirW
	DirNW
	DirN // away from the viewer
	DirNE
	DirE
	DirSE
)

// arrivalEpsilon is how close to a destination counts as there.
const arrivalEpsilon = 1e-6

type destination struct {
	x, y float64
}

// Facing returns the direction of a map-space step (dx, dy) as seen on
// screen. A zero step faces south.
func Facing(dx, dy float64) Direction {
	// map axes run diagonally on screen
	sx, sy := dx-dy, dx+dy
	if sx == 0 && sy == 0 {
		return DirS
	}
	// 0 = south, increasing clockwise through west
	angle := math.Atan2(-sx, sy)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	sector := int(math.Round(angle/(math.Pi/4))) % 8
	return Direction(sector)
}

// SetDestination starts walking toward an exact map point.
func (e *Entity) SetDestination(x, y float64) {
	e.dest = &destination{x: x, y: y}
	e.State = StateWalking
	if dx, dy := x-e.X, y-e.Y; dx != 0 || dy != 0 {
		e.Direction = Facing(dx, dy)
	}
}

// HasDestination reports whether the entity is walking somewhere.
func (e *Entity) HasDestination() bool {
	return e.dest != nil
}

// ClearDestination stops walking.
func (e *Entity) ClearDestination() {
	e.dest = nil
	e.State = StateIdle
	e.anim = 0
}

// Update advances movement and the walk cycle by dt seconds.
func (e *Entity) Update(dt float64) {
	if e.dest == nil {
		return
	}
	e.anim += dt

	dx, dy := e.dest.x-e.X, e.dest.y-e.Y
	dist := math.Hypot(dx, dy)
	step := e.Speed * dt
	if dist <= step || dist < arrivalEpsilon {
		e.X, e.Y = e.dest.x, e.dest.y
		e.ClearDestination()
		return
	}
	e.X += dx / dist * step
	e.Y += dy / dist * step
}
