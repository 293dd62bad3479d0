// Package cursor provides the map selection markers driven by pointer and
// keyboard input: a whole-tile cursor and a quarter-tile cursor.
package cursor

import (
	"github.com/Faultbox/isomap/internal/engine/input"
	"github.com/Faultbox/isomap/internal/engine/viewer"
)

// step is a move along one of the eight isometric directions.
type step struct {
	dx, dy int
}

// directions lists the eight movement actions in screen order, starting
// straight up and turning clockwise.
var directions = []input.Action{
	input.ActionCursorUp,
	input.ActionCursorUpRight,
	input.ActionCursorRight,
	input.ActionCursorDownRight,
	input.ActionCursorDown,
	input.ActionCursorDownLeft,
	input.ActionCursorLeft,
	input.ActionCursorUpLeft,
}

// On screen "up" is north-west along both map axes.
var actionSteps = map[input.Action]step{
	input.ActionCursorUp:        {-1, -1},
	input.ActionCursorUpRight:   {0, -1},
	input.ActionCursorRight:     {1, -1},
	input.ActionCursorDownRight: {1, 0},
	input.ActionCursorDown:      {1, 1},
	input.ActionCursorDownLeft:  {0, 1},
	input.ActionCursorLeft:      {-1, 1},
	input.ActionCursorUpLeft:    {-1, 0},
}

// keypadSteps is the numeric keypad layout used by the quarter cursor.
var keypadSteps = map[input.Key]step{
	input.KeyKP8: {-1, -1},
	input.KeyKP9: {0, -1},
	input.KeyKP6: {1, -1},
	input.KeyKP3: {1, 0},
	input.KeyKP2: {1, 1},
	input.KeyKP1: {0, 1},
	input.KeyKP4: {-1, 1},
	input.KeyKP7: {-1, 0},
}

// Direction returns the map step bound to key k, if any.
func Direction(b input.Bindings, k input.Key) (dx, dy int, ok bool) {
	a, ok := b.Match(k, directions...)
	if !ok {
		return 0, 0, false
	}
	s := actionSteps[a]
	return s.dx, s.dy, true
}

var (
	_ viewer.Cursor = (*TileCursor)(nil)
	_ viewer.Cursor = (*QuarterCursor)(nil)
)
