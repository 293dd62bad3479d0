package input

import (
	"fmt"
	"sort"
)

// Action is a named command that keys can be bound to.
type Action string

// Actions understood by the viewer and cursors.
const (
	ActionCursorUp        Action = "cursor_up"
	ActionCursorUpRight   Action = "cursor_upright"
	ActionCursorRight     Action = "cursor_right"
	ActionCursorDownRight Action = "cursor_downright"
	ActionCursorDown      Action = "cursor_down"
	ActionCursorDownLeft  Action = "cursor_downleft"
	ActionCursorLeft      Action = "cursor_left"
	ActionCursorUpLeft    Action = "cursor_upleft"

	ActionQuit        Action = "quit"
	ActionPrintCoords Action = "print_coords"
	ActionScreenshot  Action = "screenshot"
	ActionCenter      Action = "center"
)

// Bindings maps actions to the keys that trigger them.
type Bindings map[Action][]Key

// DefaultBindings returns the stock key layout.
func DefaultBindings() Bindings {
	return Bindings{
		ActionCursorUp:        {KeyUp, KeyW},
		ActionCursorUpRight:   {KeyPageUp, KeyE},
		ActionCursorRight:     {KeyRight, KeyD},
		ActionCursorDownRight: {KeyPageDown, KeyC},
		ActionCursorDown:      {KeyDown, KeyX},
		ActionCursorDownLeft:  {KeyEnd, KeyZ},
		ActionCursorLeft:      {KeyLeft, KeyA},
		ActionCursorUpLeft:    {KeyHome, KeyQ},
		ActionQuit:            {KeyEscape},
		ActionPrintCoords:     {KeyM},
		ActionScreenshot:      {KeyF12},
		ActionCenter:          {KeySpace},
	}
}

// ParseBindings converts a name table (as found in config files) into
// bindings layered over the defaults. Unknown key names are an error.
func ParseBindings(names map[string][]string) (Bindings, error) {
	b := DefaultBindings()

	// sorted for deterministic error reporting
	actions := make([]string, 0, len(names))
	for a := range names {
		actions = append(actions, a)
	}
	sort.Strings(actions)

	for _, a := range actions {
		keys := make([]Key, 0, len(names[a]))
		for _, name := range names[a] {
			k, ok := ParseKey(name)
			if !ok {
				return nil, fmt.Errorf("action %s: unknown key %q", a, name)
			}
			keys = append(keys, k)
		}
		b[Action(a)] = keys
	}
	return b, nil
}

// Keys returns the keys bound to an action.
func (b Bindings) Keys(a Action) []Key {
	return b[a]
}

// Is reports whether k triggers a.
func (b Bindings) Is(a Action, k Key) bool {
	for _, bound := range b[a] {
		if bound == k {
			return true
		}
	}
	return false
}

// Match returns the first of the given actions that k triggers.
func (b Bindings) Match(k Key, actions ...Action) (Action, bool) {
	for _, a := range actions {
		if b.Is(a, k) {
			return a, true
		}
	}
	return "", false
}

// Names converts bindings back to their config form.
func (b Bindings) Names() map[string][]string {
	out := make(map[string][]string, len(b))
	for a, keys := range b {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		out[string(a)] = names
	}
	return out
}
