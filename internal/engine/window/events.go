package window

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/isomap/internal/engine/input"
)

var scancodes = map[sdl.Scancode]input.Key{
	sdl.SCANCODE_ESCAPE:   input.KeyEscape,
	sdl.SCANCODE_RETURN:   input.KeyEnter,
	sdl.SCANCODE_SPACE:    input.KeySpace,
	sdl.SCANCODE_TAB:      input.KeyTab,
	sdl.SCANCODE_UP:       input.KeyUp,
	sdl.SCANCODE_DOWN:     input.KeyDown,
	sdl.SCANCODE_LEFT:     input.KeyLeft,
	sdl.SCANCODE_RIGHT:    input.KeyRight,
	sdl.SCANCODE_HOME:     input.KeyHome,
	sdl.SCANCODE_END:      input.KeyEnd,
	sdl.SCANCODE_PAGEUP:   input.KeyPageUp,
	sdl.SCANCODE_PAGEDOWN: input.KeyPageDown,
	sdl.SCANCODE_KP_0:     input.KeyKP0,
	sdl.SCANCODE_0:        input.Key0,
}

func init() {
	// SDL orders F1-F12, KP_1-KP_9, 1-9 and A-Z contiguously
	for i := 0; i < 12; i++ {
		scancodes[sdl.SCANCODE_F1+sdl.Scancode(i)] = input.KeyF1 + input.Key(i)
	}
	for i := 0; i < 9; i++ {
		scancodes[sdl.SCANCODE_KP_1+sdl.Scancode(i)] = input.KeyKP1 + input.Key(i)
		scancodes[sdl.SCANCODE_1+sdl.Scancode(i)] = input.Key1 + input.Key(i)
	}
	for i := 0; i < 26; i++ {
		scancodes[sdl.SCANCODE_A+sdl.Scancode(i)] = input.KeyA + input.Key(i)
	}
}

// TranslateKey maps an SDL scancode to an input key.
func TranslateKey(sc sdl.Scancode) input.Key {
	if k, ok := scancodes[sc]; ok {
		return k
	}
	return input.KeyUnknown
}

// Translate converts one SDL event. ok is false for events the viewer ignores.
func Translate(event sdl.Event) (input.Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return input.Event{Type: input.EventQuit}, true

	case *sdl.KeyboardEvent:
		k := TranslateKey(e.Keysym.Scancode)
		if k == input.KeyUnknown {
			return input.Event{}, false
		}
		if e.Type == sdl.KEYDOWN {
			return input.KeyPress(k), true
		}
		return input.Event{Type: input.EventKeyUp, Key: k}, true

	case *sdl.MouseMotionEvent:
		return input.MouseMove(int(e.X), int(e.Y)), true

	case *sdl.MouseButtonEvent:
		typ := input.EventMouseUp
		if e.Type == sdl.MOUSEBUTTONDOWN {
			typ = input.EventMouseDown
		}
		return input.Event{Type: typ, MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return input.Event{
				Type:   input.EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			}, true
		}
	}
	return input.Event{}, false
}

// PollEvents drains the SDL queue into q, which is reset first.
// It returns true when a quit event was seen.
func (w *Window) PollEvents(q *input.Queue) bool {
	q.Reset()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if ev, ok := Translate(event); ok {
			q.Push(ev)
		}
	}
	return q.Quit()
}
