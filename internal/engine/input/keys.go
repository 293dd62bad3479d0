package input

import (
	"strconv"
	"strings"
)

// Key is a backend-neutral key code.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeySpace
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyKP0
	KeyKP1
	KeyKP2
	KeyKP3
	KeyKP4
	KeyKP5
	KeyKP6
	KeyKP7
	KeyKP8
	KeyKP9
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
)

var keyNames = map[Key]string{
	KeyEscape:   "escape",
	KeyEnter:    "enter",
	KeySpace:    "space",
	KeyTab:      "tab",
	KeyUp:       "up",
	KeyDown:     "down",
	KeyLeft:     "left",
	KeyRight:    "right",
	KeyHome:     "home",
	KeyEnd:      "end",
	KeyPageUp:   "pageup",
	KeyPageDown: "pagedown",
}

var keysByName map[string]Key

func init() {
	for i := 0; i < 12; i++ {
		keyNames[KeyF1+Key(i)] = "f" + strconv.Itoa(i+1)
	}
	for i := 0; i < 10; i++ {
		keyNames[KeyKP0+Key(i)] = "kp" + strconv.Itoa(i)
		keyNames[Key0+Key(i)] = strconv.Itoa(i)
	}
	for i := 0; i < 26; i++ {
		keyNames[KeyA+Key(i)] = string(rune('a' + i))
	}

	keysByName = make(map[string]Key, len(keyNames))
	for k, name := range keyNames {
		keysByName[name] = k
	}
}

// String returns the configuration name of the key.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKey looks up a key by its configuration name, ignoring case.
func ParseKey(name string) (Key, bool) {
	k, ok := keysByName[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}
