// Package input defines backend-neutral input events, key names and action
// bindings. The window package translates SDL events into these types.
package input

// EventType identifies an input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8
}

// KeyPress creates a key down event.
func KeyPress(k Key) Event {
	return Event{Type: EventKeyDown, Key: k}
}

// MouseMove creates a pointer motion event.
func MouseMove(x, y int) Event {
	return Event{Type: EventMouseMove, MouseX: x, MouseY: y}
}

// Queue collects the events of one frame.
type Queue struct {
	events []Event
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{events: make([]Event, 0, 16)}
}

// Reset drops all queued events.
func (q *Queue) Reset() {
	q.events = q.events[:0]
}

// Push appends an event.
func (q *Queue) Push(e Event) {
	q.events = append(q.events, e)
}

// Events returns the queued events.
func (q *Queue) Events() []Event {
	return q.events
}

// Quit reports whether a quit event is queued.
func (q *Queue) Quit() bool {
	for _, e := range q.events {
		if e.Type == EventQuit {
			return true
		}
	}
	return false
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (q *Queue) IsKeyPressed(k Key) bool {
	for _, e := range q.events {
		if e.Type == EventKeyDown && e.Key == k {
			return true
		}
	}
	return false
}
