package core

import "github.com/go-gl/mathgl/mgl32"

// EventType identifies a normalized input or window event.
type EventType uint8

const (
	EventNone EventType = iota
	// Keyboard key pressed.
	EventKeyDown
	// Keyboard key released.
	EventKeyUp
	// Mouse button pressed. Position is in world coordinates.
	EventMouseDown
	// Mouse button released. Position is in world coordinates.
	EventMouseUp
	// Mouse moved. Position is in world coordinates.
	EventMouseMove
	// Mouse wheel scrolled. Position holds the scroll offsets.
	EventMouseScroll
	// Framebuffer resized. Size holds the new width and height in pixels.
	EventResize
	// The window asked to close.
	EventQuit
)

func (t EventType) String() string {
	switch t {
	case EventKeyDown:
		return "key_down"
	case EventKeyUp:
		return "key_up"
	case EventMouseDown:
		return "mouse_down"
	case EventMouseUp:
		return "mouse_up"
	case EventMouseMove:
		return "mouse_move"
	case EventMouseScroll:
		return "mouse_scroll"
	case EventResize:
		return "resize"
	case EventQuit:
		return "quit"
	}
	return "none"
}

// Event is the record delivered to the engine's event handler. The platform
// layer fills it from native window callbacks; the renderer never reads it.
type Event struct {
	Type      EventType
	Key       KeyCode
	Button    Button
	Position  mgl32.Vec2
	Size      [2]int
	Modifiers Modifiers
}

// EventHandler consumes events. It returns true when the event was handled so
// later handlers are skipped.
type EventHandler func(event Event) bool

// EventDispatcher fans events out to handlers in registration order.
type EventDispatcher struct {
	handlers map[EventType][]EventHandler
}

func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		handlers: make(map[EventType][]EventHandler),
	}
}

// Register adds a handler for the given event type.
func (d *EventDispatcher) Register(t EventType, handler EventHandler) {
	if handler == nil {
		return
	}
	d.handlers[t] = append(d.handlers[t], handler)
}

// Unregister drops every handler for the given type.
func (d *EventDispatcher) Unregister(t EventType) {
	delete(d.handlers, t)
}

// Fire delivers event to its handlers until one of them reports it handled.
func (d *EventDispatcher) Fire(event Event) bool {
	for _, h := range d.handlers[event.Type] {
		if h(event) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}
