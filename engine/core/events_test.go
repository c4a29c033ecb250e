package core

import "testing"

func TestEventDispatcherStopsAtFirstHandler(t *testing.T) {
	d := NewEventDispatcher()
	var calls []string
	d.Register(EventKeyDown, func(e Event) bool {
		calls = append(calls, "first")
		return e.Key == KEY_ESCAPE
	})
	d.Register(EventKeyDown, func(e Event) bool {
		calls = append(calls, "second")
		return true
	})

	if !d.Fire(Event{Type: EventKeyDown, Key: KEY_ESCAPE}) {
		t.Fatal("escape should be handled")
	}
	if len(calls) != 1 {
		t.Fatalf("calls = %v, want only the first handler", calls)
	}

	calls = nil
	d.Fire(Event{Type: EventKeyDown, Key: KEY_A})
	if len(calls) != 2 {
		t.Fatalf("calls = %v, want both handlers", calls)
	}
}

func TestEventDispatcherUnregistered(t *testing.T) {
	d := NewEventDispatcher()
	d.Register(EventQuit, func(Event) bool { return true })
	d.Unregister(EventQuit)
	if d.Fire(Event{Type: EventQuit}) {
		t.Fatal("no handler should remain")
	}
}

func TestKeyFromASCII(t *testing.T) {
	tests := map[rune]KeyCode{
		'a': KEY_A,
		'Z': KEY_Z,
		'0': KEY_0,
		'?': KEY_UNKNOWN,
	}
	for r, want := range tests {
		if got := KeyFromASCII(r); got != want {
			t.Errorf("KeyFromASCII(%q) = %#x, want %#x", r, got, want)
		}
	}
}
