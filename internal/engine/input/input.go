// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a translated input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventWindowLeave
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event represents a processed input event. Mouse coordinates are in
// window display units.
type Event struct {
	Type   EventType
	Key    sdl.Keycode
	Shift  bool
	Width  int
	Height int
	MouseX float32
	MouseY float32
	Button uint8
	Clicks uint8
	WheelY float32
}

// Input polls SDL and keeps the events of the last Update.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them.
// Returns true if a quit was requested.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if e, ok := translate(event); ok {
			i.events = append(i.events, e)
			if e.Type == EventQuit {
				quit = true
			}
		}
	}

	return quit
}

func translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_SIZE_CHANGED:
			return Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)}, true
		case sdl.WINDOWEVENT_LEAVE:
			return Event{Type: EventWindowLeave}, true
		}

	case *sdl.KeyboardEvent:
		ev := Event{
			Key:   e.Keysym.Sym,
			Shift: e.Keysym.Mod&sdl.KMOD_SHIFT != 0,
		}
		switch e.Type {
		case sdl.KEYDOWN:
			if e.Repeat != 0 {
				return Event{}, false
			}
			ev.Type = EventKeyDown
		case sdl.KEYUP:
			ev.Type = EventKeyUp
		default:
			return Event{}, false
		}
		return ev, true

	case *sdl.MouseMotionEvent:
		return Event{Type: EventMouseMove, MouseX: float32(e.X), MouseY: float32(e.Y)}, true

	case *sdl.MouseButtonEvent:
		ev := Event{
			MouseX: float32(e.X),
			MouseY: float32(e.Y),
			Button: e.Button,
			Clicks: e.Clicks,
		}
		if e.Type == sdl.MOUSEBUTTONDOWN {
			ev.Type = EventMouseDown
		} else {
			ev.Type = EventMouseUp
		}
		return ev, true

	case *sdl.MouseWheelEvent:
		y := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			y = -y
		}
		return Event{Type: EventMouseWheel, WheelY: y}, true
	}
	return Event{}, false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a key went down during the last Update.
func (i *Input) IsKeyPressed(key sdl.Keycode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == key {
			return true
		}
	}
	return false
}

// ModifierHeld reports whether shift or ctrl is currently held.
func ModifierHeld() bool {
	return sdl.GetModState()&(sdl.KMOD_SHIFT|sdl.KMOD_CTRL) != 0
}
