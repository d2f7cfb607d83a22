// Package input turns SDL2 events into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a viewer event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventDrag
	EventZoom
	EventDoubleClick
	EventPick
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Mod    sdl.Keymod
	Width  int
	Height int
	X, Y   int     // pointer position in window coordinates
	DX, DY float32 // drag delta in pixels
	Zoom   float32 // positive moves the camera away
}

// Shift reports whether a shift key was held.
func (e Event) Shift() bool { return e.Mod&sdl.KMOD_SHIFT != 0 }

// Ctrl reports whether a control or command key was held.
func (e Event) Ctrl() bool { return e.Mod&(sdl.KMOD_CTRL|sdl.KMOD_GUI) != 0 }

// pinchScale converts a multigesture distance delta into zoom steps.
const pinchScale = 40

// Input handles all input processing.
type Input struct {
	events   []Event
	dragging bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.handle(event) {
			quit = true
		}
	}
	return quit
}

// handle converts one SDL event and reports whether it asks to quit.
func (i *Input) handle(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.events = append(i.events, Event{Type: EventQuit})
		return true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED || e.Event == sdl.WINDOWEVENT_RESIZED {
			i.events = append(i.events, Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			})
		}

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN {
			i.events = append(i.events, Event{
				Type: EventKeyDown,
				Key:  e.Keysym.Scancode,
				Mod:  sdl.Keymod(e.Keysym.Mod),
			})
		}

	case *sdl.MouseButtonEvent:
		if e.Button == sdl.BUTTON_RIGHT && e.Type == sdl.MOUSEBUTTONDOWN {
			i.events = append(i.events, Event{Type: EventPick, X: int(e.X), Y: int(e.Y)})
			return false
		}
		if e.Button != sdl.BUTTON_LEFT {
			return false
		}
		switch {
		case e.Type == sdl.MOUSEBUTTONDOWN && e.Clicks == 2:
			i.dragging = false
			i.events = append(i.events, Event{Type: EventDoubleClick})
		case e.Type == sdl.MOUSEBUTTONDOWN:
			i.dragging = true
		case e.Type == sdl.MOUSEBUTTONUP:
			i.dragging = false
		}

	case *sdl.MouseMotionEvent:
		if i.dragging && (e.XRel != 0 || e.YRel != 0) {
			i.events = append(i.events, Event{
				Type: EventDrag,
				DX:   float32(e.XRel),
				DY:   float32(e.YRel),
			})
		}

	case *sdl.MouseWheelEvent:
		y := e.Y
		if e.Direction == uint32(sdl.MOUSEWHEEL_FLIPPED) {
			y = -y
		}
		if y != 0 {
			// Wheel up moves closer.
			i.events = append(i.events, Event{Type: EventZoom, Zoom: -float32(y)})
		}

	case *sdl.MultiGestureEvent:
		if e.DDist != 0 {
			// Spreading fingers moves closer.
			i.events = append(i.events, Event{Type: EventZoom, Zoom: -e.DDist * pinchScale})
		}
	}
	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}
