package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestHandleDrag(t *testing.T) {
	in := New()

	in.handle(&sdl.MouseMotionEvent{XRel: 5, YRel: 5})
	if len(in.events) != 0 {
		t.Fatalf("motion without a button produced %v", in.events)
	}

	in.handle(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT, Clicks: 1})
	in.handle(&sdl.MouseMotionEvent{XRel: 3, YRel: -2})
	in.handle(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_LEFT})
	in.handle(&sdl.MouseMotionEvent{XRel: 7})

	if len(in.events) != 1 {
		t.Fatalf("expected 1 drag event, got %d", len(in.events))
	}
	e := in.events[0]
	if e.Type != EventDrag || e.DX != 3 || e.DY != -2 {
		t.Errorf("drag event = %+v, want (3, -2)", e)
	}
}

func TestHandleDoubleClick(t *testing.T) {
	in := New()
	in.handle(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT, Clicks: 2})

	if len(in.events) != 1 || in.events[0].Type != EventDoubleClick {
		t.Errorf("events = %+v, want one double click", in.events)
	}
}

func TestHandleZoom(t *testing.T) {
	tests := []struct {
		name  string
		event sdl.Event
		want  float32
	}{
		{"wheel up", &sdl.MouseWheelEvent{Y: 1}, -1},
		{"wheel flipped", &sdl.MouseWheelEvent{Y: 1, Direction: uint32(sdl.MOUSEWHEEL_FLIPPED)}, 1},
		{"pinch out", &sdl.MultiGestureEvent{DDist: 0.01}, -0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New()
			in.handle(tt.event)
			if len(in.events) != 1 || in.events[0].Type != EventZoom {
				t.Fatalf("events = %+v, want one zoom", in.events)
			}
			if d := in.events[0].Zoom - tt.want; d > 1e-6 || d < -1e-6 {
				t.Errorf("Zoom = %v, want %v", in.events[0].Zoom, tt.want)
			}
		})
	}
}

func TestHandleQuitAndKeys(t *testing.T) {
	in := New()
	if in.handle(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_Z, Mod: uint16(sdl.KMOD_LCTRL)}}) {
		t.Error("key press asked to quit")
	}
	if !in.handle(&sdl.QuitEvent{}) {
		t.Error("quit event did not ask to quit")
	}

	if len(in.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(in.events))
	}
	if !in.events[0].Ctrl() || in.events[0].Shift() {
		t.Errorf("modifiers of %+v: ctrl=%v shift=%v", in.events[0], in.events[0].Ctrl(), in.events[0].Shift())
	}
}

func TestHandlePick(t *testing.T) {
	in := New()
	in.handle(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_RIGHT, X: 120, Y: 80})
	in.handle(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_RIGHT, X: 120, Y: 80})

	if len(in.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(in.events))
	}
	if e := in.events[0]; e.Type != EventPick || e.X != 120 || e.Y != 80 {
		t.Errorf("pick event = %+v, want (120, 80)", e)
	}
}
