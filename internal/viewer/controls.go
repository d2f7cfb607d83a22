package viewer

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/facemorph/internal/engine/camera"
	"github.com/Faultbox/facemorph/internal/engine/input"
	"github.com/Faultbox/facemorph/internal/morph"
	"github.com/Faultbox/facemorph/internal/sim"
)

// Step sizes of the keyboard controls.
const (
	inflateStep   float32 = 0.02
	translateStep float32 = 0.02
	sliderStep    float32 = 0.05
)

// outcome reports what the caller must do after an event.
type outcome struct {
	quit    bool
	save    bool
	capture bool
	changed bool // morph state changed
}

// fieldKeys maps a key to a field and the sign of its step.
var fieldKeys = map[sdl.Scancode]struct {
	field morph.Field
	sign  float32
}{
	sdl.SCANCODE_UP:       {morph.FieldInflate, 1},
	sdl.SCANCODE_DOWN:     {morph.FieldInflate, -1},
	sdl.SCANCODE_RIGHT:    {morph.FieldTranslateX, 1},
	sdl.SCANCODE_LEFT:     {morph.FieldTranslateX, -1},
	sdl.SCANCODE_PAGEUP:   {morph.FieldTranslateY, 1},
	sdl.SCANCODE_PAGEDOWN: {morph.FieldTranslateY, -1},
	sdl.SCANCODE_HOME:     {morph.FieldTranslateZ, 1},
	sdl.SCANCODE_END:      {morph.FieldTranslateZ, -1},
}

// handleEvent applies one input event to the simulation.
func handleEvent(s *sim.Sim, e input.Event) outcome {
	switch e.Type {
	case input.EventQuit:
		return outcome{quit: true}
	case input.EventDrag:
		s.Camera.HandleDrag(e.DX, e.DY)
	case input.EventZoom:
		s.Camera.HandleZoom(e.Zoom)
	case input.EventDoubleClick:
		s.Camera.HandleDoubleTap()
	case input.EventKeyDown:
		return handleKey(s, e)
	}
	return outcome{}
}

func handleKey(s *sim.Sim, e input.Event) outcome {
	if e.Ctrl() {
		switch e.Key {
		case sdl.SCANCODE_Z:
			return outcome{changed: s.Engine.Undo()}
		case sdl.SCANCODE_Y:
			return outcome{changed: s.Engine.Redo()}
		case sdl.SCANCODE_S:
			return outcome{save: true}
		}
		return outcome{}
	}

	if k, ok := fieldKeys[e.Key]; ok {
		step := translateStep
		if k.field == morph.FieldInflate {
			step = inflateStep
		}
		return outcome{changed: len(s.Nudge(k.field, k.sign*step)) > 0}
	}

	switch e.Key {
	case sdl.SCANCODE_ESCAPE:
		return outcome{quit: true}
	case sdl.SCANCODE_TAB:
		if e.Shift() {
			s.CycleRegion(-1)
		} else {
			s.CycleRegion(1)
		}
	case sdl.SCANCODE_S:
		delta := float32(1)
		if e.Shift() {
			delta = -1
		}
		return outcome{changed: len(s.Nudge(morph.FieldSmooth, delta)) > 0}
	case sdl.SCANCODE_R:
		if s.Engine.Loaded() {
			s.Engine.Reset()
			return outcome{changed: true}
		}
	case sdl.SCANCODE_C:
		s.ToggleComparison()
	case sdl.SCANCODE_LEFTBRACKET:
		s.NudgeComparison(-sliderStep)
	case sdl.SCANCODE_RIGHTBRACKET:
		s.NudgeComparison(sliderStep)
	case sdl.SCANCODE_V:
		s.Engine.SaveVersion("")
	case sdl.SCANCODE_F12:
		return outcome{capture: true}
	}

	if e.Key >= sdl.SCANCODE_1 && e.Key <= sdl.SCANCODE_9 {
		names := camera.PresetNames()
		if i := int(e.Key - sdl.SCANCODE_1); i < len(names) {
			s.Camera.SetPreset(names[i])
		}
	}
	if e.Key >= sdl.SCANCODE_F1 && e.Key <= sdl.SCANCODE_F9 {
		return outcome{changed: s.Engine.LoadVersion(int(e.Key - sdl.SCANCODE_F1))}
	}
	return outcome{}
}
