package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/facemorph/internal/engine/input"
	"github.com/Faultbox/facemorph/internal/mesh"
	"github.com/Faultbox/facemorph/internal/sim"
	"github.com/Faultbox/facemorph/pkg/math"
)

func loadedSim(t *testing.T) *sim.Sim {
	t.Helper()
	positions := []math.Vec3{
		{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}, {X: 0, Y: 0, Z: 0.2},
	}
	indices := []uint32{0, 1, 4, 1, 2, 4, 2, 3, 4, 3, 0, 4}
	base := mesh.NewBase(positions, indices)
	regions := mesh.NewRegionTable(map[string][]int{
		"full_face": {0, 1, 2, 3, 4},
		"nose_tip":  {4},
	}, len(positions))

	s := sim.New(sim.DefaultConfig())
	s.Load(base, regions)
	require.Equal(t, "full_face", s.Selected())
	return s
}

func key(code sdl.Scancode, mod sdl.Keymod) input.Event {
	return input.Event{Type: input.EventKeyDown, Key: code, Mod: mod}
}

func TestArrowKeysNudgeSelectedRegion(t *testing.T) {
	s := loadedSim(t)

	out := handleEvent(s, key(sdl.SCANCODE_UP, 0))
	assert.True(t, out.changed)
	handleEvent(s, key(sdl.SCANCODE_LEFT, 0))
	handleEvent(s, key(sdl.SCANCODE_HOME, 0))

	p, ok := s.Engine.State().Get("full_face")
	require.True(t, ok)
	assert.InDelta(t, inflateStep, p.Inflate, 1e-6)
	assert.InDelta(t, -translateStep, p.Translate.X, 1e-6)
	assert.InDelta(t, translateStep, p.Translate.Z, 1e-6)
}

func TestSmoothKeys(t *testing.T) {
	s := loadedSim(t)

	handleEvent(s, key(sdl.SCANCODE_S, 0))
	handleEvent(s, key(sdl.SCANCODE_S, 0))
	handleEvent(s, key(sdl.SCANCODE_S, sdl.KMOD_LSHIFT))

	p, _ := s.Engine.State().Get("full_face")
	assert.Equal(t, 1, p.Smooth)
}

func TestUndoRedoKeys(t *testing.T) {
	s := loadedSim(t)
	handleEvent(s, key(sdl.SCANCODE_UP, 0))

	assert.True(t, handleEvent(s, key(sdl.SCANCODE_Z, sdl.KMOD_LCTRL)).changed)
	assert.Empty(t, s.Engine.Changes())
	assert.False(t, handleEvent(s, key(sdl.SCANCODE_Z, sdl.KMOD_LCTRL)).changed)

	assert.True(t, handleEvent(s, key(sdl.SCANCODE_Y, sdl.KMOD_LCTRL)).changed)
	assert.Len(t, s.Engine.Changes(), 1)
}

func TestCtrlSRequestsSave(t *testing.T) {
	s := loadedSim(t)

	out := handleEvent(s, key(sdl.SCANCODE_S, sdl.KMOD_RCTRL))
	assert.True(t, out.save)
	assert.Empty(t, s.Engine.Changes())
}

func TestF12RequestsScreenshot(t *testing.T) {
	s := loadedSim(t)
	assert.True(t, handleEvent(s, key(sdl.SCANCODE_F12, 0)).capture)
}

func TestTabCyclesRegions(t *testing.T) {
	s := loadedSim(t)

	handleEvent(s, key(sdl.SCANCODE_TAB, 0))
	assert.Equal(t, "nose_tip", s.Selected())
	handleEvent(s, key(sdl.SCANCODE_TAB, sdl.KMOD_LSHIFT))
	assert.Equal(t, "full_face", s.Selected())
}

func TestComparisonKeys(t *testing.T) {
	s := loadedSim(t)

	handleEvent(s, key(sdl.SCANCODE_C, 0))
	require.True(t, s.Overlay.Enabled())
	handleEvent(s, key(sdl.SCANCODE_RIGHTBRACKET, 0))
	assert.InDelta(t, 0.55, s.Overlay.Slider(), 1e-6)
	handleEvent(s, key(sdl.SCANCODE_LEFTBRACKET, 0))
	handleEvent(s, key(sdl.SCANCODE_LEFTBRACKET, 0))
	assert.InDelta(t, 0.45, s.Overlay.Slider(), 1e-6)

	handleEvent(s, key(sdl.SCANCODE_C, 0))
	assert.False(t, s.Overlay.Enabled())
}

func TestVersionKeys(t *testing.T) {
	s := loadedSim(t)
	handleEvent(s, key(sdl.SCANCODE_UP, 0))
	handleEvent(s, key(sdl.SCANCODE_V, 0))
	handleEvent(s, key(sdl.SCANCODE_R, 0))
	require.Empty(t, s.Engine.Changes())

	assert.True(t, handleEvent(s, key(sdl.SCANCODE_F1, 0)).changed)
	assert.Len(t, s.Engine.Changes(), 1)
	assert.False(t, handleEvent(s, key(sdl.SCANCODE_F2, 0)).changed)
	assert.Equal(t, "Version 1", s.Engine.Versions()[0].Name)
}

func TestPresetKeys(t *testing.T) {
	s := loadedSim(t)

	handleEvent(s, key(sdl.SCANCODE_3, 0))
	assert.InDelta(t, 1.5707964, s.Camera.ThetaTarget, 1e-5)

	handleEvent(s, key(sdl.SCANCODE_1, 0))
	assert.InDelta(t, 0, s.Camera.ThetaTarget, 1e-5)
}

func TestMouseEventsMoveCamera(t *testing.T) {
	s := loadedSim(t)
	theta := s.Camera.ThetaTarget
	radius := s.Camera.RadiusTarget

	handleEvent(s, input.Event{Type: input.EventDrag, DX: 100})
	assert.NotEqual(t, theta, s.Camera.ThetaTarget)

	handleEvent(s, input.Event{Type: input.EventZoom, Zoom: 1})
	assert.Greater(t, s.Camera.RadiusTarget, radius)

	handleEvent(s, input.Event{Type: input.EventDoubleClick})
	assert.InDelta(t, 0, s.Camera.ThetaTarget, 1e-5)
}

func TestQuitEvents(t *testing.T) {
	s := loadedSim(t)

	assert.True(t, handleEvent(s, input.Event{Type: input.EventQuit}).quit)
	assert.True(t, handleEvent(s, key(sdl.SCANCODE_ESCAPE, 0)).quit)
	assert.False(t, handleEvent(s, key(sdl.SCANCODE_Q, 0)).quit)
}

func TestWindowTitle(t *testing.T) {
	tests := []struct {
		region    string
		changes   int
		comparing bool
		dirty     bool
		want      string
	}{
		{"nose_tip", 2, false, false, "FaceMorph - nose_tip (2 changed)"},
		{"", 0, false, false, "FaceMorph - no region (0 changed)"},
		{"chin", 1, true, false, "FaceMorph - chin (1 changed) [compare]"},
		{"chin", 1, true, true, "FaceMorph - chin (1 changed) * [compare]"},
	}
	for _, tt := range tests {
		if got := windowTitle(tt.region, tt.changes, tt.comparing, tt.dirty); got != tt.want {
			t.Errorf("windowTitle(%q, %d, %v, %v) = %q, want %q", tt.region, tt.changes, tt.comparing, tt.dirty, got, tt.want)
		}
	}
}
