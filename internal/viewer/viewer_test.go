package viewer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/facemorph/internal/config"
	"github.com/Faultbox/facemorph/internal/morph"
	"github.com/Faultbox/facemorph/internal/session"
)

func sessionViewer(t *testing.T) *Viewer {
	t.Helper()
	cfg := config.Default()
	cfg.Data.SessionPath = filepath.Join(t.TempDir(), "session.yaml")
	return &Viewer{cfg: cfg, sim: loadedSim(t)}
}

func TestSaveSessionClearsDirty(t *testing.T) {
	v := sessionViewer(t)
	v.dirty = handleEvent(v.sim, key(sdl.SCANCODE_UP, 0)).changed
	require.True(t, v.dirty)

	v.saveSession()
	assert.False(t, v.dirty)

	f, err := session.Load(v.cfg.Data.SessionPath)
	require.NoError(t, err)
	s, _ := f.Restore()
	assert.True(t, s.Equal(v.sim.Engine.State()))
}

func TestReloadSessionInstallsExternalEdit(t *testing.T) {
	v := sessionViewer(t)
	v.saveSession()

	other := morph.NewState()
	other.Set("nose_tip", morph.Params{Inflate: 0.1})
	require.NoError(t, session.Capture(other, nil).Save(v.cfg.Data.SessionPath))

	v.dirty = true
	v.reloadSession()
	assert.False(t, v.dirty)
	assert.True(t, other.Equal(v.sim.Engine.State()))

	// An unchanged file leaves local edits alone.
	v.sim.Engine.ApplyChanges([]morph.Change{{Region: "full_face", Params: morph.Params{Smooth: 1}}})
	v.dirty = true
	require.NoError(t, session.Capture(v.sim.Engine.State(), nil).Save(v.cfg.Data.SessionPath))
	v.reloadSession()
	assert.True(t, v.dirty)
}
