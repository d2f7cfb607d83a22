package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/facemorph/internal/mesh"
	"github.com/Faultbox/facemorph/internal/morph"
	"github.com/Faultbox/facemorph/pkg/math"
)

func sampleState() *morph.State {
	s := morph.NewState()
	s.Set("nose_tip", morph.Params{Inflate: -0.125, Translate: math.Vec3{Y: 0.25}})
	s.Set("chin", morph.Params{Smooth: 3})
	s.Set("lip_upper", morph.Params{})
	return s
}

func TestRoundTrip(t *testing.T) {
	stamp := time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC)
	versions := []morph.Version{{Name: "before", CreatedAt: stamp, State: sampleState()}}

	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	require.NoError(t, Capture(sampleState(), versions).Save(path))

	f, err := Load(path)
	require.NoError(t, err)
	s, vs := f.Restore()

	assert.True(t, sampleState().Equal(s))
	require.Len(t, vs, 1)
	assert.Equal(t, "before", vs[0].Name)
	assert.True(t, stamp.Equal(vs[0].CreatedAt))
	assert.True(t, sampleState().Equal(vs[0].State))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be gone")
}

func TestMissingFieldsDecodeAsZero(t *testing.T) {
	doc := `
state:
  - region: nose_tip
    inflate: 0.2
  - region: chin
    translate: {y: -0.5}
  - region: cheek_left
    smooth: 4
  - inflate: 0.3
versions:
  - state:
      - region: forehead
`
	f, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, f.Format)

	s, vs := f.Restore()
	assert.Equal(t, []string{"nose_tip", "chin", "cheek_left"}, s.Regions())

	p, _ := s.Get("chin")
	assert.Equal(t, morph.Params{Translate: math.Vec3{Y: -0.5}}, p)
	p, _ = s.Get("cheek_left")
	assert.Equal(t, morph.Params{Smooth: 4}, p)

	require.Len(t, vs, 1)
	assert.Equal(t, "Version 1", vs[0].Name)
	assert.True(t, vs[0].CreatedAt.IsZero())
	_, ok := vs[0].State.Get("forehead")
	assert.True(t, ok)
}

func TestRestoreClamps(t *testing.T) {
	f, err := Parse([]byte("state:\n  - region: a\n    inflate: 3\n    smooth: -2\n"))
	require.NoError(t, err)

	s, _ := f.Restore()
	p, _ := s.Get("a")
	assert.Equal(t, morph.MaxInflate, p.Inflate)
	assert.Equal(t, 0, p.Smooth)
}

func TestRestoreZeroesNonFinite(t *testing.T) {
	doc := `
state:
  - region: a
    inflate: .nan
    translate: {x: -.inf, y: .inf, z: .nan}
`
	f, err := Parse([]byte(doc))
	require.NoError(t, err)

	s, _ := f.Restore()
	p, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, morph.Params{}, p)
}

func TestCoefficients(t *testing.T) {
	doc := "shape: [0.5, -1]\nexpression: [2]\nstate: []\n"
	f, err := Parse([]byte(doc))
	require.NoError(t, err)

	want := Coefficients{Shape: []float32{0.5, -1}, Expression: []float32{2}}
	assert.True(t, want.Equal(f.Coefficients))
	assert.False(t, f.Coefficients.Empty())
	assert.True(t, Coefficients{}.Empty())
	assert.False(t, want.Equal(Coefficients{Shape: want.Shape}))

	data, err := Capture(morph.NewState(), nil).Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "shape")
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("format: 2\nstate: []\n"))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Parse([]byte("state: [unclosed"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func testEngine() (*morph.Engine, *mesh.Base, *mesh.RegionTable) {
	positions := []math.Vec3{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
	base := mesh.NewBase(positions, []uint32{0, 1, 2, 0, 2, 3})
	regions := mesh.NewRegionTable(map[string][]int{"nose_tip": {2}, "chin": {0, 1}}, 4)

	e := morph.New(morph.DefaultConfig())
	e.Load(base, regions)
	return e, base, regions
}

func TestEngineRoundTrip(t *testing.T) {
	src, _, _ := testEngine()
	src.ApplyChanges([]morph.Change{{Region: "nose_tip", Params: morph.Params{Inflate: 0.25}}})
	src.SaveVersion("one")
	src.ApplyChanges([]morph.Change{{Region: "chin", Params: morph.Params{Smooth: 1}}})

	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, SaveEngine(path, src, Coefficients{}))

	dst, _, _ := testEngine()
	f, err := LoadEngine(path, dst, nil)
	require.NoError(t, err)
	assert.True(t, f.Coefficients.Empty())

	assert.True(t, src.State().Equal(dst.State()))
	require.Len(t, dst.Versions(), 1)
	assert.Equal(t, "one", dst.Versions()[0].Name)
	src.Replay()
	assert.Equal(t, src.Positions(), dst.Positions())
}

func TestLoadEngineRebasesBeforeRestore(t *testing.T) {
	src, base, _ := testEngine()
	coef := Coefficients{Shape: []float32{0.5}}
	shifted := slices.Clone(base.Positions())
	for i := range shifted {
		shifted[i].Z += 0.5
	}
	require.True(t, src.Rebase(shifted))
	src.ApplyChanges([]morph.Change{{Region: "nose_tip", Params: morph.Params{Inflate: 0.25}}})

	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, SaveEngine(path, src, coef))

	dst, _, _ := testEngine()
	var got Coefficients
	_, err := LoadEngine(path, dst, func(c Coefficients) error {
		got = c
		if !dst.Rebase(shifted) {
			return errors.New("rebase rejected")
		}
		return nil
	})
	require.NoError(t, err)

	assert.True(t, coef.Equal(got))
	assert.True(t, src.State().Equal(dst.State()), "rebase must not discard the restored state")
	assert.Equal(t, src.Positions(), dst.Positions())

	_, err = LoadEngine(path, dst, func(Coefficients) error { return errors.New("boom") })
	assert.Error(t, err)
}

func TestLoadEngineDropsUnknownRegions(t *testing.T) {
	doc := `
state:
  - region: ghost
    inflate: 0.2
  - region: chin
    inflate: 0.1
`
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	e, _, _ := testEngine()
	_, err := LoadEngine(path, e, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"chin"}, e.State().Regions())
	require.Len(t, e.Changes(), 1)
	assert.Equal(t, "chin", e.Changes()[0].Region)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	require.NoError(t, Capture(morph.NewState(), nil).Save(path))

	ctx, cancel := context.WithCancel(context.Background())
	changed, err := Watch(ctx, path)
	require.NoError(t, err)

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	require.NoError(t, Capture(sampleState(), nil).Save(path))

	select {
	case _, ok := <-changed:
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-changed:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}
