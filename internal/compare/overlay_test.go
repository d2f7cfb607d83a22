package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/facemorph/internal/mesh"
	"github.com/Faultbox/facemorph/pkg/math"
)

// strip is a row of quads spanning x in [-1, 1].
func strip() *mesh.Base {
	positions := []math.Vec3{
		{X: -1, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 0},
		{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
	}
	indices := []uint32{
		0, 1, 4, 0, 4, 3,
		1, 2, 5, 1, 5, 4,
	}
	return mesh.NewBase(positions, indices)
}

func TestSliderQuarter(t *testing.T) {
	o := New()
	require.True(t, o.Enable(strip()))

	o.SetSlider(0.25)

	assert.InDelta(t, -0.5, o.PlaneX(), 1e-6)
	assert.Equal(t, math.Vec3{X: 1}, o.Plane().Normal)
	assert.InDelta(t, 0.5, o.Plane().Constant, 1e-6)
	assert.True(t, o.Visible(math.Vec3{X: -0.5}))
	assert.True(t, o.Visible(math.Vec3{X: 0.9}))
	assert.False(t, o.Visible(math.Vec3{X: -0.6}))
}

func TestSliderEnds(t *testing.T) {
	o := New()
	require.True(t, o.Enable(strip()))
	base := strip().Positions()

	o.SetSlider(0)
	for _, p := range base {
		assert.True(t, o.Visible(p), "slider 0 shows the whole original at %v", p)
	}

	o.SetSlider(1)
	for _, p := range base {
		if p.X < 1 {
			assert.False(t, o.Visible(p), "slider 1 hides the original at %v", p)
		}
	}
}

func TestSliderClamps(t *testing.T) {
	o := New()
	o.SetSlider(-3)
	assert.Equal(t, float32(0), o.Slider())
	o.SetSlider(7)
	assert.Equal(t, float32(1), o.Slider())
}

func TestSliderBeforeEnable(t *testing.T) {
	o := New()
	o.SetSlider(0.25)
	require.True(t, o.Enable(strip()))

	assert.InDelta(t, -0.5, o.PlaneX(), 1e-6)
}

func TestEnableCopiesBase(t *testing.T) {
	base := strip()
	o := New()
	require.True(t, o.Enable(base))

	assert.Equal(t, base.Positions(), o.Positions())
	assert.Equal(t, base.Normals(), o.Normals())

	o.Positions()[0] = math.Vec3{X: 42}
	assert.Equal(t, float32(-1), base.Positions()[0].X, "overlay must not alias the base")
}

func TestDisableReleases(t *testing.T) {
	o := New()
	require.True(t, o.Enable(strip()))
	gen := o.Generation()

	o.Disable()

	assert.False(t, o.Enabled())
	assert.Nil(t, o.Positions())
	assert.Nil(t, o.Normals())
	assert.Greater(t, o.Generation(), gen)
	assert.False(t, o.Visible(math.Vec3{}))
}

func TestEnableWithoutMesh(t *testing.T) {
	o := New()
	assert.False(t, o.Enable(nil))
	assert.False(t, o.Enable(mesh.NewBase(nil, nil)))
	assert.False(t, o.Enabled())
}

func TestToggle(t *testing.T) {
	o := New()
	assert.True(t, o.Toggle(strip()))
	assert.True(t, o.Enabled())
	assert.False(t, o.Toggle(strip()))
	assert.False(t, o.Enabled())
}
