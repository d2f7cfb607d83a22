package morph

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/facemorph/pkg/math"
)

func TestParamsClamp(t *testing.T) {
	p := Params{Inflate: 0.9, Translate: math.Vec3{X: -3, Y: 0.2, Z: 5}, Smooth: -2}.Clamp()

	assert.Equal(t, MaxInflate, p.Inflate)
	assert.Equal(t, math.Vec3{X: -1, Y: 0.2, Z: 1}, p.Translate)
	assert.Equal(t, 0, p.Smooth)

	assert.Equal(t, MaxSmooth, Params{Smooth: 1000}.Clamp().Smooth)
	assert.Equal(t, -MaxInflate, Params{Inflate: -2}.Clamp().Inflate)
}

func TestParamsClampNonFinite(t *testing.T) {
	nan := math32.NaN()
	tests := []struct {
		name string
		p    Params
	}{
		{"nan inflate", Params{Inflate: nan}},
		{"inf inflate", Params{Inflate: math32.Inf(1)}},
		{"nan translate", Params{Translate: math.Vec3{X: nan, Y: math32.Inf(-1), Z: nan}}},
		{"nan smooth", Params{}.With(FieldSmooth, nan)},
		{"inf smooth", Params{}.With(FieldSmooth, math32.Inf(1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.p.Clamp()
			assert.Equal(t, Params{}, got)
			assert.True(t, got.IsIdentity())
		})
	}
}

func TestParamsWithAndValue(t *testing.T) {
	var p Params
	p = p.With(FieldInflate, 0.25)
	p = p.With(FieldTranslateY, -0.5)
	p = p.With(FieldSmooth, 2.6)

	assert.Equal(t, float32(0.25), p.Value(FieldInflate))
	assert.Equal(t, float32(-0.5), p.Translate.Y)
	assert.Equal(t, 3, p.Smooth)
	assert.Equal(t, float32(3), p.Value(FieldSmooth))
	assert.Equal(t, float32(0), p.Value(Field(42)))

	// With overwrites rather than adds.
	p = p.With(FieldInflate, 0.1)
	assert.Equal(t, float32(0.1), p.Inflate)
}

func TestParamsSignificant(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want bool
	}{
		{"identity", Params{}, false},
		{"tiny inflate", Params{Inflate: 0.0005}, false},
		{"inflate", Params{Inflate: -0.01}, true},
		{"tiny translate", Params{Translate: math.Vec3{Z: -0.0009}}, false},
		{"translate", Params{Translate: math.Vec3{Y: 0.002}}, true},
		{"smooth", Params{Smooth: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Significant(DefaultChangeEpsilon))
		})
	}
}

func TestFieldNames(t *testing.T) {
	for f := FieldInflate; f <= FieldSmooth; f++ {
		parsed, ok := ParseField(f.String())
		assert.True(t, ok, f.String())
		assert.Equal(t, f, parsed)
	}

	_, ok := ParseField("scale")
	assert.False(t, ok)
	assert.Equal(t, "Field(9)", Field(9).String())
}
