// Package morph implements the face morph engine: per-region deformation
// parameters, the deformation kernel, and an engine that derives the working
// vertex buffer from a base mesh with bounded undo/redo history and named
// versions.
package morph

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/facemorph/pkg/math"
)

// Parameter limits.
const (
	MaxInflate   float32 = 0.5
	MaxTranslate float32 = 1.0
	MaxSmooth            = 100
)

// Params is the fixed-shape deformation record of one region. The zero value
// is the identity: no displacement.
type Params struct {
	Inflate   float32
	Translate math.Vec3
	Smooth    int
}

// Change names a region together with its parameters. As input to
// ApplyChanges the parameters are a delta; as output they are absolute.
type Change struct {
	Region string
	Params Params
}

// Add returns p with every field of delta added to it.
func (p Params) Add(delta Params) Params {
	return Params{
		Inflate:   p.Inflate + delta.Inflate,
		Translate: p.Translate.Add(delta.Translate),
		Smooth:    p.Smooth + delta.Smooth,
	}
}

// Sub returns p minus other, field by field.
func (p Params) Sub(other Params) Params {
	return Params{
		Inflate:   p.Inflate - other.Inflate,
		Translate: p.Translate.Sub(other.Translate),
		Smooth:    p.Smooth - other.Smooth,
	}
}

// Clamp returns p with every field forced into its valid range.
func (p Params) Clamp() Params {
	return Params{
		Inflate: clamp(p.Inflate, -MaxInflate, MaxInflate),
		Translate: math.Vec3{
			X: clamp(p.Translate.X, -MaxTranslate, MaxTranslate),
			Y: clamp(p.Translate.Y, -MaxTranslate, MaxTranslate),
			Z: clamp(p.Translate.Z, -MaxTranslate, MaxTranslate),
		},
		Smooth: min(max(p.Smooth, 0), MaxSmooth),
	}
}

// IsIdentity reports whether p displaces nothing.
func (p Params) IsIdentity() bool {
	return p.Inflate == 0 && p.Translate.IsZero() && p.Smooth == 0
}

// Significant reports whether any field's magnitude exceeds eps.
func (p Params) Significant(eps float32) bool {
	return math32.Abs(p.Inflate) > eps ||
		math32.Abs(p.Translate.X) > eps ||
		math32.Abs(p.Translate.Y) > eps ||
		math32.Abs(p.Translate.Z) > eps ||
		float32(p.Smooth) > eps
}

// With returns p with a single field overwritten.
func (p Params) With(f Field, value float32) Params {
	switch f {
	case FieldInflate:
		p.Inflate = value
	case FieldTranslateX:
		p.Translate.X = value
	case FieldTranslateY:
		p.Translate.Y = value
	case FieldTranslateZ:
		p.Translate.Z = value
	case FieldSmooth:
		p.Smooth = int(math32.Round(clamp(value, -MaxSmooth, MaxSmooth)))
	}
	return p
}

// Value returns a single field as a float.
func (p Params) Value(f Field) float32 {
	switch f {
	case FieldInflate:
		return p.Inflate
	case FieldTranslateX:
		return p.Translate.X
	case FieldTranslateY:
		return p.Translate.Y
	case FieldTranslateZ:
		return p.Translate.Z
	case FieldSmooth:
		return float32(p.Smooth)
	default:
		return 0
	}
}

// Field identifies one scalar of Params.
type Field int

// Params fields.
const (
	FieldInflate Field = iota
	FieldTranslateX
	FieldTranslateY
	FieldTranslateZ
	FieldSmooth
)

var fieldNames = [...]string{
	FieldInflate:    "inflate",
	FieldTranslateX: "translate_x",
	FieldTranslateY: "translate_y",
	FieldTranslateZ: "translate_z",
	FieldSmooth:     "smooth",
}

// String returns the field name used in scripts and logs.
func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField maps a field name back to a Field.
func ParseField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

// clamp maps NaN and infinities to zero before bounding v.
func clamp(v, lo, hi float32) float32 {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
