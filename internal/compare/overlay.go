// Package compare implements the side-by-side comparison wipe: a copy of the
// original face drawn over the modified one and cut by a clip plane that a
// slider sweeps across the face's X extent.
package compare

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/facemorph/internal/logger"
	"github.com/Faultbox/facemorph/internal/mesh"
	"github.com/Faultbox/facemorph/pkg/math"
)

// Plane is the half-space Normal·p + Constant >= 0.
type Plane struct {
	Normal   math.Vec3
	Constant float32
}

// Distance returns the signed distance of p from the plane.
func (pl Plane) Distance(p math.Vec3) float32 {
	return pl.Normal.Dot(p) + pl.Constant
}

// Vec4 packs the plane as (nx, ny, nz, d) for a clip-distance uniform.
func (pl Plane) Vec4() [4]float32 {
	return [4]float32{pl.Normal.X, pl.Normal.Y, pl.Normal.Z, pl.Constant}
}

// Overlay owns the original-geometry copy shown by the comparison wipe.
// Slider 0 shows the whole original, 1 the whole modified mesh.
type Overlay struct {
	enabled bool
	slider  float32

	minX, maxX float32
	plane      Plane

	positions []math.Vec3
	normals   []math.Vec3
	indices   []uint32

	generation uint64
}

// New returns a disabled overlay with the slider at the midpoint.
func New() *Overlay {
	return &Overlay{slider: 0.5}
}

// Enable copies the base positions and normals into the overlay buffers and
// places the clip plane from the current slider. The live working buffer is
// never used. Enabling again re-copies from the given base.
func (o *Overlay) Enable(base *mesh.Base) bool {
	if base == nil || base.VertexCount() == 0 {
		return false
	}

	o.positions = grow(o.positions, base.VertexCount())
	o.normals = grow(o.normals, base.VertexCount())
	base.CopyPositions(o.positions)
	base.CopyNormals(o.normals)
	o.indices = base.Indices()

	b := base.Bounds()
	o.minX, o.maxX = b.Min.X, b.Max.X
	o.enabled = true
	o.updatePlane()
	o.generation++

	logger.Debug("comparison enabled",
		zap.Float32("min_x", o.minX),
		zap.Float32("max_x", o.maxX),
		zap.Float32("slider", o.slider),
	)
	return true
}

// Disable turns the comparison off and discards the overlay geometry.
func (o *Overlay) Disable() {
	if !o.enabled {
		return
	}
	o.Release()
	logger.Debug("comparison disabled")
}

// Release discards the overlay geometry. It is called when a new mesh is
// loaded or the base is re-derived.
func (o *Overlay) Release() {
	o.enabled = false
	o.positions = nil
	o.normals = nil
	o.indices = nil
	o.generation++
}

// Toggle enables the overlay from base when disabled and disables it
// otherwise. It returns the new enabled flag.
func (o *Overlay) Toggle(base *mesh.Base) bool {
	if o.enabled {
		o.Disable()
		return false
	}
	return o.Enable(base)
}

// SetSlider stores v clamped to [0,1] and moves the clip plane to
// minX + v*(maxX-minX).
func (o *Overlay) SetSlider(v float32) {
	switch {
	case v < 0 || math32.IsNaN(v):
		v = 0
	case v > 1:
		v = 1
	}
	o.slider = v
	if o.enabled {
		o.updatePlane()
	}
}

func (o *Overlay) updatePlane() {
	x := o.PlaneX()
	o.plane = Plane{Normal: math.Vec3{X: 1}, Constant: -x}
}

// PlaneX returns the X coordinate of the clip plane.
func (o *Overlay) PlaneX() float32 {
	return o.minX + o.slider*(o.maxX-o.minX)
}

// Visible reports whether the overlay is drawn at p.
func (o *Overlay) Visible(p math.Vec3) bool {
	return o.enabled && o.plane.Distance(p) >= 0
}

// Enabled reports whether the overlay is on.
func (o *Overlay) Enabled() bool { return o.enabled }

// Slider returns the slider value in [0,1].
func (o *Overlay) Slider() float32 { return o.slider }

// Plane returns the current clip plane.
func (o *Overlay) Plane() Plane { return o.plane }

// Positions returns the overlay positions, nil while disabled.
func (o *Overlay) Positions() []math.Vec3 { return o.positions }

// Normals returns the overlay normals, nil while disabled.
func (o *Overlay) Normals() []math.Vec3 { return o.normals }

// Indices returns the triangle indices the overlay is drawn with.
func (o *Overlay) Indices() []uint32 { return o.indices }

// Generation changes whenever the overlay geometry is replaced or released.
func (o *Overlay) Generation() uint64 { return o.generation }

func grow(buf []math.Vec3, n int) []math.Vec3 {
	if cap(buf) < n {
		return make([]math.Vec3, n)
	}
	return buf[:n]
}
