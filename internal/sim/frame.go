package sim

import (
	"github.com/Faultbox/facemorph/internal/compare"
	"github.com/Faultbox/facemorph/pkg/math"
)

// Frame is the read-only view of one tick handed to a RenderSink. Its slices
// alias simulation buffers and are valid until the next mutating call.
type Frame struct {
	Positions  []math.Vec3
	Normals    []math.Vec3
	Indices    []uint32
	Generation uint64

	Eye    math.Vec3
	Target math.Vec3
	View   math.Mat4

	Overlay OverlayFrame
}

// OverlayFrame is the comparison part of a Frame.
type OverlayFrame struct {
	Enabled    bool
	Positions  []math.Vec3
	Normals    []math.Vec3
	Plane      compare.Plane
	Generation uint64
}

// RenderSink consumes frames. Implementations must not modify the buffers.
type RenderSink interface {
	Draw(f *Frame) error
}

// Frame captures the current state for rendering.
func (s *Sim) Frame() *Frame {
	f := &Frame{
		Positions:  s.Engine.Positions(),
		Normals:    s.Engine.Normals(),
		Generation: s.Engine.Generation(),
		Eye:        s.Camera.Position(),
		Target:     s.Camera.Target,
		View:       s.Camera.ViewMatrix(),
	}
	if base := s.Engine.Base(); base != nil {
		f.Indices = base.Indices()
	}
	if s.Overlay.Enabled() {
		f.Overlay = OverlayFrame{
			Enabled:    true,
			Positions:  s.Overlay.Positions(),
			Normals:    s.Overlay.Normals(),
			Plane:      s.Overlay.Plane(),
			Generation: s.Overlay.Generation(),
		}
	}
	return f
}

// Render hands the current frame to sink.
func (s *Sim) Render(sink RenderSink) error {
	return sink.Draw(s.Frame())
}
