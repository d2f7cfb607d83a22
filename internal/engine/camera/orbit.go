// Package camera provides the damped orbit camera used to frame the face.
package camera

import (
	gomath "math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/facemorph/pkg/math"
)

// Settings holds orbit tuning. All radii are in mesh units.
type Settings struct {
	Damping       float32 // fraction of the remaining distance covered per tick
	DefaultRadius float32 // radius of the presets at zoom level 1
	MinRadius     float32
	MaxRadius     float32
	RotateSpeed   float32 // radians per pixel of drag
	ZoomSpeed     float32 // radius factor per wheel step
	PoleEpsilon   float32 // keeps phi away from the poles
}

// DefaultSettings returns the default orbit tuning.
func DefaultSettings() Settings {
	return Settings{
		Damping:       0.08,
		DefaultRadius: 3.0,
		MinRadius:     0.5,
		MaxRadius:     20.0,
		RotateSpeed:   0.005,
		ZoomSpeed:     0.1,
		PoleEpsilon:   0.01,
	}
}

// fitFactor is the camera distance, in bounding radii, used by FitToRadius.
const fitFactor = 2.5

// Preset is a named view direction.
type Preset struct {
	Theta float32
	Phi   float32
}

// Preset names.
const (
	PresetFront             = "front"
	PresetProfileLeft       = "profile-left"
	PresetProfileRight      = "profile-right"
	PresetThreeQuarterLeft  = "three-quarter-left"
	PresetThreeQuarterRight = "three-quarter-right"
	PresetAbove             = "above"
	PresetBelow             = "below"
)

// The face looks down +Z. Theta turns around +Y, phi is measured from +Y.
var presets = map[string]Preset{
	PresetFront:             {Theta: 0, Phi: gomath.Pi / 2},
	PresetProfileLeft:       {Theta: gomath.Pi / 2, Phi: gomath.Pi / 2},
	PresetProfileRight:      {Theta: -gomath.Pi / 2, Phi: gomath.Pi / 2},
	PresetThreeQuarterLeft:  {Theta: gomath.Pi / 4, Phi: gomath.Pi / 2},
	PresetThreeQuarterRight: {Theta: -gomath.Pi / 4, Phi: gomath.Pi / 2},
	PresetAbove:             {Theta: 0, Phi: gomath.Pi / 4},
	PresetBelow:             {Theta: 0, Phi: 3 * gomath.Pi / 4},
}

// PresetNames lists the preset names in display order.
func PresetNames() []string {
	return []string{
		PresetFront,
		PresetThreeQuarterLeft,
		PresetProfileLeft,
		PresetThreeQuarterRight,
		PresetProfileRight,
		PresetAbove,
		PresetBelow,
	}
}

// OrbitController orbits around a fixed target point. Input moves the target
// spherical coordinates; Update damps the current coordinates toward them.
type OrbitController struct {
	Settings

	// Point to orbit around
	Target math.Vec3

	// Current spherical coordinates
	Theta  float32 // azimuth around +Y, radians
	Phi    float32 // polar angle from +Y, radians
	Radius float32

	// Spherical coordinates the current state decays toward
	ThetaTarget  float32
	PhiTarget    float32
	RadiusTarget float32
}

// NewOrbitController creates a controller at the front preset. Zero or
// negative settings take their DefaultSettings value.
func NewOrbitController(s Settings) *OrbitController {
	def := DefaultSettings()
	if s.Damping <= 0 || s.Damping > 1 {
		s.Damping = def.Damping
	}
	if s.DefaultRadius <= 0 {
		s.DefaultRadius = def.DefaultRadius
	}
	if s.MinRadius <= 0 {
		s.MinRadius = def.MinRadius
	}
	if s.MaxRadius <= 0 {
		s.MaxRadius = def.MaxRadius
	}
	if s.MaxRadius < s.MinRadius {
		s.MaxRadius = s.MinRadius
	}
	if s.RotateSpeed <= 0 {
		s.RotateSpeed = def.RotateSpeed
	}
	if s.ZoomSpeed <= 0 {
		s.ZoomSpeed = def.ZoomSpeed
	}
	if s.PoleEpsilon <= 0 {
		s.PoleEpsilon = def.PoleEpsilon
	}

	c := &OrbitController{Settings: s}
	front := presets[PresetFront]
	c.Theta, c.ThetaTarget = front.Theta, front.Theta
	c.Phi, c.PhiTarget = front.Phi, front.Phi
	c.Radius = c.clampRadius(s.DefaultRadius)
	c.RadiusTarget = c.Radius
	return c
}

// Update advances the damping by one tick.
func (c *OrbitController) Update() {
	c.Theta += (c.ThetaTarget - c.Theta) * c.Damping
	c.Phi += (c.PhiTarget - c.Phi) * c.Damping
	c.Radius += (c.RadiusTarget - c.Radius) * c.Damping
}

// Settled reports whether every component is within eps of its target.
func (c *OrbitController) Settled(eps float32) bool {
	return math32.Abs(c.ThetaTarget-c.Theta) <= eps &&
		math32.Abs(c.PhiTarget-c.Phi) <= eps &&
		math32.Abs(c.RadiusTarget-c.Radius) <= eps
}

// Snap jumps the current state to the targets.
func (c *OrbitController) Snap() {
	c.Theta = c.ThetaTarget
	c.Phi = c.PhiTarget
	c.Radius = c.RadiusTarget
}

// HandleDrag turns a pointer drag into orbit target changes.
func (c *OrbitController) HandleDrag(dx, dy float32) {
	c.ThetaTarget -= dx * c.RotateSpeed
	c.PhiTarget = c.clampPhi(c.PhiTarget - dy*c.RotateSpeed)
}

// HandleZoom scales the target radius by 1 + delta*ZoomSpeed. Wheel and pinch
// both land here; positive deltas move the camera away.
func (c *OrbitController) HandleZoom(delta float32) {
	f := 1 + delta*c.ZoomSpeed
	if f <= 0 {
		c.RadiusTarget = c.MinRadius
		return
	}
	c.RadiusTarget = c.clampRadius(c.RadiusTarget * f)
}

// SetPreset points the targets at a named view, keeping the current zoom
// level. It returns false for an unknown name.
func (c *OrbitController) SetPreset(name string) bool {
	p, ok := presets[name]
	if !ok {
		return false
	}
	zoom := c.Radius / c.DefaultRadius
	c.ThetaTarget = c.nearestTheta(p.Theta)
	c.PhiTarget = c.clampPhi(p.Phi)
	c.RadiusTarget = c.clampRadius(c.DefaultRadius * zoom)
	return true
}

// HandleDoubleTap returns to the front view.
func (c *OrbitController) HandleDoubleTap() {
	c.SetPreset(PresetFront)
}

// FitToRadius frames a mesh with the given bounding sphere from the front.
// Radius limits are scaled with the new default radius.
func (c *OrbitController) FitToRadius(center math.Vec3, radius float32) {
	c.Target = center
	if radius > 0 {
		fit := radius * fitFactor
		k := fit / c.DefaultRadius
		c.DefaultRadius = fit
		c.MinRadius *= k
		c.MaxRadius *= k
	}
	front := presets[PresetFront]
	c.ThetaTarget = front.Theta
	c.PhiTarget = front.Phi
	c.RadiusTarget = c.DefaultRadius
	c.Snap()
}

// Position returns the camera position in world space.
func (c *OrbitController) Position() math.Vec3 {
	sinPhi, cosPhi := math32.Sincos(c.Phi)
	sinTheta, cosTheta := math32.Sincos(c.Theta)
	return c.Target.Add(math.Vec3{
		X: c.Radius * sinPhi * sinTheta,
		Y: c.Radius * cosPhi,
		Z: c.Radius * sinPhi * cosTheta,
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitController) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position(), c.Target, up)
}

func (c *OrbitController) clampPhi(phi float32) float32 {
	lo := c.PoleEpsilon
	hi := gomath.Pi - c.PoleEpsilon
	if phi < lo {
		return lo
	}
	if phi > hi {
		return hi
	}
	return phi
}

func (c *OrbitController) clampRadius(r float32) float32 {
	if r < c.MinRadius {
		return c.MinRadius
	}
	if r > c.MaxRadius {
		return c.MaxRadius
	}
	return r
}

// nearestTheta returns the angle equivalent to theta that is closest to the
// current azimuth, so presets never spin the long way round.
func (c *OrbitController) nearestTheta(theta float32) float32 {
	const twoPi = 2 * gomath.Pi
	turns := math32.Round((c.Theta - theta) / twoPi)
	return theta + turns*twoPi
}
