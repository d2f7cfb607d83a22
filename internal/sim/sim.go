// Package sim holds the explicit simulation state of the viewer: the morph
// engine, the orbit camera and the comparison overlay, advanced by a fixed
// tick and handed to a render sink as a read-only Frame.
package sim

import (
	"go.uber.org/zap"

	"github.com/Faultbox/facemorph/internal/compare"
	"github.com/Faultbox/facemorph/internal/engine/camera"
	"github.com/Faultbox/facemorph/internal/engine/picking"
	"github.com/Faultbox/facemorph/internal/logger"
	"github.com/Faultbox/facemorph/internal/mesh"
	"github.com/Faultbox/facemorph/internal/morph"
	"github.com/Faultbox/facemorph/pkg/math"
)

// DefaultTickRate is the number of camera ticks per second. Camera damping is
// defined per tick, so it is stepped at a fixed rate whatever the frame rate.
const DefaultTickRate = 60

// maxTicksPerUpdate bounds catch-up after a stall.
const maxTicksPerUpdate = 10

// DefaultRegion is selected after a load when the region table has it.
const DefaultRegion = "full_face"

// Config holds simulation settings.
type Config struct {
	Morph    morph.Config
	Camera   camera.Settings
	TickRate float64
}

// DefaultConfig returns the simulation defaults.
func DefaultConfig() Config {
	return Config{
		Morph:    morph.DefaultConfig(),
		Camera:   camera.DefaultSettings(),
		TickRate: DefaultTickRate,
	}
}

// Sim is the whole mutable state of a viewing session. It is not safe for
// concurrent use; the frame loop owns it.
type Sim struct {
	Engine  *morph.Engine
	Camera  *camera.OrbitController
	Overlay *compare.Overlay

	selected string
	step     float64
	accum    float64
	ticks    uint64
}

// New creates a simulation with no mesh loaded.
func New(cfg Config) *Sim {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultTickRate
	}
	return &Sim{
		Engine:  morph.New(cfg.Morph),
		Camera:  camera.NewOrbitController(cfg.Camera),
		Overlay: compare.New(),
		step:    1 / cfg.TickRate,
	}
}

// Load installs a mesh, releases any comparison overlay and frames the face.
func (s *Sim) Load(base *mesh.Base, regions *mesh.RegionTable) {
	if base == nil {
		return
	}
	s.Overlay.Release()
	s.Engine.Load(base, regions)
	s.Camera.FitToRadius(base.Bounds().Center(), base.Radius())

	s.selected = ""
	names := s.Engine.Regions().Names()
	switch {
	case s.Engine.Regions().Has(DefaultRegion):
		s.selected = DefaultRegion
	case len(names) > 0:
		s.selected = names[0]
	}
}

// Rebase replaces the base positions, keeping topology. On success the
// overlay is released since it no longer shows the original.
func (s *Sim) Rebase(positions []math.Vec3) bool {
	if !s.Engine.Rebase(positions) {
		return false
	}
	s.Overlay.Release()
	return true
}

// Update advances the camera by as many fixed ticks as dt seconds cover and
// returns the number of ticks run.
func (s *Sim) Update(dt float64) int {
	if dt <= 0 {
		return 0
	}
	s.accum += dt
	n := 0
	for s.accum >= s.step && n < maxTicksPerUpdate {
		s.Camera.Update()
		s.accum -= s.step
		n++
	}
	if n == maxTicksPerUpdate && s.accum >= s.step {
		logger.Debug("dropping camera ticks", zap.Float64("behind", s.accum))
		s.accum = 0
	}
	s.ticks += uint64(n)
	return n
}

// Ticks returns the number of camera ticks run so far.
func (s *Sim) Ticks() uint64 {
	return s.ticks
}

// Selected returns the region the interactive controls act on.
func (s *Sim) Selected() string {
	return s.selected
}

// Select makes region the target of the interactive controls. It returns
// false for a region missing from the table.
func (s *Sim) Select(region string) bool {
	if !s.Engine.Regions().Has(region) {
		return false
	}
	s.selected = region
	return true
}

// CycleRegion moves the selection by step through the sorted region names,
// wrapping at both ends, and returns the new selection.
func (s *Sim) CycleRegion(step int) string {
	names := s.Engine.Regions().Names()
	if len(names) == 0 {
		return ""
	}
	cur := 0
	for i, n := range names {
		if n == s.selected {
			cur = i
			break
		}
	}
	next := ((cur+step)%len(names) + len(names)) % len(names)
	s.selected = names[next]
	return s.selected
}

// Nudge applies a single-field delta to the selected region.
func (s *Sim) Nudge(field morph.Field, delta float32) []morph.Change {
	if s.selected == "" {
		return nil
	}
	return s.Engine.ApplyChanges([]morph.Change{{
		Region: s.selected,
		Params: morph.Params{}.With(field, delta),
	}})
}

// ToggleComparison turns the comparison wipe on or off.
func (s *Sim) ToggleComparison() bool {
	return s.Overlay.Toggle(s.Engine.Base())
}

// NudgeComparison moves the comparison slider by delta.
func (s *Sim) NudgeComparison(delta float32) {
	s.Overlay.SetSlider(s.Overlay.Slider() + delta)
}

// PickRegion selects the smallest region containing the vertex nearest to
// where r hits the working mesh.
func (s *Sim) PickRegion(r picking.Ray) (string, bool) {
	base := s.Engine.Base()
	if base == nil {
		return "", false
	}
	hit, ok := picking.PickMesh(r, s.Engine.Positions(), base.Indices())
	if !ok {
		return "", false
	}

	regions := s.Engine.Regions()
	best, size := "", 0
	for _, name := range regions.Names() {
		idx := regions.Indices(name)
		if best != "" && len(idx) >= size {
			continue
		}
		for _, v := range idx {
			if v == hit.Vertex {
				best, size = name, len(idx)
				break
			}
		}
	}
	if best == "" {
		return "", false
	}
	s.selected = best
	logger.Debug("region picked", zap.String("region", best), zap.Int("vertex", hit.Vertex))
	return best, true
}
