package morph

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/facemorph/internal/logger"
	"github.com/Faultbox/facemorph/internal/mesh"
	"github.com/Faultbox/facemorph/pkg/math"
)

// DefaultChangeEpsilon is the magnitude below which a field does not count as
// a change.
const DefaultChangeEpsilon float32 = 0.001

// Config holds engine settings.
type Config struct {
	// HistoryLimit caps the undo stack; zero means DefaultHistoryLimit.
	HistoryLimit int
	// ChangeEpsilon is the threshold used by Changes; zero means DefaultChangeEpsilon.
	ChangeEpsilon float32
	// Incremental lets ApplyChanges run the kernel on the live buffer when
	// that gives the replayed result exactly: a single change on an undeformed
	// buffer. When false every apply replays the whole state.
	Incremental bool
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		HistoryLimit:  DefaultHistoryLimit,
		ChangeEpsilon: DefaultChangeEpsilon,
		Incremental:   true,
	}
}

// Engine applies a State to an immutable base mesh to produce the working
// vertex buffer, and keeps the undo history and saved versions of that state.
//
// The engine owns three buffers besides the base: working positions, working
// normals and a scratch buffer used by smoothing. They are copied into, never
// aliased. Without a loaded mesh every mutating operation is a no-op.
type Engine struct {
	cfg Config
	now func() time.Time

	base    *mesh.Base
	regions *mesh.RegionTable

	state    *State
	history  *History
	versions []Version

	positions []math.Vec3
	normals   []math.Vec3
	scratch   []math.Vec3

	generation uint64
	drifted    bool
}

// New creates an engine with no mesh loaded.
func New(cfg Config) *Engine {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.ChangeEpsilon <= 0 {
		cfg.ChangeEpsilon = DefaultChangeEpsilon
	}
	return &Engine{
		cfg:     cfg,
		now:     time.Now,
		state:   NewState(),
		history: NewHistory(cfg.HistoryLimit),
	}
}

// Load installs a new base mesh and region table. State and history are reset
// to a single empty snapshot; saved versions are kept.
func (e *Engine) Load(base *mesh.Base, regions *mesh.RegionTable) {
	if base == nil {
		return
	}
	if regions == nil {
		regions = mesh.NewRegionTable(nil, base.VertexCount())
	}
	e.base = base
	e.regions = regions

	n := base.VertexCount()
	e.positions = make([]math.Vec3, n)
	e.normals = make([]math.Vec3, n)
	e.scratch = make([]math.Vec3, n)

	e.state = NewState()
	e.history.Reset(e.state)
	e.resetBuffers()
	e.drifted = false

	logger.Info("mesh loaded",
		zap.Int("vertices", n),
		zap.Int("triangles", base.TriangleCount()),
		zap.Int("regions", regions.Len()),
		zap.Float32("radius", base.Radius()),
	)
}

// Rebase replaces the base positions, keeping topology and regions. It is the
// path for re-deriving the face from shape or expression parameters and
// invalidates state and history like a fresh load.
func (e *Engine) Rebase(positions []math.Vec3) bool {
	if e.base == nil {
		return false
	}
	nb, ok := e.base.Rebase(positions)
	if !ok {
		logger.Warn("rebase ignored: vertex count mismatch",
			zap.Int("want", e.base.VertexCount()),
			zap.Int("got", len(positions)),
		)
		return false
	}
	e.Load(nb, e.regions)
	return true
}

// Loaded reports whether a mesh is installed.
func (e *Engine) Loaded() bool {
	return e.base != nil
}

// ApplyChanges adds each delta onto the stored params of its region, creating
// the entry on first touch. Regions missing from the region table are ignored.
// The touched regions are re-rendered and one history snapshot is pushed. It
// returns the touched regions with their resulting absolute params, in order of
// first appearance.
func (e *Engine) ApplyChanges(changes []Change) []Change {
	if !e.Loaded() || len(changes) == 0 {
		return nil
	}

	// Only a single change on the base buffer matches a replay bit for bit.
	pristine := !e.drifted && len(e.state.Active(0)) == 0
	replay := !e.cfg.Incremental || !pristine || len(changes) > 1

	var touched []Change
	slot := make(map[string]int, len(changes))
	for _, c := range changes {
		if !e.regions.Has(c.Region) {
			logger.Debug("ignoring change for unknown region", zap.String("region", c.Region))
			continue
		}

		old, _ := e.state.Get(c.Region)
		next := old.Add(c.Params).Clamp()
		e.state.Set(c.Region, next)

		if i, ok := slot[c.Region]; ok {
			touched[i].Params = next
		} else {
			slot[c.Region] = len(touched)
			touched = append(touched, Change{Region: c.Region, Params: next})
		}

		delta := next.Sub(old)
		if !replay && !delta.IsIdentity() {
			e.applyRegion(e.regions.Indices(c.Region), delta)
		}
	}

	if len(touched) == 0 {
		return nil
	}

	if replay {
		e.Replay()
	} else {
		e.generation++
	}
	e.history.Push(e.state)

	logger.Debug("changes applied",
		zap.Int("regions", len(touched)),
		zap.Bool("replayed", replay),
		zap.Int("history", e.history.Len()),
	)
	return touched
}

// SetRegionValue overwrites one field of a region's params and re-derives the
// whole buffer from the base, so the result is a pure function of the state.
// It returns false without a mesh or for an unknown region.
func (e *Engine) SetRegionValue(region string, field Field, value float32) bool {
	if !e.Loaded() || !e.regions.Has(region) {
		return false
	}
	p, _ := e.state.Get(region)
	e.state.Set(region, p.With(field, value).Clamp())
	e.Replay()
	e.history.Push(e.state)

	logger.Debug("region value set",
		zap.String("region", region),
		zap.Stringer("field", field),
		zap.Float32("value", value),
	)
	return true
}

// ResetDeformation restores the working buffer to the base positions and
// normals verbatim. The state is left untouched.
func (e *Engine) ResetDeformation() {
	if !e.Loaded() {
		return
	}
	e.resetBuffers()
	e.drifted = len(e.state.Active(0)) > 0
}

func (e *Engine) resetBuffers() {
	e.base.CopyPositions(e.positions)
	e.base.CopyNormals(e.normals)
	e.generation++
}

// Reset clears every region and restores the base mesh. The cleared state is
// pushed onto the history, so a reset can be undone.
func (e *Engine) Reset() {
	if !e.Loaded() {
		return
	}
	e.state = NewState()
	e.resetBuffers()
	e.drifted = false
	e.history.Push(e.state)
	logger.Debug("deformation reset")
}

// Replay re-derives the working buffer from the base by running every region
// of the state through the kernel in insertion order, recomputing normals
// after each region so later inflations follow the updated surface.
func (e *Engine) Replay() {
	if !e.Loaded() {
		return
	}
	e.resetBuffers()
	e.drifted = false
	for _, region := range e.state.Regions() {
		p, _ := e.state.Get(region)
		if p.IsIdentity() {
			continue
		}
		indices := e.regions.Indices(region)
		if len(indices) == 0 {
			continue
		}
		e.applyRegion(indices, p)
	}
}

// Reconcile replays the state when the buffer no longer shows it, as after
// ResetDeformation. It reports whether a replay happened.
func (e *Engine) Reconcile() bool {
	if !e.drifted {
		return false
	}
	e.Replay()
	return true
}

// Drifted reports whether the buffer differs from the replay of the state.
func (e *Engine) Drifted() bool {
	return e.drifted
}

// Undo steps back one history snapshot and replays it. It returns false when
// there is nothing to undo.
func (e *Engine) Undo() bool {
	if !e.Loaded() {
		return false
	}
	s, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.state = s
	e.Replay()
	return true
}

// Redo steps forward one history snapshot and replays it. It returns false
// when there is nothing to redo.
func (e *Engine) Redo() bool {
	if !e.Loaded() {
		return false
	}
	s, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.state = s
	e.Replay()
	return true
}

// CanUndo reports whether Undo would succeed.
func (e *Engine) CanUndo() bool {
	return e.Loaded() && e.history.CanUndo()
}

// CanRedo reports whether Redo would succeed.
func (e *Engine) CanRedo() bool {
	return e.Loaded() && e.history.CanRedo()
}

// SaveVersion appends a named snapshot of the current state. An empty name
// becomes "Version N".
func (e *Engine) SaveVersion(name string) Version {
	if name == "" {
		name = fmt.Sprintf("Version %d", len(e.versions)+1)
	}
	v := Version{Name: name, CreatedAt: e.now(), State: e.state.Clone()}
	e.versions = append(e.versions, v)
	logger.Debug("version saved", zap.String("name", name), zap.Int("regions", v.State.Len()))
	return v.Clone()
}

// LoadVersion replaces the state with a saved version, resets history to that
// single snapshot and replays it. It returns false for an out-of-range index
// or when no mesh is loaded.
func (e *Engine) LoadVersion(index int) bool {
	if !e.Loaded() || index < 0 || index >= len(e.versions) {
		return false
	}
	e.restore(e.versions[index].State)
	logger.Debug("version loaded", zap.String("name", e.versions[index].Name))
	return true
}

// Versions returns copies of all saved versions, oldest first.
func (e *Engine) Versions() []Version {
	out := make([]Version, len(e.versions))
	for i, v := range e.versions {
		out[i] = v.Clone()
	}
	return out
}

// Restore installs a previously persisted state and version list. The state
// becomes the single history entry and is replayed.
func (e *Engine) Restore(state *State, versions []Version) {
	restored := make([]Version, 0, len(versions))
	for _, v := range versions {
		restored = append(restored, v.Clone())
	}
	e.versions = restored
	if !e.Loaded() {
		e.state = state.Clone()
		return
	}
	e.restore(state)
}

func (e *Engine) restore(s *State) {
	e.state = e.known(s)
	e.history.Reset(e.state)
	e.Replay()
}

// known returns a copy of s without the regions missing from the region table.
func (e *Engine) known(s *State) *State {
	out := NewState()
	for _, region := range s.Regions() {
		if !e.regions.Has(region) {
			logger.Debug("dropping restored region missing from the mesh", zap.String("region", region))
			continue
		}
		p, _ := s.Get(region)
		out.Set(region, p)
	}
	return out
}

// Changes returns, in state order, the regions with any field whose magnitude
// exceeds the configured epsilon.
func (e *Engine) Changes() []Change {
	return e.state.Active(e.cfg.ChangeEpsilon)
}

// State returns a copy of the current state.
func (e *Engine) State() *State {
	return e.state.Clone()
}

// History exposes the undo stack for inspection.
func (e *Engine) History() *History {
	return e.history
}

// Base returns the loaded base mesh, or nil.
func (e *Engine) Base() *mesh.Base {
	return e.base
}

// Regions returns the loaded region table, or nil.
func (e *Engine) Regions() *mesh.RegionTable {
	return e.regions
}

// Positions returns the working vertex positions. The slice is owned by the
// engine and must not be modified; it changes on the next mutating call.
func (e *Engine) Positions() []math.Vec3 {
	return e.positions
}

// Normals returns the working vertex normals, with the same ownership rules as
// Positions.
func (e *Engine) Normals() []math.Vec3 {
	return e.normals
}

// Generation increases every time the working buffer changes. Render sinks use
// it to skip re-uploading unchanged geometry.
func (e *Engine) Generation() uint64 {
	return e.generation
}

// applyRegion runs the kernel for one region and refreshes normals.
func (e *Engine) applyRegion(indices []int, p Params) {
	ApplyRegion(e.positions, e.normals, e.scratch, e.base.Adjacency(), indices, p, e.base.Radius())
	mesh.ComputeNormals(e.positions, e.base.Indices(), e.normals)
	e.generation++
}
