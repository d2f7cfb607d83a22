package flame

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/facemorph/internal/logger"
	"github.com/Faultbox/facemorph/internal/mesh"
	"github.com/Faultbox/facemorph/pkg/math"
)

// FullFace is the root zone covering the whole face. It is synthesized over
// every vertex when the export has no region map.
const FullFace = "full_face"

// Model is a loaded FLAME export.
type Model struct {
	Template Template

	Vertices        []math.Vec3
	Faces           []uint32
	ShapeBasis      []float32 // [vertex][axis][shape component]
	ExpressionBasis []float32 // [vertex][axis][expression component]
	UV              [][2]float32

	Regions *Regions
}

// Load reads an export directory. The template, vertices and faces are
// required; bases, UVs and the region map are optional.
func Load(dir string) (*Model, error) {
	data, err := os.ReadFile(filepath.Join(dir, TemplateFile))
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	t, err := ParseTemplate(data)
	if err != nil {
		return nil, err
	}

	m := &Model{Template: *t}
	files := t.BinaryFiles

	if data, err = os.ReadFile(filepath.Join(dir, files.Vertices)); err != nil {
		return nil, fmt.Errorf("reading vertices: %w", err)
	}
	if m.Vertices, err = ParseVertices(data, t.VertexCount); err != nil {
		return nil, err
	}

	if files.Faces == "" {
		return nil, fmt.Errorf("%w: no faces file", ErrInvalidHeader)
	}
	if data, err = os.ReadFile(filepath.Join(dir, files.Faces)); err != nil {
		return nil, fmt.Errorf("reading faces: %w", err)
	}
	if m.Faces, err = ParseFaces(data, t.FaceCount); err != nil {
		return nil, err
	}

	if m.ShapeBasis, err = loadBasis(dir, files.ShapeBasis, t.VertexCount, t.ShapeParamCount); err != nil {
		return nil, fmt.Errorf("shape basis: %w", err)
	}
	if m.ExpressionBasis, err = loadBasis(dir, files.ExpressionBasis, t.VertexCount, t.ExpressionParamCount); err != nil {
		return nil, fmt.Errorf("expression basis: %w", err)
	}
	if m.ShapeBasis == nil {
		m.Template.ShapeParamCount = 0
	}
	if m.ExpressionBasis == nil {
		m.Template.ExpressionParamCount = 0
	}

	if files.UV != "" {
		if data, err = os.ReadFile(filepath.Join(dir, files.UV)); err != nil {
			return nil, fmt.Errorf("reading uv: %w", err)
		}
		if m.UV, err = ParseUV(data); err != nil {
			return nil, err
		}
	}

	data, err = os.ReadFile(filepath.Join(dir, RegionsFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("no region map, using full face only", zap.String("dir", dir))
	case err != nil:
		return nil, fmt.Errorf("reading regions: %w", err)
	default:
		if m.Regions, err = ParseRegions(data); err != nil {
			return nil, err
		}
		if m.Regions.VertexCount != 0 && m.Regions.VertexCount != t.VertexCount {
			return nil, fmt.Errorf("%w: regions cover %d vertices, template has %d",
				ErrCountMismatch, m.Regions.VertexCount, t.VertexCount)
		}
	}

	logger.Info("FLAME model loaded",
		zap.String("dir", dir),
		zap.Int("vertices", t.VertexCount),
		zap.Int("faces", t.FaceCount),
		zap.Int("shape_params", m.Template.ShapeParamCount),
		zap.Int("expression_params", m.Template.ExpressionParamCount),
		zap.Int("uv", len(m.UV)),
	)
	return m, nil
}

// loadBasis reads an optional basis file. A missing name or zero components
// yields nil.
func loadBasis(dir, name string, vertexCount, components int) ([]float32, error) {
	if name == "" || components == 0 {
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("basis file missing", zap.String("file", name))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseBasis(data, vertexCount, components)
}

// Derive returns template + shapeBasis·shape + expressionBasis·expr.
// Coefficient vectors shorter than a basis are zero-padded; longer ones are
// truncated.
func (m *Model) Derive(shape, expr []float32) []math.Vec3 {
	out := make([]math.Vec3, len(m.Vertices))
	copy(out, m.Vertices)
	addBasis(out, m.ShapeBasis, m.Template.ShapeParamCount, shape)
	addBasis(out, m.ExpressionBasis, m.Template.ExpressionParamCount, expr)
	return out
}

func addBasis(out []math.Vec3, basis []float32, n int, coef []float32) {
	if n == 0 || len(basis) == 0 {
		return
	}
	k := min(len(coef), n)
	if k == 0 {
		return
	}
	for v := range out {
		row := basis[v*3*n:]
		var d [3]float32
		for axis := 0; axis < 3; axis++ {
			comps := row[axis*n : axis*n+k]
			for c, b := range comps {
				d[axis] += b * coef[c]
			}
		}
		out[v] = out[v].Add(math.Vec3{X: d[0], Y: d[1], Z: d[2]})
	}
}

// Base builds the immutable base mesh from the template.
func (m *Model) Base() *mesh.Base {
	return mesh.NewBase(m.Vertices, m.Faces)
}

// RegionTable builds the region table. Without a region map it holds a
// single full-face zone over every vertex.
func (m *Model) RegionTable() *mesh.RegionTable {
	if m.Regions != nil && len(m.Regions.Zones) > 0 {
		return mesh.NewRegionTable(m.Regions.Indices(), len(m.Vertices))
	}
	all := make([]int, len(m.Vertices))
	for i := range all {
		all[i] = i
	}
	return mesh.NewRegionTable(map[string][]int{FullFace: all}, len(m.Vertices))
}
