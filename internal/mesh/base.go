package mesh

import (
	gomath "math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/facemorph/pkg/math"
)

// Base is the pristine geometry captured when a mesh is loaded. It is never
// mutated after construction; deformation always works on a copy.
type Base struct {
	positions []math.Vec3
	normals   []math.Vec3
	indices   []uint32
	neighbors [][]int
	bounds    Bounds
	radius    float32
}

// NewBase copies positions and indices into a new Base. Triangles that
// reference a vertex outside [0, len(positions)) are dropped, as is a trailing
// partial triangle.
func NewBase(positions []math.Vec3, indices []uint32) *Base {
	b := &Base{
		positions: make([]math.Vec3, len(positions)),
		normals:   make([]math.Vec3, len(positions)),
	}
	copy(b.positions, positions)

	count := uint32(len(positions))
	b.indices = make([]uint32, 0, len(indices)-len(indices)%3)
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		if i0 >= count || i1 >= count || i2 >= count {
			continue
		}
		b.indices = append(b.indices, i0, i1, i2)
	}

	b.neighbors = buildAdjacency(len(positions), b.indices)
	ComputeNormals(b.positions, b.indices, b.normals)

	b.bounds = emptyBounds()
	for _, p := range b.positions {
		updateBounds(&b.bounds, p)
	}
	if len(b.positions) == 0 {
		b.bounds = Bounds{}
	}
	b.radius = boundingRadius(b.positions, b.bounds.Center())

	return b
}

// Rebase returns a new Base with the same topology and new vertex positions.
// It is used when the mesh provider re-derives the face from shape or
// expression parameters. The position count must match.
func (b *Base) Rebase(positions []math.Vec3) (*Base, bool) {
	if len(positions) != len(b.positions) {
		return nil, false
	}
	return NewBase(positions, b.indices), true
}

// VertexCount returns the number of vertices.
func (b *Base) VertexCount() int {
	return len(b.positions)
}

// TriangleCount returns the number of valid triangles.
func (b *Base) TriangleCount() int {
	return len(b.indices) / 3
}

// Positions returns the original vertex positions. The slice must not be modified.
func (b *Base) Positions() []math.Vec3 {
	return b.positions
}

// Normals returns the vertex normals of the original positions. The slice must
// not be modified.
func (b *Base) Normals() []math.Vec3 {
	return b.normals
}

// Indices returns the triangle index buffer. The slice must not be modified.
func (b *Base) Indices() []uint32 {
	return b.indices
}

// Neighbors returns the sorted topological neighbors of vertex i: every vertex
// that shares a triangle with it.
func (b *Base) Neighbors(i int) []int {
	if i < 0 || i >= len(b.neighbors) {
		return nil
	}
	return b.neighbors[i]
}

// Adjacency returns the neighbor lists of all vertices, indexed by vertex.
func (b *Base) Adjacency() [][]int {
	return b.neighbors
}

// Bounds returns the axis-aligned bounds of the original positions.
func (b *Base) Bounds() Bounds {
	return b.bounds
}

// Radius returns the bounding-sphere radius, measured from the bounds center.
func (b *Base) Radius() float32 {
	return b.radius
}

// CopyPositions copies the original positions into dst, which must have room
// for VertexCount elements.
func (b *Base) CopyPositions(dst []math.Vec3) {
	copy(dst, b.positions)
}

// CopyNormals copies the original normals into dst.
func (b *Base) CopyNormals(dst []math.Vec3) {
	copy(dst, b.normals)
}

// buildAdjacency gathers, for each vertex, every vertex it shares a triangle with.
func buildAdjacency(count int, indices []uint32) [][]int {
	sets := make([]map[int]struct{}, count)
	link := func(a, b uint32) {
		if a == b {
			return
		}
		if sets[a] == nil {
			sets[a] = make(map[int]struct{}, 6)
		}
		sets[a][int(b)] = struct{}{}
	}

	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		link(i0, i1)
		link(i0, i2)
		link(i1, i0)
		link(i1, i2)
		link(i2, i0)
		link(i2, i1)
	}

	adj := make([][]int, count)
	for i, set := range sets {
		if len(set) == 0 {
			continue
		}
		list := make([]int, 0, len(set))
		for n := range set {
			list = append(list, n)
		}
		sort.Ints(list)
		adj[i] = list
	}
	return adj
}

// boundingRadius returns the largest distance from center to any position.
func boundingRadius(positions []math.Vec3, center math.Vec3) float32 {
	c := toR3(center)
	var maxSq float64
	for _, p := range positions {
		if d := r3.Norm2(r3.Sub(toR3(p), c)); d > maxSq {
			maxSq = d
		}
	}
	return float32(gomath.Sqrt(maxSq))
}

func toR3(v math.Vec3) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}
