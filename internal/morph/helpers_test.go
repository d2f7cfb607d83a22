package morph

import (
	gomath "math"

	"github.com/Faultbox/facemorph/internal/mesh"
	"github.com/Faultbox/facemorph/pkg/math"
)

// gridMesh builds an n x n grid in the XY plane with a gentle bump in Z so
// vertex normals vary, scaled by scale.
func gridMesh(n int, scale float32) *mesh.Base {
	positions := make([]math.Vec3, 0, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			z := 0.3 * gomath.Sin(float64(x)*0.7) * gomath.Cos(float64(y)*0.5)
			positions = append(positions, math.Vec3{
				X: float32(x) * scale,
				Y: float32(y) * scale,
				Z: float32(z) * scale,
			})
		}
	}

	var indices []uint32
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			i := uint32(y*n + x)
			indices = append(indices, i, i+1, i+uint32(n))
			indices = append(indices, i+1, i+uint32(n)+1, i+uint32(n))
		}
	}
	return mesh.NewBase(positions, indices)
}

// gridRegions splits an n x n grid into overlapping named regions.
func gridRegions(n int) *mesh.RegionTable {
	var left, right, center, all []int
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i := y*n + x
			all = append(all, i)
			if x < n/2+1 {
				left = append(left, i)
			}
			if x >= n/2-1 {
				right = append(right, i)
			}
			if x > 0 && x < n-1 && y > 0 && y < n-1 {
				center = append(center, i)
			}
		}
	}
	return mesh.NewRegionTable(map[string][]int{
		"left":   left,
		"right":  right,
		"center": center,
		"all":    all,
		"empty":  {},
	}, n*n)
}

func loadedEngine(cfg Config) *Engine {
	e := New(cfg)
	e.Load(gridMesh(6, 1), gridRegions(6))
	return e
}

func snapshot(buf []math.Vec3) []math.Vec3 {
	out := make([]math.Vec3, len(buf))
	copy(out, buf)
	return out
}

func inflate(region string, amount float32) Change {
	return Change{Region: region, Params: Params{Inflate: amount}}
}
