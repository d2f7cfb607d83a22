package morph

import "github.com/Faultbox/facemorph/pkg/math"

// DisplacementScale converts a parameter value into a fraction of the mesh's
// bounding radius. At the inflate extreme of 0.5 a vertex moves 7.5% of the
// radius, whatever the physical size of the mesh.
const DisplacementScale float32 = 0.15

// smoothFactor is how far a vertex moves toward its neighbor average per pass.
const smoothFactor float32 = 0.5

// Inflate moves each indexed vertex along its current normal by
// amount * radius * DisplacementScale. Out-of-range indices are skipped.
func Inflate(positions, normals []math.Vec3, indices []int, amount, radius float32) {
	if amount == 0 {
		return
	}
	d := amount * radius * DisplacementScale
	for _, i := range indices {
		if i < 0 || i >= len(positions) || i >= len(normals) {
			continue
		}
		positions[i] = positions[i].AddScaled(normals[i], d)
	}
}

// Translate moves each indexed vertex by offset * radius * DisplacementScale
// in mesh-local axes. Out-of-range indices are skipped.
func Translate(positions []math.Vec3, indices []int, offset math.Vec3, radius float32) {
	if offset.IsZero() {
		return
	}
	d := offset.Scale(radius * DisplacementScale)
	for _, i := range indices {
		if i < 0 || i >= len(positions) {
			continue
		}
		positions[i] = positions[i].Add(d)
	}
}

// Smooth runs iterations passes of Laplacian relaxation over the indexed
// vertices. Each vertex moves halfway toward the unweighted mean of its
// topological neighbors, which may lie outside the index set. Every pass
// first freezes the whole buffer into scratch and reads only from it, so all
// vertices of a pass see pre-pass neighbor positions. Vertices without
// neighbors are left untouched.
func Smooth(positions, scratch []math.Vec3, adjacency [][]int, indices []int, iterations int) {
	if iterations <= 0 || len(indices) == 0 {
		return
	}
	if len(scratch) < len(positions) {
		scratch = make([]math.Vec3, len(positions))
	}
	frozen := scratch[:len(positions)]

	for pass := 0; pass < iterations; pass++ {
		copy(frozen, positions)
		for _, i := range indices {
			if i < 0 || i >= len(positions) || i >= len(adjacency) {
				continue
			}
			neighbors := adjacency[i]
			if len(neighbors) == 0 {
				continue
			}
			var sum math.Vec3
			for _, n := range neighbors {
				sum = sum.Add(frozen[n])
			}
			avg := sum.Scale(1 / float32(len(neighbors)))
			positions[i] = frozen[i].Lerp(avg, smoothFactor)
		}
	}
}

// ApplyRegion runs the kernel for one region: inflate, then translate, then
// smooth. It does not recompute normals; callers must.
func ApplyRegion(positions, normals, scratch []math.Vec3, adjacency [][]int, indices []int, p Params, radius float32) {
	Inflate(positions, normals, indices, p.Inflate, radius)
	Translate(positions, indices, p.Translate, radius)
	Smooth(positions, scratch, adjacency, indices, p.Smooth)
}
