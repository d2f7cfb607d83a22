package mesh

import "github.com/Faultbox/facemorph/pkg/math"

var upVector = math.Vec3{X: 0, Y: 1, Z: 0}

// ComputeNormals writes area-weighted vertex normals for positions into normals.
// Each triangle's unnormalized face normal is accumulated on its three
// vertices, then every vertex normal is normalized. Vertices with no
// non-degenerate triangle get the up vector. indices must only reference valid
// vertices, which Base guarantees.
func ComputeNormals(positions []math.Vec3, indices []uint32, normals []math.Vec3) {
	for i := range normals {
		normals[i] = math.Vec3{}
	}

	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		v0 := positions[i0]
		e1 := positions[i1].Sub(v0)
		e2 := positions[i2].Sub(v0)
		n := e1.Cross(e2)

		normals[i0] = normals[i0].Add(n)
		normals[i1] = normals[i1].Add(n)
		normals[i2] = normals[i2].Add(n)
	}

	for i := range normals {
		if normals[i].Length() < 1e-12 {
			normals[i] = upVector
			continue
		}
		normals[i] = normals[i].Normalize()
	}
}
