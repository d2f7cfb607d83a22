// Package picking casts view rays into a triangle mesh.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/facemorph/pkg/math"
)

// epsilon rejects triangles nearly parallel to the ray.
const epsilon = 1e-7

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// ScreenToRay builds the world-space ray through a pixel for a perspective
// camera at eye looking at target with +Y up. screenX, screenY are pixel
// coordinates with the origin at the top left.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, eye, target math.Vec3, fovY float32) Ray {
	// Convert screen coords to normalized device coords (-1 to 1)
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // Flip Y

	forward := target.Sub(eye).Normalize()
	right := forward.Cross(math.Vec3{Y: 1}).Normalize()
	up := right.Cross(forward)

	h := math32.Tan(fovY / 2)
	aspect := viewportW / viewportH
	dir := forward.
		AddScaled(right, ndcX*h*aspect).
		AddScaled(up, ndcY*h)

	return Ray{Origin: eye, Direction: dir.Normalize()}
}

// IntersectTriangle returns the distance along the ray to triangle (a, b, c)
// and whether it is hit in front of the origin. Both windings count.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (t float32, hit bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < epsilon {
		return 0, false
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t = e2.Dot(q) * inv
	if t <= 0 {
		return 0, false
	}
	return t, true
}

// Hit is the result of picking a mesh.
type Hit struct {
	Triangle int // index of the first corner in the index buffer / 3
	Vertex   int // corner of the triangle closest to the hit point
	Distance float32
	Point    math.Vec3
}

// PickMesh returns the nearest triangle hit by the ray.
func PickMesh(r Ray, positions []math.Vec3, indices []uint32) (Hit, bool) {
	best := Hit{Distance: math32.Inf(1)}
	found := false
	for i := 0; i+2 < len(indices); i += 3 {
		ia, ib, ic := indices[i], indices[i+1], indices[i+2]
		if int(ia) >= len(positions) || int(ib) >= len(positions) || int(ic) >= len(positions) {
			continue
		}
		t, ok := r.IntersectTriangle(positions[ia], positions[ib], positions[ic])
		if !ok || t >= best.Distance {
			continue
		}
		best.Triangle = i / 3
		best.Distance = t
		found = true
	}
	if !found {
		return Hit{}, false
	}

	best.Point = r.Origin.AddScaled(r.Direction, best.Distance)
	corners := indices[best.Triangle*3 : best.Triangle*3+3]
	nearest := math32.Inf(1)
	for _, idx := range corners {
		if d := positions[idx].Distance(best.Point); d < nearest {
			nearest = d
			best.Vertex = int(idx)
		}
	}
	return best, true
}
