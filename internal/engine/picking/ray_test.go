package picking

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/facemorph/pkg/math"
)

func approxVec(a, b math.Vec3) bool {
	return a.Distance(b) < 1e-5
}

func TestScreenToRayCenter(t *testing.T) {
	eye := math.Vec3{X: 0, Y: 0, Z: 5}
	r := ScreenToRay(400, 300, 800, 600, eye, math.Vec3{}, math32.Pi/3)

	if !approxVec(r.Origin, eye) {
		t.Errorf("Origin = %v, want %v", r.Origin, eye)
	}
	if !approxVec(r.Direction, math.Vec3{Z: -1}) {
		t.Errorf("Direction = %v, want (0, 0, -1)", r.Direction)
	}
}

func TestScreenToRayCorners(t *testing.T) {
	eye := math.Vec3{Z: 5}
	fov := math32.Pi / 2 // tan(fov/2) = 1

	// Top right of a square viewport points 45 degrees right and up.
	r := ScreenToRay(100, 0, 100, 100, eye, math.Vec3{}, fov)
	want := math.Vec3{X: 1, Y: 1, Z: -1}.Normalize()
	if !approxVec(r.Direction, want) {
		t.Errorf("Direction = %v, want %v", r.Direction, want)
	}
}

func TestIntersectTriangle(t *testing.T) {
	a := math.Vec3{X: -1, Y: -1}
	b := math.Vec3{X: 1, Y: -1}
	c := math.Vec3{X: 0, Y: 1}

	tests := []struct {
		name  string
		ray   Ray
		wantT float32
		hit   bool
	}{
		{"straight on", Ray{math.Vec3{Z: 2}, math.Vec3{Z: -1}}, 2, true},
		{"back face", Ray{math.Vec3{Z: -3}, math.Vec3{Z: 1}}, 3, true},
		{"miss", Ray{math.Vec3{X: 2, Z: 2}, math.Vec3{Z: -1}}, 0, false},
		{"behind origin", Ray{math.Vec3{Z: 2}, math.Vec3{Z: 1}}, 0, false},
		{"parallel", Ray{math.Vec3{Z: 1}, math.Vec3{X: 1}}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectTriangle(a, b, c)
			if hit != tt.hit {
				t.Fatalf("IntersectTriangle() hit = %v, want %v", hit, tt.hit)
			}
			if hit && math32.Abs(got-tt.wantT) > 1e-5 {
				t.Errorf("IntersectTriangle() t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestPickMeshNearest(t *testing.T) {
	positions := []math.Vec3{
		// far quad at z=0
		{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 0, Y: 1},
		// near triangle at z=1
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 0.1, Y: 0.2, Z: 1},
	}
	indices := []uint32{0, 1, 2, 3, 4, 5}
	r := Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: -1}}

	hit, ok := PickMesh(r, positions, indices)
	if !ok {
		t.Fatal("PickMesh() missed")
	}
	if hit.Triangle != 1 {
		t.Errorf("Triangle = %d, want 1", hit.Triangle)
	}
	if math32.Abs(hit.Distance-4) > 1e-5 {
		t.Errorf("Distance = %v, want 4", hit.Distance)
	}
	if hit.Vertex != 5 {
		t.Errorf("Vertex = %d, want 5", hit.Vertex)
	}
}

func TestPickMeshMiss(t *testing.T) {
	positions := []math.Vec3{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 0, Y: 1}}
	r := Ray{Origin: math.Vec3{X: 5, Z: 5}, Direction: math.Vec3{Z: -1}}

	if _, ok := PickMesh(r, positions, []uint32{0, 1, 2}); ok {
		t.Error("PickMesh() hit, want miss")
	}
	if _, ok := PickMesh(r, positions, []uint32{0, 1, 9}); ok {
		t.Error("PickMesh() with an out-of-range index hit, want miss")
	}
}
