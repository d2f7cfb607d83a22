package mesh

import (
	"gonum.org/v1/gonum/stat"

	"github.com/Faultbox/facemorph/pkg/math"
)

// Spread returns the summed per-axis variance of the positions selected by
// indices (all positions when indices is nil). Out-of-range indices are
// skipped. Fewer than two points have zero spread.
func Spread(positions []math.Vec3, indices []int) float64 {
	var xs, ys, zs []float64
	add := func(p math.Vec3) {
		xs = append(xs, float64(p.X))
		ys = append(ys, float64(p.Y))
		zs = append(zs, float64(p.Z))
	}

	if indices == nil {
		for _, p := range positions {
			add(p)
		}
	} else {
		for _, idx := range indices {
			if idx < 0 || idx >= len(positions) {
				continue
			}
			add(positions[idx])
		}
	}

	if len(xs) < 2 {
		return 0
	}
	return stat.Variance(xs, nil) + stat.Variance(ys, nil) + stat.Variance(zs, nil)
}

// MaxDisplacement returns the largest distance between matching vertices of
// two buffers of equal length.
func MaxDisplacement(a, b []math.Vec3) float32 {
	var maxD float32
	for i := range a {
		if i >= len(b) {
			break
		}
		if d := a[i].Distance(b[i]); d > maxD {
			maxD = d
		}
	}
	return maxD
}
