package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/facemorph/pkg/math"
)

// WriteOBJ writes positions, normals and triangles as a Wavefront OBJ file.
// normals may be nil.
func WriteOBJ(w io.Writer, positions, normals []math.Vec3, indices []uint32) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %d vertices, %d triangles\n", len(positions), len(indices)/3)
	for _, p := range positions {
		fmt.Fprintf(bw, "v %g %g %g\n", p.X, p.Y, p.Z)
	}
	withNormals := len(normals) == len(positions)
	if withNormals {
		for _, n := range normals {
			fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
		}
	}

	// OBJ indices are 1-based.
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t]+1, indices[t+1]+1, indices[t+2]+1
		if withNormals {
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		} else {
			fmt.Fprintf(bw, "f %d %d %d\n", a, b, c)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing obj: %w", err)
	}
	return nil
}

// SaveOBJ writes the mesh to path with WriteOBJ. A failure to close the file
// is reported like a write failure.
func SaveOBJ(path string, positions, normals []math.Vec3, indices []uint32) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating obj: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing obj: %w", cerr)
		}
	}()
	return WriteOBJ(f, positions, normals, indices)
}
