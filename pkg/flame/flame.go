// Package flame reads the web export of a FLAME head model: template
// vertices, triangle faces, shape and expression bases and the clinical
// region map.
package flame

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Faultbox/facemorph/pkg/math"
)

// File names written by the exporter.
const (
	TemplateFile = "flame_template.json"
	RegionsFile  = "flame_regions.json"
)

// FLAME export errors.
var (
	ErrTruncatedData = errors.New("truncated FLAME data")
	ErrCountMismatch = errors.New("FLAME element count mismatch")
	ErrInvalidHeader = errors.New("invalid FLAME template header")
)

// BinaryFiles names the binary buffers next to the template.
type BinaryFiles struct {
	Vertices        string `json:"vertices"`
	ShapeBasis      string `json:"shape_basis"`
	ExpressionBasis string `json:"expression_basis"`
	Faces           string `json:"faces"`
	UV              string `json:"uv"`
}

// Template is the flame_template.json header.
type Template struct {
	VertexCount          int         `json:"vertex_count"`
	FaceCount            int         `json:"face_count"`
	ShapeParamCount      int         `json:"shape_param_count"`
	ExpressionParamCount int         `json:"expression_param_count"`
	HasUV                bool        `json:"has_uv"`
	CoordinateSystem     string      `json:"coordinate_system"`
	BinaryFiles          BinaryFiles `json:"binary_files"`
}

// Zone is one entry of the region map.
type Zone struct {
	VertexIndices []int `json:"vertex_indices"`
	VertexCount   int   `json:"vertex_count"`
}

// Regions is the flame_regions.json document.
type Regions struct {
	ZoneCount   int             `json:"zone_count"`
	VertexCount int             `json:"vertex_count"`
	Zones       map[string]Zone `json:"zones"`
	Note        string          `json:"note"`
}

// ParseTemplate parses and validates the template header.
func ParseTemplate(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if t.VertexCount <= 0 {
		return nil, fmt.Errorf("%w: vertex_count %d", ErrInvalidHeader, t.VertexCount)
	}
	if t.FaceCount < 0 || t.ShapeParamCount < 0 || t.ExpressionParamCount < 0 {
		return nil, fmt.Errorf("%w: negative count", ErrInvalidHeader)
	}
	if t.BinaryFiles.Vertices == "" {
		return nil, fmt.Errorf("%w: no vertices file", ErrInvalidHeader)
	}
	return &t, nil
}

// ParseRegions parses the region map. Zones with vertex_count disagreeing
// with their index list keep the list.
func ParseRegions(data []byte) (*Regions, error) {
	var r Regions
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing regions: %w", err)
	}
	return &r, nil
}

// Indices returns the zone map as plain index lists.
func (r *Regions) Indices() map[string][]int {
	out := make(map[string][]int, len(r.Zones))
	for name, z := range r.Zones {
		out[name] = z.VertexIndices
	}
	return out
}

// ParseVertices decodes count little-endian float32 triples.
func ParseVertices(data []byte, count int) ([]math.Vec3, error) {
	raw, err := readFloats(data, count*3, "vertices")
	if err != nil {
		return nil, err
	}
	out := make([]math.Vec3, count)
	for i := range out {
		out[i] = math.Vec3{X: raw[i*3], Y: raw[i*3+1], Z: raw[i*3+2]}
	}
	return out, nil
}

// ParseFaces decodes count little-endian uint32 index triples.
func ParseFaces(data []byte, count int) ([]uint32, error) {
	n := count * 3
	if err := checkSize(len(data), n*4, "faces"); err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("%w: reading faces", ErrTruncatedData)
	}
	return out, nil
}

// ParseBasis decodes a blend-shape basis of vertexCount*3*components floats
// laid out [vertex][axis][component].
func ParseBasis(data []byte, vertexCount, components int) ([]float32, error) {
	return readFloats(data, vertexCount*3*components, "basis")
}

// ParseUV decodes little-endian float32 pairs. The exporter writes one pair
// per texture vertex, which need not match the mesh vertex count.
func ParseUV(data []byte) ([][2]float32, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("%w: uv has %d bytes, not a multiple of 8", ErrTruncatedData, len(data))
	}
	count := len(data) / 8
	raw, err := readFloats(data, count*2, "uv")
	if err != nil {
		return nil, err
	}
	out := make([][2]float32, count)
	for i := range out {
		out[i] = [2]float32{raw[i*2], raw[i*2+1]}
	}
	return out, nil
}

func readFloats(data []byte, n int, what string) ([]float32, error) {
	if err := checkSize(len(data), n*4, what); err != nil {
		return nil, err
	}
	out := make([]float32, n)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("%w: reading %s", ErrTruncatedData, what)
	}
	return out, nil
}

func checkSize(got, want int, what string) error {
	switch {
	case got < want:
		return fmt.Errorf("%w: %s has %d bytes, want %d", ErrTruncatedData, what, got, want)
	case got > want:
		return fmt.Errorf("%w: %s has %d bytes, want %d", ErrCountMismatch, what, got, want)
	}
	return nil
}
