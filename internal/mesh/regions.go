package mesh

import "sort"

// RegionTable maps a region name to the ordered set of vertex indices it covers.
// Regions may overlap. A table is built once per mesh and is read-only after.
type RegionTable struct {
	regions     map[string][]int
	vertexCount int
}

// NewRegionTable builds a table from raw zone lists. Indices outside
// [0, vertexCount) are filtered and duplicate indices within a zone keep only
// their first occurrence. Empty names are skipped.
func NewRegionTable(zones map[string][]int, vertexCount int) *RegionTable {
	rt := &RegionTable{
		regions:     make(map[string][]int, len(zones)),
		vertexCount: vertexCount,
	}
	for name, raw := range zones {
		if name == "" {
			continue
		}
		seen := make(map[int]struct{}, len(raw))
		indices := make([]int, 0, len(raw))
		for _, idx := range raw {
			if idx < 0 || idx >= vertexCount {
				continue
			}
			if _, dup := seen[idx]; dup {
				continue
			}
			seen[idx] = struct{}{}
			indices = append(indices, idx)
		}
		rt.regions[name] = indices
	}
	return rt
}

// Has reports whether the table defines a region with this name.
func (rt *RegionTable) Has(name string) bool {
	if rt == nil {
		return false
	}
	_, ok := rt.regions[name]
	return ok
}

// Indices returns the vertex indices of a region, or nil for an unknown name.
// The slice must not be modified.
func (rt *RegionTable) Indices(name string) []int {
	if rt == nil {
		return nil
	}
	return rt.regions[name]
}

// Names returns all region names in sorted order.
func (rt *RegionTable) Names() []string {
	if rt == nil {
		return nil
	}
	names := make([]string, 0, len(rt.regions))
	for name := range rt.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of regions.
func (rt *RegionTable) Len() int {
	if rt == nil {
		return 0
	}
	return len(rt.regions)
}

// VertexCount returns the vertex count the table was validated against.
func (rt *RegionTable) VertexCount() int {
	if rt == nil {
		return 0
	}
	return rt.vertexCount
}
