package concave

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Surface returns the vertex indices of all surface triangles. Triangles are
// wound counter clockwise seen from outside the solid, that is from the side
// of the grown region when growing inwards and from the exterior of it when
// growing outwards.
func (h *Hull) Surface() [][3]int {
	var faces [][3]int
	for ti := range h.Triangles {
		if h.Triangles[ti].IsSurface {
			faces = append(faces, h.wound(ti))
		}
	}
	return faces
}

// SurfaceMesh returns the surface as a compact indexed mesh containing only
// the vertices used by surface triangles.
func (h *Hull) SurfaceMesh() ([]r3.Vec, [][3]int) {
	faces := h.Surface()
	remap := make(map[int]int)
	var verts []r3.Vec
	for i := range faces {
		for j, v := range faces[i] {
			idx, ok := remap[v]
			if !ok {
				idx = len(verts)
				remap[v] = idx
				verts = append(verts, h.Vertices[v].Pos)
			}
			faces[i][j] = idx
		}
	}
	return verts, faces
}

// OnSurface returns the surface flag of every vertex.
func (h *Hull) OnSurface() []bool {
	on := make([]bool, len(h.Vertices))
	for i, v := range h.Vertices {
		on[i] = v.OnSurface
	}
	return on
}

// wound returns the vertices of triangle ti ordered so its normal points away
// from the solid tetrahedron next to it.
func (h *Hull) wound(ti int) [3]int {
	tri := &h.Triangles[ti]
	v := tri.Vertices
	for _, t := range tri.Tetrahedra {
		if t == None || h.inRegion(t) == (h.policy.Mode != ModeOutwards) {
			continue
		}
		f := h.triangle(ti)
		if f.Side(h.Vertices[h.apex(t, ti)].Pos) > 0 {
			v[1], v[2] = v[2], v[1]
		}
		break
	}
	return v
}

// Stats summarises the current surface.
type Stats struct {
	// Vertices, Edges and Faces count the distinct elements of the surface.
	Vertices, Edges, Faces int
	// Carved counts the tetrahedra of the grown region.
	Carved int
	// Steps counts the candidates resolved during the last growth pass.
	Steps int
	Front int
	// MeanZ and MedianZ describe the height of the surface vertices.
	MeanZ, MedianZ float64
}

// Stats returns statistics of the current surface.
func (h *Hull) Stats() Stats {
	s := Stats{Steps: h.steps, Front: len(h.front) + len(h.held)}
	verts := make(map[int]bool)
	edges := make(map[int]bool)
	for _, tri := range h.Triangles {
		if !tri.IsSurface {
			continue
		}
		s.Faces++
		for _, v := range tri.Vertices {
			verts[v] = true
		}
		for _, e := range tri.Edges {
			edges[e] = true
		}
	}
	for _, t := range h.Tetrahedra {
		if t.Seen {
			s.Carved++
		}
	}
	s.Vertices, s.Edges = len(verts), len(edges)
	if len(verts) == 0 {
		return s
	}
	z := make([]float64, 0, len(verts))
	for v := range verts {
		z = append(z, h.Vertices[v].Pos.Z)
	}
	sort.Float64s(z)
	s.MeanZ = stat.Mean(z, nil)
	s.MedianZ = stat.Quantile(0.5, stat.Empirical, z, nil)
	return s
}
