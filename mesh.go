package concave

import (
	"github.com/soypat/concave/internal/d3"
	"github.com/soypat/concave/internal/delaunay"
)

// build fills the vertex, edge, triangle and tetrahedron stores from a
// tetrahedralization. Edges and triangles are unique by their sorted vertex
// tuple.
func (h *Hull) build(tet *delaunay.Tetrahedralization) {
	h.Vertices = make([]Vertex, len(tet.Points))
	for i, p := range tet.Points {
		h.Vertices[i].Pos = p
	}
	edges := make(map[[2]int]int, 7*len(tet.Points))
	triangles := make(map[[3]int]int, 2*len(tet.Tetras))
	h.Tetrahedra = make([]Tetrahedron, len(tet.Tetras))
	for ti, v := range tet.Tetras {
		t := &h.Tetrahedra[ti]
		t.ID = ti
		t.Vertices = v
		t.Neighbours = tet.Neighbors[ti]
		for i := range v {
			key := sort3(faceOf(v, i))
			tri, ok := triangles[key]
			if ok {
				h.Triangles[tri].Tetrahedra[1] = ti
			} else {
				tri = len(h.Triangles)
				triangles[key] = tri
				h.Triangles = append(h.Triangles, Triangle{
					Vertices:   key,
					Edges:      h.edgesOf(edges, key),
					Tetrahedra: [2]int{ti, None},
				})
			}
			t.Triangles[i] = tri
		}
	}
	h.onHull = make([]bool, len(h.Vertices))
	for _, tri := range h.Triangles {
		if tri.Tetrahedra[1] == None {
			for _, v := range tri.Vertices {
				h.onHull[v] = true
			}
		}
	}
}

func (h *Hull) edgesOf(edges map[[2]int]int, v [3]int) (e [3]int) {
	for i := range v {
		key := [2]int{v[(i+1)%3], v[(i+2)%3]}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		idx, ok := edges[key]
		if !ok {
			idx = len(h.Edges)
			edges[key] = idx
			h.Edges = append(h.Edges, Edge{Vertices: key})
		}
		e[i] = idx
	}
	return e
}

// OnHull reports whether vertex v lies on the convex hull of the point set.
func (h *Hull) OnHull(v int) bool { return h.onHull[v] }

// apex returns the vertex of tetrahedron t that is not on triangle tri.
func (h *Hull) apex(t, tri int) int {
	tet := &h.Tetrahedra[t]
	for i, ti := range tet.Triangles {
		if ti == tri {
			return tet.Vertices[i]
		}
	}
	panic("triangle is not a face of tetrahedron")
}

// neighbourAcross returns the tetrahedron sharing triangle tri with t.
func (h *Hull) neighbourAcross(t, tri int) int {
	slots := h.Triangles[tri].Tetrahedra
	if slots[0] == t {
		return slots[1]
	}
	return slots[0]
}

func (h *Hull) triangle(tri int) d3.Triangle {
	v := h.Triangles[tri].Vertices
	return d3.Triangle{h.Vertices[v[0]].Pos, h.Vertices[v[1]].Pos, h.Vertices[v[2]].Pos}
}

// faceOf returns the vertices of v other than v[i].
func faceOf(v [4]int, i int) (f [3]int) {
	k := 0
	for j, x := range v {
		if j != i {
			f[k] = x
			k++
		}
	}
	return f
}

func sort3(k [3]int) [3]int {
	if k[0] > k[1] {
		k[0], k[1] = k[1], k[0]
	}
	if k[1] > k[2] {
		k[1], k[2] = k[2], k[1]
	}
	if k[0] > k[1] {
		k[0], k[1] = k[1], k[0]
	}
	return k
}
