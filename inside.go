package concave

import (
	"github.com/soypat/concave/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// InsideTetrahedron reports whether pos lies strictly inside t. Each of the
// four face planes is oriented by the centroid of t, so the vertices of t are
// never inside and its centroid always is. It returns false if any vertex of t
// is None.
func (h *Hull) InsideTetrahedron(pos r3.Vec, t Tetrahedron) bool {
	var pts d3.Set = make([]r3.Vec, 4)
	for i, v := range t.Vertices {
		if v == None {
			return false
		}
		pts[i] = h.Vertices[v].Pos
	}
	centroid := pts.Centroid()
	for i := range pts {
		f := d3.Triangle{pts[(i+1)%4], pts[(i+2)%4], pts[(i+3)%4]}
		if f.Side(pos)*f.Side(centroid) <= 0 {
			return false
		}
	}
	return true
}

// Locate returns the index of the tetrahedron containing pos, or None if pos
// lies outside the hull or on a face.
func (h *Hull) Locate(pos r3.Vec) int {
	for i := range h.Tetrahedra {
		if h.InsideTetrahedron(pos, h.Tetrahedra[i]) {
			return i
		}
	}
	return None
}
