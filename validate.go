package concave

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks the cross references between the mesh stores and the
// front. It returns every violation found, combined.
func (h *Hull) Validate() (err error) {
	for ti, t := range h.Tetrahedra {
		if t.ID != ti {
			err = multierr.Append(err, fmt.Errorf("tetrahedron %d has ID %d", ti, t.ID))
		}
		for i, v := range t.Vertices {
			if v < 0 || v >= len(h.Vertices) {
				err = multierr.Append(err, fmt.Errorf("tetrahedron %d has invalid vertex %d", ti, v))
				continue
			}
			for _, w := range t.Vertices[i+1:] {
				if v == w {
					err = multierr.Append(err, fmt.Errorf("tetrahedron %d repeats vertex %d", ti, v))
				}
			}
		}
		for i, tri := range t.Triangles {
			if tri < 0 || tri >= len(h.Triangles) {
				err = multierr.Append(err, fmt.Errorf("tetrahedron %d has invalid triangle %d", ti, tri))
				continue
			}
			if sort3(faceOf(t.Vertices, i)) != h.Triangles[tri].Vertices {
				err = multierr.Append(err, fmt.Errorf("triangle %d is not opposite vertex %d of tetrahedron %d", tri, i, ti))
			}
			slots := h.Triangles[tri].Tetrahedra
			if slots[0] != ti && slots[1] != ti {
				err = multierr.Append(err, fmt.Errorf("triangle %d does not reference tetrahedron %d", tri, ti))
			}
			nb := t.Neighbours[i]
			if h.neighbourAcross(ti, tri) != nb {
				err = multierr.Append(err, fmt.Errorf("tetrahedron %d neighbour %d disagrees with triangle %d", ti, nb, tri))
			}
			if nb == None {
				continue
			}
			back := false
			for _, x := range h.Tetrahedra[nb].Neighbours {
				back = back || x == ti
			}
			if !back {
				err = multierr.Append(err, fmt.Errorf("tetrahedron %d is not a neighbour of its neighbour %d", ti, nb))
			}
		}
	}
	used := 0
	for ti, tri := range h.Triangles {
		if tri.Tetrahedra[0] == None {
			err = multierr.Append(err, fmt.Errorf("triangle %d has no tetrahedron", ti))
		}
		for i, e := range tri.Edges {
			want := [2]int{tri.Vertices[(i+1)%3], tri.Vertices[(i+2)%3]}
			if want[0] > want[1] {
				want[0], want[1] = want[1], want[0]
			}
			if e < 0 || e >= len(h.Edges) || h.Edges[e].Vertices != want {
				err = multierr.Append(err, fmt.Errorf("triangle %d edge %d does not join %v", ti, e, want))
			}
		}
		if tri.Used {
			used++
		}
	}
	queued := h.Front()
	for _, sf := range queued {
		if !h.Triangles[sf.Triangle].Used {
			err = multierr.Append(err, fmt.Errorf("queued triangle %d is not marked used", sf.Triangle))
		}
	}
	if used != len(queued) {
		err = multierr.Append(err, fmt.Errorf("%d triangles marked used with %d queued", used, len(queued)))
	}
	return err
}
