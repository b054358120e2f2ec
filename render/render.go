package render

import (
	"io"

	"gonum.org/v1/gonum/spatial/r3"
)

// Renderer streams the triangles of a model. ReadTriangles fills t and returns
// the number of triangles written. It returns io.EOF once the model is
// exhausted.
type Renderer interface {
	ReadTriangles(t []Triangle3) (int, error)
}

// Triangle3 is a 3D triangle with counter clockwise winding seen from the
// side its normal points to.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Degenerate returns true if two vertices of the triangle are within tol of
// each other.
func (t Triangle3) Degenerate(tol float64) bool {
	return r3.Norm(r3.Sub(t.V[0], t.V[1])) <= tol ||
		r3.Norm(r3.Sub(t.V[1], t.V[2])) <= tol ||
		r3.Norm(r3.Sub(t.V[2], t.V[0])) <= tol
}

type meshRenderer struct {
	unwritten triangle3Buffer
}

// NewMeshRenderer returns a Renderer over the triangles of an indexed mesh.
// It panics if a face references a vertex out of range.
func NewMeshRenderer(vertices []r3.Vec, faces [][3]int) Renderer {
	buf := make([]Triangle3, len(faces))
	for i, f := range faces {
		for j, v := range f {
			if v < 0 || v >= len(vertices) {
				panic("face references vertex out of range")
			}
			buf[i].V[j] = vertices[v]
		}
	}
	return &meshRenderer{unwritten: triangle3Buffer{buf: buf}}
}

func (m *meshRenderer) ReadTriangles(dst []Triangle3) (int, error) {
	if m.unwritten.Len() == 0 {
		return 0, io.EOF
	}
	return m.unwritten.Read(dst), nil
}
