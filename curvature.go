package concave

import (
	"math"

	"github.com/soypat/concave/internal/d3"
)

// MaxCurvature is returned by Curvature for flat or numerically degenerate
// tetrahedra.
const MaxCurvature = 1e12

// flatness below which a tetrahedron has no meaningful circumsphere.
const curvatureTol = 1e-10

// Curvature returns 1/R where R is the radius of the sphere through the
// vertices of triangle tri and the apex of tetrahedron t opposite it. The
// flatter the candidate, the lower the curvature.
func (h *Hull) Curvature(t, tri int) float64 {
	f := h.triangle(tri)
	apex := h.Vertices[h.apex(t, tri)].Pos
	_, r2, ok := d3.Circumsphere(f[0], f[1], f[2], apex, curvatureTol)
	if !ok {
		return MaxCurvature
	}
	k := 1 / math.Sqrt(r2)
	if math.IsNaN(k) || k > MaxCurvature {
		return MaxCurvature
	}
	return k
}
