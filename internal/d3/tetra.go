package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Orient returns six times the signed volume of the tetrahedron abcd.
// It is positive when d lies on the side of plane abc that its right handed
// normal points to.
func Orient(a, b, c, d r3.Vec) float64 {
	return r3.Dot(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)), r3.Sub(d, a))
}

// Circumsphere returns the center and squared radius of the sphere passing
// through a, b, c and d. ok is false when the tetrahedron is flat, that is
// when |6*volume| <= tol times the product of the edge lengths from a.
func Circumsphere(a, b, c, d r3.Vec, tol float64) (center r3.Vec, r2 float64, ok bool) {
	u := r3.Sub(b, a)
	v := r3.Sub(c, a)
	w := r3.Sub(d, a)
	vw := r3.Cross(v, w)
	den := 2 * r3.Dot(u, vw)
	scale := r3.Norm(u) * r3.Norm(v) * r3.Norm(w)
	if scale == 0 || !(math.Abs(den) > 2*tol*scale) {
		return r3.Vec{}, 0, false
	}
	off := r3.Add(r3.Scale(r3.Norm2(u), vw), r3.Scale(r3.Norm2(v), r3.Cross(w, u)))
	off = r3.Add(off, r3.Scale(r3.Norm2(w), r3.Cross(u, v)))
	off = r3.Scale(1/den, off)
	return r3.Add(a, off), r3.Norm2(off), true
}
