package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a triangle in 3D space.
type Triangle [3]r3.Vec

// Normal returns the unnormalized normal of the triangle following the
// right hand rule over its vertex order.
func (t Triangle) Normal() r3.Vec {
	return r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
}

// Side returns the signed distance of p from the plane of the triangle
// scaled by twice the triangle's area.
func (t Triangle) Side(p r3.Vec) float64 {
	return r3.Dot(r3.Sub(p, t[0]), t.Normal())
}

// Circumcircle returns the center and squared radius of the circle passing
// through the triangle's vertices. ok is false for collinear vertices.
func (t Triangle) Circumcircle() (center r3.Vec, r2 float64, ok bool) {
	u := r3.Sub(t[1], t[0])
	v := r3.Sub(t[2], t[0])
	n := r3.Cross(u, v)
	n2 := r3.Norm2(n)
	if n2 == 0 || math.IsNaN(n2) {
		return r3.Vec{}, 0, false
	}
	off := r3.Add(r3.Scale(r3.Norm2(v), r3.Cross(n, u)), r3.Scale(r3.Norm2(u), r3.Cross(v, n)))
	off = r3.Scale(1/(2*n2), off)
	return r3.Add(t[0], off), r3.Norm2(off), true
}
