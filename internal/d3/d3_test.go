package d3

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestCircumsphere(t *testing.T) {
	const tol = 1e-12
	for _, test := range []struct {
		a, b, c, d r3.Vec
		center     r3.Vec
		r          float64
	}{
		{a: r3.Vec{}, b: r3.Vec{X: 1}, c: r3.Vec{Y: 1}, d: r3.Vec{Z: 1}, center: r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, r: math.Sqrt(0.75)},
		{a: r3.Vec{X: 2}, b: r3.Vec{X: -2}, c: r3.Vec{Y: 2}, d: r3.Vec{Z: -2}, center: r3.Vec{}, r: 2},
	} {
		center, r2, ok := Circumsphere(test.a, test.b, test.c, test.d, 1e-12)
		if !ok {
			t.Fatalf("unexpected degenerate tetrahedron %v", test)
		}
		if !EqualWithin(center, test.center, tol) {
			t.Errorf("got center %v, want %v", center, test.center)
		}
		if math.Abs(math.Sqrt(r2)-test.r) > tol {
			t.Errorf("got radius %g, want %g", math.Sqrt(r2), test.r)
		}
	}
	_, _, ok := Circumsphere(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{X: 1, Y: 1}, 1e-12)
	if ok {
		t.Error("coplanar tetrahedron must be reported degenerate")
	}
}

func TestCircumcircle(t *testing.T) {
	tri := Triangle{{}, {X: 1}, {Y: 1}}
	center, r2, ok := tri.Circumcircle()
	if !ok {
		t.Fatal("unexpected collinear triangle")
	}
	if !EqualWithin(center, r3.Vec{X: 0.5, Y: 0.5}, 1e-14) || math.Abs(r2-0.5) > 1e-14 {
		t.Errorf("got center %v r2 %g", center, r2)
	}
	if _, _, ok = (Triangle{{}, {X: 1}, {X: 2}}).Circumcircle(); ok {
		t.Error("collinear triangle must not have a circumcircle")
	}
}

func TestOrient(t *testing.T) {
	a, b, c := r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1}
	if Orient(a, b, c, r3.Vec{Z: 1}) <= 0 {
		t.Error("point above counter clockwise triangle should orient positive")
	}
	if Orient(a, b, c, r3.Vec{Z: -1}) >= 0 {
		t.Error("point below counter clockwise triangle should orient negative")
	}
	if got := (Triangle{a, b, c}).Side(r3.Vec{Z: 2}); got != 2 {
		t.Errorf("got side %g, want 2", got)
	}
}
