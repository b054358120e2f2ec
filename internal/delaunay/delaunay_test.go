package delaunay

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/markus-wa/quickhull-go/v2"
	"github.com/soypat/concave/internal/d3"
	gr3 "gonum.org/v1/gonum/spatial/r3"
)

func randomPoints(n int, seed int64) []gr3.Vec {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]gr3.Vec, n)
	for i := range pts {
		pts[i] = gr3.Vec{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()}
	}
	return pts
}

func TestTetrahedralizeAdjacency(t *testing.T) {
	for _, n := range []int{4, 5, 30, 300} {
		tet, err := Tetrahedralize(randomPoints(n, int64(n)), 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(tet.Skipped) != 0 {
			t.Errorf("n=%d: unexpected skipped points %v", n, tet.Skipped)
		}
		if len(tet.Tetras) != len(tet.Neighbors) {
			t.Fatalf("n=%d: %d tetras with %d neighbour entries", n, len(tet.Tetras), len(tet.Neighbors))
		}
		for ti, v := range tet.Tetras {
			p := tet.Points
			if vol := d3.Orient(p[v[0]], p[v[1]], p[v[2]], p[v[3]]); vol == 0 {
				t.Errorf("n=%d: tetrahedron %d is flat", n, ti)
			}
			for i, nb := range tet.Neighbors[ti] {
				if nb < 0 {
					continue
				}
				back := -1
				for j, x := range tet.Neighbors[nb] {
					if x == ti {
						back = j
					}
				}
				if back < 0 {
					t.Fatalf("n=%d: neighbour %d of %d does not point back", n, nb, ti)
				}
				if key(v, i) != key(tet.Tetras[nb], back) {
					t.Errorf("n=%d: tetrahedra %d and %d are not joined by a shared face", n, ti, nb)
				}
			}
		}
	}
}

func TestTetrahedralizeEmptySphere(t *testing.T) {
	pts := randomPoints(150, 7)
	tet, err := Tetrahedralize(pts, 3)
	if err != nil {
		t.Fatal(err)
	}
	for ti, v := range tet.Tetras {
		c, r2, ok := d3.Circumsphere(pts[v[0]], pts[v[1]], pts[v[2]], pts[v[3]], 1e-12)
		if !ok {
			t.Fatalf("tetrahedron %d is degenerate", ti)
		}
		for pi, p := range pts {
			if d2 := gr3.Norm2(gr3.Sub(p, c)); d2 < r2*(1-1e-8) {
				t.Errorf("point %d inside circumsphere of tetrahedron %d", pi, ti)
			}
		}
	}
}

func TestTetrahedralizeConvexHull(t *testing.T) {
	pts := randomPoints(200, 42)
	tet, err := Tetrahedralize(pts, 0)
	if err != nil {
		t.Fatal(err)
	}
	var got []faceKey
	for ti, v := range tet.Tetras {
		for i, nb := range tet.Neighbors[ti] {
			if nb < 0 {
				got = append(got, key(v, i))
			}
		}
	}

	qpts := make([]r3.Vector, len(pts))
	for i, p := range pts {
		qpts[i] = r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
	}
	hull := new(quickhull.QuickHull).ConvexHull(qpts, true, true, 1e-12)
	var want []faceKey
	for i := 0; i+2 < len(hull.Indices); i += 3 {
		want = append(want, key([4]int{-1, hull.Indices[i], hull.Indices[i+1], hull.Indices[i+2]}, 0))
	}
	sortKeys(got)
	sortKeys(want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("hull faces mismatch (-quickhull +delaunay):\n%s", diff)
	}
}

func TestTetrahedralizeDuplicates(t *testing.T) {
	pts := randomPoints(20, 5)
	pts = append(pts, pts[3], pts[11])
	tet, err := Tetrahedralize(pts, 9)
	if err != nil {
		t.Fatal(err)
	}
	if len(tet.Skipped) != 2 {
		t.Fatalf("want 2 skipped duplicates, got %v", tet.Skipped)
	}
	for _, s := range tet.Skipped {
		if s != 3 && s != 11 && s != 20 && s != 21 {
			t.Errorf("skipped point %d is not a duplicate", s)
		}
	}
}

func TestTetrahedralizeGrid(t *testing.T) {
	// Cospherical and coplanar points exercise the tolerance paths.
	var pts []gr3.Vec
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				pts = append(pts, gr3.Vec{X: float64(i), Y: float64(j), Z: float64(k)})
			}
		}
	}
	tet, err := Tetrahedralize(pts, 11)
	if err != nil {
		t.Fatal(err)
	}
	var vol float64
	for _, v := range tet.Tetras {
		vol += math.Abs(d3.Orient(pts[v[0]], pts[v[1]], pts[v[2]], pts[v[3]])) / 6
	}
	inserted := len(pts) - len(tet.Skipped)
	if inserted < 8 {
		t.Fatalf("only %d points inserted", inserted)
	}
	if vol > 27+1e-9 {
		t.Errorf("tetrahedra volume %g exceeds the grid volume 27", vol)
	}
	if len(tet.Skipped) == 0 && math.Abs(vol-27) > 1e-9 {
		t.Errorf("tetrahedra volume %g does not fill the grid volume 27", vol)
	}
}

func TestTetrahedralizeDegenerate(t *testing.T) {
	for name, pts := range map[string][]gr3.Vec{
		"few":       {{}, {X: 1}, {Y: 1}},
		"coincide":  {{X: 1}, {X: 1}, {X: 1}, {X: 1}},
		"collinear": {{}, {X: 1}, {X: 2}, {X: 3}, {X: 4}},
		"coplanar":  {{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}, {X: 0.5, Y: 0.3}},
	} {
		_, err := Tetrahedralize(pts, 0)
		if !errors.Is(err, ErrDegenerate) {
			t.Errorf("%s: want ErrDegenerate, got %v", name, err)
		}
	}
	_, err := Tetrahedralize([]gr3.Vec{{}, {X: 1}, {Y: 1}, {Z: math.NaN()}}, 0)
	if err == nil || errors.Is(err, ErrDegenerate) {
		t.Errorf("want non-finite error, got %v", err)
	}
}

func sortKeys(k []faceKey) {
	sort.Slice(k, func(i, j int) bool {
		a, b := k[i], k[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
}
