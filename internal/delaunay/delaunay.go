// Package delaunay computes the Delaunay tetrahedralization of a 3D point set
// by incremental Bowyer-Watson insertion.
//
// The triangulation is closed by a ghost vertex at infinity: every face of the
// convex hull is shared between a finite tetrahedron and a ghost cell. Points
// outside the current hull conflict with the ghost cells whose hull face they
// can see, so the final boundary is exactly the convex hull of the input.
package delaunay

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/soypat/concave/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerate is returned when the point set has no 4 affinely independent
// points.
var ErrDegenerate = errors.New("degenerate point set")

const (
	ghost = -1
	// relative tolerance of distance based predicates, scaled by the bounding
	// box diagonal.
	relEps = 1e-10
	// relative shrink of circumsphere radii in the in-sphere test.
	sphereTol = 1e-12
)

// Tetrahedralization is the finite part of a Delaunay tetrahedralization.
// Neighbors[t][i] is the tetrahedron sharing the face of t opposite
// Tetras[t][i], or -1 if that face lies on the convex hull.
type Tetrahedralization struct {
	Points    []r3.Vec
	Tetras    [][4]int
	Neighbors [][4]int
	// Skipped lists in ascending order the indices of points that were not
	// inserted, either coincident with an inserted point or numerically
	// unplaceable.
	Skipped []int
}

// Tetrahedralize computes the Delaunay tetrahedralization of points. Points
// after the initial simplex are inserted in an order shuffled by seed.
func Tetrahedralize(points []r3.Vec, seed int64) (*Tetrahedralization, error) {
	if len(points) < 4 {
		return nil, fmt.Errorf("need at least 4 points, got %d: %w", len(points), ErrDegenerate)
	}
	for i, p := range points {
		if !d3.IsFinite(p) {
			return nil, fmt.Errorf("point %d has non-finite coordinates %v", i, p)
		}
	}
	diag := d3.BoundingBox(points).Diagonal()
	if diag == 0 {
		return nil, fmt.Errorf("all points coincide: %w", ErrDegenerate)
	}
	b := &builder{
		pts:   points,
		vcell: make([]int, len(points)),
		eps:   relEps * diag,
	}
	for i := range b.vcell {
		b.vcell[i] = -1
	}
	if err := b.initial(); err != nil {
		return nil, err
	}
	var skipped []int
	for _, pi := range rand.New(rand.NewSource(seed)).Perm(len(points)) {
		if b.vcell[pi] >= 0 {
			continue
		}
		if !b.insert(pi) {
			skipped = append(skipped, pi)
		}
	}
	sort.Ints(skipped)
	return b.finish(skipped), nil
}

// cell is a tetrahedron of the triangulation. A cell with a ghost vertex is a
// ghost cell whose only finite face lies on the convex hull.
type cell struct {
	v, n [4]int
	dead bool
	// Finite cells cache their circumsphere. Ghost cells cache the outward unit
	// normal and circumcircle of their hull face.
	c    r3.Vec
	r2   float64
	nrm  r3.Vec
	flat bool
}

// ghostAt returns the position of the ghost vertex in c or -1 for finite cells.
func (c *cell) ghostAt() int {
	for i, v := range c.v {
		if v == ghost {
			return i
		}
	}
	return -1
}

type kdPoint struct {
	r3.Vec
	idx int
}

func (p kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(kdPoint)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	case 2:
		return p.Z - q.Z
	}
	panic("illegal dimension")
}

func (p kdPoint) Dims() int { return 3 }

func (p kdPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(kdPoint)
	return r3.Norm2(r3.Sub(p.Vec, q.Vec))
}

type builder struct {
	pts   []r3.Vec
	cells []cell
	// vcell holds a live cell incident to each inserted vertex, -1 for points
	// not yet inserted.
	vcell []int
	tree  kdtree.Tree
	eps   float64
}

// initial builds the first finite cell from 4 affinely independent points and
// closes it with 4 ghost cells.
func (b *builder) initial() error {
	var sel [4]int
	a := b.pts[0]
	best := -1.
	for i, p := range b.pts {
		if d := r3.Norm(r3.Sub(p, a)); d > best {
			best, sel[1] = d, i
		}
	}
	ab := r3.Sub(b.pts[sel[1]], a)
	best = -1
	for i, p := range b.pts {
		if d := r3.Norm(r3.Cross(ab, r3.Sub(p, a))) / r3.Norm(ab); d > best {
			best, sel[2] = d, i
		}
	}
	if best <= b.eps {
		return fmt.Errorf("points are collinear: %w", ErrDegenerate)
	}
	nrm := r3.Unit(r3.Cross(ab, r3.Sub(b.pts[sel[2]], a)))
	best = -1
	for i, p := range b.pts {
		if d := math.Abs(r3.Dot(nrm, r3.Sub(p, a))); d > best {
			best, sel[3] = d, i
		}
	}
	if best <= b.eps {
		return fmt.Errorf("points are coplanar: %w", ErrDegenerate)
	}
	if d3.Orient(b.pts[sel[0]], b.pts[sel[1]], b.pts[sel[2]], b.pts[sel[3]]) < 0 {
		sel[1], sel[2] = sel[2], sel[1]
	}

	fresh := []cell{{v: sel}}
	for i := range sel {
		g := cell{v: sel}
		g.v[i] = ghost
		fresh = append(fresh, g)
	}
	ids := []int{0, 1, 2, 3, 4}
	if !link(fresh, ids, []int{-1, -1, -1, -1, -1}) {
		panic("unlinked initial simplex")
	}
	b.cells = fresh
	for ci := range b.cells {
		b.cache(ci)
	}
	for _, vi := range sel {
		b.vcell[vi] = 0
		b.tree.Insert(kdPoint{Vec: b.pts[vi], idx: vi}, false)
	}
	return nil
}

// insert adds point pi to the triangulation. It reports false if the point
// was skipped.
func (b *builder) insert(pi int) bool {
	p := b.pts[pi]
	nearest, d2 := b.tree.Nearest(kdPoint{Vec: p})
	if math.Sqrt(d2) <= b.eps {
		return false // Duplicate.
	}
	start := b.locate(p, b.vcell[nearest.(kdPoint).idx])
	if start < 0 {
		return false
	}
	excluded := make(map[int]bool)
	for {
		cavity, faces, bad := b.cavity(p, start, excluded)
		if bad < 0 {
			return b.fill(pi, cavity, faces)
		}
		if bad == start {
			return false
		}
		excluded[bad] = true
	}
}

// locate returns a cell in conflict with p, walking from cell start. It
// returns -1 if no cell conflicts with p.
func (b *builder) locate(p r3.Vec, start int) int {
	ci := start
walk:
	for step := 0; step < len(b.cells); step++ {
		c := &b.cells[ci]
		if g := c.ghostAt(); g >= 0 {
			if b.conflict(ci, p) {
				return ci
			}
			ci = c.n[g]
			continue
		}
		for k := 0; k < 4; k++ {
			i := (k + step) % 4
			f := b.tri(c.v, i)
			if f.Side(p)*f.Side(b.pts[c.v[i]]) < 0 {
				ci = c.n[i]
				continue walk
			}
		}
		// p is inside or on the boundary of c.
		if b.conflict(ci, p) {
			return ci
		}
		break
	}
	for _, wantGhost := range []bool{false, true} {
		for ci := range b.cells {
			c := &b.cells[ci]
			if !c.dead && (c.ghostAt() >= 0) == wantGhost && b.conflict(ci, p) {
				return ci
			}
		}
	}
	return -1
}

// conflict reports whether p lies strictly inside the circumsphere of cell
// ci. Ghost cells conflict with points beyond their hull face, or coplanar
// with it and inside its circumcircle.
func (b *builder) conflict(ci int, p r3.Vec) bool {
	c := &b.cells[ci]
	g := c.ghostAt()
	if g < 0 {
		if c.flat {
			return true
		}
		return r3.Norm2(r3.Sub(p, c.c)) < c.r2*(1-sphereTol)
	}
	s := r3.Dot(c.nrm, r3.Sub(p, b.pts[c.v[(g+1)%4]]))
	if s > b.eps {
		return true
	}
	if s < -b.eps || c.flat {
		return false
	}
	return r3.Norm2(r3.Sub(p, c.c)) < c.r2*(1-sphereTol)
}

// bface is the face of cavity cell c opposite its vertex i.
type bface struct {
	c, i int
}

// cavity gathers the connected set of cells in conflict with p around start,
// ignoring excluded cells. If the cavity is not star-shaped from p, bad is a
// cell to exclude before trying again; otherwise bad is -1.
func (b *builder) cavity(p r3.Vec, start int, excluded map[int]bool) (cells []int, faces []bface, bad int) {
	in := map[int]bool{start: true}
	cells = append(cells, start)
	for k := 0; k < len(cells); k++ {
		for _, nb := range b.cells[cells[k]].n {
			if in[nb] || excluded[nb] || !b.conflict(nb, p) {
				continue
			}
			in[nb] = true
			cells = append(cells, nb)
		}
	}

	onBoundary := make(map[int]bool)
	for _, ci := range cells {
		c := &b.cells[ci]
		for i, nb := range c.n {
			if in[nb] {
				continue
			}
			if !b.visible(p, ci, i) {
				return nil, nil, ci
			}
			faces = append(faces, bface{c: ci, i: i})
			for j, v := range c.v {
				if j != i {
					onBoundary[v] = true
				}
			}
		}
	}
	// Every vertex of the cavity must survive on its boundary.
	for _, ci := range cells {
		for _, v := range b.cells[ci].v {
			if v != ghost && !onBoundary[v] {
				return nil, nil, b.firstOther(cells, v, start)
			}
		}
	}
	return cells, faces, -1
}

// firstOther returns a cell of cells other than start containing vertex v.
func (b *builder) firstOther(cells []int, v, start int) int {
	for _, ci := range cells {
		if ci == start {
			continue
		}
		for _, w := range b.cells[ci].v {
			if w == v {
				return ci
			}
		}
	}
	return start
}

// visible reports whether joining p with the face of cell ci opposite vertex
// i yields a proper cell.
func (b *builder) visible(p r3.Vec, ci, i int) bool {
	c := &b.cells[ci]
	g := c.ghostAt()
	switch {
	case g < 0:
		f := b.tri(c.v, i)
		dp, dv := b.dist(f, p), b.dist(f, b.pts[c.v[i]])
		return math.Abs(dp) > b.eps && dp*dv > 0
	case g == i:
		// Hull face, the outside cell is finite.
		f := b.tri(c.v, i)
		out := &b.cells[c.n[i]]
		apex := b.pts[out.v[slot(out, c.v, i)]]
		dp, da := b.dist(f, p), b.dist(f, apex)
		return math.Abs(dp) > b.eps && dp*da < 0
	default:
		// Face through the ghost vertex: p must not be collinear with the
		// finite edge.
		var e [2]r3.Vec
		k := 0
		for j, v := range c.v {
			if j != i && v != ghost {
				e[k] = b.pts[v]
				k++
			}
		}
		u := r3.Sub(e[1], e[0])
		w := r3.Cross(u, r3.Sub(p, e[0]))
		if r3.Norm(w)/r3.Norm(u) <= b.eps {
			return false
		}
		// When p is coplanar with the neighbouring hull face the new hull
		// face must not fold over it.
		out := &b.cells[c.n[i]]
		if math.Abs(r3.Dot(out.nrm, r3.Sub(p, e[0]))) > b.eps {
			return true
		}
		q := b.pts[out.v[slot(out, c.v, i)]]
		sp := r3.Dot(w, out.nrm)
		sq := r3.Dot(r3.Cross(u, r3.Sub(q, e[0])), out.nrm)
		return sp*sq < 0 && math.Abs(sp)/r3.Norm(u) > b.eps
	}
}

// fill replaces the cavity cells by cells joining point pi to each boundary
// face. It reports false and leaves the triangulation unchanged if the new
// cells cannot be linked into a closed complex.
func (b *builder) fill(pi int, cavity []int, faces []bface) bool {
	fresh := make([]cell, len(faces))
	skip := make([]int, len(faces))
	for k, f := range faces {
		c := &b.cells[f.c]
		nc := cell{v: c.v, n: [4]int{-1, -1, -1, -1}}
		nc.v[f.i] = pi
		nc.n[f.i] = c.n[f.i]
		fresh[k], skip[k] = nc, f.i
	}
	ids := make([]int, len(fresh))
	next := len(b.cells)
	for k := range ids {
		if k < len(cavity) {
			ids[k] = cavity[k]
		} else {
			ids[k] = next
			next++
		}
	}
	if !link(fresh, ids, skip) {
		return false
	}
	for _, ci := range cavity[min(len(cavity), len(fresh)):] {
		b.cells[ci].dead = true
	}
	for len(b.cells) < next {
		b.cells = append(b.cells, cell{})
	}
	for k, id := range ids {
		b.cells[id] = fresh[k]
	}
	for k, f := range faces {
		out := &b.cells[fresh[k].n[f.i]]
		out.n[slot(out, fresh[k].v, f.i)] = ids[k]
	}
	for _, id := range ids {
		b.cache(id)
		for _, v := range b.cells[id].v {
			if v != ghost {
				b.vcell[v] = id
			}
		}
	}
	b.tree.Insert(kdPoint{Vec: b.pts[pi], idx: pi}, false)
	return true
}

// cache computes the conflict test data of cell ci.
func (b *builder) cache(ci int) {
	c := &b.cells[ci]
	g := c.ghostAt()
	var ok bool
	if g < 0 {
		c.c, c.r2, ok = d3.Circumsphere(b.pts[c.v[0]], b.pts[c.v[1]], b.pts[c.v[2]], b.pts[c.v[3]], sphereTol)
		c.flat = !ok
		return
	}
	f := b.tri(c.v, g)
	in := &b.cells[c.n[g]]
	apex := b.pts[in.v[slot(in, c.v, g)]]
	nrm := r3.Unit(f.Normal())
	if r3.Dot(nrm, r3.Sub(apex, f[0])) > 0 {
		nrm = r3.Scale(-1, nrm)
	}
	c.nrm = nrm
	c.c, c.r2, ok = f.Circumcircle()
	c.flat = !ok
}

// tri returns the face of v opposite v[i]. It must not contain the ghost.
func (b *builder) tri(v [4]int, i int) d3.Triangle {
	var t d3.Triangle
	k := 0
	for j, vi := range v {
		if j != i {
			t[k] = b.pts[vi]
			k++
		}
	}
	return t
}

// dist returns the signed distance of p from the plane of f.
func (b *builder) dist(f d3.Triangle, p r3.Vec) float64 {
	n := r3.Norm(f.Normal())
	if n == 0 {
		return 0
	}
	return f.Side(p) / n
}

func (b *builder) finish(skipped []int) *Tetrahedralization {
	remap := make([]int, len(b.cells))
	out := &Tetrahedralization{Points: b.pts, Skipped: skipped}
	for ci := range b.cells {
		c := &b.cells[ci]
		remap[ci] = -1
		if !c.dead && c.ghostAt() < 0 {
			remap[ci] = len(out.Tetras)
			out.Tetras = append(out.Tetras, c.v)
		}
	}
	for ci := range b.cells {
		if remap[ci] < 0 {
			continue
		}
		var nb [4]int
		for i, n := range b.cells[ci].n {
			nb[i] = remap[n]
		}
		out.Neighbors = append(out.Neighbors, nb)
	}
	return out
}

type faceKey [3]int

// key returns the sorted vertex triple of the face of v opposite v[i].
func key(v [4]int, i int) faceKey {
	var k faceKey
	j := 0
	for m, x := range v {
		if m != i {
			k[j] = x
			j++
		}
	}
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

// link pairs the faces of cells sharing the same vertices and stores the
// neighbour ids. The face of cells[k] opposite skip[k] is left untouched.
// It reports false if a face has no partner.
func link(cells []cell, ids, skip []int) bool {
	type half struct{ k, f int }
	open := make(map[faceKey]half, 2*len(cells))
	for k := range cells {
		for f := 0; f < 4; f++ {
			if f == skip[k] {
				continue
			}
			fk := key(cells[k].v, f)
			h, ok := open[fk]
			if !ok {
				open[fk] = half{k: k, f: f}
				continue
			}
			cells[k].n[f] = ids[h.k]
			cells[h.k].n[h.f] = ids[k]
			delete(open, fk)
		}
	}
	return len(open) == 0
}

// slot returns the position in c of the vertex not on the face of v opposite
// v[skip].
func slot(c *cell, v [4]int, skip int) int {
	for m, w := range c.v {
		shared := false
		for j, x := range v {
			if j != skip && x == w {
				shared = true
				break
			}
		}
		if !shared {
			return m
		}
	}
	panic("cells do not share a face")
}
