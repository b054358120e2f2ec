package concave

import (
	"container/heap"
	"sort"
)

// SurfaceFace is a candidate of the front: carving tetrahedron Tetrahedron
// through its face Triangle.
type SurfaceFace struct {
	Tetrahedron int
	Triangle    int
	// Curvature of the candidate, compared against the growth bound.
	Curvature float64
	// Key is the priority of the candidate. It equals Curvature scaled by the
	// direction bias of directional growth, raised to the highest key popped
	// so far in the pass.
	Key float64
}

// Less orders faces by key, then triangle and then tetrahedron index.
func (a SurfaceFace) Less(b SurfaceFace) bool {
	if a.Key != b.Key {
		return a.Key < b.Key
	}
	if a.Triangle != b.Triangle {
		return a.Triangle < b.Triangle
	}
	return a.Tetrahedron < b.Tetrahedron
}

// front is a min-heap of candidate faces.
type front []SurfaceFace

func (f front) Len() int            { return len(f) }
func (f front) Less(i, j int) bool  { return f[i].Less(f[j]) }
func (f front) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *front) Push(x interface{}) { *f = append(*f, x.(SurfaceFace)) }
func (f *front) Pop() interface{} {
	old := *f
	n := len(old)
	x := old[n-1]
	*f = old[:n-1]
	return x
}

func (f *front) push(sf SurfaceFace) { heap.Push(f, sf) }

func (f *front) pop() SurfaceFace { return heap.Pop(f).(SurfaceFace) }

// within reports whether any queued candidate has curvature at most bound.
func (f front) within(bound float64) bool {
	for _, sf := range f {
		if sf.Curvature <= bound {
			return true
		}
	}
	return false
}

// Front returns the queued candidates sorted from lowest to highest key.
func (h *Hull) Front() []SurfaceFace {
	snap := make([]SurfaceFace, 0, len(h.front)+len(h.held))
	snap = append(snap, h.front...)
	snap = append(snap, h.held...)
	sort.Slice(snap, func(i, j int) bool { return snap[i].Less(snap[j]) })
	return snap
}
