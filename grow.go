package concave

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mode selects where growth starts and in which direction it carves.
type Mode int

const (
	// ModeInwards starts from the convex hull and carves inwards.
	ModeInwards Mode = iota
	// ModeOutwards starts from the tetrahedron at the centre of the cloud and
	// inflates outwards.
	ModeOutwards
	// ModeDirectional starts from the hull faces facing against Dir and
	// carves along Dir.
	ModeDirectional
)

// Policy is a growth policy.
type Policy struct {
	Mode Mode
	// Dir is the carving direction of directional growth.
	Dir r3.Vec
}

var (
	// Inwards carves from the convex hull inwards.
	Inwards = Policy{Mode: ModeInwards}
	// Outwards inflates from the centre of the cloud.
	Outwards = Policy{Mode: ModeOutwards}
	// Upwards carves along +Z.
	Upwards = Policy{Mode: ModeDirectional, Dir: r3.Vec{Z: 1}}
	// TopDown carves along -Z.
	TopDown = Policy{Mode: ModeDirectional, Dir: r3.Vec{Z: -1}}
)

// Directional returns a policy carving along dir. It panics if dir is zero.
func Directional(dir r3.Vec) Policy {
	if r3.Norm2(dir) == 0 || math.IsNaN(r3.Norm2(dir)) {
		panic("zero or NaN growth direction")
	}
	return Policy{Mode: ModeDirectional, Dir: r3.Unit(dir)}
}

// ParsePolicy parses one of "inwards", "outwards", "upwards" or "topdown".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "inwards", "in":
		return Inwards, nil
	case "outwards", "out":
		return Outwards, nil
	case "upwards", "up":
		return Upwards, nil
	case "topdown", "down":
		return TopDown, nil
	}
	return Policy{}, fmt.Errorf("unknown growth policy %q", s)
}

func (p Policy) String() string {
	switch p.Mode {
	case ModeInwards:
		return "inwards"
	case ModeOutwards:
		return "outwards"
	case ModeDirectional:
		switch p.Dir {
		case Upwards.Dir:
			return "upwards"
		case TopDown.Dir:
			return "topdown"
		}
		return fmt.Sprintf("direction(%g,%g,%g)", p.Dir.X, p.Dir.Y, p.Dir.Z)
	}
	return "Policy(" + fmt.Sprint(int(p.Mode)) + ")"
}

// State is the growth state of a Hull.
type State int

const (
	// StateInitial is the state of a hull that has not grown yet.
	StateInitial State = iota
	// StateGrowing is the state while candidates within the bound remain.
	StateGrowing
	// StateDone is the state once the front is exhausted or bounded.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateGrowing:
		return "growing"
	case StateDone:
		return "done"
	}
	return "State(" + fmt.Sprint(int(s)) + ")"
}

// Termination tells why a growth pass stopped.
type Termination int

const (
	// Exhausted means the front ran empty.
	Exhausted Termination = iota
	// Bounded means the lowest candidate exceeded the curvature bound.
	Bounded
)

func (t Termination) String() string {
	if t == Bounded {
		return "bounded"
	}
	return "exhausted"
}

// State returns the growth state.
func (h *Hull) State() State { return h.state }

// Policy returns the policy of the last growth pass.
func (h *Hull) Policy() Policy { return h.policy }

// GrowInwards carves the hull from its convex boundary inwards.
func (h *Hull) GrowInwards(maxCurvature float64) Termination {
	return h.Grow(Inwards, maxCurvature)
}

// GrowOutwards inflates a region from the centre of the cloud outwards.
func (h *Hull) GrowOutwards(maxCurvature float64) Termination {
	return h.Grow(Outwards, maxCurvature)
}

// GrowInDirection carves from the hull faces facing against dir along dir.
// It panics if dir is zero.
func (h *Hull) GrowInDirection(maxCurvature float64, dir r3.Vec) Termination {
	return h.Grow(Directional(dir), maxCurvature)
}

// GrowUpwards carves along +Z.
func (h *Hull) GrowUpwards(maxCurvature float64) Termination {
	return h.Grow(Upwards, maxCurvature)
}

// GrowTopDown carves along -Z, peeling the cloud from above.
func (h *Hull) GrowTopDown(maxCurvature float64) Termination {
	return h.Grow(TopDown, maxCurvature)
}

// Grow resets all growth state, seeds the front according to p and carves
// until the front is exhausted or its lowest candidate exceeds maxCurvature.
func (h *Hull) Grow(p Policy, maxCurvature float64) Termination {
	if p.Mode == ModeDirectional {
		p = Directional(p.Dir)
	}
	h.reset(p)
	switch p.Mode {
	case ModeInwards, ModeDirectional:
		h.seedHull()
	case ModeOutwards:
		h.seedCentre()
	default:
		panic("unknown growth mode")
	}
	return h.Resume(maxCurvature)
}

// Resume continues growth from the current front with a new bound.
func (h *Hull) Resume(maxCurvature float64) Termination {
	start := h.steps
	term := Exhausted
	for h.Step(maxCurvature) {
		if h.state == StateDone {
			term = Bounded
			break
		}
	}
	h.log.Debug("growth pass",
		zap.Stringer("policy", h.policy),
		zap.Stringer("termination", term),
		zap.Int("steps", h.steps-start),
		zap.Int("front", len(h.front)),
		zap.Float64("level", h.level),
	)
	return term
}

// Step pops the lowest candidate of the front and resolves it. It returns
// false only if the front is empty. Candidates whose curvature exceeds
// maxCurvature are never consumed: they are set aside while a candidate
// within the bound remains queued, otherwise they are put back unchanged,
// growth is marked done and Step returns true.
func (h *Hull) Step(maxCurvature float64) bool {
	if len(h.front) == 0 {
		if len(h.held) == 0 {
			h.state = StateDone
			return false
		}
		h.restore()
		h.state = StateDone
		return true
	}
	sf := h.front.pop()
	tri := &h.Triangles[sf.Triangle]
	if sf.Curvature > maxCurvature {
		if h.front.within(maxCurvature) {
			h.held = append(h.held, sf)
			h.state = StateGrowing
			return true
		}
		h.front.push(sf)
		h.restore()
		h.state = StateDone
		return true
	}
	h.state = StateGrowing
	tri.Used = false
	h.steps++
	h.level = math.Max(h.level, sf.Key)
	tet := &h.Tetrahedra[sf.Tetrahedron]
	if tet.Seen || !tri.IsSurface {
		// Resolved while queued.
		return true
	}
	apex := h.apex(sf.Tetrahedron, sf.Triangle)
	if h.Vertices[apex].OnSurface || (h.policy.Mode != ModeOutwards && h.OnHull(apex)) {
		// Carving would pinch the surface at apex, keep the face.
		return true
	}
	tet.Seen = true
	h.Vertices[apex].OnSurface = true
	tri.IsSurface = false
	for i, ti := range tet.Triangles {
		if ti != sf.Triangle {
			h.expose(ti, tet.Neighbours[i])
		}
	}
	return true
}

// expose makes triangle tri part of the region boundary after the
// tetrahedron on its other side, nb, was carved.
func (h *Hull) expose(tri, nb int) {
	t := &h.Triangles[tri]
	if h.inRegion(nb) {
		t.IsSurface = false
		return
	}
	stale := true
	for _, e := range t.Edges {
		stale = stale && h.Edges[e].HasHadFace
		h.Edges[e].HasHadFace = true
	}
	t.IsSurface = true
	if stale || nb == None || t.Used {
		return
	}
	h.queue(nb, tri)
}

// inRegion reports whether tetrahedron t belongs to the grown region. The
// exterior belongs to it unless growing outwards.
func (h *Hull) inRegion(t int) bool {
	if t == None {
		return h.policy.Mode != ModeOutwards
	}
	return h.Tetrahedra[t].Seen
}

func (h *Hull) queue(t, tri int) {
	k := h.Curvature(t, tri)
	key := k
	if h.policy.Mode == ModeDirectional {
		// Faces whose normal into t points along the carving direction are
		// preferred.
		f := h.triangle(tri)
		n := r3.Unit(f.Normal())
		if r3.Dot(n, r3.Sub(h.Vertices[h.apex(t, tri)].Pos, f[0])) < 0 {
			n = r3.Scale(-1, n)
		}
		key *= 2 - r3.Dot(n, h.policy.Dir)
	}
	sf := SurfaceFace{Tetrahedron: t, Triangle: tri, Curvature: k, Key: math.Max(key, h.level)}
	h.front.push(sf)
	h.Triangles[tri].Used = true
	h.Triangles[tri].Cached = sf
}

func (h *Hull) reset(p Policy) {
	h.policy = p
	h.front = h.front[:0]
	h.held = h.held[:0]
	h.level = math.Inf(-1)
	h.steps = 0
	h.state = StateGrowing
	for i := range h.Vertices {
		h.Vertices[i].OnSurface = false
	}
	for i := range h.Edges {
		h.Edges[i].HasHadFace = false
	}
	for i := range h.Triangles {
		t := &h.Triangles[i]
		t.IsSurface, t.Used, t.Cached = false, false, SurfaceFace{}
	}
	for i := range h.Tetrahedra {
		h.Tetrahedra[i].Seen = false
	}
}

// seedHull exposes the convex hull faces. Directional growth only exposes the
// faces whose outward normal opposes the carving direction.
func (h *Hull) seedHull() {
	for ti := range h.Triangles {
		tri := &h.Triangles[ti]
		if tri.Tetrahedra[1] != None {
			continue
		}
		t := tri.Tetrahedra[0]
		if h.policy.Mode == ModeDirectional {
			f := h.triangle(ti)
			out := f.Normal()
			if r3.Dot(out, r3.Sub(h.Vertices[h.apex(t, ti)].Pos, f[0])) > 0 {
				out = r3.Scale(-1, out)
			}
			if r3.Dot(out, h.policy.Dir) >= 0 {
				continue
			}
		}
		h.seedFace(ti, t)
	}
}

// seedCentre marks the tetrahedron containing the centroid of the cloud, or
// the one with the nearest centroid, as the grown region.
func (h *Hull) seedCentre() {
	t := h.Locate(h.Centre)
	if t == None {
		best := math.Inf(1)
		for i := range h.Tetrahedra {
			c := h.tetraCentroid(i)
			if d := r3.Norm2(r3.Sub(c, h.Centre)); d < best {
				best, t = d, i
			}
		}
	}
	if t == None {
		return
	}
	tet := &h.Tetrahedra[t]
	tet.Seen = true
	for i, ti := range tet.Triangles {
		h.seedFace(ti, tet.Neighbours[i])
	}
}

// seedFace puts triangle ti on the region boundary with candidate t beyond it.
func (h *Hull) seedFace(ti, t int) {
	tri := &h.Triangles[ti]
	tri.IsSurface = true
	for _, v := range tri.Vertices {
		h.Vertices[v].OnSurface = true
	}
	for _, e := range tri.Edges {
		h.Edges[e].HasHadFace = true
	}
	if t != None && !h.Tetrahedra[t].Seen {
		h.queue(t, ti)
	}
}

// restore puts the candidates set aside back on the front.
func (h *Hull) restore() {
	for _, sf := range h.held {
		h.front.push(sf)
	}
	h.held = h.held[:0]
}

func (h *Hull) tetraCentroid(t int) r3.Vec {
	var c r3.Vec
	for _, v := range h.Tetrahedra[t].Vertices {
		c = r3.Add(c, h.Vertices[v].Pos)
	}
	return r3.Scale(0.25, c)
}
