// Package concave extracts tightly fitting surface meshes from 3D point clouds.
//
// A Hull is built once from a point set as a Delaunay tetrahedralization with
// cross referenced vertex, edge, triangle and tetrahedron stores. Growth then
// carves tetrahedra away from a region in order of increasing curvature of the
// exposed faces until the curvature bound is reached or no candidate remains.
// The faces on the boundary of the carved region form the surface.
package concave

import (
	"fmt"

	"github.com/soypat/concave/internal/d3"
	"github.com/soypat/concave/internal/delaunay"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// None is the sentinel index of an absent vertex, triangle or tetrahedron.
// As a tetrahedron neighbour it stands for the unbounded exterior.
const None = -1

// Vertex is a point of the input cloud.
type Vertex struct {
	Pos r3.Vec
	// OnSurface is set once the vertex becomes part of the grown surface.
	OnSurface bool
}

// Edge joins two vertices, stored in ascending order.
type Edge struct {
	Vertices [2]int
	// HasHadFace is set when a triangle containing the edge was exposed.
	HasHadFace bool
}

// Triangle is a face shared by at most two tetrahedra.
type Triangle struct {
	// Vertices in ascending order.
	Vertices [3]int
	// Edges[i] joins the two vertices other than Vertices[i].
	Edges [3]int
	// Tetrahedra sharing the triangle. Tetrahedra[1] is None for triangles on
	// the convex hull.
	Tetrahedra [2]int
	IsSurface  bool
	// Used is set while the triangle is queued on the front, with the queued
	// record in Cached.
	Used   bool
	Cached SurfaceFace
}

// Tetrahedron is a cell of the tetrahedralization. Triangles[i] and
// Neighbours[i] are the face and the adjacent tetrahedron opposite
// Vertices[i].
type Tetrahedron struct {
	Vertices   [4]int
	Triangles  [4]int
	Neighbours [4]int
	ID         int
	// Seen is set once the tetrahedron belongs to the grown region.
	Seen bool
}

// Hull is a tetrahedralized point cloud together with the state of surface
// growth over it. A Hull must not be used concurrently.
type Hull struct {
	Vertices   []Vertex
	Edges      []Edge
	Triangles  []Triangle
	Tetrahedra []Tetrahedron
	// Centre is the centroid of all input points.
	Centre r3.Vec
	// Skipped lists input points that are not part of any tetrahedron.
	Skipped []int

	log    *zap.Logger
	onHull []bool
	front  front
	// held are candidates above the bound set aside while candidates within
	// it remain queued.
	held front
	// level is the highest key popped during the current pass.
	level  float64
	state  State
	policy Policy
	steps  int
}

type config struct {
	log  *zap.Logger
	seed int64
}

// Option configures New.
type Option func(*config)

// WithLogger sets the logger of the hull. The default discards all output.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithSeed sets the seed of the point insertion order of the
// tetrahedralization. Equal seeds yield equal hulls.
func WithSeed(seed int64) Option {
	return func(c *config) { c.seed = seed }
}

// New tetrahedralizes points and builds the cross referenced mesh stores. It
// returns an error wrapping ErrDegenerate when fewer than 4 points are given or
// no 4 points are affinely independent, and ErrNonFinite if any coordinate is
// NaN or infinite.
func New(points []r3.Vec, opts ...Option) (*Hull, error) {
	cfg := config{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	for i, p := range points {
		if !d3.IsFinite(p) {
			return nil, fmt.Errorf("point %d %v: %w", i, p, ErrNonFinite)
		}
	}
	tet, err := delaunay.Tetrahedralize(points, cfg.seed)
	if err != nil {
		return nil, fmt.Errorf("tetrahedralize %d points: %w", len(points), err)
	}
	h := &Hull{
		Centre:  d3.Set(points).Centroid(),
		Skipped: tet.Skipped,
		log:     cfg.log,
	}
	h.build(tet)
	if len(h.Skipped) > 0 {
		h.log.Warn("points skipped by tetrahedralization", zap.Int("count", len(h.Skipped)), zap.Ints("indices", h.Skipped))
	}
	h.log.Debug("hull built",
		zap.Int("vertices", len(h.Vertices)),
		zap.Int("edges", len(h.Edges)),
		zap.Int("triangles", len(h.Triangles)),
		zap.Int("tetrahedra", len(h.Tetrahedra)),
	)
	return h, nil
}
