package concave

import (
	"errors"

	"github.com/soypat/concave/internal/delaunay"
)

var (
	// ErrDegenerate is returned by New for point sets without 4 affinely
	// independent points.
	ErrDegenerate = delaunay.ErrDegenerate
	// ErrNonFinite is returned by New for points with NaN or infinite
	// coordinates.
	ErrNonFinite = errors.New("non-finite point coordinates")
)
