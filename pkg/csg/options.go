package csg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/csgkit/pkg/bsp"
)

// ErrInvalidMesh is returned when an operand is not a well-formed triangle
// list: the index count is not a multiple of three or an index points past
// the vertex array.
var ErrInvalidMesh = errors.New("invalid mesh")

// ErrVertexLimit is returned when a result needs more vertices than 16-bit
// indices can address and the overflow policy is OverflowReject.
var ErrVertexLimit = errors.New("vertex limit exceeded")

// OverflowPolicy selects what happens when a result would need more than
// MaxVertices vertices.
type OverflowPolicy int

const (
	// OverflowReject fails the operation with ErrVertexLimit.
	OverflowReject OverflowPolicy = iota
	// OverflowDrop keeps whole polygons in output order and drops every
	// polygon from the first one that no longer fits.
	OverflowDrop
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowReject:
		return "reject"
	case OverflowDrop:
		return "drop"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// ParseOverflowPolicy converts "reject" or "drop" to an OverflowPolicy.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reject", "":
		return OverflowReject, nil
	case "drop":
		return OverflowDrop, nil
	}
	return 0, fmt.Errorf("csg: unknown overflow policy %q, expected reject or drop", s)
}

// Options tunes the boolean operators.
type Options struct {
	// Epsilon is the plane half-thickness used for classification. It
	// should scale with the size of the scene. Zero means
	// bsp.DefaultEpsilon.
	Epsilon float32
	// Overflow decides what to do with results that exceed MaxVertices.
	Overflow OverflowPolicy
	// ParallelBuild builds independent BSP subtrees concurrently.
	ParallelBuild bool
}

// DefaultOptions returns the options used by Union, Intersection and
// Difference.
func DefaultOptions() Options {
	return Options{Epsilon: bsp.DefaultEpsilon, Overflow: OverflowReject}
}

func (o Options) treeOptions() bsp.Options {
	eps := o.Epsilon
	if eps <= 0 {
		eps = bsp.DefaultEpsilon
	}
	return bsp.Options{Epsilon: eps, Parallel: o.ParallelBuild}
}
