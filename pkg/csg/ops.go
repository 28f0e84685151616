package csg

import (
	"fmt"
	"strings"
)

// Op is a boolean operator.
type Op int

const (
	OpUnion Op = iota
	OpIntersection
	OpDifference
)

func (op Op) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpIntersection:
		return "intersection"
	case OpDifference:
		return "difference"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// ParseOp converts an operator name to an Op. "subtract" is accepted as a
// synonym for difference.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "union":
		return OpUnion, nil
	case "intersection", "intersect":
		return OpIntersection, nil
	case "difference", "subtract":
		return OpDifference, nil
	}
	return 0, fmt.Errorf("csg: unknown operator %q", s)
}

// Apply combines two solids with op.
func (op Op) Apply(a, b *Solid, opts Options) (*Solid, error) {
	switch op {
	case OpUnion:
		return a.Union(b, opts), nil
	case OpIntersection:
		return a.Intersection(b, opts), nil
	case OpDifference:
		return a.Difference(b, opts), nil
	}
	return nil, fmt.Errorf("csg: unknown operator %v", op)
}

// Apply runs op on two meshes.
func Apply(op Op, a, b Mesh, opts Options) (Mesh, error) {
	sa, err := FromMesh(a)
	if err != nil {
		return Mesh{}, fmt.Errorf("csg: %v: first operand: %w", op, err)
	}
	sb, err := FromMesh(b)
	if err != nil {
		return Mesh{}, fmt.Errorf("csg: %v: second operand: %w", op, err)
	}
	res, err := op.Apply(sa, sb, opts)
	if err != nil {
		return Mesh{}, err
	}
	m, err := res.ToMesh(opts.Overflow)
	if err != nil {
		return Mesh{}, fmt.Errorf("csg: %v: %w", op, err)
	}
	return m, nil
}

// Union returns the union of a and b using DefaultOptions.
func Union(a, b Mesh) (Mesh, error) {
	return Apply(OpUnion, a, b, DefaultOptions())
}

// Intersection returns the intersection of a and b using DefaultOptions.
func Intersection(a, b Mesh) (Mesh, error) {
	return Apply(OpIntersection, a, b, DefaultOptions())
}

// Difference returns a minus b using DefaultOptions.
func Difference(a, b Mesh) (Mesh, error) {
	return Apply(OpDifference, a, b, DefaultOptions())
}
