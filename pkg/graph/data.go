package graph

import "fmt"

// Vec3 is a double precision vector used for script-level dimensions.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// IsZero reports whether every component is zero.
func (v Vec3) IsZero() bool {
	return v == Vec3{}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g %g %g)", v.X, v.Y, v.Z)
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// PrimitiveKind distinguishes between primitive shapes.
type PrimitiveKind int

const (
	PrimBox        PrimitiveKind = iota // axis aligned box, min corner at origin
	PrimRoundedBox                      // box with rounded edges
	PrimSphere                          // UV sphere, centered
	PrimIcosphere                       // subdivided icosahedron, centered
	PrimCylinder                        // Z axis cylinder, centered
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBox:
		return "box"
	case PrimRoundedBox:
		return "rounded-box"
	case PrimSphere:
		return "sphere"
	case PrimIcosphere:
		return "icosphere"
	case PrimCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// PrimitiveData describes a primitive solid. Only the fields relevant to
// Kind are set: Size for boxes, Radius for spheres, Radius and Height for
// cylinders, Size and Rounding for rounded boxes. Zero tessellation counts
// mean "use the graph default".
type PrimitiveData struct {
	Kind     PrimitiveKind `json:"kind"`
	Size     Vec3          `json:"size,omitempty"`
	Radius   float64       `json:"radius,omitempty"`
	Height   float64       `json:"height,omitempty"`
	Rounding float64       `json:"rounding,omitempty"`
	Segments int           `json:"segments,omitempty"` // slices around the axis
	Stacks   int           `json:"stacks,omitempty"`   // UV sphere rings
	Detail   int           `json:"detail,omitempty"`   // icosphere subdivisions
}

func (PrimitiveData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a child node.
// Rotation is applied before translation.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// BooleanOp enumerates the set operations.
type BooleanOp int

const (
	OpUnion BooleanOp = iota
	OpDifference
	OpIntersection
)

func (op BooleanOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// BooleanData folds the node's children left to right with Op: the first
// child is the accumulator and every following child is combined into it.
type BooleanData struct {
	Op BooleanOp `json:"op"`
}

func (BooleanData) nodeData() {}

// ---------------------------------------------------------------------------
// Part and group
// ---------------------------------------------------------------------------

// PartData marks a named output solid. Each part becomes one mesh.
type PartData struct {
	Color string `json:"color,omitempty"` // CSS style color, optional
}

func (PartData) nodeData() {}

// GroupData represents a logical grouping (assembly, subassembly).
// Created by the (assembly ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
