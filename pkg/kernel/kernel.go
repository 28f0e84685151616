// Package kernel defines the abstract geometry kernel interface.
// Implementations (bspkernel, sdfx) provide solid modeling and boolean
// operations behind this interface so the tessellator can switch backends
// without changing the rest of the system.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
//
// Box and RoundedBox have their minimum corner at the origin; Sphere,
// Icosphere and Cylinder are centered on it, with the cylinder axis along Z.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	RoundedBox(x, y, z, radius float64) Solid
	Sphere(radius float64, slices, stacks int) Solid
	Icosphere(radius float64, subdivisions int) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
