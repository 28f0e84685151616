package bsp

import "github.com/go-gl/mathgl/mgl32"

// Binding is an opaque caller-supplied reference carried by a vertex
// through every tree operation. The zero value means "no binding".
// Vertices created by splitting never have one.
type Binding struct {
	ref   uint32
	valid bool
}

// NewBinding returns a binding that refers to ref, typically an index into
// a caller-owned attribute table.
func NewBinding(ref uint32) Binding {
	return Binding{ref: ref, valid: true}
}

// Ref returns the reference and whether the binding is set.
func (b Binding) Ref() (uint32, bool) {
	return b.ref, b.valid
}

// Valid reports whether the binding is set.
func (b Binding) Valid() bool {
	return b.valid
}

// Vertex is a polygon corner.
type Vertex struct {
	Pos     mgl32.Vec3
	Normal  mgl32.Vec3
	UV      mgl32.Vec2
	Binding Binding
}

// Flip returns the vertex with its normal reversed.
func (v Vertex) Flip() Vertex {
	v.Normal = v.Normal.Mul(-1)
	return v
}

// Interpolate returns the vertex at parameter t along the edge from v to
// o. Position, normal and UV are interpolated linearly; the result has no
// binding because it does not correspond to any input vertex.
func (v Vertex) Interpolate(o Vertex, t float32) Vertex {
	return Vertex{
		Pos:    Lerp(v.Pos, o.Pos, t),
		Normal: Lerp(v.Normal, o.Normal, t),
		UV:     Lerp2(v.UV, o.UV, t),
	}
}
