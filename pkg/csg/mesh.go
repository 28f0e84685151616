package csg

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxVertices is the largest vertex count a Mesh can address with 16-bit
// indices.
const MaxVertices = math.MaxUint16 + 1

// Vertex is one corner of a mesh triangle.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
	Binding  Binding
}

// Mesh is an indexed triangle list: every three consecutive indices form
// one counter-clockwise triangle (seen from outside the solid).
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// VertexCount returns the number of vertices.
func (m Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles.
func (m Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// IsEmpty reports whether the mesh has no triangles.
func (m Mesh) IsEmpty() bool { return len(m.Indices) == 0 }

// Validate checks that Indices is a list of whole triangles referring to
// existing vertices.
func (m Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a multiple of 3", ErrInvalidMesh, len(m.Indices))
	}
	if len(m.Vertices) > MaxVertices {
		return fmt.Errorf("%w: %d vertices", ErrVertexLimit, len(m.Vertices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("%w: index %d at position %d out of range (%d vertices)",
				ErrInvalidMesh, idx, i, len(m.Vertices))
		}
	}
	return nil
}

func (m Mesh) triangle(i int) (a, b, c mgl32.Vec3) {
	return m.Vertices[m.Indices[3*i]].Position,
		m.Vertices[m.Indices[3*i+1]].Position,
		m.Vertices[m.Indices[3*i+2]].Position
}

// Volume returns the signed volume enclosed by the mesh, positive for a
// closed mesh with outward-facing triangles.
func (m Mesh) Volume() float32 {
	var sum float64
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.triangle(i)
		sum += float64(a.Dot(b.Cross(c)))
	}
	return float32(sum / 6)
}

// SurfaceArea returns the total area of all triangles.
func (m Mesh) SurfaceArea() float32 {
	var sum float64
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.triangle(i)
		sum += float64(b.Sub(a).Cross(c.Sub(a)).Len()) / 2
	}
	return float32(sum)
}

// Bounds returns the axis-aligned bounding box of the referenced vertices.
// ok is false for an empty mesh.
func (m Mesh) Bounds() (min, max mgl32.Vec3, ok bool) {
	if len(m.Indices) == 0 {
		return min, max, false
	}
	min = m.Vertices[m.Indices[0]].Position
	max = min
	for _, idx := range m.Indices {
		p := m.Vertices[idx].Position
		for k := 0; k < 3; k++ {
			min[k] = math32.Min(min[k], p[k])
			max[k] = math32.Max(max[k], p[k])
		}
	}
	return min, max, true
}

// Clone returns a deep copy of m.
func (m Mesh) Clone() Mesh {
	out := Mesh{
		Vertices: make([]Vertex, len(m.Vertices)),
		Indices:  make([]uint16, len(m.Indices)),
	}
	copy(out.Vertices, m.Vertices)
	copy(out.Indices, m.Indices)
	return out
}

// FlipWinding returns a copy of m turned inside out: triangle winding is
// reversed and normals are negated.
func (m Mesh) FlipWinding() Mesh {
	out := m.Clone()
	for i := range out.Vertices {
		out.Vertices[i].Normal = out.Vertices[i].Normal.Mul(-1)
	}
	for i := 0; i+2 < len(out.Indices); i += 3 {
		out.Indices[i+1], out.Indices[i+2] = out.Indices[i+2], out.Indices[i+1]
	}
	return out
}

// Compact returns a copy of m without unreferenced vertices. Vertex order
// is preserved.
func (m Mesh) Compact() Mesh {
	remap := make([]int, len(m.Vertices))
	for i := range remap {
		remap[i] = -1
	}
	for _, idx := range m.Indices {
		remap[idx] = 0
	}
	out := Mesh{Indices: make([]uint16, len(m.Indices))}
	for i, r := range remap {
		if r == 0 {
			remap[i] = len(out.Vertices)
			out.Vertices = append(out.Vertices, m.Vertices[i])
		}
	}
	for i, idx := range m.Indices {
		out.Indices[i] = uint16(remap[idx])
	}
	return out
}

// Weld merges vertices whose attributes are identical and whose positions
// lie within tol of each other on every axis, and drops triangles that
// collapse as a result. Vertices with different normals, texture
// coordinates or bindings are never merged, so hard edges survive.
func (m Mesh) Weld(tol float32) Mesh {
	type key struct {
		cell     [3]int64
		normal   mgl32.Vec3
		texCoord mgl32.Vec2
		binding  Binding
	}
	quant := func(f float32) int64 {
		if tol <= 0 {
			return int64(math32.Float32bits(f))
		}
		return int64(math32.Round(f / tol))
	}

	seen := make(map[key]uint16, len(m.Vertices))
	remap := make([]uint16, len(m.Vertices))
	var out Mesh
	for i, v := range m.Vertices {
		k := key{
			cell:     [3]int64{quant(v.Position[0]), quant(v.Position[1]), quant(v.Position[2])},
			normal:   v.Normal,
			texCoord: v.TexCoord,
			binding:  v.Binding,
		}
		if j, ok := seen[k]; ok {
			remap[i] = j
			continue
		}
		j := uint16(len(out.Vertices))
		seen[k] = j
		remap[i] = j
		out.Vertices = append(out.Vertices, v)
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := remap[m.Indices[i]], remap[m.Indices[i+1]], remap[m.Indices[i+2]]
		if a == b || b == c || a == c {
			continue
		}
		out.Indices = append(out.Indices, a, b, c)
	}
	return out.Compact()
}
