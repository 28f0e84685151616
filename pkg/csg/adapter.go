package csg

import (
	"fmt"

	"github.com/chazu/csgkit/pkg/bsp"
)

// toPolygons converts every non-degenerate triangle of m into a polygon.
// Triangles whose corners are collinear or coincident have no plane and
// are skipped.
func toPolygons(m Mesh) ([]*bsp.Polygon, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	polys := make([]*bsp.Polygon, 0, m.TriangleCount())
	for i := 0; i+2 < len(m.Indices); i += 3 {
		vs := []bsp.Vertex{
			toVertex(m.Vertices[m.Indices[i]]),
			toVertex(m.Vertices[m.Indices[i+1]]),
			toVertex(m.Vertices[m.Indices[i+2]]),
		}
		if p, ok := bsp.NewPolygon(vs); ok {
			polys = append(polys, p)
		}
	}
	return polys, nil
}

func toVertex(v Vertex) bsp.Vertex {
	return bsp.Vertex{Pos: v.Position, Normal: v.Normal, UV: v.TexCoord, Binding: v.Binding}
}

func fromVertex(v bsp.Vertex) Vertex {
	return Vertex{Position: v.Pos, Normal: v.Normal, TexCoord: v.UV, Binding: v.Binding}
}

// fromPolygons fan-triangulates polys into a mesh. Each polygon gets its
// own copy of its corners so per-face attributes are preserved. When the
// vertex total would pass MaxVertices the overflow policy decides between
// failing and truncating at the last polygon that still fits.
func fromPolygons(polys []*bsp.Polygon, overflow OverflowPolicy) (Mesh, error) {
	var nv, ni int
	for _, p := range polys {
		nv += len(p.Vertices)
		ni += 3 * (len(p.Vertices) - 2)
	}
	if nv > MaxVertices {
		if overflow != OverflowDrop {
			return Mesh{}, fmt.Errorf("%w: result needs %d vertices, limit is %d", ErrVertexLimit, nv, MaxVertices)
		}
		nv, ni = MaxVertices, 3*MaxVertices
	}

	m := Mesh{
		Vertices: make([]Vertex, 0, nv),
		Indices:  make([]uint16, 0, ni),
	}
	for _, p := range polys {
		if len(m.Vertices)+len(p.Vertices) > MaxVertices {
			break
		}
		base := len(m.Vertices)
		for _, v := range p.Vertices {
			m.Vertices = append(m.Vertices, fromVertex(v))
		}
		for k := 1; k+1 < len(p.Vertices); k++ {
			m.Indices = append(m.Indices, uint16(base), uint16(base+k), uint16(base+k+1))
		}
	}
	return m, nil
}
