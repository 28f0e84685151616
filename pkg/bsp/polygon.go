package bsp

import (
	"github.com/chewxy/math32"
)

// Polygon is a convex, planar loop of at least three vertices. Plane is
// derived from the first three vertices when the polygon is created and is
// inherited unchanged by fragments produced from it.
type Polygon struct {
	Vertices []Vertex
	Plane    Plane
}

// NewPolygon builds a polygon from vertices. ok is false if there are
// fewer than three vertices or the first three are collinear.
func NewPolygon(vertices []Vertex) (poly *Polygon, ok bool) {
	if len(vertices) < 3 {
		return nil, false
	}
	plane, ok := PlaneFromPoints(vertices[0].Pos, vertices[1].Pos, vertices[2].Pos)
	if !ok {
		return nil, false
	}
	return &Polygon{Vertices: vertices, Plane: plane}, true
}

// Clone returns a deep copy of p.
func (p *Polygon) Clone() *Polygon {
	vs := make([]Vertex, len(p.Vertices))
	copy(vs, p.Vertices)
	return &Polygon{Vertices: vs, Plane: p.Plane}
}

// Flip reverses the winding of p in place, along with every vertex normal
// and the plane.
func (p *Polygon) Flip() {
	vs := p.Vertices
	for i, j := 0, len(vs)-1; i < j; i, j = i+1, j-1 {
		vs[i], vs[j] = vs[j], vs[i]
	}
	for i := range vs {
		vs[i] = vs[i].Flip()
	}
	p.Plane = p.Plane.Flip()
}

// Area returns the area enclosed by p.
func (p *Polygon) Area() float32 {
	vs := p.Vertices
	var sum float32
	for i := 1; i+1 < len(vs); i++ {
		e1 := vs[i].Pos.Sub(vs[0].Pos)
		e2 := vs[i+1].Pos.Sub(vs[0].Pos)
		sum += p.Plane.Normal.Dot(e1.Cross(e2))
	}
	return math32.Abs(sum) / 2
}

// TotalArea sums the area of every polygon in polys.
func TotalArea(polys []*Polygon) float32 {
	var sum float32
	for _, p := range polys {
		sum += p.Area()
	}
	return sum
}

// ClonePolygons deep-copies a polygon list.
func ClonePolygons(polys []*Polygon) []*Polygon {
	out := make([]*Polygon, len(polys))
	for i, p := range polys {
		out[i] = p.Clone()
	}
	return out
}
