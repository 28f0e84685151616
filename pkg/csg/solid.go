package csg

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/chazu/csgkit/pkg/bsp"
)

// Solid is a closed polygon set. Solids are immutable: every operation
// returns a new Solid and leaves its operands untouched.
type Solid struct {
	polygons []*bsp.Polygon
}

// NewSolid wraps a copy of polys.
func NewSolid(polys []*bsp.Polygon) *Solid {
	return &Solid{polygons: bsp.ClonePolygons(polys)}
}

// FromMesh converts m into a solid. Degenerate triangles are dropped.
func FromMesh(m Mesh) (*Solid, error) {
	polys, err := toPolygons(m)
	if err != nil {
		return nil, err
	}
	return &Solid{polygons: polys}, nil
}

// ToMesh triangulates the solid using the given overflow policy.
func (s *Solid) ToMesh(overflow OverflowPolicy) (Mesh, error) {
	return fromPolygons(s.polygons, overflow)
}

// Polygons returns a copy of the solid's polygons.
func (s *Solid) Polygons() []*bsp.Polygon {
	return bsp.ClonePolygons(s.polygons)
}

// Len returns the number of polygons.
func (s *Solid) Len() int { return len(s.polygons) }

// IsEmpty reports whether the solid has no polygons.
func (s *Solid) IsEmpty() bool { return len(s.polygons) == 0 }

// Clone returns a deep copy of s.
func (s *Solid) Clone() *Solid {
	return NewSolid(s.polygons)
}

// Area returns the total surface area.
func (s *Solid) Area() float32 {
	return bsp.TotalArea(s.polygons)
}

func (s *Solid) trees(other *Solid, opts Options) (a, b *bsp.Tree) {
	to := opts.treeOptions()
	return bsp.NewTree(bsp.ClonePolygons(s.polygons), to),
		bsp.NewTree(bsp.ClonePolygons(other.polygons), to)
}

// Union returns the region inside s or other.
func (s *Solid) Union(other *Solid, opts Options) *Solid {
	switch {
	case s.IsEmpty():
		return other.Clone()
	case other.IsEmpty():
		return s.Clone()
	}
	a, b := s.trees(other, opts)
	a.ClipTo(b)
	b.ClipTo(a)
	b.Invert()
	b.ClipTo(a)
	b.Invert()
	a.Merge(b)
	return &Solid{polygons: a.AllPolygons()}
}

// Intersection returns the region inside both s and other.
func (s *Solid) Intersection(other *Solid, opts Options) *Solid {
	if s.IsEmpty() || other.IsEmpty() {
		return &Solid{}
	}
	a, b := s.trees(other, opts)
	a.Invert()
	b.ClipTo(a)
	b.Invert()
	a.ClipTo(b)
	b.ClipTo(a)
	a.Merge(b)
	a.Invert()
	return &Solid{polygons: a.AllPolygons()}
}

// Difference returns the region inside s but not inside other.
func (s *Solid) Difference(other *Solid, opts Options) *Solid {
	switch {
	case s.IsEmpty():
		return &Solid{}
	case other.IsEmpty():
		return s.Clone()
	}
	a, b := s.trees(other, opts)
	a.Invert()
	a.ClipTo(b)
	b.ClipTo(a)
	b.Invert()
	b.ClipTo(a)
	b.Invert()
	a.Merge(b)
	a.Invert()
	return &Solid{polygons: a.AllPolygons()}
}

// Inverse returns s turned inside out.
func (s *Solid) Inverse() *Solid {
	out := s.Clone()
	for _, p := range out.polygons {
		p.Flip()
	}
	return out
}

// Transform returns s with every vertex moved by m. Normals are moved by
// the inverse transpose of m's upper 3x3 block, and a mirroring transform
// also reverses the winding so the solid keeps facing outward.
func (s *Solid) Transform(m mgl32.Mat4) *Solid {
	normalMat := m.Mat3().Inv().Transpose()
	mirror := m.Mat3().Det() < 0

	out := make([]*bsp.Polygon, 0, len(s.polygons))
	for _, p := range s.polygons {
		vs := make([]bsp.Vertex, len(p.Vertices))
		for i, v := range p.Vertices {
			v.Pos = mgl32.TransformCoordinate(v.Pos, m)
			v.Normal = bsp.Unit(normalMat.Mul3x1(v.Normal))
			vs[i] = v
		}
		poly, ok := bsp.NewPolygon(vs)
		if !ok {
			continue
		}
		if mirror {
			poly.Flip()
			for i := range poly.Vertices {
				poly.Vertices[i] = poly.Vertices[i].Flip()
			}
		}
		out = append(out, poly)
	}
	return &Solid{polygons: out}
}

// Translate returns s moved by d.
func (s *Solid) Translate(d mgl32.Vec3) *Solid {
	return s.Transform(mgl32.Translate3D(d[0], d[1], d[2]))
}

// Bounds returns the axis-aligned bounding box. ok is false for an empty
// solid.
func (s *Solid) Bounds() (min, max mgl32.Vec3, ok bool) {
	if s.IsEmpty() {
		return min, max, false
	}
	min = s.polygons[0].Vertices[0].Pos
	max = min
	for _, p := range s.polygons {
		for _, v := range p.Vertices {
			for k := 0; k < 3; k++ {
				min[k] = math32.Min(min[k], v.Pos[k])
				max[k] = math32.Max(max[k], v.Pos[k])
			}
		}
	}
	return min, max, true
}
