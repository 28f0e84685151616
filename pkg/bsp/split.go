package bsp

// Split classifies poly against p and appends it, or the fragments cut
// from it, to the matching list. Coplanar polygons go to coplanarFront
// when they face the same way as p and to coplanarBack otherwise. A
// spanning polygon is cut along p: each edge whose endpoints lie strictly
// on opposite sides gets an interpolated vertex shared by both fragments.
// Fragments with fewer than three vertices are dropped.
//
// The same list may be passed for several outputs; the tree build routes
// both coplanar lists into the node's own polygons this way.
func (p Plane) Split(poly *Polygon, eps float32, coplanarFront, coplanarBack, front, back *[]*Polygon) {
	n := len(poly.Vertices)
	sides := make([]Side, n)
	var polySide Side
	for i, v := range poly.Vertices {
		s := p.SideOf(v.Pos, eps)
		sides[i] = s
		polySide |= s
	}

	switch polySide {
	case Coplanar:
		if p.Normal.Dot(poly.Plane.Normal) > 0 {
			*coplanarFront = append(*coplanarFront, poly)
		} else {
			*coplanarBack = append(*coplanarBack, poly)
		}
	case Front:
		*front = append(*front, poly)
	case Back:
		*back = append(*back, poly)
	case Spanning:
		f := make([]Vertex, 0, n+1)
		b := make([]Vertex, 0, n+1)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			si, sj := sides[i], sides[j]
			vi, vj := poly.Vertices[i], poly.Vertices[j]
			if si != Back {
				f = append(f, vi)
			}
			if si != Front {
				b = append(b, vi)
			}
			if si|sj == Spanning {
				t := (p.W - p.Normal.Dot(vi.Pos)) / p.Normal.Dot(vj.Pos.Sub(vi.Pos))
				v := vi.Interpolate(vj, t)
				f = append(f, v)
				b = append(b, v)
			}
		}
		if len(f) >= 3 {
			*front = append(*front, &Polygon{Vertices: f, Plane: poly.Plane})
		}
		if len(b) >= 3 {
			*back = append(*back, &Polygon{Vertices: b, Plane: poly.Plane})
		}
	}
}

// Fragments holds the four outputs of splitting polygons by one plane.
type Fragments struct {
	CoplanarFront []*Polygon
	CoplanarBack  []*Polygon
	Front         []*Polygon
	Back          []*Polygon
}

// SplitAll splits every polygon in polys by p and returns the fragments
// grouped by side.
func (p Plane) SplitAll(polys []*Polygon, eps float32) Fragments {
	var fr Fragments
	for _, poly := range polys {
		p.Split(poly, eps, &fr.CoplanarFront, &fr.CoplanarBack, &fr.Front, &fr.Back)
	}
	return fr
}
