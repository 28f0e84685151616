package bsp

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Side is the result of classifying a point or polygon against a plane.
// The values form a bit set: Front|Back == Spanning.
type Side int

const (
	Coplanar Side = 0
	Front    Side = 1
	Back     Side = 2
	Spanning Side = Front | Back
)

func (s Side) String() string {
	switch s {
	case Coplanar:
		return "coplanar"
	case Front:
		return "front"
	case Back:
		return "back"
	case Spanning:
		return "spanning"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Plane is the set of points p with Normal·p == W. Normal has unit length.
type Plane struct {
	Normal mgl32.Vec3
	W      float32
}

// PlaneFromPoints returns the plane through a, b and c, oriented so that
// a, b, c wind counter-clockwise when seen from the front. ok is false when
// the points are (nearly) collinear and no plane can be fitted.
func PlaneFromPoints(a, b, c mgl32.Vec3) (p Plane, ok bool) {
	n := Unit(b.Sub(a).Cross(c.Sub(a)))
	if n == (mgl32.Vec3{}) {
		return Plane{}, false
	}
	return Plane{Normal: n, W: n.Dot(a)}, true
}

// Flip returns the plane facing the opposite direction.
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Mul(-1), W: -p.W}
}

// Distance returns the signed distance from the plane to pt.
func (p Plane) Distance(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) - p.W
}

// SideOf classifies a single point using eps as the plane half-thickness.
func (p Plane) SideOf(pt mgl32.Vec3, eps float32) Side {
	d := p.Distance(pt)
	switch {
	case d < -eps:
		return Back
	case d > eps:
		return Front
	default:
		return Coplanar
	}
}

// Classify classifies every vertex of poly and combines the results.
func (p Plane) Classify(poly *Polygon, eps float32) Side {
	var s Side
	for _, v := range poly.Vertices {
		s |= p.SideOf(v.Pos, eps)
	}
	return s
}
