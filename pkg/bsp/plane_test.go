package bsp

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const float32EqualityThreshold = 1e-5

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) <= float32EqualityThreshold
}

func vert(x, y, z float32) Vertex {
	return Vertex{Pos: mgl32.Vec3{x, y, z}}
}

func mustPolygon(t *testing.T, vs ...Vertex) *Polygon {
	t.Helper()
	p, ok := NewPolygon(vs)
	if !ok {
		t.Fatalf("NewPolygon(%v) failed", vs)
	}
	return p
}

func TestPlaneFromPoints(t *testing.T) {
	p, ok := PlaneFromPoints(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{1, 0, 2}, mgl32.Vec3{0, 1, 2})
	if !ok {
		t.Fatal("expected a plane")
	}
	if p.Normal != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("normal = %v, want (0,0,1)", p.Normal)
	}
	if !almostEqual(p.W, 2) {
		t.Errorf("W = %f, want 2", p.W)
	}
	if d := p.Distance(mgl32.Vec3{5, 5, 3}); !almostEqual(d, 1) {
		t.Errorf("Distance = %f, want 1", d)
	}
}

func TestPlaneFromCollinearPoints(t *testing.T) {
	_, ok := PlaneFromPoints(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{2, 2, 2})
	if ok {
		t.Error("collinear points should not produce a plane")
	}
	if _, ok := NewPolygon([]Vertex{vert(0, 0, 0), vert(1, 0, 0), vert(2, 0, 0)}); ok {
		t.Error("NewPolygon accepted a degenerate triangle")
	}
	if _, ok := NewPolygon([]Vertex{vert(0, 0, 0), vert(1, 0, 0)}); ok {
		t.Error("NewPolygon accepted two vertices")
	}
}

func TestPlaneFlip(t *testing.T) {
	p, _ := PlaneFromPoints(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{1, 0, 2}, mgl32.Vec3{0, 1, 2})
	f := p.Flip()
	pt := mgl32.Vec3{0, 0, 5}
	if !almostEqual(p.Distance(pt), -f.Distance(pt)) {
		t.Errorf("flipped distance %f, want %f", f.Distance(pt), -p.Distance(pt))
	}
}

func TestClassify(t *testing.T) {
	plane := Plane{Normal: mgl32.Vec3{0, 1, 0}, W: 0}

	tests := []struct {
		name string
		poly []Vertex
		want Side
	}{
		{"coplanar", []Vertex{vert(0, 0, 0), vert(0, 0, 1), vert(1, 0, 0)}, Coplanar},
		{"coplanar within epsilon", []Vertex{vert(0, 1e-6, 0), vert(0, -1e-6, 1), vert(1, 0, 0)}, Coplanar},
		{"front", []Vertex{vert(0, 1, 0), vert(0, 1, 1), vert(1, 1, 0)}, Front},
		{"front touching", []Vertex{vert(0, 0, 0), vert(0, 1, 1), vert(1, 1, 0)}, Front},
		{"back", []Vertex{vert(0, -1, 0), vert(1, -1, 0), vert(0, -1, 1)}, Back},
		{"spanning", []Vertex{vert(0, -1, 0), vert(1, 1, 0), vert(0, 1, 1)}, Spanning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPolygon(t, tt.poly...)
			if got := plane.Classify(p, DefaultEpsilon); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSideString(t *testing.T) {
	tests := []struct {
		s    Side
		want string
	}{
		{Coplanar, "coplanar"},
		{Front, "front"},
		{Back, "back"},
		{Spanning, "spanning"},
		{Side(9), "Side(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Side(%d).String() = %q, want %q", int(tt.s), got, tt.want)
		}
	}
}

func TestUnitZeroVector(t *testing.T) {
	if got := Unit(mgl32.Vec3{}); got != (mgl32.Vec3{}) {
		t.Errorf("Unit(0) = %v, want zero vector", got)
	}
	got := Unit(mgl32.Vec3{3, 0, 4})
	if !almostEqual(got.Len(), 1) {
		t.Errorf("|Unit(3,0,4)| = %f, want 1", got.Len())
	}
}

func TestLerp(t *testing.T) {
	a := mgl32.Vec3{0, 0, 0}
	b := mgl32.Vec3{2, 4, -6}
	got := Lerp(a, b, 0.25)
	want := mgl32.Vec3{0.5, 1, -1.5}
	if !got.ApproxEqual(want) {
		t.Errorf("Lerp = %v, want %v", got, want)
	}
}
