package csg

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/chazu/csgkit/pkg/bsp"
)

// Tessellation limits keep every primitive under MaxVertices.
const (
	MinSlices         = 3
	MaxSlices         = 255
	MinStacks         = 2
	MaxStacks         = 255
	MaxSubdivisions   = 6
	MaxCylinderSlices = 1024
)

// meshBuilder appends convex polygons to a mesh as triangle fans.
type meshBuilder struct {
	m Mesh
}

func (b *meshBuilder) polygon(vs ...Vertex) {
	base := len(b.m.Vertices)
	b.m.Vertices = append(b.m.Vertices, vs...)
	for k := 1; k+1 < len(vs); k++ {
		b.m.Indices = append(b.m.Indices, uint16(base), uint16(base+k), uint16(base+k+1))
	}
}

// orientOutward flips any triangle of a convex mesh whose face normal
// points towards center.
func orientOutward(m *Mesh, center mgl32.Vec3) {
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.triangle(i / 3)
		n := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Mul(1.0 / 3)
		if n.Dot(centroid.Sub(center)) < 0 {
			m.Indices[i+1], m.Indices[i+2] = m.Indices[i+2], m.Indices[i+1]
		}
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Cube returns an axis-aligned box centered on center with the given
// half-extent along each axis. Each face has its own four vertices with a
// flat normal.
func Cube(center, radius mgl32.Vec3) Mesh {
	faces := []struct {
		corners [4]int
		normal  mgl32.Vec3
	}{
		{[4]int{0, 4, 6, 2}, mgl32.Vec3{-1, 0, 0}},
		{[4]int{1, 3, 7, 5}, mgl32.Vec3{1, 0, 0}},
		{[4]int{0, 1, 5, 4}, mgl32.Vec3{0, -1, 0}},
		{[4]int{2, 6, 7, 3}, mgl32.Vec3{0, 1, 0}},
		{[4]int{0, 2, 3, 1}, mgl32.Vec3{0, 0, -1}},
		{[4]int{4, 5, 7, 6}, mgl32.Vec3{0, 0, 1}},
	}
	uv := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	var b meshBuilder
	for _, f := range faces {
		var vs [4]Vertex
		for k, i := range f.corners {
			pos := center
			for axis := 0; axis < 3; axis++ {
				sign := float32(-1)
				if i&(1<<axis) != 0 {
					sign = 1
				}
				pos[axis] += sign * radius[axis]
			}
			vs[k] = Vertex{Position: pos, Normal: f.normal, TexCoord: uv[k]}
		}
		b.polygon(vs[:]...)
	}
	return b.m
}

// Sphere returns a UV sphere. slices is clamped to [MinSlices, MaxSlices]
// and stacks to [MinStacks, MaxStacks].
func Sphere(center mgl32.Vec3, radius float32, slices, stacks int) Mesh {
	slices = clamp(slices, MinSlices, MaxSlices)
	stacks = clamp(stacks, MinStacks, MaxStacks)

	var m Mesh
	for j := 0; j <= stacks; j++ {
		phi := math32.Pi * float32(j) / float32(stacks)
		for i := 0; i <= slices; i++ {
			theta := 2 * math32.Pi * float32(i) / float32(slices)
			dir := mgl32.Vec3{
				math32.Cos(theta) * math32.Sin(phi),
				math32.Cos(phi),
				math32.Sin(theta) * math32.Sin(phi),
			}
			m.Vertices = append(m.Vertices, Vertex{
				Position: center.Add(dir.Mul(radius)),
				Normal:   dir,
				TexCoord: mgl32.Vec2{float32(i) / float32(slices), float32(j) / float32(stacks)},
			})
		}
	}
	at := func(i, j int) uint16 { return uint16(j*(slices+1) + i) }
	for j := 0; j < stacks; j++ {
		for i := 0; i < slices; i++ {
			a, b, c, d := at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1)
			if j > 0 {
				m.Indices = append(m.Indices, a, b, c)
			}
			if j < stacks-1 {
				m.Indices = append(m.Indices, a, c, d)
			}
		}
	}
	orientOutward(&m, center)
	return m
}

// Icosphere returns a sphere built by subdividing an icosahedron. Every
// level quadruples the triangle count; subdivisions is clamped to
// [0, MaxSubdivisions].
func Icosphere(center mgl32.Vec3, radius float32, subdivisions int) Mesh {
	subdivisions = clamp(subdivisions, 0, MaxSubdivisions)

	t := (1 + math32.Sqrt(5)) / 2
	dirs := []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range dirs {
		dirs[i] = dirs[i].Normalize()
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}

	for level := 0; level < subdivisions; level++ {
		midpoints := make(map[[2]int]int)
		mid := func(a, b int) int {
			key := [2]int{min(a, b), max(a, b)}
			if i, ok := midpoints[key]; ok {
				return i
			}
			dirs = append(dirs, dirs[a].Add(dirs[b]).Normalize())
			midpoints[key] = len(dirs) - 1
			return len(dirs) - 1
		}
		next := make([][3]int, 0, 4*len(faces))
		for _, f := range faces {
			ab, bc, ca := mid(f[0], f[1]), mid(f[1], f[2]), mid(f[2], f[0])
			next = append(next,
				[3]int{f[0], ab, ca},
				[3]int{f[1], bc, ab},
				[3]int{f[2], ca, bc},
				[3]int{ab, bc, ca},
			)
		}
		faces = next
	}

	m := Mesh{Vertices: make([]Vertex, len(dirs)), Indices: make([]uint16, 0, 3*len(faces))}
	for i, d := range dirs {
		m.Vertices[i] = Vertex{
			Position: center.Add(d.Mul(radius)),
			Normal:   d,
			TexCoord: mgl32.Vec2{
				0.5 + math32.Atan2(d[2], d[0])/(2*math32.Pi),
				0.5 - math32.Asin(d[1])/math32.Pi,
			},
		}
	}
	for _, f := range faces {
		m.Indices = append(m.Indices, uint16(f[0]), uint16(f[1]), uint16(f[2]))
	}
	orientOutward(&m, center)
	return m
}

// Cylinder returns a capped cylinder running from start to end. slices is
// clamped to [MinSlices, 1024].
func Cylinder(start, end mgl32.Vec3, radius float32, slices int) Mesh {
	slices = clamp(slices, MinSlices, MaxCylinderSlices)

	ray := end.Sub(start)
	axisZ := bsp.Unit(ray)
	ref := mgl32.Vec3{0, 1, 0}
	if math32.Abs(axisZ[1]) > 0.5 {
		ref = mgl32.Vec3{1, 0, 0}
	}
	axisX := bsp.Unit(ref.Cross(axisZ))
	axisY := bsp.Unit(axisX.Cross(axisZ))

	point := func(stack, slice, normalBlend float32) Vertex {
		angle := slice * 2 * math32.Pi
		out := axisX.Mul(math32.Cos(angle)).Add(axisY.Mul(math32.Sin(angle)))
		return Vertex{
			Position: start.Add(ray.Mul(stack)).Add(out.Mul(radius)),
			Normal:   bsp.Unit(out.Mul(1 - math32.Abs(normalBlend)).Add(axisZ.Mul(normalBlend))),
			TexCoord: mgl32.Vec2{slice, stack},
		}
	}
	startV := Vertex{Position: start, Normal: axisZ.Mul(-1)}
	endV := Vertex{Position: end, Normal: axisZ}

	var b meshBuilder
	for i := 0; i < slices; i++ {
		t0 := float32(i) / float32(slices)
		t1 := float32(i+1) / float32(slices)
		b.polygon(startV, point(0, t1, -1), point(0, t0, -1))
		b.polygon(point(0, t1, 0), point(0, t0, 0), point(1, t0, 0), point(1, t1, 0))
		b.polygon(endV, point(1, t0, 1), point(1, t1, 1))
	}
	orientOutward(&b.m, start.Add(ray.Mul(0.5)))
	return b.m
}
