// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. It also converts signed
// distance fields into csg meshes so smooth shapes can take part in exact
// BSP booleans.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/chazu/csgkit/pkg/csg"
	"github.com/chazu/csgkit/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel. cells is the marching cubes resolution
// along the longest bounding box axis; values <= 0 use DefaultMeshCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func cornerBox(x, y, z, round float64) sdf.SDF3 {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, round)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	// Box3D is centered; shift so the minimum corner sits at the origin.
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return sdf.Transform3D(s, m)
}

// Box creates a box with its minimum corner at the origin.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	return wrap(cornerBox(x, y, z, 0))
}

// RoundedBox creates a box whose edges are rounded by radius.
func (k *SdfxKernel) RoundedBox(x, y, z, radius float64) kernel.Solid {
	return wrap(cornerBox(x, y, z, radius))
}

// Sphere creates a sphere centered on the origin. slices and stacks are
// ignored since the surface is resolved by marching cubes.
func (k *SdfxKernel) Sphere(radius float64, slices, stacks int) kernel.Solid {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Sphere3D: %v", err))
	}
	return wrap(s)
}

// Icosphere is the same field as Sphere.
func (k *SdfxKernel) Icosphere(radius float64, subdivisions int) kernel.Solid {
	return k.Sphere(radius, 0, 0)
}

// Cylinder creates a cylinder centered on the origin along Z.
// The segments parameter is ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	const deg = math.Pi / 180
	m := sdf.RotateZ(z * deg).Mul(sdf.RotateY(y * deg)).Mul(sdf.RotateX(x * deg))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to an indexed triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	m, err := Mesh(unwrap(s), k.cells)
	if err != nil {
		return nil, err
	}
	return kernel.FromCSG(m), nil
}

// Triangles renders s with uniform marching cubes.
func Triangles(s sdf.SDF3, cells int) []*sdf.Triangle3 {
	return render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
}

// Mesh renders s into an indexed csg mesh. Coincident marching cubes
// corners are shared and each vertex normal is the area weighted average
// of its faces. Triangles that collapse after sharing are dropped, and the
// result is wound so that it encloses a positive volume.
func Mesh(s sdf.SDF3, cells int) (csg.Mesh, error) {
	tris := Triangles(s, cells)

	index := make(map[v3.Vec]int, len(tris))
	var positions []mgl32.Vec3
	var normals []mgl32.Vec3
	indices := make([]int, 0, 3*len(tris))

	for _, tri := range tris {
		var ids [3]int
		for j := 0; j < 3; j++ {
			p := tri[j]
			id, ok := index[p]
			if !ok {
				id = len(positions)
				index[p] = id
				positions = append(positions, mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)})
				normals = append(normals, mgl32.Vec3{})
			}
			ids[j] = id
		}
		if ids[0] == ids[1] || ids[1] == ids[2] || ids[0] == ids[2] {
			continue
		}
		a, b, c := positions[ids[0]], positions[ids[1]], positions[ids[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		for _, id := range ids {
			normals[id] = normals[id].Add(n)
		}
		indices = append(indices, ids[:]...)
	}

	if len(positions) > csg.MaxVertices {
		return csg.Mesh{}, fmt.Errorf("sdfx: %d cells: %w: %d vertices", cells, csg.ErrVertexLimit, len(positions))
	}

	out := csg.Mesh{
		Vertices: make([]csg.Vertex, len(positions)),
		Indices:  make([]uint16, len(indices)),
	}
	for i, p := range positions {
		n := normals[i]
		if n.Len() > 0 {
			n = n.Normalize()
		}
		out.Vertices[i] = csg.Vertex{Position: p, Normal: n}
	}
	for i, id := range indices {
		out.Indices[i] = uint16(id)
	}
	// Corners that only belonged to collapsed triangles are left unreferenced.
	out = out.Compact()
	if out.Volume() < 0 {
		out = out.FlipWinding()
	}
	return out, nil
}

// RoundedBox meshes a box of the given size centered on center with edges
// rounded by radius.
func RoundedBox(center, size mgl32.Vec3, radius float32, cells int) (csg.Mesh, error) {
	s, err := sdf.Box3D(v3.Vec{X: float64(size[0]), Y: float64(size[1]), Z: float64(size[2])}, float64(radius))
	if err != nil {
		return csg.Mesh{}, fmt.Errorf("sdfx: rounded box: %w", err)
	}
	if center != (mgl32.Vec3{}) {
		s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: float64(center[0]), Y: float64(center[1]), Z: float64(center[2])}))
	}
	return Mesh(s, cells)
}

// SaveSTL writes m to path as a binary STL file.
func SaveSTL(path string, m *kernel.Mesh) error {
	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	at := func(i uint32) v3.Vec {
		return v3.Vec{
			X: float64(m.Vertices[3*i]),
			Y: float64(m.Vertices[3*i+1]),
			Z: float64(m.Vertices[3*i+2]),
		}
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		tris = append(tris, &sdf.Triangle3{at(m.Indices[i]), at(m.Indices[i+1]), at(m.Indices[i+2])})
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("sdfx: save %s: %w", path, err)
	}
	return nil
}
