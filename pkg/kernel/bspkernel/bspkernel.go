// Package bspkernel implements kernel.Kernel on top of the exact BSP
// boolean engine in pkg/csg.
package bspkernel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/chazu/csgkit/pkg/csg"
	"github.com/chazu/csgkit/pkg/kernel"
	"github.com/chazu/csgkit/pkg/kernel/sdfx"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// DefaultRoundedCells is the marching cubes resolution used for rounded
// boxes, which have no exact polygonal form.
const DefaultRoundedCells = 48

// bspSolid wraps a csg.Solid to implement kernel.Solid.
type bspSolid struct {
	s *csg.Solid
}

// BoundingBox returns the axis-aligned bounding box. An empty solid
// reports a zero box.
func (s *bspSolid) BoundingBox() (min, max [3]float64) {
	lo, hi, ok := s.s.Bounds()
	if !ok {
		return min, max
	}
	for i := 0; i < 3; i++ {
		min[i] = float64(lo[i])
		max[i] = float64(hi[i])
	}
	return min, max
}

// Kernel implements kernel.Kernel with BSP booleans.
type Kernel struct {
	opts  csg.Options
	cells int
}

// New returns a Kernel that runs booleans with opts. roundedCells sets the
// marching cubes resolution for RoundedBox; values <= 0 use
// DefaultRoundedCells.
func New(opts csg.Options, roundedCells int) *Kernel {
	if roundedCells <= 0 {
		roundedCells = DefaultRoundedCells
	}
	return &Kernel{opts: opts, cells: roundedCells}
}

// Options returns the boolean options the kernel was built with.
func (k *Kernel) Options() csg.Options {
	return k.opts
}

func unwrap(s kernel.Solid) *csg.Solid {
	return s.(*bspSolid).s
}

func wrap(s *csg.Solid) kernel.Solid {
	return &bspSolid{s: s}
}

func v3(x, y, z float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}

// fromMesh panics on invalid meshes; every primitive here is built
// in-package and is valid by construction.
func fromMesh(m csg.Mesh) kernel.Solid {
	s, err := csg.FromMesh(m)
	if err != nil {
		panic(fmt.Sprintf("bspkernel: %v", err))
	}
	return wrap(s)
}

// Box creates a box with its minimum corner at the origin.
func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	half := v3(x/2, y/2, z/2)
	return fromMesh(csg.Cube(half, half))
}

// RoundedBox creates a box with rounded edges and its minimum corner at the
// origin. The surface is sampled with marching cubes and then treated as an
// ordinary polygon solid.
func (k *Kernel) RoundedBox(x, y, z, radius float64) kernel.Solid {
	if radius <= 0 {
		return k.Box(x, y, z)
	}
	m, err := sdfx.RoundedBox(v3(x/2, y/2, z/2), v3(x, y, z), float32(radius), k.cells)
	if err != nil {
		panic(fmt.Sprintf("bspkernel: %v", err))
	}
	return fromMesh(m)
}

// Sphere creates a UV sphere centered on the origin.
func (k *Kernel) Sphere(radius float64, slices, stacks int) kernel.Solid {
	return fromMesh(csg.Sphere(mgl32.Vec3{}, float32(radius), slices, stacks))
}

// Icosphere creates a subdivided icosahedron centered on the origin.
func (k *Kernel) Icosphere(radius float64, subdivisions int) kernel.Solid {
	return fromMesh(csg.Icosphere(mgl32.Vec3{}, float32(radius), subdivisions))
}

// Cylinder creates a cylinder centered on the origin along Z.
func (k *Kernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	h := float32(height / 2)
	return fromMesh(csg.Cylinder(mgl32.Vec3{0, 0, -h}, mgl32.Vec3{0, 0, h}, float32(radius), segments))
}

// Union returns the union of two solids.
func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(unwrap(a).Union(unwrap(b), k.opts))
}

// Difference returns the difference a - b.
func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(unwrap(a).Difference(unwrap(b), k.opts))
}

// Intersection returns the intersection of two solids.
func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(unwrap(a).Intersection(unwrap(b), k.opts))
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return wrap(unwrap(s).Translate(v3(x, y, z)))
}

// Rotate rotates a solid by Euler angles (degrees), X first, then Y, then Z.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := mgl32.HomogRotate3DZ(mgl32.DegToRad(float32(z))).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(float32(y)))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(float32(x))))
	return wrap(unwrap(s).Transform(m))
}

// ToMesh triangulates a solid. The kernel's overflow policy decides what
// happens when the result needs more than csg.MaxVertices vertices.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	m, err := unwrap(s).ToMesh(k.opts.Overflow)
	if err != nil {
		return nil, fmt.Errorf("bspkernel: %w", err)
	}
	return kernel.FromCSG(m), nil
}
