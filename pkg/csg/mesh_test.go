package csg

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshValidate(t *testing.T) {
	tri := []Vertex{
		{Position: mgl32.Vec3{0, 0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{0, 1, 0}},
	}
	tests := []struct {
		name string
		mesh Mesh
		err  error
	}{
		{"empty", Mesh{}, nil},
		{"triangle", Mesh{Vertices: tri, Indices: []uint16{0, 1, 2}}, nil},
		{"partial triangle", Mesh{Vertices: tri, Indices: []uint16{0, 1}}, ErrInvalidMesh},
		{"index out of range", Mesh{Vertices: tri, Indices: []uint16{0, 1, 3}}, ErrInvalidMesh},
		{"too many vertices", Mesh{Vertices: make([]Vertex, MaxVertices+1)}, ErrVertexLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.err), "got %v, want %v", err, tt.err)
		})
	}
}

func TestMeshMeasures(t *testing.T) {
	m := Cube(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 0.5, 2})

	assert.Equal(t, 24, m.VertexCount())
	assert.Equal(t, 12, m.TriangleCount())
	assert.InDelta(t, 2*1*4, m.Volume(), 1e-5)
	assert.InDelta(t, 2*(2*1+2*4+1*4), m.SurfaceArea(), 1e-4)

	lo, hi, ok := m.Bounds()
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0, 1.5, 1}, lo)
	assert.Equal(t, mgl32.Vec3{2, 2.5, 5}, hi)

	_, _, ok = Mesh{}.Bounds()
	assert.False(t, ok)
}

func TestFlipWinding(t *testing.T) {
	m := unitCube(mgl32.Vec3{0, 0, 0})
	f := m.FlipWinding()

	assert.InDelta(t, -1, f.Volume(), 1e-5)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, f.Vertices[0].Normal)
	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, m.Vertices[0].Normal, "original modified")
}

func TestCompact(t *testing.T) {
	m := Mesh{
		Vertices: []Vertex{
			{Position: mgl32.Vec3{9, 9, 9}},
			{Position: mgl32.Vec3{0, 0, 0}},
			{Position: mgl32.Vec3{1, 0, 0}},
			{Position: mgl32.Vec3{8, 8, 8}},
			{Position: mgl32.Vec3{0, 1, 0}},
		},
		Indices: []uint16{1, 2, 4},
	}
	c := m.Compact()
	require.Equal(t, 3, c.VertexCount())
	assert.Equal(t, []uint16{0, 1, 2}, c.Indices)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, c.Vertices[2].Position)
}

func TestWeld(t *testing.T) {
	n := mgl32.Vec3{0, 0, 1}
	v := func(x, y float32) Vertex { return Vertex{Position: mgl32.Vec3{x, y, 0}, Normal: n} }

	// Two triangles of a quad with the shared edge duplicated.
	m := Mesh{
		Vertices: []Vertex{v(0, 0), v(1, 0), v(1, 1), v(0, 0), v(1, 1), v(0, 1)},
		Indices:  []uint16{0, 1, 2, 3, 4, 5},
	}
	w := m.Weld(1e-6)
	assert.Equal(t, 4, w.VertexCount())
	assert.Equal(t, 2, w.TriangleCount())
	assert.InDelta(t, m.SurfaceArea(), w.SurfaceArea(), 1e-6)

	// A sliver whose corners merge disappears.
	sliver := Mesh{
		Vertices: []Vertex{v(0, 0), v(1, 0), v(1, 1e-7)},
		Indices:  []uint16{0, 1, 2},
	}
	assert.True(t, sliver.Weld(1e-3).IsEmpty())

	// Hard edges keep separate vertices.
	cube := unitCube(mgl32.Vec3{0, 0, 0})
	assert.Equal(t, 24, cube.Weld(1e-4).VertexCount())
}

func TestAttributeTable(t *testing.T) {
	var table AttributeTable[string]
	red := table.Bind("red")
	blue := table.Bind("blue")

	got, ok := table.Lookup(blue)
	require.True(t, ok)
	assert.Equal(t, "blue", got)
	got, ok = table.Lookup(red)
	require.True(t, ok)
	assert.Equal(t, "red", got)

	_, ok = table.Lookup(Binding{})
	assert.False(t, ok)
	_, ok = table.Lookup(NewBinding(7))
	assert.False(t, ok)
	assert.Equal(t, 2, table.Len())
}
