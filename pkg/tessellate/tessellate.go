// Package tessellate walks a design graph and produces triangle meshes
// using a geometry kernel. One mesh is produced per part.
package tessellate

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/chazu/csgkit/pkg/graph"
	"github.com/chazu/csgkit/pkg/kernel"
)

// DefaultDetail is the icosphere subdivision level used when a primitive
// does not set one.
const DefaultDetail = 2

// job is one mesh to produce: a solid subtree plus the placements that
// enclose it, outermost first.
type job struct {
	solid  *graph.Node
	stack  []graph.TransformData
	name   string
	color  string
	source graph.NodeID
}

// Tessellate walks the design graph and produces one triangle mesh per part
// using the provided geometry kernel. The tessellator is read-only and never
// mutates the graph.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	return TessellateContext(context.Background(), g, k)
}

// TessellateContext is Tessellate with cancellation. Parts are meshed
// concurrently; subtrees shared between parts are built once. Meshes are
// returned in root order, depth first.
func TessellateContext(ctx context.Context, g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var jobs []job
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := collect(g, root, nil)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
		jobs = append(jobs, collected...)
	}

	b := &builder{g: g, k: k, cache: make(map[graph.NodeID]kernel.Solid)}
	meshes := make([]*kernel.Mesh, len(jobs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, j := range jobs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := b.mesh(j)
			if err != nil {
				return fmt.Errorf("tessellate: part %q: %w", j.name, err)
			}
			meshes[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return meshes, nil
}

// collect finds the parts under n. Transforms above a part are pushed onto
// stack; a bare solid outside any part becomes an anonymous mesh.
func collect(g *graph.DesignGraph, n *graph.Node, stack []graph.TransformData) ([]job, error) {
	switch n.Kind {
	case graph.NodePart:
		body := g.Children(n)
		if len(body) != 1 {
			return nil, fmt.Errorf("part %q has %d solids, want exactly 1", n.Name, len(body))
		}
		pd, _ := n.Data.(graph.PartData)
		return []job{{solid: body[0], stack: stack, name: n.Name, color: pd.Color, source: n.ID}}, nil

	case graph.NodeGroup:
		var jobs []job
		for _, child := range g.Children(n) {
			collected, err := collect(g, child, stack)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, collected...)
		}
		return jobs, nil

	case graph.NodeTransform:
		td, ok := n.Data.(graph.TransformData)
		if !ok {
			return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		children := g.Children(n)
		if len(children) != 1 {
			return nil, fmt.Errorf("transform node %s has %d children, want exactly 1", n.ID.Short(), len(children))
		}
		// Copy so sibling branches never share a backing array.
		pushed := append(append([]graph.TransformData(nil), stack...), td)
		return collect(g, children[0], pushed)

	case graph.NodePrimitive, graph.NodeBoolean:
		return []job{{solid: n, stack: stack, name: n.Label(), source: n.ID}}, nil

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// builder turns graph subtrees into kernel solids. Kernel solids are
// immutable, so a built subtree is cached and shared between parts.
type builder struct {
	g  *graph.DesignGraph
	k  kernel.Kernel
	sf singleflight.Group

	mu    sync.Mutex
	cache map[graph.NodeID]kernel.Solid
}

func (b *builder) mesh(j job) (m *kernel.Mesh, err error) {
	// Kernels panic on degenerate input that slipped past validation.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("kernel panic: %v", r)
		}
	}()

	solid, err := b.solid(j.solid)
	if err != nil {
		return nil, err
	}
	for i := len(j.stack) - 1; i >= 0; i-- {
		solid = b.apply(solid, j.stack[i])
	}

	m, err = b.k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed for node %s: %w", j.source.Short(), err)
	}
	m.PartName = j.name
	m.Color = j.color
	return m, nil
}

// solid returns the kernel solid for n, building it at most once.
func (b *builder) solid(n *graph.Node) (kernel.Solid, error) {
	b.mu.Lock()
	s, ok := b.cache[n.ID]
	b.mu.Unlock()
	if ok {
		return s, nil
	}

	v, err, _ := b.sf.Do(n.ID.String(), func() (any, error) {
		s, err := b.build(n)
		if err != nil {
			return nil, err
		}
		b.mu.Lock()
		b.cache[n.ID] = s
		b.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(kernel.Solid), nil
}

func (b *builder) child(n *graph.Node) (kernel.Solid, error) {
	children := b.g.Children(n)
	if len(children) != 1 {
		return nil, fmt.Errorf("%s %s has %d children, want exactly 1", n.Kind, n.ID.Short(), len(children))
	}
	return b.solid(children[0])
}

func (b *builder) build(n *graph.Node) (kernel.Solid, error) {
	switch n.Kind {
	case graph.NodePrimitive:
		d, ok := n.Data.(graph.PrimitiveData)
		if !ok {
			return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
		}
		return b.primitive(n, d)

	case graph.NodeTransform:
		td, ok := n.Data.(graph.TransformData)
		if !ok {
			return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		s, err := b.child(n)
		if err != nil {
			return nil, err
		}
		return b.apply(s, td), nil

	case graph.NodePart:
		return b.child(n)

	case graph.NodeBoolean:
		bd, ok := n.Data.(graph.BooleanData)
		if !ok {
			return nil, fmt.Errorf("boolean node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		return b.boolean(n, bd.Op)

	default:
		return nil, fmt.Errorf("%s node %s cannot be used as a solid", n.Kind, n.ID.Short())
	}
}

// boolean folds the operands left to right: (difference a b c) is
// (a - b) - c.
func (b *builder) boolean(n *graph.Node, op graph.BooleanOp) (kernel.Solid, error) {
	operands := b.g.Children(n)
	if len(operands) == 0 {
		return nil, fmt.Errorf("%s node %s has no operands", op, n.ID.Short())
	}
	acc, err := b.solid(operands[0])
	if err != nil {
		return nil, err
	}
	for _, o := range operands[1:] {
		s, err := b.solid(o)
		if err != nil {
			return nil, err
		}
		switch op {
		case graph.OpUnion:
			acc = b.k.Union(acc, s)
		case graph.OpDifference:
			acc = b.k.Difference(acc, s)
		case graph.OpIntersection:
			acc = b.k.Intersection(acc, s)
		default:
			return nil, fmt.Errorf("unknown boolean op %d", int(op))
		}
	}
	return acc, nil
}

func (b *builder) primitive(n *graph.Node, d graph.PrimitiveData) (kernel.Solid, error) {
	segments := d.Segments
	if segments == 0 {
		segments = b.g.Defaults.Segments
	}
	if segments == 0 {
		segments = graph.DefaultSegments
	}

	switch d.Kind {
	case graph.PrimBox:
		return b.k.Box(d.Size.X, d.Size.Y, d.Size.Z), nil
	case graph.PrimRoundedBox:
		return b.k.RoundedBox(d.Size.X, d.Size.Y, d.Size.Z, d.Rounding), nil
	case graph.PrimSphere:
		stacks := d.Stacks
		if stacks == 0 {
			stacks = segments / 2
		}
		return b.k.Sphere(d.Radius, segments, stacks), nil
	case graph.PrimIcosphere:
		detail := d.Detail
		if detail == 0 {
			detail = DefaultDetail
		}
		return b.k.Icosphere(d.Radius, detail), nil
	case graph.PrimCylinder:
		return b.k.Cylinder(d.Height, d.Radius, segments), nil
	default:
		return nil, fmt.Errorf("primitive node %s has unknown kind %d", n.ID.Short(), int(d.Kind))
	}
}

// apply rotates first, then translates.
func (b *builder) apply(s kernel.Solid, td graph.TransformData) kernel.Solid {
	if r := td.Rotation; r != nil && !r.IsZero() {
		s = b.k.Rotate(s, r.X, r.Y, r.Z)
	}
	if t := td.Translation; t != nil && !t.IsZero() {
		s = b.k.Translate(s, t.X, t.Y, t.Z)
	}
	return s
}
