package bsp

import (
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// parallelThreshold is the smallest front list that is worth handing to
// another goroutine during a parallel build.
const parallelThreshold = 256

// Options configures a Tree.
type Options struct {
	// Epsilon is the plane half-thickness. Zero means DefaultEpsilon.
	Epsilon float32
	// Parallel lets Build construct independent front/back subtrees on
	// separate goroutines. The resulting tree is identical to a
	// sequential build.
	Parallel bool
}

// Node is one level of a BSP tree: a splitting plane, the polygons that lie
// on it and the subtrees for the two half-spaces. A node without a plane is
// empty space.
type Node struct {
	plane    Plane
	hasPlane bool
	polygons []*Polygon
	front    *Node
	back     *Node
}

// Plane returns the splitting plane and whether the node has one.
func (n *Node) Plane() (Plane, bool) { return n.plane, n.hasPlane }

// Polygons returns the polygons stored at this node.
func (n *Node) Polygons() []*Polygon { return n.polygons }

// Front returns the front subtree, or nil.
func (n *Node) Front() *Node { return n.front }

// Back returns the back subtree, or nil.
func (n *Node) Back() *Node { return n.back }

// Tree is a BSP tree over a polygon set. The region it represents is the
// back side of its planes: ClipPolygons keeps what lies outside it.
type Tree struct {
	root *Node
	eps  float32
	sem  *semaphore.Weighted
}

// NewTree builds a tree from polygons. The tree takes ownership of the
// polygons; Invert and ClipTo modify them in place.
func NewTree(polygons []*Polygon, opts Options) *Tree {
	t := &Tree{root: &Node{}, eps: opts.Epsilon}
	if t.eps <= 0 {
		t.eps = DefaultEpsilon
	}
	if opts.Parallel {
		t.sem = semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
	}
	t.Build(polygons)
	return t
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Epsilon returns the plane half-thickness the tree classifies with.
func (t *Tree) Epsilon() float32 { return t.eps }

// Build inserts polygons into the tree. The first polygon reaching an empty
// node donates its plane and stays at that node; polygons coplanar with a
// node stay there too, the rest are split and pushed down into the front
// and back subtrees.
func (t *Tree) Build(polygons []*Polygon) {
	t.root.build(polygons, t)
}

func (n *Node) build(polygons []*Polygon, t *Tree) {
	if len(polygons) == 0 {
		return
	}
	if !n.hasPlane {
		// The donor stays here unclassified: far from the origin a fragment
		// can sit more than eps off its own inherited plane.
		n.plane = polygons[0].Plane
		n.hasPlane = true
		n.polygons = append(n.polygons, polygons[0])
		polygons = polygons[1:]
	}
	var front, back []*Polygon
	for _, p := range polygons {
		n.plane.Split(p, t.eps, &n.polygons, &n.polygons, &front, &back)
	}
	if len(front) > 0 && n.front == nil {
		n.front = &Node{}
	}
	if len(back) > 0 && n.back == nil {
		n.back = &Node{}
	}

	if t.sem != nil && len(front) >= parallelThreshold && len(back) > 0 && t.sem.TryAcquire(1) {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer t.sem.Release(1)
			n.front.build(front, t)
		}()
		n.back.build(back, t)
		wg.Wait()
		return
	}

	if len(front) > 0 {
		n.front.build(front, t)
	}
	if len(back) > 0 {
		n.back.build(back, t)
	}
}

// ClipPolygons removes the parts of polygons that lie inside the region
// represented by the tree and returns what remains.
func (t *Tree) ClipPolygons(polygons []*Polygon) []*Polygon {
	return t.root.clipPolygons(polygons, t.eps)
}

func (n *Node) clipPolygons(polygons []*Polygon, eps float32) []*Polygon {
	if !n.hasPlane {
		out := make([]*Polygon, len(polygons))
		copy(out, polygons)
		return out
	}
	var front, back []*Polygon
	for _, p := range polygons {
		n.plane.Split(p, eps, &front, &back, &front, &back)
	}
	if n.front != nil {
		front = n.front.clipPolygons(front, eps)
	}
	if n.back != nil {
		back = n.back.clipPolygons(back, eps)
	} else {
		back = nil
	}
	return append(front, back...)
}

// ClipTo replaces the polygons of every node with their parts that lie
// outside other.
func (t *Tree) ClipTo(other *Tree) {
	t.root.clipTo(other.root, t.eps)
}

func (n *Node) clipTo(other *Node, eps float32) {
	n.polygons = other.clipPolygons(n.polygons, eps)
	if n.front != nil {
		n.front.clipTo(other, eps)
	}
	if n.back != nil {
		n.back.clipTo(other, eps)
	}
}

// Invert turns the solid inside out: every polygon and plane is flipped
// and the front and back subtrees trade places.
func (t *Tree) Invert() {
	t.root.invert()
}

func (n *Node) invert() {
	for _, p := range n.polygons {
		p.Flip()
	}
	n.plane = n.plane.Flip()
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// Merge inserts every polygon of other into t. other must not be used
// afterwards since its polygons now belong to t.
func (t *Tree) Merge(other *Tree) {
	t.Build(other.AllPolygons())
}

// AllPolygons returns every polygon stored in the tree, root first.
func (t *Tree) AllPolygons() []*Polygon {
	var out []*Polygon
	stack := []*Node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n.polygons...)
		if n.back != nil {
			stack = append(stack, n.back)
		}
		if n.front != nil {
			stack = append(stack, n.front)
		}
	}
	return out
}

// Depth returns the number of levels in the tree.
func (t *Tree) Depth() int {
	return t.root.depth()
}

func (n *Node) depth() int {
	if n == nil || !n.hasPlane {
		return 0
	}
	return 1 + max(n.front.depth(), n.back.depth())
}
