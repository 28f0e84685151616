package graph

import "fmt"

// DefaultSegments is the default tessellation count for round primitives.
const DefaultSegments = 32

// GlobalDefaults contains graph-wide default settings.
type GlobalDefaults struct {
	Segments int    `json:"segments"` // slices for spheres and cylinders
	Units    string `json:"units"`    // "mm" (only option for now)
}

// DesignGraph is the top-level immutable data structure produced by script
// evaluation. It is never mutated in place once built; each evaluation
// produces a new graph.
type DesignGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  GlobalDefaults    `json:"defaults"`
	Version   uint64            `json:"version"`
}

// New creates an empty DesignGraph with default settings.
func New() *DesignGraph {
	return &DesignGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults: GlobalDefaults{
			Segments: DefaultSegments,
			Units:    "mm",
		},
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *DesignGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *DesignGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *DesignGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *DesignGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Parts returns all part nodes in the graph.
func (g *DesignGraph) Parts() []*Node {
	return g.ofKind(NodePart)
}

// Primitives returns all primitive nodes in the graph.
func (g *DesignGraph) Primitives() []*Node {
	return g.ofKind(NodePrimitive)
}

func (g *DesignGraph) ofKind(k NodeKind) []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the child nodes of the given node.
func (g *DesignGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *DesignGraph) NodeCount() int {
	return len(g.Nodes)
}

// PruneRoots drops roots that are also reachable from another root, such as
// a part that was later placed into an assembly. Root order is kept.
func (g *DesignGraph) PruneRoots() {
	nested := make(map[NodeID]bool)
	var mark func(id NodeID)
	mark = func(id NodeID) {
		n := g.Nodes[id]
		if n == nil {
			return
		}
		for _, c := range n.Children {
			if !nested[c] {
				nested[c] = true
				mark(c)
			}
		}
	}
	for _, r := range g.Roots {
		mark(r)
	}

	seen := make(map[NodeID]bool, len(g.Roots))
	kept := g.Roots[:0]
	for _, r := range g.Roots {
		if nested[r] || seen[r] {
			continue
		}
		seen[r] = true
		kept = append(kept, r)
	}
	g.Roots = kept
}
