package graph

import (
	"encoding/json"
	"testing"
)

func boxData(x, y, z float64) PrimitiveData {
	return PrimitiveData{Kind: PrimBox, Size: Vec3{x, y, z}}
}

func TestNewDesignGraph(t *testing.T) {
	g := New()
	if g.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if g.NameIndex == nil {
		t.Fatal("NameIndex map should be initialized")
	}
	if g.Defaults.Segments != DefaultSegments {
		t.Errorf("default segments = %d, want %d", g.Defaults.Segments, DefaultSegments)
	}
	if g.Defaults.Units != "mm" {
		t.Errorf("default units = %q, want %q", g.Defaults.Units, "mm")
	}
	if g.NodeCount() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.NodeCount())
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()

	boxID := NewNodeID("box/1")
	partID := NewNodeID("part/plate")
	g.AddNode(&Node{ID: boxID, Kind: NodePrimitive, Data: boxData(100, 50, 5)})
	g.AddNode(&Node{ID: partID, Kind: NodePart, Name: "plate", Children: []NodeID{boxID}, Data: PartData{Color: "#ff0000"}})
	g.AddRoot(partID)

	if g.NodeCount() != 2 {
		t.Errorf("node count = %d, want 2", g.NodeCount())
	}

	found := g.Lookup("plate")
	if found == nil {
		t.Fatal("Lookup(\"plate\") returned nil")
	}
	if found.ID != partID {
		t.Errorf("lookup returned wrong node")
	}
	if must := g.MustLookup("plate"); must.ID != partID {
		t.Errorf("MustLookup returned wrong node")
	}
	if g.Get(boxID) == nil {
		t.Error("Get(boxID) returned nil")
	}
	if g.Lookup("missing") != nil {
		t.Error("Lookup of unknown name should return nil")
	}
}

func TestMustLookupPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLookup should panic for missing name")
		}
	}()
	New().MustLookup("nope")
}

func TestPartsAndPrimitives(t *testing.T) {
	g := New()
	a, b := NewNodeID("box/a"), NewNodeID("sphere/b")
	g.AddNode(&Node{ID: a, Kind: NodePrimitive, Data: boxData(1, 1, 1)})
	g.AddNode(&Node{ID: b, Kind: NodePrimitive, Data: PrimitiveData{Kind: PrimSphere, Radius: 1}})
	g.AddNode(&Node{ID: NewNodeID("part/p"), Kind: NodePart, Name: "p", Children: []NodeID{a}, Data: PartData{}})

	if got := len(g.Parts()); got != 1 {
		t.Errorf("Parts() = %d, want 1", got)
	}
	if got := len(g.Primitives()); got != 2 {
		t.Errorf("Primitives() = %d, want 2", got)
	}
}

func TestChildren(t *testing.T) {
	g := New()
	a, b, u := NewNodeID("a"), NewNodeID("b"), NewNodeID("u")
	g.AddNode(&Node{ID: a, Kind: NodePrimitive, Data: boxData(1, 1, 1)})
	g.AddNode(&Node{ID: b, Kind: NodePrimitive, Data: boxData(2, 2, 2)})
	union := &Node{ID: u, Kind: NodeBoolean, Children: []NodeID{a, NewNodeID("missing"), b}, Data: BooleanData{Op: OpUnion}}
	g.AddNode(union)

	children := g.Children(union)
	if len(children) != 2 {
		t.Fatalf("Children() = %d nodes, want 2 (missing ids skipped)", len(children))
	}
	if children[0].ID != a || children[1].ID != b {
		t.Error("Children() lost the operand order")
	}
}

func TestPruneRoots(t *testing.T) {
	g := New()
	box := NewNodeID("box")
	left, right := NewNodeID("part/left"), NewNodeID("part/right")
	asm := NewNodeID("group/asm")
	g.AddNode(&Node{ID: box, Kind: NodePrimitive, Data: boxData(1, 1, 1)})
	g.AddNode(&Node{ID: left, Kind: NodePart, Name: "left", Children: []NodeID{box}, Data: PartData{}})
	g.AddNode(&Node{ID: right, Kind: NodePart, Name: "right", Children: []NodeID{box}, Data: PartData{}})
	g.AddNode(&Node{ID: asm, Kind: NodeGroup, Name: "asm", Children: []NodeID{left}, Data: GroupData{}})
	g.AddRoot(left)
	g.AddRoot(right)
	g.AddRoot(asm)
	g.AddRoot(right)

	g.PruneRoots()

	want := []NodeID{right, asm}
	if len(g.Roots) != len(want) {
		t.Fatalf("roots = %d, want %d", len(g.Roots), len(want))
	}
	for i := range want {
		if g.Roots[i] != want[i] {
			t.Errorf("root %d = %s, want %s", i, g.Roots[i].Short(), want[i].Short())
		}
	}
}

func TestNodeIDDeterministic(t *testing.T) {
	a := NewNodeID("part/bracket")
	b := NewNodeID("part/bracket")
	c := NewNodeID("part/other")
	if a != b {
		t.Error("same path should produce the same ID")
	}
	if a == c {
		t.Error("different paths should produce different IDs")
	}
	if len(a.Short()) != 8 {
		t.Errorf("Short() = %q, want 8 characters", a.Short())
	}
}

func TestNodeIDZero(t *testing.T) {
	var id NodeID
	if !id.IsZero() {
		t.Error("zero value should be IsZero")
	}
	if NewNodeID("x").IsZero() {
		t.Error("derived ID should not be zero")
	}
}

func TestNodeIDJSON(t *testing.T) {
	id := NewNodeID("box/7")
	b, err := json.Marshal(map[string]NodeID{"id": id})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back map[string]NodeID
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back["id"] != id {
		t.Errorf("round trip = %s, want %s", back["id"], id)
	}
	var bad NodeID
	if err := bad.UnmarshalText([]byte("not-a-uuid")); err == nil {
		t.Error("expected error for malformed id")
	}
}

func TestVec3(t *testing.T) {
	v := Vec3{1, 2, 3}.Add(Vec3{10, 20, 30})
	if v != (Vec3{11, 22, 33}) {
		t.Errorf("Add = %v", v)
	}
	if !(Vec3{}).IsZero() || v.IsZero() {
		t.Error("IsZero is wrong")
	}
	if v.String() != "(11 22 33)" {
		t.Errorf("String() = %q", v.String())
	}
}

func TestNodeLabel(t *testing.T) {
	id := NewNodeID("anon")
	if got := (&Node{ID: id}).Label(); got != id.Short() {
		t.Errorf("Label() = %q, want short id", got)
	}
	if got := (&Node{ID: id, Name: "lid"}).Label(); got != "lid" {
		t.Errorf("Label() = %q, want lid", got)
	}
}

func TestStringers(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{NodePrimitive.String(), "primitive"},
		{NodeTransform.String(), "transform"},
		{NodeBoolean.String(), "boolean"},
		{NodePart.String(), "part"},
		{NodeGroup.String(), "group"},
		{NodeKind(99).String(), "unknown"},
		{PrimBox.String(), "box"},
		{PrimRoundedBox.String(), "rounded-box"},
		{PrimSphere.String(), "sphere"},
		{PrimIcosphere.String(), "icosphere"},
		{PrimCylinder.String(), "cylinder"},
		{OpUnion.String(), "union"},
		{OpDifference.String(), "difference"},
		{OpIntersection.String(), "intersection"},
		{BooleanOp(7).String(), "unknown"},
		{SeverityError.String(), "error"},
		{SeverityWarning.String(), "warning"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
