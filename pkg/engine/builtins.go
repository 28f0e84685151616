package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/csgkit/pkg/graph"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites csgkit source before passing it to zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal), so
//     keywords never collide with user variables.
//  2. Kebab-case to underscore: rounded-box -> rounded_box, since zygomys
//     reads a hyphen inside an identifier as subtraction.
//  3. Lisp line comments: ; and ;; become //.
//
// String literals are left untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph node so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	kind graph.NodeKind
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(%s %q)", n.kind, n.name)
	}
	return fmt.Sprintf("(%s %s)", n.kind, n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	fn         string
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(fn string, args []zygo.Sexp) kwArgs {
	result := kwArgs{fn: fn, kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Trailing keyword with no value is a flag.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// need checks the positional argument count.
func (pa kwArgs) need(n int, usage string) error {
	if len(pa.positional) < n {
		return fmt.Errorf("%s requires %s", pa.fn, usage)
	}
	return nil
}

// float returns positional argument i as a number.
func (pa kwArgs) float(i int, what string) (float64, error) {
	f, err := toFloat64(pa.positional[i])
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", pa.fn, what, err)
	}
	return f, nil
}

// optInt returns keyword argument key as an integer, or 0 when absent.
func (pa kwArgs) optInt(key string) (int, error) {
	v, ok := pa.kw[key]
	if !ok {
		return 0, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", pa.fn, key, err)
	}
	return int(f), nil
}

// optVec3 returns keyword argument key as a vector, or nil when absent.
func (pa kwArgs) optVec3(key string) (*graph.Vec3, error) {
	v, ok := pa.kw[key]
	if !ok {
		return nil, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", pa.fn, key, err)
	}
	return &vec, nil
}

// flag reports whether keyword key is present and not false.
func (pa kwArgs) flag(key string) bool {
	v, ok := pa.kw[key]
	if !ok {
		return false
	}
	return v.SexpString(nil) != "false"
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a node reference.
func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("expected solid or part, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// solidRefs flattens arguments into node references. Lists and arrays are
// spliced so (union (list a b) c) works like (union a b c).
func solidRefs(fn string, args []zygo.Sexp) ([]graph.NodeID, error) {
	var ids []graph.NodeID
	for i, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
			}
			more, err := solidRefs(fn, items)
			if err != nil {
				return nil, err
			}
			ids = append(ids, more...)
			continue
		}
		ref, err := toNodeRef(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		ids = append(ids, ref.id)
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Graph builder
// ---------------------------------------------------------------------------

// builder accumulates nodes for one evaluation. Anonymous nodes are numbered
// in creation order, so the same script always yields the same node IDs.
type builder struct {
	g    *graph.DesignGraph
	anon int
}

func newBuilder(g *graph.DesignGraph) *builder {
	return &builder{g: g}
}

// add creates a node. Named nodes get the path prefix/name, anonymous ones
// prefix/<n>.
func (b *builder) add(kind graph.NodeKind, prefix, name string, children []graph.NodeID, data graph.NodeData) *sexpNodeRef {
	path := prefix + "/" + name
	if name == "" {
		b.anon++
		path = fmt.Sprintf("%s/%d", prefix, b.anon)
	}
	id := graph.NewNodeID(path)
	b.g.AddNode(&graph.Node{
		ID:       id,
		Kind:     kind,
		Name:     name,
		Children: children,
		Data:     data,
	})
	return &sexpNodeRef{id: id, kind: kind, name: name}
}

func (b *builder) primitive(d graph.PrimitiveData) *sexpNodeRef {
	return b.add(graph.NodePrimitive, d.Kind.String(), "", nil, d)
}

func (b *builder) transform(child graph.NodeID, td graph.TransformData) *sexpNodeRef {
	return b.add(graph.NodeTransform, "transform", "", []graph.NodeID{child}, td)
}

// centered wraps a min-corner box in a translation that centers it.
func (b *builder) centered(ref *sexpNodeRef, size graph.Vec3) *sexpNodeRef {
	off := graph.Vec3{X: -size.X / 2, Y: -size.Y / 2, Z: -size.Z / 2}
	return b.transform(ref.id, graph.TransformData{Translation: &off})
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinFunc is the signature of a zygomys user function.
type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs all csgkit DSL builtins into a zygomys
// environment. The builtins populate b's graph during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	for name, fn := range map[string]builtinFunc{
		"vec3":         b.vec3,
		"box":          b.box,
		"cube":         b.cube,
		"rounded_box":  b.roundedBox,
		"sphere":       b.sphere,
		"icosphere":    b.icosphere,
		"cylinder":     b.cylinder,
		"translate":    b.translate,
		"rotate":       b.rotate,
		"place":        b.place,
		"union":        b.boolean(graph.OpUnion),
		"difference":   b.boolean(graph.OpDifference),
		"intersection": b.boolean(graph.OpIntersection),
		"defpart":      b.defpart,
		"part":         b.part,
		"assembly":     b.assembly,
	} {
		env.AddFunction(name, fn)
	}
}

// (vec3 1 2 3)
func (b *builder) vec3(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
	}
	var xyz [3]float64
	for i, axis := range []string{"x", "y", "z"} {
		f, err := toFloat64(args[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
		}
		xyz[i] = f
	}
	return &sexpVec3{vec: graph.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
}

// size reads either three numbers or a single vec3 from the positional
// arguments.
func (pa kwArgs) size() (graph.Vec3, error) {
	if len(pa.positional) == 1 {
		if v, ok := pa.positional[0].(*sexpVec3); ok {
			return v.vec, nil
		}
	}
	if err := pa.need(3, "three dimensions or a vec3"); err != nil {
		return graph.Vec3{}, err
	}
	var xyz [3]float64
	for i, axis := range []string{"x", "y", "z"} {
		f, err := pa.float(i, axis)
		if err != nil {
			return graph.Vec3{}, err
		}
		xyz[i] = f
	}
	return graph.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// (box 10 20 30) or (box (vec3 10 20 30) :center true)
func (b *builder) box(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs("box", args)
	size, err := pa.size()
	if err != nil {
		return zygo.SexpNull, err
	}
	ref := b.primitive(graph.PrimitiveData{Kind: graph.PrimBox, Size: size})
	if pa.flag("center") {
		ref = b.centered(ref, size)
	}
	return ref, nil
}

// (cube 10) or (cube 10 :center true)
func (b *builder) cube(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs("cube", args)
	if err := pa.need(1, "a size"); err != nil {
		return zygo.SexpNull, err
	}
	s, err := pa.float(0, "size")
	if err != nil {
		return zygo.SexpNull, err
	}
	size := graph.Vec3{X: s, Y: s, Z: s}
	ref := b.primitive(graph.PrimitiveData{Kind: graph.PrimBox, Size: size})
	if pa.flag("center") {
		ref = b.centered(ref, size)
	}
	return ref, nil
}

// (rounded-box 10 20 30 2)
func (b *builder) roundedBox(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs("rounded-box", args)
	if err := pa.need(4, "three dimensions and a radius"); err != nil {
		return zygo.SexpNull, err
	}
	size, err := kwArgs{fn: pa.fn, positional: pa.positional[:3]}.size()
	if err != nil {
		return zygo.SexpNull, err
	}
	r, err := pa.float(3, "radius")
	if err != nil {
		return zygo.SexpNull, err
	}
	ref := b.primitive(graph.PrimitiveData{Kind: graph.PrimRoundedBox, Size: size, Rounding: r})
	if pa.flag("center") {
		ref = b.centered(ref, size)
	}
	return ref, nil
}

// (sphere 5 :slices 24 :stacks 12)
func (b *builder) sphere(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs("sphere", args)
	if err := pa.need(1, "a radius"); err != nil {
		return zygo.SexpNull, err
	}
	r, err := pa.float(0, "radius")
	if err != nil {
		return zygo.SexpNull, err
	}
	slices, err := pa.optInt("slices")
	if err != nil {
		return zygo.SexpNull, err
	}
	stacks, err := pa.optInt("stacks")
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.primitive(graph.PrimitiveData{Kind: graph.PrimSphere, Radius: r, Segments: slices, Stacks: stacks}), nil
}

// (icosphere 5 :detail 3)
func (b *builder) icosphere(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs("icosphere", args)
	if err := pa.need(1, "a radius"); err != nil {
		return zygo.SexpNull, err
	}
	r, err := pa.float(0, "radius")
	if err != nil {
		return zygo.SexpNull, err
	}
	detail, err := pa.optInt("detail")
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.primitive(graph.PrimitiveData{Kind: graph.PrimIcosphere, Radius: r, Detail: detail}), nil
}

// (cylinder 20 5 :segments 48)
func (b *builder) cylinder(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs("cylinder", args)
	if err := pa.need(2, "a height and a radius"); err != nil {
		return zygo.SexpNull, err
	}
	h, err := pa.float(0, "height")
	if err != nil {
		return zygo.SexpNull, err
	}
	r, err := pa.float(1, "radius")
	if err != nil {
		return zygo.SexpNull, err
	}
	segments, err := pa.optInt("segments")
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.primitive(graph.PrimitiveData{Kind: graph.PrimCylinder, Height: h, Radius: r, Segments: segments}), nil
}

// solidAndVec reads (fn solid (vec3 ...)).
func solidAndVec(fn string, args []zygo.Sexp) (*sexpNodeRef, graph.Vec3, error) {
	if len(args) != 2 {
		return nil, graph.Vec3{}, fmt.Errorf("%s requires a solid and a vec3", fn)
	}
	ref, err := toNodeRef(args[0])
	if err != nil {
		return nil, graph.Vec3{}, fmt.Errorf("%s: %w", fn, err)
	}
	v, err := toVec3(args[1])
	if err != nil {
		return nil, graph.Vec3{}, fmt.Errorf("%s: %w", fn, err)
	}
	return ref, v, nil
}

// (translate s (vec3 1 2 3))
func (b *builder) translate(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	ref, v, err := solidAndVec("translate", args)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.transform(ref.id, graph.TransformData{Translation: &v}), nil
}

// (rotate s (vec3 0 0 90)), Euler angles in degrees
func (b *builder) rotate(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	ref, v, err := solidAndVec("rotate", args)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.transform(ref.id, graph.TransformData{Rotation: &v}), nil
}

// (place (part "lid") :at (vec3 0 0 20) :rotate (vec3 180 0 0))
func (b *builder) place(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs("place", args)
	if err := pa.need(1, "a solid or part as first argument"); err != nil {
		return zygo.SexpNull, err
	}
	ref, err := toNodeRef(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("place: %w", err)
	}

	var td graph.TransformData
	if td.Translation, err = pa.optVec3("at"); err != nil {
		return zygo.SexpNull, err
	}
	if td.Rotation, err = pa.optVec3("rotate"); err != nil {
		return zygo.SexpNull, err
	}
	return b.transform(ref.id, td), nil
}

// (union a b ...), (difference a b ...), (intersection a b ...)
func (b *builder) boolean(op graph.BooleanOp) builtinFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ids, err := solidRefs(op.String(), args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(ids) < 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires at least 2 solids, got %d", op, len(ids))
		}
		return b.add(graph.NodeBoolean, op.String(), "", ids, graph.BooleanData{Op: op}), nil
	}
}

// (defpart "name" solid :color "#c0c0c0")
func (b *builder) defpart(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs("defpart", args)
	if err := pa.need(2, "a name and a body expression"); err != nil {
		return zygo.SexpNull, err
	}
	partName, err := toString(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
	}
	if b.g.Lookup(partName) != nil {
		return zygo.SexpNull, fmt.Errorf("defpart: %q is already defined", partName)
	}
	body, err := toNodeRef(pa.positional[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("defpart: body: %w", err)
	}

	var pd graph.PartData
	if v, ok := pa.kw["color"]; ok {
		if pd.Color, err = toString(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: color: %w", err)
		}
	}

	ref := b.add(graph.NodePart, "part", partName, []graph.NodeID{body.id}, pd)
	b.g.AddRoot(ref.id)
	return ref, nil
}

// (part "name")
func (b *builder) part(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("part requires a name argument")
	}
	partName, err := toString(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
	}
	n := b.g.Lookup(partName)
	if n == nil || n.Kind != graph.NodePart {
		return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
	}
	return &sexpNodeRef{id: n.ID, kind: n.Kind, name: partName}, nil
}

// (assembly "name" (place ...) (part "x") ...)
func (b *builder) assembly(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) < 1 {
		return zygo.SexpNull, fmt.Errorf("assembly requires a name argument")
	}
	asmName, err := toString(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("assembly: name: %w", err)
	}
	if b.g.Lookup(asmName) != nil {
		return zygo.SexpNull, fmt.Errorf("assembly: %q is already defined", asmName)
	}
	children, err := solidRefs("assembly", args[1:])
	if err != nil {
		return zygo.SexpNull, err
	}

	ref := b.add(graph.NodeGroup, "assembly", asmName, children, graph.GroupData{})
	b.g.AddRoot(ref.id)
	return ref, nil
}
