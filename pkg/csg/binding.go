package csg

import "github.com/chazu/csgkit/pkg/bsp"

// Binding is an opaque per-vertex reference that survives boolean
// operations unchanged. The zero value means "no binding"; vertices created
// where polygons are cut never carry one.
type Binding = bsp.Binding

// NewBinding returns a binding referring to ref.
func NewBinding(ref uint32) Binding {
	return bsp.NewBinding(ref)
}

// AttributeTable is a caller-owned side table for per-vertex attributes the
// boolean operators do not understand (colors, tangents, skin weights).
// Bind an attribute to get a Binding for the input vertex, then Lookup the
// bindings found on the result.
type AttributeTable[T any] struct {
	items []T
}

// Bind stores attr and returns a binding that refers to it.
func (t *AttributeTable[T]) Bind(attr T) Binding {
	t.items = append(t.items, attr)
	return NewBinding(uint32(len(t.items) - 1))
}

// Lookup returns the attribute b refers to. ok is false for unset bindings
// and bindings that did not come from this table.
func (t *AttributeTable[T]) Lookup(b Binding) (attr T, ok bool) {
	ref, valid := b.Ref()
	if !valid || int(ref) >= len(t.items) {
		return attr, false
	}
	return t.items[ref], true
}

// Len returns the number of bound attributes.
func (t *AttributeTable[T]) Len() int {
	return len(t.items)
}
