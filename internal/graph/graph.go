package graph

import (
	"fmt"
	"sort"
)

// Graph holds all type definitions keyed by name.
//
// Definitions reference each other by name only, so cycles and forward
// references need no special handling: a lookup of a not-yet-added or
// external name simply returns nil and traversal stops there.
type Graph struct {
	// Types maps definition name to definition.
	Types map[string]*TypeDef
	// Order preserves insertion order for deterministic emission.
	Order []string
}

// New creates a new empty Graph.
func New() *Graph {
	return &Graph{Types: make(map[string]*TypeDef)}
}

// Add inserts a definition into the graph.
func (g *Graph) Add(def *TypeDef) error {
	if def.Name == "" {
		return fmt.Errorf("type definition has no name")
	}

	if _, ok := g.Types[def.Name]; ok {
		return fmt.Errorf("duplicate type definition %q", def.Name)
	}

	g.Types[def.Name] = def
	g.Order = append(g.Order, def.Name)

	return nil
}

// Get returns the definition with the given name, or nil if absent.
func (g *Graph) Get(name string) *TypeDef {
	return g.Types[name]
}

// Len returns the number of definitions in the graph.
func (g *Graph) Len() int {
	return len(g.Types)
}

// Defs returns all definitions in insertion order.
func (g *Graph) Defs() []*TypeDef {
	defs := make([]*TypeDef, 0, len(g.Order))
	for _, name := range g.Order {
		defs = append(defs, g.Types[name])
	}

	return defs
}

// References returns the sorted set of definition names referenced by the
// named definition, descending into generic arguments, wrapper element
// types, union variant payloads and behavior-block signatures. Names not
// present in the graph are included: the caller decides how to treat
// external boundaries.
func (g *Graph) References(name string) []string {
	def := g.Get(name)
	if def == nil {
		return nil
	}

	seen := make(map[string]bool)

	WalkRefs(def, func(r *TypeRef) {
		if r.Kind == RefNamed {
			seen[r.Name] = true
		}
	})

	refs := make([]string, 0, len(seen))
	for n := range seen {
		refs = append(refs, n)
	}

	sort.Strings(refs)

	return refs
}

// WalkRefs visits every type reference appearing in def, pre-order,
// including references nested in generic arguments and wrapper elements.
// The callback receives a pointer so passes can rewrite references in place.
func WalkRefs(def *TypeDef, fn func(r *TypeRef)) {
	for i := range def.Fields {
		walkRef(&def.Fields[i].Ref, fn)
	}

	for i := range def.Variants {
		walkRef(&def.Variants[i].Ref, fn)
	}

	for i := range def.Methods {
		m := &def.Methods[i]
		for j := range m.Params {
			walkRef(&m.Params[j], fn)
		}

		for j := range m.Results {
			walkRef(&m.Results[j], fn)
		}
	}
}

func walkRef(r *TypeRef, fn func(r *TypeRef)) {
	fn(r)

	for i := range r.Args {
		walkRef(&r.Args[i], fn)
	}
}

// Clone returns a deep copy of the graph. Emission keeps the owned graph
// intact while the propagation passes rewrite the view copy.
func (g *Graph) Clone() *Graph {
	out := New()
	for _, name := range g.Order {
		// Add cannot fail here: names were unique in the source graph.
		_ = out.Add(cloneDef(g.Types[name]))
	}

	return out
}

func cloneDef(def *TypeDef) *TypeDef {
	c := *def

	c.TypeParams = append([]string(nil), def.TypeParams...)

	c.Fields = append([]Field(nil), def.Fields...)
	for i := range c.Fields {
		c.Fields[i].Ref = cloneRef(def.Fields[i].Ref)
	}

	c.Variants = append([]Variant(nil), def.Variants...)
	for i := range c.Variants {
		c.Variants[i].Ref = cloneRef(def.Variants[i].Ref)
	}

	c.Methods = append([]MethodSpec(nil), def.Methods...)
	for i := range c.Methods {
		m := &c.Methods[i]

		m.Params = append([]TypeRef(nil), def.Methods[i].Params...)
		for j := range m.Params {
			m.Params[j] = cloneRef(def.Methods[i].Params[j])
		}

		m.Results = append([]TypeRef(nil), def.Methods[i].Results...)
		for j := range m.Results {
			m.Results[j] = cloneRef(def.Methods[i].Results[j])
		}
	}

	return &c
}

func cloneRef(r TypeRef) TypeRef {
	c := r

	c.Args = append([]TypeRef(nil), r.Args...)
	for i := range c.Args {
		c.Args[i] = cloneRef(r.Args[i])
	}

	return c
}
