package view

import (
	"reflect"

	"viewgen/internal/graph"
)

// completeUsages is phase B: every reference anywhere in the graph that
// names a member of the requirement set but does not yet supply the
// view-scope binding gets the binding attached, and accessor and
// construction blocks for view-scoped definitions are (re)synthesized
// against the rewritten shapes. Idempotent: a second run over a stabilized
// graph reports no change.
func (c *Context) completeUsages() bool {
	changed := false

	for _, name := range c.graph.Order {
		def := c.graph.Get(name)
		if c.synthesizeAccessors(def) {
			changed = true
		}

		graph.WalkRefs(def, func(r *graph.TypeRef) {
			if r.Kind == graph.RefNamed && c.requires[r.Name] && !r.Bound {
				r.Bound = true
				changed = true
			}
		})
	}

	return changed
}

// synthesizeAccessors attaches the generated construction block to a
// view-scoped record so every call site compiles against the bound shape.
// The block is rebuilt from the current field list on each pass and only
// counts as a change when its shape actually differs.
func (c *Context) synthesizeAccessors(def *graph.TypeDef) bool {
	if !def.NeedsView || def.Kind != graph.KindRecord {
		return false
	}

	ctor := graph.MethodSpec{
		Name:       "New" + def.Name,
		Results:    []graph.TypeRef{graph.Named(def.Name)},
		ViewScoped: true,
	}

	for _, f := range def.Fields {
		ctor.Params = append(ctor.Params, f.Ref)
	}

	for i := range def.Methods {
		m := &def.Methods[i]
		if m.Name != ctor.Name {
			continue
		}

		// Bind the fresh copy before comparing so an already-bound
		// block counts as unchanged.
		bound := bindSpec(ctor, c.requires)
		if reflect.DeepEqual(*m, bound) {
			return false
		}

		*m = bound

		return true
	}

	def.Methods = append(def.Methods, bindSpec(ctor, c.requires))

	return true
}

// bindSpec returns a copy of the spec with the view-scope binding supplied
// on every reference naming a member of the requirement set.
func bindSpec(m graph.MethodSpec, requires map[string]bool) graph.MethodSpec {
	out := m

	out.Params = append([]graph.TypeRef(nil), m.Params...)
	for i := range out.Params {
		out.Params[i] = bindRef(out.Params[i], requires)
	}

	out.Results = append([]graph.TypeRef(nil), m.Results...)
	for i := range out.Results {
		out.Results[i] = bindRef(out.Results[i], requires)
	}

	return out
}

func bindRef(r graph.TypeRef, requires map[string]bool) graph.TypeRef {
	if r.Kind == graph.RefNamed && requires[r.Name] {
		r.Bound = true
	}

	args := append([]graph.TypeRef(nil), r.Args...)
	for i := range args {
		args[i] = bindRef(args[i], requires)
	}

	r.Args = args

	return r
}
