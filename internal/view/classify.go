package view

import (
	"fmt"

	"viewgen/internal/graph"
)

// classifyDef applies the per-field view rule to an eligible definition,
// rewriting owned text leaves to views in place. It returns true if the
// definition requires the view-scope binding under the current requirement
// set. Callers filter out excluded names and non-targets before dispatching
// here.
func (c *Context) classifyDef(def *graph.TypeDef) bool {
	requires := false

	switch def.Kind {
	case graph.KindRecord:
		for i := range def.Fields {
			f := &def.Fields[i]
			if c.classifyRef(&f.Ref, def.Name, f.Name) {
				requires = true
			}
		}
	case graph.KindUnion:
		for i := range def.Variants {
			v := &def.Variants[i]
			if c.classifyRef(&v.Ref, def.Name, v.Name) {
				requires = true
			}
		}
	}

	return requires
}

// classifyRef handles a single field or variant payload reference:
// substitute text leaves within the supported depth, then report whether
// the reference carries a view-scope dependency.
func (c *Context) classifyRef(r *graph.TypeRef, typeName, fieldName string) bool {
	c.substituteText(r, typeName, fieldName, 0)

	return c.refRequires(*r)
}

// substituteText rewrites an owned text leaf to its borrowed form at the
// top level or exactly one level inside a generic wrapper. Text nested any
// deeper is intentionally left owned; the field is emitted without the
// optimization and an info diagnostic records the miss.
func (c *Context) substituteText(r *graph.TypeRef, typeName, fieldName string, depth int) {
	switch r.Kind {
	case graph.RefText:
		if depth <= 1 {
			r.Kind = graph.RefTextView
		}
	case graph.RefJSONValue:
		// Free-form JSON payloads keep their owned, arbitrary-value shape.
		return
	case graph.RefOptional, graph.RefSequence, graph.RefMapping:
		if depth >= 1 {
			if containsOwnedText(r.Args[0]) {
				c.noteNestedText(r.Kind, typeName, fieldName)
			}

			return
		}

		c.substituteText(&r.Args[0], typeName, fieldName, depth+1)
	case graph.RefNamed:
		// Named references are handled by propagation; their generic
		// arguments are instantiations, not leaves of this definition.
		return
	}
}

// noteNestedText records the deep-nesting miss for a field once. Every
// fixpoint round re-classifies every definition, so without the guard the
// same note would repeat once per round.
func (c *Context) noteNestedText(kind graph.RefKind, typeName, fieldName string) {
	key := typeName + "." + fieldName

	if c.noted == nil {
		c.noted = make(map[string]bool)
	}

	if c.noted[key] {
		return
	}

	c.noted[key] = true
	c.diags.AddInfo("nested_text_unconverted",
		fmt.Sprintf("text nested deeper than one wrapper level stays owned (%s)", kind),
		typeName, fieldName)
}

// refRequires reports whether the reference transitively carries a
// view-scope dependency: a text view at any depth, or a reference to a
// member of the current requirement set. Names absent from the graph are
// opaque external boundaries and never enter the set, so they report false
// here by construction.
func (c *Context) refRequires(r graph.TypeRef) bool {
	switch r.Kind {
	case graph.RefTextView:
		return true
	case graph.RefNamed:
		if c.requires[r.Name] {
			return true
		}

		for _, a := range r.Args {
			if c.refRequires(a) {
				return true
			}
		}

		return false
	case graph.RefOptional, graph.RefSequence, graph.RefMapping:
		return c.refRequires(r.Args[0])
	default:
		return false
	}
}

// containsOwnedText reports whether an owned text leaf occurs anywhere
// inside the reference.
func containsOwnedText(r graph.TypeRef) bool {
	if r.Kind == graph.RefText {
		return true
	}

	if r.Kind == graph.RefJSONValue {
		return false
	}

	for _, a := range r.Args {
		if containsOwnedText(a) {
			return true
		}
	}

	return false
}
