package emit

import (
	"bytes"
	"fmt"
	"strings"

	"viewgen/internal/graph"
)

// builder accumulates generated Go source for one file.
type builder struct {
	buf bytes.Buffer
}

func (b *builder) pf(format string, args ...any) {
	fmt.Fprintf(&b.buf, format, args...)
}

func (b *builder) doc(indent int, text string) {
	if text == "" {
		return
	}

	pad := strings.Repeat("\t", indent)
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		b.pf("%s// %s\n", pad, line)
	}
}

// typeName returns the emitted name of a definition in the requested
// representation. Only view-scoped definitions have a distinct view twin.
func typeName(def *graph.TypeDef, view bool) string {
	if view && def.NeedsView {
		return def.Name + "View"
	}

	return def.Name
}

// record emits a record definition as a struct.
func (b *builder) record(def *graph.TypeDef, view bool) {
	b.doc(0, def.Doc)
	b.pf("type %s struct {\n", typeName(def, view))

	for _, f := range def.Fields {
		b.doc(1, f.Doc)
		b.pf("\t%s %s %s\n", f.Name, typeExpr(f.Ref, view), jsonTag(f))
	}

	b.pf("}\n\n")
}

// union emits a union definition: a struct with one pointer per variant
// and codec methods implementing tagged dispatch or declaration-order
// trial.
func (b *builder) union(def *graph.TypeDef, view bool) {
	name := typeName(def, view)

	b.doc(0, def.Doc)
	b.pf("type %s struct {\n", name)

	for _, v := range def.Variants {
		b.pf("\t%s *%s `json:\"-\"`\n", v.Name, typeExpr(v.Ref, view))
	}

	b.pf("}\n\n")

	if def.IsTagged() {
		b.taggedCodec(def, view)
	} else {
		b.untaggedCodec(def, view)
	}
}

func (b *builder) taggedCodec(def *graph.TypeDef, view bool) {
	name := typeName(def, view)

	b.pf("// UnmarshalJSON dispatches on the %s discriminant.\n", def.TagField)
	b.pf("func (u *%s) UnmarshalJSON(data []byte) error {\n", name)
	b.pf("\ttag, err := wire.TagOf(data, %q)\n", def.TagField)
	b.pf("\tif err != nil {\n\t\treturn err\n\t}\n\n")
	b.pf("\tswitch tag {\n")

	for _, v := range def.Variants {
		b.pf("\tcase %q:\n", v.Tag)
		b.pf("\t\tvar w struct {\n")
		b.pf("\t\t\tContent %s `json:%q`\n", typeExpr(v.Ref, view), def.ContentField)
		b.pf("\t\t}\n\n")
		b.pf("\t\tif err := json.Unmarshal(data, &w); err != nil {\n\t\t\treturn err\n\t\t}\n\n")
		b.pf("\t\tu.%s = &w.Content\n", v.Name)
	}

	b.pf("\tdefault:\n")
	b.pf("\t\treturn fmt.Errorf(\"%s: unknown %s %%q\", tag)\n", name, def.TagField)
	b.pf("\t}\n\n\treturn nil\n}\n\n")

	b.pf("// MarshalJSON encodes the set variant under its %s tag.\n", def.TagField)
	b.pf("func (u %s) MarshalJSON() ([]byte, error) {\n", name)
	b.pf("\tswitch {\n")

	for _, v := range def.Variants {
		b.pf("\tcase u.%s != nil:\n", v.Name)
		b.pf("\t\treturn wire.MarshalTagged(%q, %q, %q, u.%s)\n",
			def.TagField, v.Tag, def.ContentField, v.Name)
	}

	b.pf("\t}\n\n")
	b.pf("\treturn nil, fmt.Errorf(\"%s: no variant set\")\n}\n\n", name)
}

func (b *builder) untaggedCodec(def *graph.TypeDef, view bool) {
	name := typeName(def, view)

	b.pf("// UnmarshalJSON tries each variant in declaration order.\n")
	b.pf("func (u *%s) UnmarshalJSON(data []byte) error {\n", name)

	for _, v := range def.Variants {
		b.pf("\t{\n")
		b.pf("\t\tvar v %s\n", typeExpr(v.Ref, view))
		b.pf("\t\tif err := json.Unmarshal(data, &v); err == nil {\n")
		b.pf("\t\t\tu.%s = &v\n\n", v.Name)
		b.pf("\t\t\treturn nil\n\t\t}\n\t}\n\n")
	}

	b.pf("\treturn fmt.Errorf(\"%s: no variant matched\")\n}\n\n", name)

	b.pf("// MarshalJSON encodes the set variant directly.\n")
	b.pf("func (u %s) MarshalJSON() ([]byte, error) {\n", name)
	b.pf("\tswitch {\n")

	for _, v := range def.Variants {
		b.pf("\tcase u.%s != nil:\n", v.Name)
		b.pf("\t\treturn json.Marshal(u.%s)\n", v.Name)
	}

	b.pf("\t}\n\n")
	b.pf("\treturn nil, fmt.Errorf(\"%s: no variant set\")\n}\n\n", name)
}

// constructors emits the construction blocks attached to a definition by
// the usage-site rewriter.
func (b *builder) constructors(def *graph.TypeDef) {
	for _, m := range def.Methods {
		if len(m.Params) != len(def.Fields) || len(m.Results) != 1 {
			continue
		}

		name := m.Name
		if m.ViewScoped {
			name += "View"
		}

		result := typeExpr(m.Results[0], m.ViewScoped)

		params := make([]string, len(m.Params))
		for i, p := range m.Params {
			params[i] = paramName(def.Fields[i].Name) + " " + typeExpr(p, m.ViewScoped)
		}

		b.pf("// %s constructs a %s with every field set.\n", name, result)
		b.pf("func %s(%s) %s {\n", name, strings.Join(params, ", "), result)
		b.pf("\treturn %s{\n", result)

		for _, f := range def.Fields {
			b.pf("\t\t%s: %s,\n", f.Name, paramName(f.Name))
		}

		b.pf("\t}\n}\n\n")
	}
}

// recordToOwned emits the view-to-owned conversion for a record.
func (b *builder) recordToOwned(def *graph.TypeDef) {
	b.pf("// ToOwned converts the view into an independently allocated %s.\n", def.Name)
	b.pf("func (v %s) ToOwned() %s {\n", typeName(def, true), def.Name)
	b.pf("\tvar out %s\n\n", def.Name)

	for _, f := range def.Fields {
		b.convertAssign(1, "out."+f.Name, "v."+f.Name, f.Ref, 0)
	}

	b.pf("\n\treturn out\n}\n\n")
}

// unionToOwned emits the view-to-owned conversion for a union.
func (b *builder) unionToOwned(def *graph.TypeDef) {
	b.pf("// ToOwned converts the view into an independently allocated %s.\n", def.Name)
	b.pf("func (u %s) ToOwned() %s {\n", typeName(def, true), def.Name)
	b.pf("\tvar out %s\n\n", def.Name)
	b.pf("\tswitch {\n")

	for _, v := range def.Variants {
		b.pf("\tcase u.%s != nil:\n", v.Name)

		if needsConvert(v.Ref) {
			b.pf("\t\tvar tmp %s\n", typeExpr(v.Ref, false))
			b.convertAssign(2, "tmp", "(*u."+v.Name+")", v.Ref, 0)
			b.pf("\t\tout.%s = &tmp\n", v.Name)
		} else {
			b.pf("\t\ttmp := *u.%s\n", v.Name)
			b.pf("\t\tout.%s = &tmp\n", v.Name)
		}
	}

	b.pf("\t}\n\n\treturn out\n}\n\n")
}

// convertAssign emits statements assigning the owned form of a view-side
// value to dst. References without view content assign directly: decoded
// scalars and unrewritten types already own their storage.
func (b *builder) convertAssign(indent int, dst, src string, r graph.TypeRef, depth int) {
	pad := strings.Repeat("\t", indent)

	if !needsConvert(r) {
		b.pf("%s%s = %s\n", pad, dst, src)

		return
	}

	switch r.Kind {
	case graph.RefTextView:
		b.pf("%s%s = %s.String()\n", pad, dst, src)
	case graph.RefJSONValue:
		b.pf("%s%s = append(json.RawMessage(nil), %s...)\n", pad, dst, src)
	case graph.RefNamed:
		b.pf("%s%s = %s.ToOwned()\n", pad, dst, src)
	case graph.RefOptional:
		elem := r.Args[0]
		tmp := fmt.Sprintf("tmp%d", depth)

		b.pf("%sif %s != nil {\n", pad, src)
		b.pf("%s\tvar %s %s\n", pad, tmp, typeExpr(elem, false))
		b.convertAssign(indent+1, tmp, "(*"+src+")", elem, depth+1)
		b.pf("%s\t%s = &%s\n", pad, dst, tmp)
		b.pf("%s}\n", pad)
	case graph.RefSequence:
		elem := r.Args[0]
		iv := fmt.Sprintf("i%d", depth)

		b.pf("%sif %s != nil {\n", pad, src)
		b.pf("%s\t%s = make([]%s, len(%s))\n", pad, dst, typeExpr(elem, false), src)
		b.pf("%s\tfor %s := range %s {\n", pad, iv, src)
		b.convertAssign(indent+2, dst+"["+iv+"]", src+"["+iv+"]", elem, depth+1)
		b.pf("%s\t}\n", pad)
		b.pf("%s}\n", pad)
	case graph.RefMapping:
		elem := r.Args[0]
		kv := fmt.Sprintf("k%d", depth)
		vv := fmt.Sprintf("v%d", depth)
		tmp := fmt.Sprintf("tmp%d", depth)

		b.pf("%sif %s != nil {\n", pad, src)
		b.pf("%s\t%s = make(map[string]%s, len(%s))\n", pad, dst, typeExpr(elem, false), src)
		b.pf("%s\tfor %s, %s := range %s {\n", pad, kv, vv, src)
		b.pf("%s\t\tvar %s %s\n", pad, tmp, typeExpr(elem, false))
		b.convertAssign(indent+2, tmp, vv, elem, depth+1)
		b.pf("%s\t\t%s[%s] = %s\n", pad, dst, kv, tmp)
		b.pf("%s\t}\n", pad)
		b.pf("%s}\n", pad)
	}
}
