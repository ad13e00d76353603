package emit

import (
	"go/token"
	"strings"

	"viewgen/internal/graph"
)

// typeExpr renders a type reference as a Go type expression. In view mode
// text views render as wire.Text and bound named references target the
// view twin; in owned mode the same reference renders as its owned shape,
// which is how conversion code names its destination types.
func typeExpr(r graph.TypeRef, view bool) string {
	switch r.Kind {
	case graph.RefBool:
		return "bool"
	case graph.RefInt:
		return "int64"
	case graph.RefFloat:
		return "float64"
	case graph.RefText:
		return "string"
	case graph.RefTextView:
		if view {
			return "wire.Text"
		}

		return "string"
	case graph.RefOptional:
		return "*" + typeExpr(r.Args[0], view)
	case graph.RefSequence:
		return "[]" + typeExpr(r.Args[0], view)
	case graph.RefMapping:
		return "map[string]" + typeExpr(r.Args[0], view)
	case graph.RefJSONValue:
		return "json.RawMessage"
	case graph.RefNamed:
		name := r.Name
		if view && r.Bound {
			name += "View"
		}

		if len(r.Args) > 0 {
			args := make([]string, len(r.Args))
			for i, a := range r.Args {
				args[i] = typeExpr(a, view)
			}

			name += "[" + strings.Join(args, ", ") + "]"
		}

		return name
	default:
		return "any"
	}
}

// jsonTag renders the struct tag for a field. Optional fields marshal
// with omitempty so absent and present-but-empty stay distinguishable on
// the wire.
func jsonTag(f graph.Field) string {
	tag := f.JSONName
	if f.Ref.Kind == graph.RefOptional {
		tag += ",omitempty"
	}

	return "`json:\"" + tag + "\"`"
}

// paramName derives a constructor parameter name from a field name.
func paramName(fieldName string) string {
	name := strings.ToLower(fieldName[:1]) + fieldName[1:]
	if token.IsKeyword(name) {
		name += "Arg"
	}

	return name
}

// needsConvert reports whether a view-side reference requires conversion
// code to produce its owned value. Free-form JSON payloads always need a
// clone: their raw bytes alias the decode buffer.
func needsConvert(r graph.TypeRef) bool {
	switch r.Kind {
	case graph.RefTextView, graph.RefJSONValue:
		return true
	case graph.RefNamed:
		return r.Bound
	case graph.RefOptional, graph.RefSequence, graph.RefMapping:
		return needsConvert(r.Args[0])
	default:
		return false
	}
}
