package schema

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"viewgen/internal/common"
	"viewgen/internal/graph"
)

const refPrefix = "#/definitions/"

// LoadFile loads and parses a schema document from the given path.
func LoadFile(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema file %s: %w", path, err)
	}

	return g, nil
}

// Parse parses a schema document and builds the initial owned type graph.
// Definitions are added in name order so the graph is deterministic
// regardless of document key order.
func Parse(data []byte) (*graph.Graph, error) {
	var doc Document

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema document: %w", err)
	}

	if len(doc.Definitions) == 0 {
		return nil, fmt.Errorf("schema document has no definitions")
	}

	g := graph.New()

	for _, name := range common.SortedKeys(doc.Definitions) {
		def, err := buildDef(name, doc.Definitions[name])
		if err != nil {
			return nil, fmt.Errorf("definition %q: %w", name, err)
		}

		if err := g.Add(def); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// buildDef converts one definition node into a type definition.
func buildDef(name string, n *Node) (*graph.TypeDef, error) {
	if n == nil {
		return nil, fmt.Errorf("empty definition")
	}

	if alts := n.variants(); len(alts) > 0 {
		return buildUnion(name, n, alts)
	}

	if n.Type == "object" && n.Properties != nil {
		return buildRecord(name, n)
	}

	// Scalar and wrapper aliases (e.g. a definition that is just a string)
	// become single-variant untagged unions, so emission treats every
	// definition uniformly.
	ref, err := resolveRef(n)
	if err != nil {
		return nil, err
	}

	return &graph.TypeDef{
		Name:     name,
		Kind:     graph.KindUnion,
		Doc:      n.Description,
		Variants: []graph.Variant{{Name: variantName(ref, 0), Ref: ref}},
	}, nil
}

func buildRecord(name string, n *Node) (*graph.TypeDef, error) {
	def := &graph.TypeDef{
		Name: name,
		Kind: graph.KindRecord,
		Doc:  n.Description,
	}

	required := common.SetFrom(n.Required)

	for _, prop := range common.SortedKeys(n.Properties) {
		// A null property node carries no constraints, like an empty
		// schema object, and in particular no description.
		node := n.Properties[prop]

		ref, err := resolveRef(node)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", prop, err)
		}

		if !required[prop] {
			ref = graph.Optional(ref)
		}

		var doc string
		if node != nil {
			doc = node.Description
		}

		def.Fields = append(def.Fields, graph.Field{
			Name:     GoName(prop),
			JSONName: prop,
			Ref:      ref,
			Doc:      doc,
		})
	}

	return def, nil
}

func buildUnion(name string, n *Node, alts []*Node) (*graph.TypeDef, error) {
	def := &graph.TypeDef{
		Name: name,
		Kind: graph.KindUnion,
		Doc:  n.Description,
	}

	seen := make(map[string]bool)

	for i, alt := range alts {
		ref, err := resolveRef(alt)
		if err != nil {
			return nil, fmt.Errorf("variant %d: %w", i, err)
		}

		vn := variantName(ref, i)
		if seen[vn] {
			vn = fmt.Sprintf("%s%d", vn, i)
		}

		seen[vn] = true

		def.Variants = append(def.Variants, graph.Variant{Name: vn, Ref: ref})
	}

	return def, nil
}

// resolveRef converts a schema node in reference position into a type
// reference.
func resolveRef(n *Node) (graph.TypeRef, error) {
	if n == nil {
		return graph.TypeRef{Kind: graph.RefJSONValue}, nil
	}

	if n.Ref != "" {
		if !strings.HasPrefix(n.Ref, refPrefix) {
			return graph.TypeRef{}, fmt.Errorf("unsupported $ref %q", n.Ref)
		}

		return graph.Named(strings.TrimPrefix(n.Ref, refPrefix)), nil
	}

	if len(n.variants()) > 0 {
		return graph.TypeRef{}, fmt.Errorf("inline anyOf/oneOf is unsupported; hoist it to definitions")
	}

	switch n.Type {
	case "string":
		return graph.Text(), nil
	case "integer":
		return graph.TypeRef{Kind: graph.RefInt}, nil
	case "number":
		return graph.TypeRef{Kind: graph.RefFloat}, nil
	case "boolean":
		return graph.TypeRef{Kind: graph.RefBool}, nil
	case "array":
		elem, err := resolveRef(n.Items)
		if err != nil {
			return graph.TypeRef{}, err
		}

		return graph.Sequence(elem), nil
	case "object":
		if n.Properties != nil {
			return graph.TypeRef{}, fmt.Errorf("inline object schemas are unsupported; hoist them to definitions")
		}

		return resolveMapping(n)
	case "":
		// No constraints at all: free-form value.
		return graph.TypeRef{Kind: graph.RefJSONValue}, nil
	default:
		return graph.TypeRef{}, fmt.Errorf("unsupported schema type %q", n.Type)
	}
}

// resolveMapping handles object nodes without properties. A boolean or
// empty additionalProperties marks a free-form JSON payload; a schema
// value yields a string-keyed mapping of that value type.
func resolveMapping(n *Node) (graph.TypeRef, error) {
	ap := bytes.TrimSpace(n.AdditionalProperties)

	if len(ap) == 0 || bytes.Equal(ap, []byte("true")) || bytes.Equal(ap, []byte("{}")) {
		return graph.TypeRef{Kind: graph.RefJSONValue}, nil
	}

	if bytes.Equal(ap, []byte("false")) {
		return graph.TypeRef{}, fmt.Errorf("object with no properties and additionalProperties=false")
	}

	var value Node
	if err := json.Unmarshal(ap, &value); err != nil {
		return graph.TypeRef{}, fmt.Errorf("invalid additionalProperties: %w", err)
	}

	elem, err := resolveRef(&value)
	if err != nil {
		return graph.TypeRef{}, err
	}

	return graph.Mapping(elem), nil
}

// variantName derives a Go-style variant name from the payload reference.
func variantName(ref graph.TypeRef, i int) string {
	switch ref.Kind {
	case graph.RefNamed:
		return ref.Name
	case graph.RefText:
		return "Text"
	case graph.RefInt:
		return "Int"
	case graph.RefFloat:
		return "Float"
	case graph.RefBool:
		return "Bool"
	case graph.RefSequence:
		return variantName(ref.Args[0], i) + "List"
	default:
		return fmt.Sprintf("Variant%d", i)
	}
}

// GoName converts a JSON property name to an exported Go identifier.
func GoName(name string) string {
	var b strings.Builder

	upper := true

	for _, r := range name {
		switch r {
		case '_', '-', '/', '.':
			upper = true
		default:
			if upper {
				b.WriteString(strings.ToUpper(string(r)))
				upper = false
			} else {
				b.WriteRune(r)
			}
		}
	}

	// Common initialisms the protocol uses in field names.
	out := b.String()
	for _, suffix := range []string{"Id", "Uri", "Url"} {
		if strings.HasSuffix(out, suffix) {
			out = out[:len(out)-len(suffix)] + strings.ToUpper(suffix)
		}
	}

	return out
}
