// Package schema loads a JSON-Schema-style protocol document and builds
// the initial owned type graph from it. The loader implements the subset
// of JSON Schema the protocol documents actually use; anything outside the
// subset is a fatal load error, never a silent skip, since a partial graph
// would corrupt every dependent definition.
package schema

import "github.com/goccy/go-json"

// Document is the root of an input schema document.
type Document struct {
	Schema      string           `json:"$schema"`
	Definitions map[string]*Node `json:"definitions"`
}

// Node is a single schema object. The same shape appears at definition
// level and nested inside properties, items and additionalProperties.
type Node struct {
	Description string           `json:"description"`
	Type        string           `json:"type"`
	Properties  map[string]*Node `json:"properties"`
	Required    []string         `json:"required"`
	Items       *Node            `json:"items"`
	// AdditionalProperties is kept raw: it may be a boolean, an empty
	// object (both meaning free-form values) or a full schema.
	AdditionalProperties json.RawMessage `json:"additionalProperties"`
	Ref                  string          `json:"$ref"`
	AnyOf                []*Node         `json:"anyOf"`
	OneOf                []*Node         `json:"oneOf"`
	Enum                 []string        `json:"enum"`
	Format               string          `json:"format"`
}

// variants returns the alternatives of a union-shaped node, or nil.
func (n *Node) variants() []*Node {
	if len(n.AnyOf) > 0 {
		return n.AnyOf
	}

	return n.OneOf
}
