package graph

import "viewgen/internal/common"

// Kind represents the kind of a type definition.
type Kind int

const (
	// KindRecord - a product type with an ordered list of named fields.
	KindRecord Kind = iota
	// KindUnion - a sum type with an ordered list of variants.
	KindUnion
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindUnion:
		return "union"
	default:
		return common.UnknownStr
	}
}

// RefKind represents the shape of a type reference.
type RefKind int

const (
	RefInvalid RefKind = iota
	RefBool
	RefInt
	RefFloat
	// RefText - an owned text leaf.
	RefText
	// RefTextView - a text leaf rewritten to its borrowed form.
	RefTextView
	// RefOptional - optional wrapper; element in Args[0].
	RefOptional
	// RefSequence - ordered list; element in Args[0].
	RefSequence
	// RefMapping - string-keyed mapping; value in Args[0].
	RefMapping
	// RefJSONValue - free-form JSON payload; always stays owned.
	RefJSONValue
	// RefNamed - reference to another type definition, possibly with
	// generic arguments in Args.
	RefNamed
)

// String returns a human-readable reference kind name.
func (k RefKind) String() string {
	switch k {
	case RefBool:
		return "bool"
	case RefInt:
		return "int"
	case RefFloat:
		return "float"
	case RefText:
		return "text"
	case RefTextView:
		return "text_view"
	case RefOptional:
		return "optional"
	case RefSequence:
		return "sequence"
	case RefMapping:
		return "mapping"
	case RefJSONValue:
		return "json_value"
	case RefNamed:
		return "named"
	default:
		return common.UnknownStr
	}
}

// TypeRef is a reference to a type appearing in a field, a variant payload,
// a generic argument, or a behavior-block signature.
type TypeRef struct {
	Kind RefKind
	// Name of the referenced definition (RefNamed only).
	Name string
	// Args holds element types for wrappers and generic arguments for
	// named references.
	Args []TypeRef
	// Bound is true once the reference supplies the view-scope binding,
	// i.e. it targets the referenced type's view twin.
	Bound bool
}

// IsView returns true if the reference has already been rewritten to a
// borrowed form.
func (r TypeRef) IsView() bool {
	return r.Kind == RefTextView
}

// Named constructs a reference to the definition with the given name.
func Named(name string, args ...TypeRef) TypeRef {
	return TypeRef{Kind: RefNamed, Name: name, Args: args}
}

// Text returns an owned text reference.
func Text() TypeRef { return TypeRef{Kind: RefText} }

// Optional wraps elem in an optional reference.
func Optional(elem TypeRef) TypeRef {
	return TypeRef{Kind: RefOptional, Args: []TypeRef{elem}}
}

// Sequence wraps elem in a sequence reference.
func Sequence(elem TypeRef) TypeRef {
	return TypeRef{Kind: RefSequence, Args: []TypeRef{elem}}
}

// Mapping wraps value in a string-keyed mapping reference.
func Mapping(value TypeRef) TypeRef {
	return TypeRef{Kind: RefMapping, Args: []TypeRef{value}}
}

// Field describes a named record field.
type Field struct {
	// Name is the Go-style field name.
	Name string
	// JSONName is the wire name of the field.
	JSONName string
	// Ref is the field's type.
	Ref TypeRef
	// Doc is an optional one-line description from the source schema.
	Doc string
}

// Variant describes one alternative of a union definition.
type Variant struct {
	// Name is the Go-style variant name.
	Name string
	// Tag is the discriminant value selecting this variant. Empty for
	// variants of untagged unions, which are tried in declaration order.
	Tag string
	// Ref is the payload type.
	Ref TypeRef
}

// MethodSpec describes a behavior block attached to a type definition:
// generated accessor or construction code whose signature references
// graph types. The receiver is the owning definition.
type MethodSpec struct {
	Name    string
	Params  []TypeRef
	Results []TypeRef
	// ViewScoped is true once the block has been upgraded to carry the
	// view-scope binding: its subject or its signature references a
	// view-scoped type.
	ViewScoped bool
}

// TypeDef is a single type definition in the graph.
type TypeDef struct {
	Name string
	Kind Kind
	// Doc is an optional description carried through to emitted code.
	Doc string
	// TypeParams holds formal generic parameter names, if any.
	TypeParams []string

	// Fields is the ordered field list (records).
	Fields []Field

	// Variants is the ordered variant list (unions).
	Variants []Variant
	// TagField is the discriminant JSON key for tagged unions
	// (empty for untagged unions).
	TagField string
	// ContentField is the JSON key carrying the selected payload for
	// tagged unions.
	ContentField string

	// NeedsView is true once the definition carries the view-scope
	// binding: its view twin differs from the owned definition.
	NeedsView bool
	// Methods holds attached behavior blocks.
	Methods []MethodSpec
}

// IsTagged returns true if the definition is a tagged union.
func (d *TypeDef) IsTagged() bool {
	return d.Kind == KindUnion && d.TagField != ""
}
