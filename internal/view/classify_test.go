package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewgen/internal/diagnostic"
	"viewgen/internal/graph"
)

func newTestContext(g *graph.Graph, reg *Registry) *Context {
	return &Context{
		graph:      g,
		requires:   make(map[string]bool),
		exclusions: reg,
		diags:      &diagnostic.Diagnostics{},
	}
}

func TestClassifyBareText(t *testing.T) {
	g := graph.New()
	def := &graph.TypeDef{
		Name:   "A",
		Kind:   graph.KindRecord,
		Fields: []graph.Field{{Name: "Field", Ref: graph.Text()}},
	}
	require.NoError(t, g.Add(def))

	ctx := newTestContext(g, nil)

	assert.True(t, ctx.classifyDef(def))
	assert.Equal(t, graph.RefTextView, def.Fields[0].Ref.Kind)
}

func TestClassifyOneLevelWrappers(t *testing.T) {
	tests := []struct {
		name string
		ref  graph.TypeRef
	}{
		{"optional", graph.Optional(graph.Text())},
		{"sequence", graph.Sequence(graph.Text())},
		{"mapping", graph.Mapping(graph.Text())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			def := &graph.TypeDef{
				Name:   "T",
				Kind:   graph.KindRecord,
				Fields: []graph.Field{{Name: "F", Ref: tt.ref}},
			}
			require.NoError(t, g.Add(def))

			ctx := newTestContext(g, nil)

			assert.True(t, ctx.classifyDef(def))
			assert.Equal(t, graph.RefTextView, def.Fields[0].Ref.Args[0].Kind,
				"inner text must be rewritten to a view")
		})
	}
}

func TestClassifyLeavesDeepNestingOwned(t *testing.T) {
	// A sequence of optionals of text exceeds the one-level substitution
	// rule: it stays owned and only produces an info note.
	g := graph.New()
	def := &graph.TypeDef{
		Name:   "T",
		Kind:   graph.KindRecord,
		Fields: []graph.Field{{Name: "F", Ref: graph.Sequence(graph.Optional(graph.Text()))}},
	}
	require.NoError(t, g.Add(def))

	ctx := newTestContext(g, nil)

	assert.False(t, ctx.classifyDef(def))
	assert.Equal(t, graph.RefText, def.Fields[0].Ref.Args[0].Args[0].Kind)
	require.Len(t, ctx.diags.Infos, 1)
	assert.Equal(t, "nested_text_unconverted", ctx.diags.Infos[0].Code)
	assert.Empty(t, ctx.diags.Errors)
}

func TestClassifySkipsFreeFormJSON(t *testing.T) {
	g := graph.New()
	def := &graph.TypeDef{
		Name:   "T",
		Kind:   graph.KindRecord,
		Fields: []graph.Field{{Name: "Meta", Ref: graph.TypeRef{Kind: graph.RefJSONValue}}},
	}
	require.NoError(t, g.Add(def))

	ctx := newTestContext(g, nil)

	assert.False(t, ctx.classifyDef(def))
	assert.Equal(t, graph.RefJSONValue, def.Fields[0].Ref.Kind)
}

func TestClassifyAlreadyViewCountsWithoutRewrite(t *testing.T) {
	g := graph.New()
	def := &graph.TypeDef{
		Name:   "T",
		Kind:   graph.KindRecord,
		Fields: []graph.Field{{Name: "F", Ref: graph.TypeRef{Kind: graph.RefTextView}}},
	}
	require.NoError(t, g.Add(def))

	ctx := newTestContext(g, nil)

	before := def.Fields[0].Ref

	assert.True(t, ctx.classifyDef(def))
	assert.Equal(t, before, def.Fields[0].Ref)
}

func TestClassifyRequirementFromNamedReference(t *testing.T) {
	g := graph.New()
	def := &graph.TypeDef{
		Name:   "B",
		Kind:   graph.KindRecord,
		Fields: []graph.Field{{Name: "Inner", Ref: graph.Named("A")}},
	}
	require.NoError(t, g.Add(def))

	ctx := newTestContext(g, nil)

	// Not yet in the requirement set: no propagation.
	assert.False(t, ctx.classifyDef(def))

	ctx.requires["A"] = true

	assert.True(t, ctx.classifyDef(def))
}

func TestClassifyDeepNamedReferenceStillPropagates(t *testing.T) {
	// Substitution is depth-limited, the requirement scan is not: a
	// reference to a view-scoped type inside nested wrappers still marks
	// the container.
	g := graph.New()
	def := &graph.TypeDef{
		Name:   "C",
		Kind:   graph.KindRecord,
		Fields: []graph.Field{{Name: "F", Ref: graph.Sequence(graph.Optional(graph.Named("A")))}},
	}
	require.NoError(t, g.Add(def))

	ctx := newTestContext(g, nil)
	ctx.requires["A"] = true

	assert.True(t, ctx.classifyDef(def))
}

func TestClassifyUnionVariants(t *testing.T) {
	g := graph.New()
	def := &graph.TypeDef{
		Name: "U",
		Kind: graph.KindUnion,
		Variants: []graph.Variant{
			{Name: "Text", Ref: graph.Text()},
			{Name: "Num", Ref: graph.TypeRef{Kind: graph.RefInt}},
		},
	}
	require.NoError(t, g.Add(def))

	ctx := newTestContext(g, nil)

	assert.True(t, ctx.classifyDef(def))
	assert.Equal(t, graph.RefTextView, def.Variants[0].Ref.Kind)
	assert.Equal(t, graph.RefInt, def.Variants[1].Ref.Kind)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry("Cursor", "RequestID")

	assert.True(t, reg.Excluded("Cursor"))
	assert.False(t, reg.Excluded("cursor"))
	assert.False(t, reg.Excluded("Other"))
	assert.Equal(t, []string{"Cursor", "RequestID"}, reg.Names())

	var nilReg *Registry

	assert.False(t, nilReg.Excluded("Cursor"))
	assert.Nil(t, nilReg.Names())
}
