package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewgen/internal/graph"
)

func TestUsageCompletionBindsEverywhere(t *testing.T) {
	g := buildGraph(t,
		record("A", graph.Field{Name: "Field", JSONName: "field", Ref: graph.Text()}),
		record("User",
			graph.Field{Name: "Direct", JSONName: "direct", Ref: graph.Named("A")},
			graph.Field{Name: "Listed", JSONName: "listed", Ref: graph.Sequence(graph.Named("A"))},
			graph.Field{Name: "Generic", JSONName: "generic", Ref: graph.Named("Box", graph.Named("A"))},
		),
	)

	res, err := Run(g, Options{})
	require.NoError(t, err)

	user := res.Graph.Get("User")

	assert.True(t, user.Fields[0].Ref.Bound)
	assert.True(t, user.Fields[1].Ref.Args[0].Bound)
	// Generic arguments are usage sites too.
	assert.True(t, user.Fields[2].Ref.Args[0].Bound)
	// Box is an external boundary: the reference to it stays unbound.
	assert.False(t, user.Fields[2].Ref.Bound)
}

func TestUsageCompletionIsIdempotent(t *testing.T) {
	g := buildGraph(t,
		record("A", graph.Field{Name: "Field", JSONName: "field", Ref: graph.Text()}),
		record("B", graph.Field{Name: "A", JSONName: "a", Ref: graph.Named("A")}),
	)

	res, err := Run(g, Options{})
	require.NoError(t, err)

	ctx := &Context{
		graph:      res.Graph,
		requires:   res.Requires,
		exclusions: nil,
		diags:      &res.Diags,
	}

	assert.False(t, ctx.completeUsages(), "stabilized graph must not change again")
}

func TestConstructorSynthesis(t *testing.T) {
	g := buildGraph(t,
		record("A",
			graph.Field{Name: "Field", JSONName: "field", Ref: graph.Text()},
			graph.Field{Name: "Count", JSONName: "count", Ref: graph.TypeRef{Kind: graph.RefInt}},
		),
	)

	res, err := Run(g, Options{})
	require.NoError(t, err)

	a := res.Graph.Get("A")
	require.Len(t, a.Methods, 1)

	ctor := a.Methods[0]

	assert.Equal(t, "NewA", ctor.Name)
	assert.True(t, ctor.ViewScoped)
	require.Len(t, ctor.Params, 2)
	assert.Equal(t, graph.RefTextView, ctor.Params[0].Kind)
	assert.Equal(t, graph.RefInt, ctor.Params[1].Kind)
	require.Len(t, ctor.Results, 1)
	assert.True(t, ctor.Results[0].Bound)
}

func TestConstructorNotSynthesizedOutsideRequirementSet(t *testing.T) {
	g := buildGraph(t,
		record("Plain", graph.Field{Name: "N", JSONName: "n", Ref: graph.TypeRef{Kind: graph.RefInt}}),
	)

	res, err := Run(g, Options{})
	require.NoError(t, err)

	assert.Empty(t, res.Graph.Get("Plain").Methods)
}
