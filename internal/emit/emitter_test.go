package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewgen/internal/config"
	"viewgen/internal/graph"
	"viewgen/internal/view"
)

func record(name string, fields ...graph.Field) *graph.TypeDef {
	return &graph.TypeDef{Name: name, Kind: graph.KindRecord, Fields: fields}
}

func generate(t *testing.T, g *graph.Graph) map[string]string {
	t.Helper()

	res, err := view.Run(g, view.Options{})
	require.NoError(t, err)

	files, err := New(Config{}, g, res).Generate()
	require.NoError(t, err)

	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Filename] = string(f.Content)
	}

	return out
}

func TestGenerateRecords(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.Add(record("Annotations",
		graph.Field{Name: "Audience", JSONName: "audience", Ref: graph.Sequence(graph.Text())},
		graph.Field{Name: "Priority", JSONName: "priority", Ref: graph.Optional(graph.TypeRef{Kind: graph.RefFloat})},
	)))
	require.NoError(t, g.Add(&graph.TypeDef{
		Name: "Resource",
		Kind: graph.KindRecord,
		Doc:  "Resource is a known resource the server can read.",
		Fields: []graph.Field{
			{Name: "URI", JSONName: "uri", Ref: graph.Text()},
			{Name: "Annotations", JSONName: "annotations", Ref: graph.Optional(graph.Named("Annotations"))},
			{Name: "Size", JSONName: "size", Ref: graph.Optional(graph.TypeRef{Kind: graph.RefInt})},
			{Name: "Meta", JSONName: "_meta", Ref: graph.TypeRef{Kind: graph.RefJSONValue}},
		},
	}))
	require.NoError(t, g.Add(record("Counter",
		graph.Field{Name: "Count", JSONName: "count", Ref: graph.TypeRef{Kind: graph.RefInt}},
	)))

	files := generate(t, g)
	require.Contains(t, files, "types_owned.go")
	require.Contains(t, files, "types_view.go")
	assert.NotContains(t, files, "envelope.go")

	owned := files["types_owned.go"]
	assert.Contains(t, owned, "package schema")
	assert.Contains(t, owned, "// Resource is a known resource the server can read.")
	assert.Contains(t, owned, "type Resource struct")
	assert.Contains(t, owned, "type Annotations struct")
	assert.Contains(t, owned, "type Counter struct")
	assert.Contains(t, owned, "`json:\"uri\"`")
	assert.Contains(t, owned, "`json:\"annotations,omitempty\"`")
	assert.NotContains(t, owned, "wire.Text")

	views := files["types_view.go"]
	assert.Contains(t, views, "type ResourceView struct")
	assert.Contains(t, views, "type AnnotationsView struct")
	assert.Contains(t, views, "wire.Text")
	assert.Contains(t, views, "*AnnotationsView")
	assert.Contains(t, views, "func NewResourceView(")
	assert.Contains(t, views, "func (v ResourceView) ToOwned() Resource")
	assert.Contains(t, views, "out.URI = v.URI.String()")
	assert.Contains(t, views, "append(json.RawMessage(nil), v.Meta...)")

	// Definitions outside the requirement set have no view twin.
	assert.NotContains(t, views, "CounterView")
}

func TestGenerateEnvelope(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.Add(record("PingRequest",
		graph.Field{Name: "Label", JSONName: "label", Ref: graph.Text()},
	)))
	require.NoError(t, g.Add(record("PingResult",
		graph.Field{Name: "Echo", JSONName: "echo", Ref: graph.Text()},
	)))
	require.NoError(t, g.Add(record("LogNotification",
		graph.Field{Name: "Level", JSONName: "level", Ref: graph.Text()},
	)))

	side := config.Side{
		Requests:      map[string]string{"ping": "PingRequest"},
		Notifications: map[string]string{"notifications/log": "LogNotification"},
		Results:       []string{"PingResult"},
	}
	require.NoError(t, config.BuildEnvelope(g, config.Envelope{Client: side, Server: side}))

	files := generate(t, g)
	require.Contains(t, files, "envelope.go")

	owned := files["types_owned.go"]
	assert.Contains(t, owned, "type ClientRequest struct")
	assert.Contains(t, owned, "*PingRequest")
	assert.Contains(t, owned, "`json:\"-\"`")
	assert.Contains(t, owned, `wire.TagOf(data, "method")`)
	assert.Contains(t, owned, `case "ping":`)
	assert.Contains(t, owned, `case "notifications/log":`)
	assert.Contains(t, owned, `wire.MarshalTagged("method", "ping", "params", u.Ping)`)
	assert.Contains(t, owned, "// UnmarshalJSON tries each variant in declaration order.")

	views := files["types_view.go"]
	assert.Contains(t, views, "type ClientRequestView struct")
	assert.Contains(t, views, "*PingRequestView")
	assert.Contains(t, views, "func (u ClientResultView) ToOwned() ClientResult")

	env := files["envelope.go"]
	assert.Contains(t, env,
		"type ClientMessage = wire.Message[ClientRequest, ClientResult, ClientNotification, wire.ErrorDetail]")
	assert.Contains(t, env,
		"type ClientMessageView = wire.Message[ClientRequestView, ClientResultView, ClientNotificationView, wire.ErrorDetailView]")
	assert.Contains(t, env, "func BindClientMessage(buf []byte) (*wire.Document[ClientMessageView], error)")
	assert.Contains(t, env, "func BindServerMessage(buf []byte) (*wire.Document[ServerMessageView], error)")
}

func TestGenerateEnvelopeSkippedWithoutUnions(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.Add(record("Only",
		graph.Field{Name: "Name", JSONName: "name", Ref: graph.Text()},
	)))

	files := generate(t, g)
	assert.NotContains(t, files, "envelope.go")
}

func TestTypeExpr(t *testing.T) {
	tests := []struct {
		ref   graph.TypeRef
		view  bool
		wants string
	}{
		{graph.TypeRef{Kind: graph.RefBool}, false, "bool"},
		{graph.TypeRef{Kind: graph.RefInt}, true, "int64"},
		{graph.Text(), true, "string"},
		{graph.TypeRef{Kind: graph.RefTextView}, true, "wire.Text"},
		{graph.TypeRef{Kind: graph.RefTextView}, false, "string"},
		{graph.Optional(graph.TypeRef{Kind: graph.RefTextView}), true, "*wire.Text"},
		{graph.Sequence(graph.Named("Role")), false, "[]Role"},
		{graph.Mapping(graph.TypeRef{Kind: graph.RefJSONValue}), false, "map[string]json.RawMessage"},
		{graph.TypeRef{Kind: graph.RefNamed, Name: "Tool", Bound: true}, true, "ToolView"},
		{graph.TypeRef{Kind: graph.RefNamed, Name: "Tool", Bound: true}, false, "Tool"},
		{graph.Named("Box", graph.Text()), false, "Box[string]"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.wants, typeExpr(tc.ref, tc.view), tc.wants)
	}
}

func TestParamName(t *testing.T) {
	assert.Equal(t, "label", paramName("Label"))
	assert.Equal(t, "typeArg", paramName("Type"))
}
