package config

import (
	"fmt"

	"viewgen/internal/common"
	"viewgen/internal/graph"
	"viewgen/internal/schema"
)

// Envelope union names added to the graph.
const (
	ClientRequestUnion      = "ClientRequest"
	ClientNotificationUnion = "ClientNotification"
	ClientResultUnion       = "ClientResult"
	ServerRequestUnion      = "ServerRequest"
	ServerNotificationUnion = "ServerNotification"
	ServerResultUnion       = "ServerResult"
)

// Envelope discriminant wire keys.
const (
	methodKey = "method"
	paramsKey = "params"
)

// BuildEnvelope assembles the six envelope unions from the configuration
// tables and adds them to the graph, so they participate in view
// propagation like any other definition. Every payload type named by a
// table must already exist in the graph.
//
// Request and notification unions are tagged on the method key with the
// payload under params; result unions are untagged and tried in the
// configured order. Tagged variants are added in method order so the
// built definitions are deterministic.
func BuildEnvelope(g *graph.Graph, env Envelope) error {
	sides := []struct {
		side                            Side
		requests, notifications, result string
	}{
		{env.Client, ClientRequestUnion, ClientNotificationUnion, ClientResultUnion},
		{env.Server, ServerRequestUnion, ServerNotificationUnion, ServerResultUnion},
	}

	for _, s := range sides {
		for _, b := range []struct {
			name  string
			table map[string]string
		}{
			{s.requests, s.side.Requests},
			{s.notifications, s.side.Notifications},
		} {
			def, err := buildTagged(g, b.name, b.table)
			if err != nil {
				return err
			}

			if err := g.Add(def); err != nil {
				return err
			}
		}

		def, err := buildUntagged(g, s.result, s.side.Results)
		if err != nil {
			return err
		}

		if err := g.Add(def); err != nil {
			return err
		}
	}

	return nil
}

func buildTagged(g *graph.Graph, name string, table map[string]string) (*graph.TypeDef, error) {
	def := &graph.TypeDef{
		Name:         name,
		Kind:         graph.KindUnion,
		TagField:     methodKey,
		ContentField: paramsKey,
	}

	for _, method := range common.SortedKeys(table) {
		payload := table[method]
		if g.Get(payload) == nil {
			return nil, fmt.Errorf("envelope %s: method %q references unknown type %q", name, method, payload)
		}

		def.Variants = append(def.Variants, graph.Variant{
			Name: schema.GoName(method),
			Tag:  method,
			Ref:  graph.Named(payload),
		})
	}

	return def, nil
}

func buildUntagged(g *graph.Graph, name string, results []string) (*graph.TypeDef, error) {
	def := &graph.TypeDef{
		Name: name,
		Kind: graph.KindUnion,
	}

	for _, payload := range results {
		if g.Get(payload) == nil {
			return nil, fmt.Errorf("envelope %s: unknown result type %q", name, payload)
		}

		def.Variants = append(def.Variants, graph.Variant{
			Name: payload,
			Ref:  graph.Named(payload),
		})
	}

	return def, nil
}
