// Package view implements the view-scope propagation passes: classifying
// which type definitions transitively contain borrowed text, growing the
// requirement set to a fixpoint, and rewriting every usage site so the
// whole graph is consistent.
package view

import (
	"fmt"
	"sort"

	"viewgen/internal/common"
	"viewgen/internal/diagnostic"
	"viewgen/internal/graph"
)

// Options configures a propagation run.
type Options struct {
	// Exclusions is the registry of opaque type names that never enter the
	// requirement set. May be nil.
	Exclusions *Registry
	// Targets restricts classification to the named definitions
	// (deserialization targets). Empty means every definition is a target.
	Targets []string
}

// Result is the outcome of a propagation run.
type Result struct {
	// Graph is the rewritten view graph. The input graph is not modified.
	Graph *graph.Graph
	// Requires is the fixpoint requirement set, keyed by type name.
	Requires map[string]bool
	// Iterations is the number of phase A+B rounds until fixpoint,
	// including the final round that observed no change.
	Iterations int
	// Diags collects warnings and info notes from all passes.
	Diags diagnostic.Diagnostics
}

// RequiredNames returns the requirement set in ascending order.
func (r *Result) RequiredNames() []string {
	return common.SortedKeys(r.Requires)
}

// Context is the mutable propagation state threaded through the passes.
// It is private to a single Run call; the engine has no global state.
type Context struct {
	graph      *graph.Graph
	requires   map[string]bool
	exclusions *Registry
	targets    map[string]bool
	diags      *diagnostic.Diagnostics
	// noted keys type.field pairs that already produced a diagnostic.
	noted map[string]bool
}

func (c *Context) isTarget(name string) bool {
	return c.targets == nil || c.targets[name]
}

// Run executes the fixpoint propagation over a deep copy of the owned
// graph and returns the rewritten view graph together with the final
// requirement set.
//
// The loop alternates definition upgrade (phase A) and usage-site
// completion (phase B) until neither reports a change. The requirement set
// only ever grows and is bounded by the number of definitions, so the loop
// terminates in at most that many productive rounds; exceeding the bound
// indicates a bug and aborts the run.
func Run(owned *graph.Graph, opts Options) (*Result, error) {
	res := &Result{
		Graph:    owned.Clone(),
		Requires: make(map[string]bool),
	}

	ctx := &Context{
		graph:      res.Graph,
		requires:   res.Requires,
		exclusions: opts.Exclusions,
		diags:      &res.Diags,
	}

	if !common.IsEmpty(opts.Targets) {
		ctx.targets = common.SetFrom(opts.Targets)
	}

	limit := res.Graph.Len() + 1

	for {
		changed := ctx.upgradeDefinitions()
		changed = ctx.completeUsages() || changed

		res.Iterations++
		if !changed {
			break
		}

		if res.Iterations > limit {
			res.Diags.AddError("no_convergence",
				fmt.Sprintf("propagation did not converge after %d iterations over %d types",
					res.Iterations, res.Graph.Len()),
				"", "")

			return nil, res.Diags.Error()
		}
	}

	ctx.reportUnresolved()

	return res, nil
}

// reportUnresolved warns once per name about references to definitions
// absent from the graph. Propagation already treats them as opaque
// boundaries; the warning surfaces likely schema or config typos without
// failing the run. Exclusions are intentionally opaque and stay silent.
func (c *Context) reportUnresolved() {
	seen := make(map[string]bool)

	for _, name := range c.graph.Order {
		for _, ref := range c.graph.References(name) {
			if c.graph.Get(ref) != nil || c.exclusions.Excluded(ref) || seen[ref] {
				continue
			}

			seen[ref] = true
			c.diags.AddWarning("unresolved_reference",
				fmt.Sprintf("reference to undefined type %q is treated as an opaque boundary", ref),
				name, "")
		}
	}
}

// upgradeDefinitions is phase A: classify every eligible definition, add
// newly requiring types to the requirement set, mark their definitions as
// view-scoped, and upgrade attached behavior blocks whose subject or
// signature now references the set.
func (c *Context) upgradeDefinitions() bool {
	changed := false

	for _, name := range c.graph.Order {
		def := c.graph.Get(name)

		if c.exclusions.Excluded(name) || !c.isTarget(name) {
			continue
		}

		if c.classifyDef(def) {
			if !c.requires[name] {
				c.requires[name] = true
				changed = true
			}

			if !def.NeedsView {
				def.NeedsView = true
				changed = true
			}
		}
	}

	for _, name := range c.graph.Order {
		if c.upgradeBehaviorBlocks(c.graph.Get(name)) {
			changed = true
		}
	}

	return changed
}

// upgradeBehaviorBlocks marks behavior blocks as view-scoped when their
// subject type is in the requirement set or their signature references a
// member of it.
func (c *Context) upgradeBehaviorBlocks(def *graph.TypeDef) bool {
	changed := false

	for i := range def.Methods {
		m := &def.Methods[i]
		if m.ViewScoped {
			continue
		}

		scoped := c.requires[def.Name]
		for _, p := range m.Params {
			scoped = scoped || c.refRequires(p)
		}

		for _, r := range m.Results {
			scoped = scoped || c.refRequires(r)
		}

		if scoped {
			m.ViewScoped = true
			changed = true
		}
	}

	return changed
}

// RequirementClosed verifies the closure invariant on a stabilized result:
// any definition with a field referencing a member of the requirement set
// is itself a member. Returns the offending names, empty when closed.
func RequirementClosed(res *Result, exclusions *Registry) []string {
	var open []string

	for _, name := range res.Graph.Order {
		if res.Requires[name] || exclusions.Excluded(name) {
			continue
		}

		depends := false

		graph.WalkRefs(res.Graph.Get(name), func(r *graph.TypeRef) {
			if !r.IsView() && r.Kind == graph.RefNamed && res.Requires[r.Name] {
				depends = true
			}
		})

		if depends {
			open = append(open, name)
		}
	}

	sort.Strings(open)

	return open
}
