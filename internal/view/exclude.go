package view

import "sort"

// Registry is the exclusion registry: a fixed set of opaque type names that
// never participate in view propagation, regardless of their structure.
// Excluded types act as propagation sinks - they are never rewritten, so
// their public surface exposes no views and referencing types inherit no
// requirement from them.
type Registry struct {
	names map[string]bool
}

// NewRegistry creates a registry holding the given names.
func NewRegistry(names ...string) *Registry {
	r := &Registry{names: make(map[string]bool, len(names))}
	for _, n := range names {
		r.names[n] = true
	}

	return r
}

// Excluded returns true if the name is in the registry. Names are
// case-sensitive.
func (r *Registry) Excluded(name string) bool {
	if r == nil {
		return false
	}

	return r.names[name]
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}

	sort.Strings(out)

	return out
}
