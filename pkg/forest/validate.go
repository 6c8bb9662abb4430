package forest

import (
	"fmt"
)

// Validate checks every forest invariant and returns nil if they hold:
//
//  1. Every edge endpoint is a known node.
//  2. parents, edges and children describe the same set of edges.
//  3. No node has more than one parent and there are no directed cycles.
//  4. The base frame, if set, is a known node.
//
// Any failure wraps ErrInconsistent. Mutations keep these invariants, so a
// failure here indicates a bug.
func (f *Forest) Validate() error {
	if err := f.validateConsistency(); err != nil {
		return fmt.Errorf("%w: %v", ErrInconsistent, err)
	}
	if err := f.detectCycles(); err != nil {
		return fmt.Errorf("%w: %v", ErrInconsistent, err)
	}
	return nil
}

func (f *Forest) validateConsistency() error {
	if f.base != "" && !f.Has(f.base) {
		return fmt.Errorf("base %q is not a node", f.base)
	}
	if p, ok := f.parents[f.base]; ok {
		return fmt.Errorf("base %q has parent %q", f.base, p)
	}
	for k, e := range f.edges {
		if k.parent != e.Parent || k.child != e.Child {
			return fmt.Errorf("edge %s->%s stored under %s->%s", e.Parent, e.Child, k.parent, k.child)
		}
		if !f.Has(k.parent) || !f.Has(k.child) {
			return fmt.Errorf("edge %s->%s has an unknown endpoint", k.parent, k.child)
		}
		if p, ok := f.parents[k.child]; !ok || p != k.parent {
			return fmt.Errorf("edge %s->%s missing from parent index", k.parent, k.child)
		}
		if _, ok := f.children[k.parent][k.child]; !ok {
			return fmt.Errorf("edge %s->%s missing from child index", k.parent, k.child)
		}
	}
	if len(f.parents) != len(f.edges) {
		return fmt.Errorf("%d parent entries for %d edges", len(f.parents), len(f.edges))
	}
	count := 0
	for _, kids := range f.children {
		count += len(kids)
	}
	if count != len(f.edges) {
		return fmt.Errorf("%d child entries for %d edges", count, len(f.edges))
	}
	return nil
}

func (f *Forest) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(f.nodes))
	var cycleAt string

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for child := range f.children[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				cycleAt = child
			}
			if cycleAt != "" {
				return
			}
		}
		color[id] = black
	}

	for id := range f.nodes {
		if color[id] == white {
			dfs(id)
			if cycleAt != "" {
				return fmt.Errorf("cycle through %q", cycleAt)
			}
		}
	}
	return nil
}
