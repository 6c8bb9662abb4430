package forest

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// Has reports whether node is part of the forest.
func (f *Forest) Has(node string) bool {
	_, ok := f.nodes[node]
	return ok
}

// NodeCount returns the number of nodes.
func (f *Forest) NodeCount() int { return len(f.nodes) }

// EdgeCount returns the number of edges.
func (f *Forest) EdgeCount() int { return len(f.edges) }

// Nodes returns every node ID in sorted order.
func (f *Forest) Nodes() []string {
	return slices.Sorted(maps.Keys(f.nodes))
}

// Edges returns copies of all edges in insertion order. Reparenting a node
// moves its edge to the end; overwriting an edge keeps its slot.
func (f *Forest) Edges() []Edge {
	entries := slices.Collect(maps.Values(f.edges))
	slices.SortFunc(entries, func(a, b *edgeEntry) int { return cmp.Compare(a.seq, b.seq) })
	out := make([]Edge, len(entries))
	for i, e := range entries {
		out[i] = e.Edge.clone()
	}
	return out
}

// EdgeMap returns the parent→child→matrix view used to export the forest to
// generic directed-graph tooling.
func (f *Forest) EdgeMap() map[string]map[string]mgl64.Mat4 {
	out := make(map[string]map[string]mgl64.Mat4, len(f.children))
	for k, e := range f.edges {
		if out[k.parent] == nil {
			out[k.parent] = make(map[string]mgl64.Mat4)
		}
		out[k.parent][k.child] = e.Matrix
	}
	return out
}

// Edge returns a copy of the edge parent→child and true, or false if absent.
func (f *Forest) Edge(parent, child string) (Edge, bool) {
	e, ok := f.edges[edgeKey{parent, child}]
	if !ok {
		return Edge{}, false
	}
	return e.Edge.clone(), true
}

// Parent returns the parent of node, or false if node is a root or unknown.
func (f *Forest) Parent(node string) (string, bool) {
	p, ok := f.parents[node]
	return p, ok
}

// Children returns the immediate children of node in sorted order.
func (f *Forest) Children(node string) []string {
	return slices.Sorted(maps.Keys(f.children[node]))
}

// Roots returns every node without a parent, in sorted order.
func (f *Forest) Roots() []string {
	var roots []string
	for n := range f.nodes {
		if _, ok := f.parents[n]; !ok {
			roots = append(roots, n)
		}
	}
	slices.Sort(roots)
	return roots
}

// Ancestors returns the parent chain of node, nearest first, ending at its
// root. A root has no ancestors.
func (f *Forest) Ancestors(node string) []string {
	var chain []string
	for cur, ok := f.parents[node]; ok; cur, ok = f.parents[cur] {
		chain = append(chain, cur)
		if len(chain) > len(f.nodes) {
			break // broken invariant; Validate reports it
		}
	}
	return chain
}

// Depth returns the number of edges between node and its root.
func (f *Forest) Depth(node string) int { return len(f.Ancestors(node)) }

// Successors returns node and every node reachable from it through child
// edges, in breadth-first order starting with node itself. A leaf yields
// just [node].
//
// Returns ErrNodeNotFound for unknown nodes and ErrInconsistent if the
// traversal reaches a node twice.
func (f *Forest) Successors(node string) ([]string, error) {
	if !f.Has(node) {
		return nil, fmt.Errorf("successors of %q: %w", node, ErrNodeNotFound)
	}
	seen := map[string]struct{}{node: {}}
	out := []string{node}
	for i := 0; i < len(out); i++ {
		for _, c := range f.Children(out[i]) {
			if _, dup := seen[c]; dup {
				return nil, fmt.Errorf("successors of %q revisit %q: %w", node, c, ErrInconsistent)
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out, nil
}

// IsAncestor reports whether b is in a's successors, i.e. a == b or a
// lies on b's parent chain. Unknown nodes are never ancestors.
func (f *Forest) IsAncestor(a, b string) bool {
	if !f.Has(a) || !f.Has(b) {
		return false
	}
	if a == b {
		return true
	}
	steps := 0
	for cur, ok := f.parents[b]; ok; cur, ok = f.parents[cur] {
		if cur == a {
			return true
		}
		if steps++; steps > len(f.nodes) {
			return false
		}
	}
	return false
}
