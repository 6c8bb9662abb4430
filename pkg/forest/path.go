package forest

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/sceneforest/pkg/transform"
)

// chain returns node followed by its ancestors up to the root.
func (f *Forest) chain(node string) []string {
	return append([]string{node}, f.Ancestors(node)...)
}

// CommonAncestor returns the lowest common ancestor of a and b. A node is
// its own ancestor, so CommonAncestor(a, a) is a.
//
// Returns ErrNodeNotFound for unknown nodes and ErrDisconnected when a and b
// belong to different trees.
func (f *Forest) CommonAncestor(a, b string) (string, error) {
	_, _, lca, err := f.split(a, b)
	return lca, err
}

// split returns the chain from a up to (excluding) the LCA, the chain from b
// up to (excluding) the LCA, and the LCA itself.
func (f *Forest) split(a, b string) (up, down []string, lca string, err error) {
	for _, n := range []string{a, b} {
		if !f.Has(n) {
			return nil, nil, "", fmt.Errorf("resolve %q: %w", n, ErrNodeNotFound)
		}
	}
	ca, cb := f.chain(a), f.chain(b)
	onB := make(map[string]int, len(cb))
	for i, n := range cb {
		onB[n] = i
	}
	for i, n := range ca {
		if j, ok := onB[n]; ok {
			return ca[:i], cb[:j], n, nil
		}
	}
	return nil, nil, "", fmt.Errorf("%w: %q and %q", ErrDisconnected, a, b)
}

// Resolve returns the transform of to expressed in the frame of from, along
// with the edges traversed: first the edges from `from` up to the lowest
// common ancestor (nearest first), then the edges from the ancestor down to
// `to` (in parent-to-child order).
//
// The matrix is the product of the inverse edge transforms walking up from
// `from`, followed by the edge transforms walking down to `to`. Resolving a
// node against itself yields identity and no edges.
//
// Returns ErrNodeNotFound, ErrDisconnected, or ErrInvalidEdge when an edge on
// the upward path cannot be inverted.
func (f *Forest) Resolve(from, to string) (mgl64.Mat4, []Edge, error) {
	up, down, _, err := f.split(from, to)
	if err != nil {
		return mgl64.Mat4{}, nil, err
	}

	m := transform.Identity()
	path := make([]Edge, 0, len(up)+len(down))

	for _, n := range up {
		e := f.edges[edgeKey{f.parents[n], n}]
		inv, err := transform.Inverse(e.Matrix)
		if err != nil {
			return mgl64.Mat4{}, nil, fmt.Errorf("%w: invert %s->%s: %v", ErrInvalidEdge, e.Parent, e.Child, err)
		}
		m = m.Mul4(inv)
		path = append(path, e.Edge.clone())
	}

	slices.Reverse(down)
	for _, n := range down {
		e := f.edges[edgeKey{f.parents[n], n}]
		m = m.Mul4(e.Matrix)
		path = append(path, e.Edge.clone())
	}
	return m, path, nil
}

// ResolveFromBase returns the absolute transform of node: its transform in
// the base frame. Returns ErrNoBase when the forest has no base.
func (f *Forest) ResolveFromBase(node string) (mgl64.Mat4, []Edge, error) {
	if f.base == "" {
		return mgl64.Mat4{}, nil, ErrNoBase
	}
	return f.Resolve(f.base, node)
}
