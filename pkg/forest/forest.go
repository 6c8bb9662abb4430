package forest

import (
	"errors"
	"fmt"
	"maps"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mitchellh/copystructure"

	"github.com/matzehuels/sceneforest/pkg/transform"
)

var (
	// ErrInvalidNodeID is returned by [Forest.AddEdge], [Forest.AddNode] and
	// [Forest.SetBase] when a node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrInvalidEdge is returned by [Forest.AddEdge] for self-loops and for
	// matrices that are not finite homogeneous affine transforms.
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrCycleDetected is returned by [Forest.AddEdge] when the parent is
	// already a descendant of the child. The forest is left untouched.
	ErrCycleDetected = errors.New("edge would create a cycle")

	// ErrNodeNotFound is returned when an operation references a node that
	// is not part of the forest.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound is returned by [Forest.RemoveEdge] for a missing edge
	// when [Options.StrictRemove] is set.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrDisconnected is returned by the path resolver when two nodes live
	// in different trees and therefore share no ancestor.
	ErrDisconnected = errors.New("nodes are not connected")

	// ErrCannotRemoveRoot is returned by [Forest.RemoveNode] for the base
	// frame. Reassign the base with [Forest.SetBase] first.
	ErrCannotRemoveRoot = errors.New("cannot remove the base frame")

	// ErrBaseHasParent is returned when an edge would hang the base frame
	// below another node, or when [Forest.SetBase] picks a node that has a
	// parent. The base is always a root.
	ErrBaseHasParent = errors.New("base frame cannot have a parent")

	// ErrNoBase is returned by [Forest.ResolveFromBase] when the forest was
	// created without a base frame.
	ErrNoBase = errors.New("forest has no base frame")

	// ErrInconsistent signals that internal maps disagree or that a traversal
	// revisited a node. It means an invariant was broken elsewhere.
	ErrInconsistent = errors.New("forest is internally inconsistent")
)

// Metadata stores arbitrary key-value pairs attached to an edge payload.
type Metadata map[string]any

// Payload is the optional data carried by an edge and describing its child:
// a reference to externally stored geometry plus free-form metadata.
type Payload struct {
	Geometry string   // Name of the geometry drawn at the child frame ("" = none)
	Meta     Metadata // Arbitrary key-value metadata
}

// Clone returns a deep copy of m, including nested maps and slices.
// It panics if m holds a value that cannot be copied; [Forest.AddEdge]
// rejects such metadata, so metadata read back from a forest never panics.
func (m Metadata) Clone() Metadata {
	out, err := m.deepCopy()
	if err != nil {
		panic(fmt.Sprintf("forest: copy metadata: %v", err))
	}
	return out
}

func (m Metadata) deepCopy() (Metadata, error) {
	if m == nil {
		return nil, nil
	}
	v, err := copystructure.Copy(m)
	if err != nil {
		return nil, err
	}
	return v.(Metadata), nil
}

// Clone returns a deep copy of p. See [Metadata.Clone].
func (p *Payload) Clone() *Payload {
	if p == nil {
		return nil
	}
	return &Payload{Geometry: p.Geometry, Meta: p.Meta.Clone()}
}

func (p *Payload) deepCopy() (*Payload, error) {
	if p == nil {
		return nil, nil
	}
	meta, err := p.Meta.deepCopy()
	if err != nil {
		return nil, err
	}
	return &Payload{Geometry: p.Geometry, Meta: meta}, nil
}

// Edge is a directed parent→child connection carrying the child's transform
// relative to the parent.
//
// A zero Matrix means no transform was given and is stored as identity.
type Edge struct {
	Parent  string
	Child   string
	Matrix  mgl64.Mat4
	Payload *Payload
}

// HasGeometry reports whether the edge payload references geometry.
func (e Edge) HasGeometry() bool { return e.Payload != nil && e.Payload.Geometry != "" }

func (e Edge) clone() Edge {
	e.Payload = e.Payload.Clone()
	return e
}

type edgeKey struct{ parent, child string }

type edgeEntry struct {
	Edge
	seq uint64 // insertion order, used for deterministic interchange
}

// Options controls forest validation policies.
type Options struct {
	// CoerceAffine replaces a bad bottom row with [0 0 0 1] instead of
	// rejecting the edge with ErrInvalidEdge.
	CoerceAffine bool
	// StrictRemove makes RemoveEdge return ErrEdgeNotFound for missing edges
	// instead of reporting false.
	StrictRemove bool
}

// Forest is a disjoint union of rooted trees whose edges carry transforms.
// Each node has at most one parent and there are no directed cycles; every
// mutation either preserves that or fails without changing anything.
//
// The zero value is not usable - use [New] or [NewWithOptions].
// Forest is not safe for concurrent use without external synchronization.
type Forest struct {
	nodes    map[string]struct{}
	parents  map[string]string              // child -> parent
	edges    map[edgeKey]*edgeEntry         // (parent, child) -> edge
	children map[string]map[string]struct{} // parent -> children

	base    string
	opts    Options
	version uint64
	seq     uint64
}

// New creates a forest whose base frame is base. The base is registered as
// an isolated root. An empty base creates an empty forest without a base.
func New(base string) *Forest {
	return NewWithOptions(base, Options{})
}

// NewWithOptions is like [New] with explicit validation policies.
func NewWithOptions(base string, opts Options) *Forest {
	f := &Forest{
		nodes:    make(map[string]struct{}),
		parents:  make(map[string]string),
		edges:    make(map[edgeKey]*edgeEntry),
		children: make(map[string]map[string]struct{}),
		base:     base,
		opts:     opts,
	}
	if base != "" {
		f.nodes[base] = struct{}{}
	}
	return f
}

// Options returns the validation policies the forest was created with.
func (f *Forest) Options() Options { return f.opts }

// Base returns the base frame, or "" if none is set.
func (f *Forest) Base() string { return f.base }

// Version returns the modification counter. It increases on every
// successful mutation and never otherwise.
func (f *Forest) Version() uint64 { return f.version }

// SetBase designates node as the base frame. The node must exist and be a
// root; detach it with [Forest.RemoveEdge] first otherwise.
func (f *Forest) SetBase(node string) error {
	if node == "" {
		return ErrInvalidNodeID
	}
	if !f.Has(node) {
		return fmt.Errorf("set base %q: %w", node, ErrNodeNotFound)
	}
	if p, ok := f.parents[node]; ok {
		return fmt.Errorf("set base %q: %w (parent %q)", node, ErrBaseHasParent, p)
	}
	if node != f.base {
		f.base = node
		f.version++
	}
	return nil
}

// AddNode registers node as an isolated root. Adding an existing node is a
// no-op and does not change the version.
func (f *Forest) AddNode(node string) error {
	if node == "" {
		return ErrInvalidNodeID
	}
	if _, ok := f.nodes[node]; ok {
		return nil
	}
	f.nodes[node] = struct{}{}
	f.version++
	return nil
}

// AddEdge inserts or overwrites the edge Parent→Child, creating either
// endpoint if absent.
//
// If Child already hangs below a different parent, that edge is replaced in
// the same step (reparenting). Overwriting the same (Parent, Child) pair
// keeps its position in [Forest.Edges].
//
// The payload is deep-copied on the way in, so later changes to the
// caller's metadata do not reach the forest.
//
// Returns ErrInvalidNodeID for empty IDs, ErrInvalidEdge for self-loops,
// malformed matrices, uncopyable metadata or a Child that is the base frame
// (the latter also matches ErrBaseHasParent), and ErrCycleDetected when
// Parent is Child or one of its descendants. On error nothing is changed.
func (f *Forest) AddEdge(e Edge) error {
	if e.Parent == "" || e.Child == "" {
		return ErrInvalidNodeID
	}
	if e.Parent == e.Child {
		return fmt.Errorf("%w: self-loop on %q", ErrInvalidEdge, e.Child)
	}
	m, err := f.checkMatrix(e.Matrix)
	if err != nil {
		return fmt.Errorf("%w: %s->%s: %v", ErrInvalidEdge, e.Parent, e.Child, err)
	}
	if f.IsAncestor(e.Child, e.Parent) {
		return fmt.Errorf("%w: %s->%s", ErrCycleDetected, e.Parent, e.Child)
	}
	if e.Child == f.base {
		return fmt.Errorf("%w: %s->%s: %w", ErrInvalidEdge, e.Parent, e.Child, ErrBaseHasParent)
	}

	payload, err := e.Payload.deepCopy()
	if err != nil {
		return fmt.Errorf("%w: %s->%s: metadata: %v", ErrInvalidEdge, e.Parent, e.Child, err)
	}

	e.Matrix = m
	e.Payload = payload
	key := edgeKey{e.Parent, e.Child}

	if old, ok := f.parents[e.Child]; ok && old != e.Parent {
		f.unlink(old, e.Child)
	}

	if entry, ok := f.edges[key]; ok {
		entry.Edge = e
	} else {
		f.seq++
		f.edges[key] = &edgeEntry{Edge: e, seq: f.seq}
		f.parents[e.Child] = e.Parent
		kids := f.children[e.Parent]
		if kids == nil {
			kids = make(map[string]struct{})
			f.children[e.Parent] = kids
		}
		kids[e.Child] = struct{}{}
	}
	f.nodes[e.Parent] = struct{}{}
	f.nodes[e.Child] = struct{}{}
	f.version++
	return nil
}

func (f *Forest) checkMatrix(m mgl64.Mat4) (mgl64.Mat4, error) {
	if transform.IsZero(m) {
		return transform.Identity(), nil
	}
	err := transform.Validate(m)
	if errors.Is(err, transform.ErrNotAffine) && f.opts.CoerceAffine {
		return transform.Coerce(m), nil
	}
	return m, err
}

// RemoveEdge removes the edge parent→child if present; child becomes the
// root of its own tree. It reports whether an edge was removed. A missing
// edge yields (false, nil), or ErrEdgeNotFound under [Options.StrictRemove].
func (f *Forest) RemoveEdge(parent, child string) (bool, error) {
	if _, ok := f.edges[edgeKey{parent, child}]; !ok {
		if f.opts.StrictRemove {
			return false, fmt.Errorf("%w: %s->%s", ErrEdgeNotFound, parent, child)
		}
		return false, nil
	}
	f.unlink(parent, child)
	f.version++
	return true, nil
}

// RemoveNode deletes node together with its incoming edge and all of its
// outgoing edges. Its children are not deleted: each becomes an independent
// root and keeps its own subtree and local transforms.
//
// Returns ErrNodeNotFound for unknown nodes and ErrCannotRemoveRoot for the
// base frame.
func (f *Forest) RemoveNode(node string) (bool, error) {
	if !f.Has(node) {
		return false, fmt.Errorf("remove %q: %w", node, ErrNodeNotFound)
	}
	if node == f.base {
		return false, fmt.Errorf("remove %q: %w", node, ErrCannotRemoveRoot)
	}
	if parent, ok := f.parents[node]; ok {
		f.unlink(parent, node)
	}
	for child := range f.children[node] {
		f.unlink(node, child)
	}
	delete(f.children, node)
	delete(f.nodes, node)
	f.version++
	return true, nil
}

// unlink drops the parent→child edge from every index without touching the
// version counter.
func (f *Forest) unlink(parent, child string) {
	delete(f.edges, edgeKey{parent, child})
	delete(f.parents, child)
	if kids, ok := f.children[parent]; ok {
		delete(kids, child)
		if len(kids) == 0 {
			delete(f.children, parent)
		}
	}
}

// Clone returns an independent deep copy of the forest, including version,
// base, edge insertion order and payload metadata.
func (f *Forest) Clone() *Forest {
	out := NewWithOptions(f.base, f.opts)
	maps.Copy(out.nodes, f.nodes)
	maps.Copy(out.parents, f.parents)
	for k, e := range f.edges {
		out.edges[k] = &edgeEntry{Edge: e.Edge.clone(), seq: e.seq}
	}
	for p, kids := range f.children {
		out.children[p] = maps.Clone(kids)
	}
	out.version = f.version
	out.seq = f.seq
	return out
}
