package scene

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/matzehuels/sceneforest/pkg/forest"
	"github.com/matzehuels/sceneforest/pkg/observability"
)

var (
	// ErrUnknownNode is returned by queries that reference a node the scene
	// has never seen. It wraps [forest.ErrNodeNotFound].
	ErrUnknownNode = errors.New("unknown node")

	// ErrNoGeometry is returned by [Graph.AddGeometry] when no geometry
	// name is given.
	ErrNoGeometry = errors.New("geometry name is required")
)

// Frame is a resolved transform together with the payload of the target
// node's incoming edge.
type Frame struct {
	Matrix   mgl64.Mat4
	Path     []forest.Edge
	Geometry string
	Meta     forest.Metadata
}

// GeometrySpec describes geometry to place in the scene with
// [Graph.AddGeometry].
type GeometrySpec struct {
	Geometry string          // Geometry name (required)
	Node     string          // Node name; generated when empty
	Parent   string          // Parent frame; the base when empty
	Matrix   mgl64.Mat4      // Local transform; zero means identity
	Meta     forest.Metadata // Extra metadata stored on the edge
}

// Stats summarizes a scene.
type Stats struct {
	Nodes    int
	Edges    int
	Roots    int
	Geometry int // nodes carrying geometry
	MaxDepth int
	Version  uint64
}

// Graph is a scene graph: a transform forest plus derived views that are
// rebuilt lazily whenever the forest version changes.
//
// Graph is not safe for concurrent use.
type Graph struct {
	forest *forest.Forest
	cache  derived
}

type resolveKey struct{ from, to string }

// derived holds projections computed at a single forest version. A nil
// field has not been computed yet.
type derived struct {
	version   uint64
	nodes     []string
	geomNodes []string
	geometry  []string
	hash      string
	resolved  map[resolveKey]Frame
}

// New creates an empty scene whose base frame is base.
func New(base string) *Graph {
	return FromForest(forest.New(base))
}

// FromForest wraps an existing forest. The graph takes ownership of f;
// mutating f directly afterwards is allowed because derived views are keyed
// by the forest version.
func FromForest(f *forest.Forest) *Graph {
	return &Graph{forest: f}
}

// Forest returns the underlying forest.
func (g *Graph) Forest() *forest.Forest { return g.forest }

// Base returns the base frame.
func (g *Graph) Base() string { return g.forest.Base() }

// sync drops every derived view computed at an older version.
func (g *Graph) sync() {
	if v := g.forest.Version(); v != g.cache.version || g.cache.resolved == nil {
		g.cache = derived{version: v, resolved: make(map[resolveKey]Frame)}
	}
}

func (g *Graph) rebuilt(view string, start time.Time) {
	observability.Scene().OnRebuild(view, g.cache.version, time.Since(start))
}

// Get returns the absolute frame of node, resolved from the base.
func (g *Graph) Get(node string) (Frame, error) {
	if g.forest.Base() == "" {
		return Frame{}, forest.ErrNoBase
	}
	return g.GetFrom(g.forest.Base(), node)
}

// GetFrom returns the transform of child expressed in the frame of parent,
// plus the geometry and metadata attached to child. The two nodes need not
// be directly connected, only part of the same tree.
//
// GetFrom never modifies edge data. Results are memoized until the next
// mutation.
func (g *Graph) GetFrom(parent, child string) (Frame, error) {
	for _, n := range []string{parent, child} {
		if !g.forest.Has(n) {
			err := fmt.Errorf("%w %q: %w", ErrUnknownNode, n, forest.ErrNodeNotFound)
			observability.Scene().OnResolve(parent, child, false, err)
			return Frame{}, err
		}
	}

	g.sync()
	key := resolveKey{parent, child}
	if fr, ok := g.cache.resolved[key]; ok {
		observability.Scene().OnResolve(parent, child, true, nil)
		return fr.clone(), nil
	}

	m, path, err := g.forest.Resolve(parent, child)
	observability.Scene().OnResolve(parent, child, false, err)
	if err != nil {
		return Frame{}, err
	}
	fr := Frame{Matrix: m, Path: path}
	if p, ok := g.forest.Parent(child); ok {
		if e, ok := g.forest.Edge(p, child); ok && e.Payload != nil {
			fr.Geometry = e.Payload.Geometry
			fr.Meta = e.Payload.Meta
		}
	}
	g.cache.resolved[key] = fr
	return fr.clone(), nil
}

func (fr Frame) clone() Frame {
	fr.Path = slices.Clone(fr.Path)
	for i := range fr.Path {
		fr.Path[i].Payload = fr.Path[i].Payload.Clone()
	}
	fr.Meta = fr.Meta.Clone()
	return fr
}

// Set updates the local transform of child. The edge keeps child's current
// parent and payload; a root or new node is attached below the base.
func (g *Graph) Set(child string, m mgl64.Mat4) error {
	parent, ok := g.forest.Parent(child)
	if !ok {
		parent = g.forest.Base()
		if parent == "" {
			return forest.ErrNoBase
		}
	}
	e, _ := g.forest.Edge(parent, child)
	return g.forest.AddEdge(forest.Edge{Parent: parent, Child: child, Matrix: m, Payload: e.Payload})
}

// Attach inserts or replaces the edge parent→child, moving child if it
// already hangs elsewhere.
func (g *Graph) Attach(parent, child string, m mgl64.Mat4, payload *forest.Payload) error {
	return g.forest.AddEdge(forest.Edge{Parent: parent, Child: child, Matrix: m, Payload: payload})
}

// AddGeometry places geometry in the scene and returns the node it was
// attached to. Without an explicit node name one is derived from the
// geometry name and a random suffix.
func (g *Graph) AddGeometry(spec GeometrySpec) (string, error) {
	if spec.Geometry == "" {
		return "", ErrNoGeometry
	}
	parent := spec.Parent
	if parent == "" {
		if parent = g.forest.Base(); parent == "" {
			return "", forest.ErrNoBase
		}
	}
	node := spec.Node
	if node == "" {
		node = spec.Geometry + "_" + uuid.NewString()[:8]
	}
	payload := &forest.Payload{Geometry: spec.Geometry, Meta: spec.Meta}
	if err := g.Attach(parent, node, spec.Matrix, payload); err != nil {
		return "", err
	}
	return node, nil
}

// RemoveNode deletes node; its children become independent roots.
func (g *Graph) RemoveNode(node string) (bool, error) { return g.forest.RemoveNode(node) }

// RemoveEdge deletes the edge parent→child; child becomes a root.
func (g *Graph) RemoveEdge(parent, child string) (bool, error) {
	return g.forest.RemoveEdge(parent, child)
}

// Nodes returns every node in sorted order.
func (g *Graph) Nodes() []string {
	g.sync()
	if g.cache.nodes == nil {
		start := time.Now()
		g.cache.nodes = g.forest.Nodes()
		g.rebuilt("nodes", start)
	}
	return slices.Clone(g.cache.nodes)
}

// NodesGeometry returns the sorted nodes whose incoming edge carries
// geometry.
func (g *Graph) NodesGeometry() []string {
	g.sync()
	if g.cache.geomNodes == nil {
		g.buildGeometry()
	}
	return slices.Clone(g.cache.geomNodes)
}

// Geometry returns the distinct geometry names referenced by the scene.
func (g *Graph) Geometry() []string {
	g.sync()
	if g.cache.geometry == nil {
		g.buildGeometry()
	}
	return slices.Clone(g.cache.geometry)
}

func (g *Graph) buildGeometry() {
	start := time.Now()
	nodes := []string{}
	names := map[string]struct{}{}
	for _, e := range g.forest.Edges() {
		if e.HasGeometry() {
			nodes = append(nodes, e.Child)
			names[e.Payload.Geometry] = struct{}{}
		}
	}
	slices.Sort(nodes)
	g.cache.geomNodes = nodes
	g.cache.geometry = slices.Sorted(maps.Keys(names))
	g.rebuilt("geometry", start)
}

// Subscene returns an independent scene containing node and all of its
// descendants, with node as the base. Edges keep their original order and
// payloads are deep-copied.
func (g *Graph) Subscene(node string) (*Graph, error) {
	if !g.forest.Has(node) {
		return nil, fmt.Errorf("%w %q: %w", ErrUnknownNode, node, forest.ErrNodeNotFound)
	}
	keep, err := g.forest.Successors(node)
	if err != nil {
		return nil, err
	}
	inside := make(map[string]struct{}, len(keep))
	for _, n := range keep {
		inside[n] = struct{}{}
	}

	sub := forest.NewWithOptions(node, g.forest.Options())
	for _, e := range g.forest.Edges() {
		if _, ok := inside[e.Parent]; !ok {
			continue
		}
		if _, ok := inside[e.Child]; !ok {
			continue
		}
		if err := sub.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return FromForest(sub), nil
}

// Copy returns an independent copy of the scene.
func (g *Graph) Copy() *Graph {
	return FromForest(g.forest.Clone())
}

// Stats returns summary counts for the scene.
func (g *Graph) Stats() Stats {
	s := Stats{
		Nodes:    g.forest.NodeCount(),
		Edges:    g.forest.EdgeCount(),
		Roots:    len(g.forest.Roots()),
		Geometry: len(g.NodesGeometry()),
		Version:  g.forest.Version(),
	}
	for _, n := range g.Nodes() {
		s.MaxDepth = max(s.MaxDepth, g.forest.Depth(n))
	}
	return s
}
