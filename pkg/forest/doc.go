// Package forest provides the transform forest at the heart of a scene
// graph: named frames joined by parent→child edges that carry 4x4 affine
// transforms and optional geometry payloads.
//
// # Overview
//
// A scene needs every object to have exactly one absolute pose, obtained by
// composing exactly one chain of transforms from a root. The [Forest] makes
// that unconditionally true: each node has at most one parent and
// [Forest.AddEdge] rejects any edge that would close a cycle. The structure
// is therefore always a disjoint union of rooted trees.
//
// # Basic Usage
//
// Create a forest with [New], naming its base frame, then add edges.
// Endpoints are created on demand:
//
//	f := forest.New("world")
//	_ = f.AddEdge(forest.Edge{Parent: "world", Child: "car"})
//	_ = f.AddEdge(forest.Edge{
//	    Parent: "car",
//	    Child:  "wheel",
//	    Matrix: transform.Translation(1, 0, 0),
//	    Payload: &forest.Payload{Geometry: "wheel.glb"},
//	})
//
// Adding an edge for a child that already has a parent moves the child
// (and its subtree) under the new parent in one step.
//
// # Queries
//
// [Forest.Successors] returns the inclusive descendant closure of a node,
// [Forest.IsAncestor] tests membership in it, and [Forest.Resolve] returns
// the transform between any two connected frames through their lowest
// common ancestor. Accessors such as [Forest.Nodes], [Forest.Edges] and
// [Forest.Children] return copies; all mutation goes through the forest so
// that invariants hold and [Forest.Version] advances.
//
// # Removal
//
// [Forest.RemoveNode] deletes a node with its incoming and outgoing edges.
// Its children are detached and become roots of their own trees, keeping
// their local transforms. The base frame cannot be removed until another
// base is chosen with [Forest.SetBase].
// The base is always a root: it cannot be attached below another node, and
// only a root can become the base.
//
// # Versioning
//
// Every successful mutation increments [Forest.Version]. Derived caches
// (see package scene) compare versions instead of contents to decide
// whether they are stale.
//
// # Concurrency
//
// Forest instances are not safe for concurrent use. An embedding system must
// guard each mutation or read sequence with a single lock.
package forest
