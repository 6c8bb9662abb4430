// Package scene provides a scene graph facade over a transform forest.
//
// # Overview
//
// A [Graph] wraps a [forest.Forest] and adds the conveniences a renderer or
// camera layer needs:
//
//   - [Graph.Get] and [Graph.GetFrom] resolve a node's transform together
//     with the geometry and metadata attached to it
//   - [Graph.Set], [Graph.Attach] and [Graph.AddGeometry] edit edges
//   - [Graph.Nodes], [Graph.NodesGeometry] and [Graph.Geometry] list the scene
//   - [Graph.Subscene] extracts an independent copy of a subtree
//   - [Graph.Hash] fingerprints the structure
//
// # Derived State
//
// Node lists, geometry lists, the structural hash and resolved frames are
// computed on first use and tagged with the forest version. Any mutation
// bumps the version, and the next read recomputes from scratch; derived
// state is never patched in place. Mutating the forest returned by
// [Graph.Forest] directly is therefore safe.
//
// Rebuilds and resolver lookups are reported through
// [observability.SceneHooks].
//
// # Errors
//
// Forest errors propagate unchanged, so errors.Is works with the
// forest sentinels. Queries naming a node the scene has never seen
// return [ErrUnknownNode], which also matches [forest.ErrNodeNotFound].
//
// # Concurrency
//
// A Graph is single-threaded. Even read methods update the derived cache,
// so concurrent readers need the same external lock as writers.
//
// [forest.Forest]: github.com/matzehuels/sceneforest/pkg/forest.Forest
// [observability.SceneHooks]: github.com/matzehuels/sceneforest/pkg/observability.SceneHooks
package scene
