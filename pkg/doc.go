// Package pkg provides the core libraries for sceneforest scene graphs.
//
// # Overview
//
// A scene is a forest of named coordinate frames. Each edge carries a rigid
// (or affine) 4x4 transform from the child frame into the parent frame, and
// optionally a geometry payload placed at the child. The pkg directory is
// organized into these areas:
//
//  1. [forest] - The transform forest and frame-to-frame resolution
//  2. [transform] - 4x4 matrix construction and helpers
//  3. [scene] - The scene graph facade over a forest with a base frame
//  4. [io] - JSON and YAML interchange
//  5. [render] - Graphviz node-link diagrams and SVG conversion
//  6. [cache] - Artifact caching (file, Redis, null)
//
// # Architecture
//
// The typical data flow through sceneforest:
//
//	scene.json / scene.yaml
//	         ↓
//	    [io] package (decode and validate)
//	         ↓
//	    [forest] package (edges, parent links, resolution)
//	         ↓
//	    [scene] package (base-relative queries, edits, geometry)
//	         ↓
//	    JSON/YAML/DOT/SVG/PDF/PNG output
//
// # Quick Start
//
// Build a scene and ask where a node sits in the world frame:
//
//	import (
//	    "github.com/matzehuels/sceneforest/pkg/scene"
//	    "github.com/matzehuels/sceneforest/pkg/transform"
//	)
//
//	g := scene.New("world")
//	_ = g.Attach("world", "robot", transform.Translation(1, 0, 0), nil)
//	_ = g.Attach("robot", "camera", transform.Translation(0, 0, 1.5), nil)
//
//	fr, _ := g.Get("camera")
//	fmt.Println(transform.TranslationOf(fr.Matrix)) // [1 0 1.5]
//
// # Main Packages
//
// [forest] - Parent-linked forest of frames. Every node has at most one
// parent, so the structure can never contain a cycle. [forest.Forest.Resolve]
// composes the transform between any two frames of the same tree through
// their lowest common ancestor.
//
// [scene] - The facade most callers use. It fixes a base frame, adds geometry
// placement, subscene extraction, copying and a structural hash.
//
// [io] - Scene files. Import collects every problem in a file before
// failing instead of stopping at the first one.
//
// [render/nodelink] - Directed graph diagrams of the forest using Graphviz.
//
// [cache] - Rendered artifacts keyed by scene hash and render options.
//
// [errors] - Coded errors and input validation shared by the CLI.
//
// [observability] - Optional hooks for scene, cache and render events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/forest/...    # Specific package
//	go test -run Example        # Examples only
//
// [forest]: https://pkg.go.dev/github.com/matzehuels/sceneforest/pkg/forest
// [forest.Forest.Resolve]: https://pkg.go.dev/github.com/matzehuels/sceneforest/pkg/forest#Forest.Resolve
// [transform]: https://pkg.go.dev/github.com/matzehuels/sceneforest/pkg/transform
// [scene]: https://pkg.go.dev/github.com/matzehuels/sceneforest/pkg/scene
// [io]: https://pkg.go.dev/github.com/matzehuels/sceneforest/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/sceneforest/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/sceneforest/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/sceneforest/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/sceneforest/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/sceneforest/pkg/observability
package pkg
