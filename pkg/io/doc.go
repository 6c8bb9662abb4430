// Package io provides JSON and YAML import and export for transform forests.
//
// # Overview
//
// The interchange format is a plain list of nodes and parent→child edges,
// readable by generic graph tooling and stable enough to diff:
//
//   - Edges appear in insertion order, so a round trip preserves order
//   - Matrices are written row-major, bottom row included
//   - Payloads are flattened into "geometry" and "meta" fields
//
// # Format
//
//	{
//	  "base": "world",
//	  "nodes": ["car", "wheel", "world"],
//	  "edges": [
//	    {
//	      "parent": "world",
//	      "child": "car",
//	      "matrix": [[1,0,0,0],[0,1,0,0],[0,0,1,2],[0,0,0,1]]
//	    },
//	    {"parent": "car", "child": "wheel", "geometry": "tire", "meta": {"side": "left"}}
//	  ]
//	}
//
// YAML files use the same field names. An omitted matrix means identity.
// The "nodes" list exists so isolated roots survive a round trip; nodes
// that only appear in edges may be left out.
//
// # Import
//
// Use [Import] to read a file (format chosen by extension) or [Read],
// [ReadJSON] and [ReadYAML] for any io.Reader:
//
//	f, err := io.Import("truck.yaml", forest.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Import replays every node and edge through the forest API, so a file
// containing a cycle, a second parent for a node, or a non-affine matrix
// cannot produce a corrupt forest. All such problems are collected and
// reported at once. A later edge to an already-parented child reparents it,
// exactly as [forest.Forest.AddEdge] would.
//
// The modification counter is not part of the format: an imported forest
// starts from its own version, so its structural hash differs from the
// exporting scene's.
//
// # Export
//
// Use [Export] to write a file or [Write], [WriteJSON] and [WriteYAML] for
// any io.Writer.
//
// [forest.Forest.AddEdge]: github.com/matzehuels/sceneforest/pkg/forest.Forest.AddEdge
package io
