// Package nodelink renders transform forests as node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz, where
// frames appear as boxes connected by parent→child arrows. It is the
// "generic graph tooling" view of a scene: every tree in the forest is drawn,
// including isolated roots.
//
// # Usage
//
// Convert a forest to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(f, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: label edges with their translation and geometry nodes with
//     their geometry and metadata
//   - Highlight: edges drawn in bold red, e.g. the path returned by
//     forest.Resolve
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
