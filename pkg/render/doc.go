// Package render provides visualization output for scene forests.
//
// # Overview
//
// This package holds the pieces shared by every renderer:
//
//   - Generic format conversion (SVG to PDF/PNG) via [ToPDF] and [ToPNG]
//   - Node-link diagrams of the forest (in the [nodelink] subpackage)
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external [Converter] tool
// (from librsvg). Use [HasConverter] to check for it up front.
//
//	dot := nodelink.ToDOT(f, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/sceneforest/pkg/render/nodelink
package render
