package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/sceneforest/pkg/forest"
	"github.com/matzehuels/sceneforest/pkg/observability"
	"github.com/matzehuels/sceneforest/pkg/render"
	"github.com/matzehuels/sceneforest/pkg/transform"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed labels edges with their translation and geometry nodes with
	// their geometry name and metadata. When false, only node IDs are shown.
	Detailed bool

	// Highlight draws these edges (typically a resolved path) in bold red.
	Highlight []forest.Edge
}

type edgeID struct{ parent, child string }

// ToDOT converts a forest to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// The base frame gets a double outline, geometry nodes are filled, and
// identity edges are dashed. Edges appear in insertion order.
func ToDOT(f *forest.Forest, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=16];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	incoming := make(map[string]forest.Edge)
	for _, e := range f.Edges() {
		incoming[e.Child] = e
	}
	for _, n := range f.Nodes() {
		in, ok := incoming[n]
		attrs := nodeAttrs(n, in, ok, n == f.Base(), opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", n, strings.Join(attrs, ", "))
	}

	hot := make(map[edgeID]bool, len(opts.Highlight))
	for _, e := range opts.Highlight {
		hot[edgeID{e.Parent, e.Child}] = true
	}

	buf.WriteString("\n")
	for _, e := range f.Edges() {
		attrs := edgeAttrs(e, hot[edgeID{e.Parent, e.Child}], opts.Detailed)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Parent, e.Child)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Parent, e.Child, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(id string, in forest.Edge, hasParent, base, detailed bool) []string {
	label := id
	geometry := hasParent && in.HasGeometry()
	if detailed && geometry {
		parts := []string{"geometry: " + in.Payload.Geometry}
		for _, k := range slices.Sorted(maps.Keys(in.Payload.Meta)) {
			parts = append(parts, fmt.Sprintf("%s: %v", k, in.Payload.Meta[k]))
		}
		label = id + "\n" + strings.Join(parts, "\n")
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	if geometry {
		attrs = append(attrs, "fillcolor=lightblue")
	}
	if base {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

func edgeAttrs(e forest.Edge, highlight, detailed bool) []string {
	var attrs []string
	if e.Matrix == transform.Identity() {
		attrs = append(attrs, "style=dashed")
	} else if detailed {
		t := transform.TranslationOf(e.Matrix)
		label := fmt.Sprintf("t=(%s, %s, %s)", fmtFloat(t[0]), fmtFloat(t[1]), fmtFloat(t[2]))
		if !transform.IsRigid(e.Matrix) {
			label += "\nscaled"
		}
		attrs = append(attrs, fmt.Sprintf("label=%q", label))
	}
	if highlight {
		attrs = append(attrs, "color=red", "penwidth=3")
	}
	return attrs
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) (svg []byte, err error) {
	start := time.Now()
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, "svg", len(dot))
	defer func() { hooks.OnRenderComplete(ctx, "svg", time.Since(start), err) }()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
