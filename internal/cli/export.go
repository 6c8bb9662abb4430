package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sceneforest/pkg/buildinfo"
	"github.com/matzehuels/sceneforest/pkg/cache"
	apperr "github.com/matzehuels/sceneforest/pkg/errors"
	"github.com/matzehuels/sceneforest/pkg/forest"
	sceneio "github.com/matzehuels/sceneforest/pkg/io"
	"github.com/matzehuels/sceneforest/pkg/render/nodelink"
	"github.com/matzehuels/sceneforest/pkg/scene"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPDF  = "pdf"
	formatPNG  = "png"

	defaultPNGScale = 2.0
)

var exportFormats = []string{formatJSON, formatYAML, formatDOT, formatSVG, formatPDF, formatPNG}

// exportOpts holds the flags for the export command.
type exportOpts struct {
	output    string  // output path; format inferred from extension when -f is empty
	format    string  // one of exportFormats
	detailed  bool    // label edges and geometry in diagrams
	highlight string  // node whose path from the base is drawn in red
	scale     float64 // PNG resolution multiplier
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{scale: defaultPNGScale}

	cmd := &cobra.Command{
		Use:   "export <scene>",
		Short: "Convert a scene or render its frame structure",
		Long: `Write a scene as JSON or YAML, or render its frame structure as a
Graphviz diagram (dot, svg, pdf, png).

Rendered diagrams are cached under the scene's structural hash, so exporting
an unchanged scene again is instant. PDF and PNG need rsvg-convert (librsvg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(); err != nil {
				return err
			}
			g, err := c.loadScene(args[0])
			if err != nil {
				return err
			}
			return c.runExport(cmd.Context(), g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (required)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: "+strings.Join(exportFormats, ", ")+" (default: from extension)")
	cmd.Flags().BoolVarP(&opts.detailed, "detailed", "d", false, "label edges with translations and nodes with geometry")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "highlight the path from the base to this node")
	cmd.Flags().Float64Var(&opts.scale, "scale", defaultPNGScale, "PNG scale factor")
	_ = cmd.RegisterFlagCompletionFunc("highlight", c.completeNodeFlag)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(exportFormats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// resolve fills in the format from the output extension and validates flags.
func (o *exportOpts) resolve() error {
	if o.output == "" {
		return apperr.New(apperr.ErrCodeInvalidInput, "--output is required")
	}
	if err := apperr.ValidatePath(o.output); err != nil {
		return err
	}
	if o.format == "" {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(o.output)), ".")
		if ext == "yml" {
			ext = formatYAML
		}
		o.format = ext
	}
	o.format = strings.ToLower(o.format)
	if err := apperr.ValidateFormat(o.format, exportFormats...); err != nil {
		return err
	}
	if o.format == formatPNG && o.scale <= 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "--scale must be positive, got %g", o.scale)
	}
	return nil
}

func (c *CLI) runExport(ctx context.Context, g *scene.Graph, opts exportOpts) error {
	switch opts.format {
	case formatJSON, formatYAML:
		if err := writeInterchange(g, opts); err != nil {
			return err
		}
		printSuccess("Exported %s", opts.format)
		printStats(g.Stats())
		printFile(opts.output)
		return nil
	}

	highlight, err := highlightPath(g, opts.highlight)
	if err != nil {
		return err
	}
	dot := nodelink.ToDOT(g.Forest(), nodelink.Options{Detailed: opts.detailed, Highlight: highlight})

	if opts.format == formatDOT {
		if err := os.WriteFile(opts.output, []byte(dot), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.output, err)
		}
		printSuccess("Exported dot")
		printFile(opts.output)
		return nil
	}

	data, cached, err := c.renderArtifact(ctx, g.Hash(), dot, opts, highlight)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Rendered %s", opts.format)
	printArtifactStatus(opts.format, len(data), cached)
	printFile(opts.output)
	return nil
}

func writeInterchange(g *scene.Graph, opts exportOpts) error {
	out, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.output, err)
	}
	if err := sceneio.Write(g.Forest(), out, sceneio.Format(opts.format)); err != nil {
		out.Close()
		return apperr.Coded(err, "write %s", opts.output)
	}
	return out.Close()
}

// highlightPath returns the edges from the base down to node.
func highlightPath(g *scene.Graph, node string) ([]forest.Edge, error) {
	if node == "" {
		return nil, nil
	}
	fr, err := g.Get(node)
	if err != nil {
		return nil, apperr.Coded(err, "highlight %s", node)
	}
	return fr.Path, nil
}

// renderArtifact renders dot in opts.format, going through the artifact
// cache. Backend errors never fail the export; they only skip caching.
func (c *CLI) renderArtifact(ctx context.Context, sceneHash, dot string, opts exportOpts, highlight []forest.Edge) ([]byte, bool, error) {
	logger := loggerFromContext(ctx)
	store := c.newCache(ctx, opts.format)
	defer store.Close()

	keyOpts := cache.ArtifactKeyOpts{
		Format:    opts.format,
		Detailed:  opts.detailed,
		Highlight: edgeIDs(highlight),
	}
	if opts.format == formatPNG {
		keyOpts.Scale = opts.scale
	}
	key := cache.NewScopedKeyer(nil, buildinfo.Version+":").ArtifactKey(sceneHash, keyOpts)

	var data []byte
	var hit bool
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = store.Get(ctx, key)
		return err
	})
	if err != nil {
		logger.Warn("cache read failed", "err", err)
	}
	if hit {
		return data, true, nil
	}

	spin := newSpinner(ctx, fmt.Sprintf("Rendering %s...", opts.format))
	spin.Start()
	data, err = renderDOT(ctx, dot, opts)
	spin.Stop()
	if err != nil {
		return nil, false, apperr.Wrap(apperr.ErrCodeInternal, err, "render %s", opts.format)
	}

	ttl := c.Config.Cache.TTL
	if err := cache.RetryWithBackoff(ctx, func() error {
		return store.Set(ctx, key, data, ttl)
	}); err != nil {
		logger.Warn("cache write failed", "err", err)
	}
	return data, false, nil
}

func renderDOT(ctx context.Context, dot string, opts exportOpts) ([]byte, error) {
	switch opts.format {
	case formatPDF:
		return nodelink.RenderPDF(ctx, dot)
	case formatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.scale)
	default:
		return nodelink.RenderSVG(ctx, dot)
	}
}
