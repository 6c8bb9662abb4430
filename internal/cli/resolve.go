package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/sceneforest/pkg/errors"
	"github.com/matzehuels/sceneforest/pkg/scene"
)

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "resolve <scene> <node>",
		Short: "Print the transform of a node in another frame",
		Long: `Resolve the transform that maps coordinates in <node> into the frame
given by --from (the base frame by default), and print the edges walked to
compute it. Both nodes must belong to the same tree.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeNodeArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadScene(args[0])
			if err != nil {
				return err
			}
			fr, frame, err := resolveFrame(g, from, args[1])
			if err != nil {
				return err
			}

			printSuccess("%s in %s", StyleHighlight.Render(args[1]), StyleHighlight.Render(frame))
			fmt.Fprintln(stdout, formatMatrix(fr.Matrix))
			printNewline()
			printKeyValue("Path", formatPath(fr.Path))
			if fr.Geometry != "" {
				printKeyValue("Geometry", fr.Geometry)
			}
			for _, k := range slices.Sorted(maps.Keys(fr.Meta)) {
				printKeyValue(k, fmt.Sprint(fr.Meta[k]))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "frame to express the transform in (default: base)")
	_ = cmd.RegisterFlagCompletionFunc("from", c.completeNodeFlag)

	return cmd
}

// resolveFrame resolves to in the frame from, or in the base when from is
// empty. It returns the name of the frame used.
func resolveFrame(g *scene.Graph, from, to string) (scene.Frame, string, error) {
	if from == "" {
		if from = g.Base(); from == "" {
			return scene.Frame{}, "", apperr.New(apperr.ErrCodeInvalidInput, "scene has no base frame, pass --from")
		}
	}
	for _, n := range []string{from, to} {
		if err := apperr.ValidateNodeName(n); err != nil {
			return scene.Frame{}, "", err
		}
	}
	fr, err := g.GetFrom(from, to)
	if err != nil {
		return scene.Frame{}, "", apperr.Coded(err, "resolve %s from %s", to, from)
	}
	return fr, from, nil
}
