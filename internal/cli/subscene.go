package cli

import (
	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/sceneforest/pkg/errors"
)

// subsceneCommand creates the subscene command.
func (c *CLI) subsceneCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "subscene <scene> <node>",
		Short: "Extract a node and everything below it into a new scene",
		Long: `Write the subtree rooted at <node> to a new scene file whose base frame is
<node>. Edge transforms, geometry and metadata are copied unchanged.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeNodeArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return apperr.New(apperr.ErrCodeInvalidInput, "--output is required")
			}
			g, err := c.loadScene(args[0])
			if err != nil {
				return err
			}
			sub, err := g.Subscene(args[1])
			if err != nil {
				return apperr.Coded(err, "subscene %s", args[1])
			}
			if err := c.saveScene(sub, output); err != nil {
				return err
			}

			printSuccess("Extracted %s", StyleHighlight.Render(args[1]))
			printStats(sub.Stats())
			printFile(output)
			printNextStep("Inspect it", "sceneforest inspect "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.json or .yaml)")

	return cmd
}
