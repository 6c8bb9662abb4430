package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/matzehuels/sceneforest/pkg/forest"
	"github.com/matzehuels/sceneforest/pkg/scene"
	"github.com/matzehuels/sceneforest/pkg/transform"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var interactive, detailed bool

	cmd := &cobra.Command{
		Use:   "inspect <scene>",
		Short: "Show statistics and the frame tree of a scene",
		Long: `Load a scene file (.json or .yaml) and print its base frame, structural
hash, statistics and the tree of frames below every root.

With --interactive, browse the nodes and their absolute transforms instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadScene(args[0])
			if err != nil {
				return err
			}
			if interactive {
				return c.browse(g)
			}

			printKeyValue("Base", StyleHighlight.Render(orNone(g.Base())))
			printKeyValue("Hash", g.Hash())
			if geo := g.Geometry(); len(geo) > 0 {
				printKeyValue("Geometry", strings.Join(geo, ", "))
			}
			printStats(g.Stats())
			printNewline()
			fmt.Fprint(stdout, sceneTree(g, detailed))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse nodes interactively")
	cmd.Flags().BoolVarP(&detailed, "detailed", "d", false, "show edge translations in the tree")

	return cmd
}

// browse runs the interactive node browser.
func (c *CLI) browse(g *scene.Graph) error {
	model, err := NewNodeListModel(g)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// sceneTree renders every tree of the forest, the base tree first. Nodes
// carrying geometry show it in brackets.
func sceneTree(g *scene.Graph, detailed bool) string {
	f := g.Forest()
	roots := f.Roots()
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i] == f.Base() && roots[j] != f.Base()
	})

	var b strings.Builder
	for _, root := range roots {
		tree := treeprint.NewWithRoot(root)
		addChildren(tree, f, root, detailed)
		b.WriteString(tree.String())
	}
	return b.String()
}

func addChildren(tree treeprint.Tree, f *forest.Forest, parent string, detailed bool) {
	for _, child := range f.Children(parent) {
		e, _ := f.Edge(parent, child)
		label := child
		if e.HasGeometry() {
			label += " [" + e.Payload.Geometry + "]"
		}
		if detailed && e.Matrix != transform.Identity() {
			label += " t=" + formatTranslation(e.Matrix)
		}

		if len(f.Children(child)) == 0 {
			tree.AddNode(label)
			continue
		}
		addChildren(tree.AddBranch(label), f, child, detailed)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
