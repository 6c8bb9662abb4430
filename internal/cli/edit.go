package cli

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/sceneforest/pkg/errors"
	"github.com/matzehuels/sceneforest/pkg/forest"
	"github.com/matzehuels/sceneforest/pkg/scene"
	"github.com/matzehuels/sceneforest/pkg/transform"
)

// editCommand creates the edit command with subcommands.
func (c *CLI) editCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Modify a scene file",
		Long: `Apply a single mutation to a scene file. The result is written back to the
input file unless --output names another one.

A failed mutation leaves the file untouched.`,
	}

	cmd.AddCommand(c.editAddCommand())
	cmd.AddCommand(c.editSetCommand())
	cmd.AddCommand(c.editGeometryCommand())
	cmd.AddCommand(c.editRemoveCommand())
	cmd.AddCommand(c.editRemoveNodeCommand())

	return cmd
}

// transformFlags collects a local transform from the command line.
type transformFlags struct {
	translate []float64 // x,y,z
	quat      []float64 // w,x,y,z
}

func (t *transformFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64SliceVarP(&t.translate, "translate", "t", nil, "translation x,y,z")
	cmd.Flags().Float64SliceVarP(&t.quat, "quat", "q", nil, "rotation quaternion w,x,y,z")
}

// matrix composes the flags into a transform; no flags means identity.
func (t *transformFlags) matrix() (mgl64.Mat4, error) {
	var opts transform.Options
	if len(t.translate) > 0 {
		if len(t.translate) != 3 {
			return mgl64.Mat4{}, apperr.New(apperr.ErrCodeInvalidInput, "--translate needs 3 values, got %d", len(t.translate))
		}
		v := mgl64.Vec3{t.translate[0], t.translate[1], t.translate[2]}
		opts.Translation = &v
	}
	if len(t.quat) > 0 {
		if len(t.quat) != 4 {
			return mgl64.Mat4{}, apperr.New(apperr.ErrCodeInvalidInput, "--quat needs 4 values, got %d", len(t.quat))
		}
		q := mgl64.Quat{W: t.quat[0], V: mgl64.Vec3{t.quat[1], t.quat[2], t.quat[3]}}
		if q.Len() == 0 {
			return mgl64.Mat4{}, apperr.New(apperr.ErrCodeInvalidInput, "--quat must not be zero")
		}
		opts.Quaternion = &q
	}
	return transform.FromOptions(opts), nil
}

func metadata(kv map[string]string) forest.Metadata {
	if len(kv) == 0 {
		return nil
	}
	meta := make(forest.Metadata, len(kv))
	for k, v := range kv {
		meta[k] = v
	}
	return meta
}

// mutate loads a scene, applies fn and saves the result.
func (c *CLI) mutate(input, output string, fn func(g *scene.Graph) error) (*scene.Graph, error) {
	g, err := c.loadScene(input)
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		return nil, apperr.Coded(err, "edit %s", input)
	}
	if output == "" {
		output = input
	}
	if err := c.saveScene(g, output); err != nil {
		return nil, err
	}
	return g, nil
}

func (c *CLI) editAddCommand() *cobra.Command {
	var (
		output   string
		geometry string
		meta     map[string]string
		tf       transformFlags
	)

	cmd := &cobra.Command{
		Use:   "add <scene> <parent> <child>",
		Short: "Add or replace the edge parent→child",
		Long: `Connect child below parent with the given local transform. A child that
already hangs elsewhere is moved; an edge that would close a cycle is
rejected.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, child := args[1], args[2]
			for _, n := range []string{parent, child} {
				if err := apperr.ValidateNodeName(n); err != nil {
					return err
				}
			}
			m, err := tf.matrix()
			if err != nil {
				return err
			}
			var payload *forest.Payload
			if geometry != "" || len(meta) > 0 {
				payload = &forest.Payload{Geometry: geometry, Meta: metadata(meta)}
			}

			g, err := c.mutate(args[0], output, func(g *scene.Graph) error {
				return g.Attach(parent, child, m, payload)
			})
			if err != nil {
				return err
			}
			printSuccess("Attached %s %s %s", parent, iconArrow, StyleHighlight.Render(child))
			printStats(g.Stats())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().StringVarP(&geometry, "geometry", "g", "", "geometry carried by the edge")
	cmd.Flags().StringToStringVar(&meta, "meta", nil, "edge metadata key=value pairs")
	tf.register(cmd)

	return cmd
}

func (c *CLI) editSetCommand() *cobra.Command {
	var (
		output string
		tf     transformFlags
	)

	cmd := &cobra.Command{
		Use:   "set <scene> <node>",
		Short: "Replace the local transform of a node",
		Long: `Set the transform of node relative to its current parent, keeping the
parent and any geometry. A root node is attached below the base frame.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			node := args[1]
			if err := apperr.ValidateNodeName(node); err != nil {
				return err
			}
			m, err := tf.matrix()
			if err != nil {
				return err
			}
			if _, err := c.mutate(args[0], output, func(g *scene.Graph) error {
				return g.Set(node, m)
			}); err != nil {
				return err
			}
			printSuccess("Moved %s to %s", StyleHighlight.Render(node), formatTranslation(m))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	tf.register(cmd)

	return cmd
}

func (c *CLI) editGeometryCommand() *cobra.Command {
	var (
		output string
		spec   scene.GeometrySpec
		meta   map[string]string
		tf     transformFlags
	)

	cmd := &cobra.Command{
		Use:   "add-geometry <scene> <geometry>",
		Short: "Place geometry in the scene",
		Long: `Place a geometry instance below --parent (the base frame by default). The
node name is generated from the geometry name unless --node is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec.Geometry = args[1]
			m, err := tf.matrix()
			if err != nil {
				return err
			}
			spec.Matrix = m
			spec.Meta = metadata(meta)

			var node string
			if _, err := c.mutate(args[0], output, func(g *scene.Graph) error {
				var err error
				node, err = g.AddGeometry(spec)
				return err
			}); err != nil {
				return err
			}
			printSuccess("Placed %s as %s", spec.Geometry, StyleHighlight.Render(node))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().StringVar(&spec.Node, "node", "", "node name (default: generated)")
	cmd.Flags().StringVar(&spec.Parent, "parent", "", "parent frame (default: base)")
	cmd.Flags().StringToStringVar(&meta, "meta", nil, "edge metadata key=value pairs")
	tf.register(cmd)

	return cmd
}

func (c *CLI) editRemoveCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "remove <scene> <parent> <child>",
		Short: "Remove the edge parent→child",
		Long:  `Remove one edge. The child and its subtree become a separate tree.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, child := args[1], args[2]
			var removed bool
			if _, err := c.mutate(args[0], output, func(g *scene.Graph) error {
				var err error
				removed, err = g.RemoveEdge(parent, child)
				return err
			}); err != nil {
				return err
			}
			if !removed {
				printWarning("No edge %s %s %s", parent, iconArrow, child)
				return nil
			}
			printSuccess("Removed %s %s %s", parent, iconArrow, child)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")

	return cmd
}

func (c *CLI) editRemoveNodeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "rm-node <scene> <node>",
		Short: "Remove a node and its edges",
		Long: `Remove node together with its incoming and outgoing edges. Its children
become the roots of separate trees. The base frame cannot be removed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			node := args[1]
			g, err := c.mutate(args[0], output, func(g *scene.Graph) error {
				_, err := g.RemoveNode(node)
				return err
			})
			if err != nil {
				return err
			}
			printSuccess("Removed %s", StyleHighlight.Render(node))
			printStats(g.Stats())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")

	return cmd
}
