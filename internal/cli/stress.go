package cli

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/sceneforest/pkg/errors"
	"github.com/matzehuels/sceneforest/pkg/forest"
	"github.com/matzehuels/sceneforest/pkg/transform"
)

const (
	defaultStressSteps = 5000
	defaultStressNodes = 26
	defaultStressSeed  = 42

	stressCheckEvery = 256
)

// stressOpts holds the flags for the stress command.
type stressOpts struct {
	steps    int
	nodes    int
	seed     uint64
	progress func(step int) // called every stressCheckEvery steps; may be nil
}

// stressResult counts what a stress run did.
type stressResult struct {
	Steps        int
	Added        int
	Rejected     int // cycles and self-loops refused by AddEdge
	RemovedEdges int
	RemovedNodes int
	Resolved     int
	Nodes        int
	Edges        int
	Roots        int
}

// stressCommand creates the stress command.
func (c *CLI) stressCommand() *cobra.Command {
	opts := stressOpts{steps: defaultStressSteps, nodes: defaultStressNodes, seed: defaultStressSeed}

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Check forest invariants under random mutations",
		Long: `Apply random edge insertions, reparents, edge and node removals to a
forest over a small set of node names, so that cycles and reparenting
happen often. After every step the forest is validated (single parent per
node, no cycles, consistent indexes), and sampled resolves are checked to
invert each other.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.steps <= 0 || opts.nodes < 2 {
				return apperr.New(apperr.ErrCodeInvalidInput, "need --n > 0 and --nodes >= 2")
			}
			ctx := cmd.Context()
			prog := newProgress(c.Logger)
			spin := newSpinner(ctx, fmt.Sprintf("Running %d mutations...", opts.steps))
			spin.Start()
			opts.progress = func(step int) {
				spin.Update(fmt.Sprintf("Running mutations... %d/%d", step, opts.steps))
			}
			res, err := runStress(ctx, opts, c.forestOptions())
			if err != nil {
				spin.StopWithError("Invariant check failed")
				return err
			}
			spin.Stop()
			prog.done(fmt.Sprintf("Applied %d mutations", res.Steps))

			printSuccess("Forest stayed valid")
			printKeyValue("Added", fmt.Sprint(res.Added))
			printKeyValue("Rejected", fmt.Sprint(res.Rejected))
			printKeyValue("Edges cut", fmt.Sprint(res.RemovedEdges))
			printKeyValue("Nodes cut", fmt.Sprint(res.RemovedNodes))
			printKeyValue("Resolved", fmt.Sprint(res.Resolved))
			printDetail("final: %d nodes, %d edges, %d roots", res.Nodes, res.Edges, res.Roots)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.steps, "n", "n", defaultStressSteps, "number of mutations")
	cmd.Flags().IntVar(&opts.nodes, "nodes", defaultStressNodes, "size of the node name pool")
	cmd.Flags().Uint64Var(&opts.seed, "seed", defaultStressSeed, "random seed")

	return cmd
}

// runStress drives opts.steps random mutations and validates the forest
// after each one. Expected rejections (cycles, self-loops, unknown nodes,
// removing the base) are counted; anything else is an error.
func runStress(ctx context.Context, opts stressOpts, fopts forest.Options) (stressResult, error) {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0xdeadbeef))
	name := func() string { return fmt.Sprintf("n%d", rng.IntN(opts.nodes)) }

	f := forest.NewWithOptions("n0", fopts)
	var res stressResult

	for i := 0; i < opts.steps; i++ {
		if i%stressCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if opts.progress != nil && i > 0 {
				opts.progress(i)
			}
		}

		switch op := rng.IntN(20); {
		case op < 12:
			m := randomRigid(rng)
			err := f.AddEdge(forest.Edge{Parent: name(), Child: name(), Matrix: m})
			switch {
			case err == nil:
				res.Added++
			case errors.Is(err, forest.ErrCycleDetected), errors.Is(err, forest.ErrInvalidEdge):
				res.Rejected++
			default:
				return res, fmt.Errorf("step %d: add edge: %w", i, err)
			}
		case op < 16:
			edges := f.Edges()
			if len(edges) == 0 {
				break
			}
			e := edges[rng.IntN(len(edges))]
			if _, err := f.RemoveEdge(e.Parent, e.Child); err != nil {
				return res, fmt.Errorf("step %d: remove edge: %w", i, err)
			}
			res.RemovedEdges++
		case op < 18:
			_, err := f.RemoveNode(name())
			switch {
			case err == nil:
				res.RemovedNodes++
			case errors.Is(err, forest.ErrNodeNotFound), errors.Is(err, forest.ErrCannotRemoveRoot):
			default:
				return res, fmt.Errorf("step %d: remove node: %w", i, err)
			}
		default:
			ok, err := checkRoundTrip(f, name(), name())
			if err != nil {
				return res, fmt.Errorf("step %d: %w", i, err)
			}
			if ok {
				res.Resolved++
			}
		}

		if err := f.Validate(); err != nil {
			return res, apperr.Wrap(apperr.ErrCodeInternal, err, "step %d", i)
		}
		res.Steps++
	}

	res.Nodes, res.Edges, res.Roots = f.NodeCount(), f.EdgeCount(), len(f.Roots())
	return res, nil
}

// checkRoundTrip verifies that resolving a→b then b→a gives identity. It
// reports false when the pair is not connected.
func checkRoundTrip(f *forest.Forest, a, b string) (bool, error) {
	ab, _, err := f.Resolve(a, b)
	if errors.Is(err, forest.ErrNodeNotFound) || errors.Is(err, forest.ErrDisconnected) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	ba, _, err := f.Resolve(b, a)
	if err != nil {
		return false, err
	}
	if !transform.Equal(ab.Mul4(ba), transform.Identity(), 1e-6) {
		return false, fmt.Errorf("resolve %s<->%s does not invert", a, b)
	}
	return true, nil
}

func randomRigid(rng *rand.Rand) mgl64.Mat4 {
	q := mgl64.Quat{W: rng.Float64()*2 - 1, V: mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}}
	if q.Len() < 1e-3 {
		q = mgl64.QuatIdent()
	}
	t := mgl64.Vec3{rng.Float64() * 10, rng.Float64() * 10, rng.Float64() * 10}
	return transform.FromOptions(transform.Options{Quaternion: &q, Translation: &t})
}
