package forest

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/sceneforest/pkg/transform"
)

func mustAdd(t *testing.T, f *Forest, parent, child string, m mgl64.Mat4) {
	t.Helper()
	if err := f.AddEdge(Edge{Parent: parent, Child: child, Matrix: m}); err != nil {
		t.Fatalf("AddEdge(%s, %s): %v", parent, child, err)
	}
}

func mustValid(t *testing.T, f *Forest) {
	t.Helper()
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestNew(t *testing.T) {
	f := New("world")
	if f.Base() != "world" {
		t.Errorf("Base() = %q, want world", f.Base())
	}
	if !f.Has("world") {
		t.Error("base frame should be registered as a node")
	}
	if f.NodeCount() != 1 || f.EdgeCount() != 0 {
		t.Errorf("counts = %d/%d, want 1/0", f.NodeCount(), f.EdgeCount())
	}

	empty := New("")
	if empty.NodeCount() != 0 {
		t.Errorf("empty forest has %d nodes", empty.NodeCount())
	}
}

func TestAddEdge(t *testing.T) {
	tests := []struct {
		name    string
		edge    Edge
		wantErr error
	}{
		{"Simple", Edge{Parent: "world", Child: "a"}, nil},
		{"NewParent", Edge{Parent: "x", Child: "y"}, nil},
		{"SelfLoop", Edge{Parent: "a", Child: "a"}, ErrInvalidEdge},
		{"EmptyParent", Edge{Child: "a"}, ErrInvalidNodeID},
		{"EmptyChild", Edge{Parent: "a"}, ErrInvalidNodeID},
		{"NotAffine", Edge{Parent: "world", Child: "a", Matrix: mgl64.Mat4{
			1, 0, 0, 1,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}}, ErrInvalidEdge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New("world")
			before := f.Version()
			err := f.AddEdge(tt.edge)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddEdge() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if f.Version() != before {
					t.Error("failed AddEdge must not bump the version")
				}
				if f.EdgeCount() != 0 {
					t.Error("failed AddEdge must not add edges")
				}
				return
			}
			if !f.Has(tt.edge.Parent) || !f.Has(tt.edge.Child) {
				t.Error("AddEdge should create both endpoints")
			}
			if p, _ := f.Parent(tt.edge.Child); p != tt.edge.Parent {
				t.Errorf("Parent(%s) = %q, want %q", tt.edge.Child, p, tt.edge.Parent)
			}
			e, _ := f.Edge(tt.edge.Parent, tt.edge.Child)
			if e.Matrix != mgl64.Ident4() {
				t.Errorf("zero matrix should be stored as identity, got %v", e.Matrix)
			}
			mustValid(t, f)
		})
	}
}

func TestAddEdgeCoerce(t *testing.T) {
	f := NewWithOptions("world", Options{CoerceAffine: true})
	m := transform.Translation(1, 2, 3)
	m.Set(3, 0, 5)
	mustAdd(t, f, "world", "a", m)

	e, _ := f.Edge("world", "a")
	if err := transform.Validate(e.Matrix); err != nil {
		t.Errorf("coerced matrix should be affine: %v", err)
	}
	if got := transform.TranslationOf(e.Matrix); got != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("translation = %v, want [1 2 3]", got)
	}
}

func TestAddEdgeCycle(t *testing.T) {
	f := New("a")
	mustAdd(t, f, "a", "b", mgl64.Mat4{})
	mustAdd(t, f, "b", "c", mgl64.Mat4{})
	before := f.Version()

	for _, e := range []Edge{{Parent: "c", Child: "a"}, {Parent: "c", Child: "b"}, {Parent: "b", Child: "a"}} {
		if err := f.AddEdge(e); !errors.Is(err, ErrCycleDetected) {
			t.Errorf("AddEdge(%s->%s) error = %v, want ErrCycleDetected", e.Parent, e.Child, err)
		}
	}
	if f.Version() != before {
		t.Error("rejected edges must not bump the version")
	}
	if f.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", f.EdgeCount())
	}
	mustValid(t, f)
}

func TestAddEdgeReparent(t *testing.T) {
	f := New("world")
	mustAdd(t, f, "world", "a", mgl64.Mat4{})
	mustAdd(t, f, "world", "b", mgl64.Mat4{})
	mustAdd(t, f, "a", "c", transform.Translation(0, 0, 1))
	mustAdd(t, f, "c", "d", mgl64.Mat4{})

	before := f.Version()
	mustAdd(t, f, "b", "c", transform.Translation(0, 0, 2))

	if f.Version() != before+1 {
		t.Errorf("reparent bumped version by %d, want 1", f.Version()-before)
	}
	if p, _ := f.Parent("c"); p != "b" {
		t.Errorf("Parent(c) = %q, want b", p)
	}
	if _, ok := f.Edge("a", "c"); ok {
		t.Error("old edge a->c should be gone")
	}
	if len(f.Children("a")) != 0 {
		t.Errorf("Children(a) = %v, want none", f.Children("a"))
	}
	if p, _ := f.Parent("d"); p != "c" {
		t.Error("subtree of a reparented node must move with it")
	}
	if f.EdgeCount() != 4 {
		t.Errorf("EdgeCount() = %d, want 4", f.EdgeCount())
	}
	mustValid(t, f)
}

func TestAddEdgeOverwriteKeepsOrder(t *testing.T) {
	f := New("world")
	mustAdd(t, f, "world", "a", mgl64.Mat4{})
	mustAdd(t, f, "world", "b", mgl64.Mat4{})
	mustAdd(t, f, "world", "a", transform.Translation(1, 0, 0))

	edges := f.Edges()
	if edges[0].Child != "a" || edges[1].Child != "b" {
		t.Errorf("edge order = %s,%s, want a,b", edges[0].Child, edges[1].Child)
	}
	if transform.TranslationOf(edges[0].Matrix) != (mgl64.Vec3{1, 0, 0}) {
		t.Error("overwrite should replace the matrix")
	}
}

func TestPayloadIsCopied(t *testing.T) {
	f := New("world")
	p := &Payload{Geometry: "box", Meta: Metadata{"color": "red"}}
	if err := f.AddEdge(Edge{Parent: "world", Child: "a", Payload: p}); err != nil {
		t.Fatal(err)
	}
	p.Meta["color"] = "blue"
	p.Geometry = "sphere"

	e, _ := f.Edge("world", "a")
	if e.Payload.Geometry != "box" || e.Payload.Meta["color"] != "red" {
		t.Errorf("stored payload changed with caller's copy: %+v", e.Payload)
	}

	e.Payload.Meta["color"] = "green"
	again, _ := f.Edge("world", "a")
	if again.Payload.Meta["color"] != "red" {
		t.Error("Edge() must return a copy of the payload")
	}
}

func TestPayloadNestedMetaIsCopied(t *testing.T) {
	f := New("world")
	nested := map[string]any{"k": "v"}
	tags := []string{"a", "b"}
	p := &Payload{Meta: Metadata{"n": nested, "tags": tags}}
	if err := f.AddEdge(Edge{Parent: "world", Child: "a", Payload: p}); err != nil {
		t.Fatal(err)
	}

	nested["k"] = "caller"
	tags[0] = "caller"
	stored := func(where string) {
		t.Helper()
		e, _ := f.Edge("world", "a")
		if got := e.Payload.Meta["n"].(map[string]any)["k"]; got != "v" {
			t.Errorf("%s: nested map value = %v, want v", where, got)
		}
		if got := e.Payload.Meta["tags"].([]string)[0]; got != "a" {
			t.Errorf("%s: nested slice value = %v, want a", where, got)
		}
	}
	stored("after changing the caller's maps")

	before := f.Version()
	e, _ := f.Edge("world", "a")
	e.Payload.Meta["n"].(map[string]any)["k"] = "edge"
	e.Payload.Meta["tags"].([]string)[0] = "edge"
	stored("after changing an Edge result")

	for _, got := range f.Edges() {
		got.Payload.Meta["n"].(map[string]any)["k"] = "edges"
	}
	stored("after changing an Edges result")

	_, path, err := f.Resolve("world", "a")
	if err != nil {
		t.Fatal(err)
	}
	path[0].Payload.Meta["n"].(map[string]any)["k"] = "path"
	stored("after changing a Resolve path")

	c := f.Clone()
	ce, _ := c.Edge("world", "a")
	ce.Payload.Meta["n"].(map[string]any)["k"] = "clone"
	if err := c.AddEdge(Edge{Parent: "world", Child: "a", Payload: ce.Payload}); err != nil {
		t.Fatal(err)
	}
	stored("after overwriting the edge in a clone")

	if f.Version() != before {
		t.Error("reads must not bump the version")
	}
}

func TestBaseStaysRoot(t *testing.T) {
	f := New("world")
	mustAdd(t, f, "world", "a", mgl64.Mat4{})
	before := f.Version()

	err := f.AddEdge(Edge{Parent: "x", Child: "world"})
	if !errors.Is(err, ErrInvalidEdge) || !errors.Is(err, ErrBaseHasParent) {
		t.Fatalf("AddEdge(x->world) error = %v, want ErrInvalidEdge and ErrBaseHasParent", err)
	}
	if f.Has("x") || f.Version() != before {
		t.Error("rejected edge must leave the forest untouched")
	}
	if _, ok := f.Parent("world"); ok {
		t.Error("base must stay a root")
	}

	if err := f.SetBase("a"); !errors.Is(err, ErrBaseHasParent) {
		t.Errorf("SetBase(a) error = %v, want ErrBaseHasParent", err)
	}
	if f.Base() != "world" {
		t.Errorf("Base() = %q after rejected SetBase, want world", f.Base())
	}

	if _, err := f.RemoveEdge("world", "a"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetBase("a"); err != nil {
		t.Fatalf("SetBase(a) after detaching: %v", err)
	}
	mustAdd(t, f, "a", "world", mgl64.Mat4{})
	if succ, _ := f.Successors(f.Base()); !slices.Equal(succ, f.Nodes()) {
		t.Errorf("Successors(base) = %v, want every node %v", succ, f.Nodes())
	}
	mustValid(t, f)

	f.parents["a"] = "world"
	if err := f.Validate(); !errors.Is(err, ErrInconsistent) {
		t.Errorf("Validate() with a parented base = %v, want ErrInconsistent", err)
	}
}

func TestRemoveEdge(t *testing.T) {
	f := New("world")
	mustAdd(t, f, "world", "a", mgl64.Mat4{})
	mustAdd(t, f, "a", "b", mgl64.Mat4{})

	removed, err := f.RemoveEdge("world", "a")
	if err != nil || !removed {
		t.Fatalf("RemoveEdge() = %v, %v; want true, nil", removed, err)
	}
	if !slices.Contains(f.Roots(), "a") {
		t.Errorf("Roots() = %v, want a to be a root", f.Roots())
	}
	if p, _ := f.Parent("b"); p != "a" {
		t.Error("subtree below a should survive")
	}

	before := f.Version()
	removed, err = f.RemoveEdge("world", "a")
	if err != nil || removed {
		t.Errorf("RemoveEdge(missing) = %v, %v; want false, nil", removed, err)
	}
	if f.Version() != before {
		t.Error("no-op RemoveEdge must not bump the version")
	}

	strict := NewWithOptions("world", Options{StrictRemove: true})
	if _, err := strict.RemoveEdge("world", "nope"); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("strict RemoveEdge error = %v, want ErrEdgeNotFound", err)
	}
	mustValid(t, f)
}

func TestRemoveNode(t *testing.T) {
	build := func() *Forest {
		f := New("world")
		mustAdd(t, f, "world", "a", mgl64.Mat4{})
		mustAdd(t, f, "a", "b", transform.Translation(1, 0, 0))
		mustAdd(t, f, "a", "c", mgl64.Mat4{})
		mustAdd(t, f, "c", "d", mgl64.Mat4{})
		return f
	}

	t.Run("DetachesChildren", func(t *testing.T) {
		f := build()
		nodes, edges := f.NodeCount(), f.EdgeCount()

		removed, err := f.RemoveNode("a")
		if err != nil || !removed {
			t.Fatalf("RemoveNode() = %v, %v", removed, err)
		}
		if f.NodeCount() != nodes-1 {
			t.Errorf("NodeCount() = %d, want %d", f.NodeCount(), nodes-1)
		}
		// incoming edge plus one edge per child
		if f.EdgeCount() != edges-3 {
			t.Errorf("EdgeCount() = %d, want %d", f.EdgeCount(), edges-3)
		}
		if f.Has("a") {
			t.Error("a should be gone")
		}
		roots := f.Roots()
		for _, n := range []string{"world", "b", "c"} {
			if !slices.Contains(roots, n) {
				t.Errorf("Roots() = %v, missing %s", roots, n)
			}
		}
		if p, _ := f.Parent("d"); p != "c" {
			t.Error("detached subtree should keep its edges")
		}
		mustValid(t, f)
	})

	t.Run("Leaf", func(t *testing.T) {
		f := build()
		edges := f.EdgeCount()
		if _, err := f.RemoveNode("d"); err != nil {
			t.Fatal(err)
		}
		if f.EdgeCount() != edges-1 {
			t.Errorf("EdgeCount() = %d, want %d", f.EdgeCount(), edges-1)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		f := build()
		if _, err := f.RemoveNode("zzz"); !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("error = %v, want ErrNodeNotFound", err)
		}
	})

	t.Run("Base", func(t *testing.T) {
		f := build()
		if _, err := f.RemoveNode("world"); !errors.Is(err, ErrCannotRemoveRoot) {
			t.Errorf("error = %v, want ErrCannotRemoveRoot", err)
		}
		if _, err := f.RemoveEdge("world", "a"); err != nil {
			t.Fatal(err)
		}
		if err := f.SetBase("a"); err != nil {
			t.Fatal(err)
		}
		if _, err := f.RemoveNode("world"); err != nil {
			t.Errorf("removing the old base after reassignment: %v", err)
		}
	})
}

func TestSuccessors(t *testing.T) {
	f := New("world")
	mustAdd(t, f, "world", "a", mgl64.Mat4{})
	mustAdd(t, f, "a", "b", mgl64.Mat4{})
	mustAdd(t, f, "a", "c", mgl64.Mat4{})
	mustAdd(t, f, "x", "y", mgl64.Mat4{})

	tests := []struct {
		node string
		want []string
	}{
		{"world", []string{"world", "a", "b", "c"}},
		{"a", []string{"a", "b", "c"}},
		{"b", []string{"b"}},
		{"x", []string{"x", "y"}},
	}
	for _, tt := range tests {
		got, err := f.Successors(tt.node)
		if err != nil {
			t.Fatalf("Successors(%s): %v", tt.node, err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("Successors(%s) = %v, want %v", tt.node, got, tt.want)
		}
	}

	if _, err := f.Successors("nope"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Successors(unknown) error = %v", err)
	}

	if !f.IsAncestor("world", "c") || !f.IsAncestor("c", "c") {
		t.Error("IsAncestor should hold along the chain and reflexively")
	}
	if f.IsAncestor("c", "world") || f.IsAncestor("x", "a") {
		t.Error("IsAncestor should not hold upward or across trees")
	}
}

func TestSuccessorsDetectsCorruption(t *testing.T) {
	f := New("a")
	mustAdd(t, f, "a", "b", mgl64.Mat4{})
	mustAdd(t, f, "a", "c", mgl64.Mat4{})
	// Corrupt the child index so b is reachable twice.
	f.children["c"] = map[string]struct{}{"b": {}}

	if _, err := f.Successors("a"); !errors.Is(err, ErrInconsistent) {
		t.Errorf("Successors() error = %v, want ErrInconsistent", err)
	}
	if err := f.Validate(); !errors.Is(err, ErrInconsistent) {
		t.Errorf("Validate() error = %v, want ErrInconsistent", err)
	}
}

func TestVersion(t *testing.T) {
	f := New("world")
	steps := []struct {
		name string
		fn   func() error
	}{
		{"AddEdge", func() error { return f.AddEdge(Edge{Parent: "world", Child: "a"}) }},
		{"Overwrite", func() error { return f.AddEdge(Edge{Parent: "world", Child: "a"}) }},
		{"AddNode", func() error { return f.AddNode("lonely") }},
		{"SetBase", func() error { return f.SetBase("lonely") }},
		{"RemoveEdge", func() error { _, err := f.RemoveEdge("world", "a"); return err }},
		{"RemoveNode", func() error { _, err := f.RemoveNode("a"); return err }},
	}
	for _, s := range steps {
		before := f.Version()
		if err := s.fn(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if f.Version() <= before {
			t.Errorf("%s did not bump the version", s.name)
		}
	}

	before := f.Version()
	_ = f.Nodes()
	_ = f.Edges()
	_, _ = f.Successors("world")
	if f.Version() != before {
		t.Error("queries must not bump the version")
	}
}

func TestClone(t *testing.T) {
	f := New("world")
	mustAdd(t, f, "world", "a", mgl64.Mat4{})
	mustAdd(t, f, "a", "b", mgl64.Mat4{})

	c := f.Clone()
	mustAdd(t, c, "world", "z", mgl64.Mat4{})
	if _, err := c.RemoveNode("a"); err != nil {
		t.Fatal(err)
	}

	if f.NodeCount() != 3 || f.EdgeCount() != 2 {
		t.Errorf("original changed: %d nodes, %d edges", f.NodeCount(), f.EdgeCount())
	}
	mustValid(t, f)
	mustValid(t, c)
}

// TestRandomChurn drives thousands of random mutations over a small alphabet
// so that cycles, reparents and removals all happen often.
func TestRandomChurn(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	letter := func() string { return string(rune('a' + rng.Intn(26))) }

	f := New("a")
	for i := 0; i < 5000; i++ {
		p, c := letter(), letter()
		switch op := rng.Intn(10); {
		case op < 7:
			err := f.AddEdge(Edge{Parent: p, Child: c, Matrix: transform.Translation(float64(i), 0, 0)})
			if err != nil && !errors.Is(err, ErrCycleDetected) && !errors.Is(err, ErrInvalidEdge) {
				t.Fatalf("step %d: unexpected AddEdge error: %v", i, err)
			}
		case op < 9:
			if _, err := f.RemoveEdge(p, c); err != nil {
				t.Fatalf("step %d: RemoveEdge: %v", i, err)
			}
		default:
			_, err := f.RemoveNode(c)
			if err != nil && !errors.Is(err, ErrNodeNotFound) && !errors.Is(err, ErrCannotRemoveRoot) {
				t.Fatalf("step %d: unexpected RemoveNode error: %v", i, err)
			}
		}

		if err := f.Validate(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	all := f.Nodes()
	seen := 0
	for _, r := range f.Roots() {
		succ, err := f.Successors(r)
		if err != nil {
			t.Fatal(err)
		}
		seen += len(succ)
	}
	if seen != len(all) {
		t.Errorf("trees cover %d nodes, want %d", seen, len(all))
	}
}

func TestChainScenario(t *testing.T) {
	f := New("A")
	mustAdd(t, f, "A", "B", mgl64.Mat4{})
	mustAdd(t, f, "B", "C", transform.Translation(0, 0, 1))

	m, _, err := f.Resolve("A", "C")
	if err != nil {
		t.Fatal(err)
	}
	if !transform.Equal(m, transform.Translation(0, 0, 1), 1e-12) {
		t.Errorf("Resolve(A, C) = %v, want translation (0,0,1)", m)
	}
	if succ, _ := f.Successors("A"); !slices.Equal(succ, []string{"A", "B", "C"}) {
		t.Errorf("Successors(A) = %v", succ)
	}

	if _, err := f.RemoveNode("B"); err != nil {
		t.Fatal(err)
	}
	if succ, _ := f.Successors("A"); !slices.Equal(succ, []string{"A"}) {
		t.Errorf("Successors(A) after removal = %v, want [A]", succ)
	}
	if _, ok := f.Parent("C"); ok {
		t.Error("C should be a root after removing B")
	}
	if !f.Has("C") {
		t.Error("C should survive removal of B")
	}
}
