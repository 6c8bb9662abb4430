package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/sceneforest/pkg/forest"
	"github.com/matzehuels/sceneforest/pkg/transform"
)

func sceneForest(t *testing.T) *forest.Forest {
	t.Helper()
	f := forest.New("world")
	edges := []forest.Edge{
		{Parent: "world", Child: "car", Matrix: transform.Translation(0, 0, 2)},
		{Parent: "car", Child: "wheel", Payload: &forest.Payload{Geometry: "tire", Meta: forest.Metadata{"side": "left"}}},
	}
	for _, e := range edges {
		if err := f.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.AddNode("island"); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestToDOT(t *testing.T) {
	f := sceneForest(t)

	tests := []struct {
		name    string
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name: "Plain",
			opts: Options{},
			want: []string{
				`digraph G {`,
				`"world" [label="world", peripheries=2];`,
				`"wheel" [label="wheel", fillcolor=lightblue];`,
				`"island" [label="island"];`,
				`"world" -> "car";`,
				`"car" -> "wheel" [style=dashed];`,
			},
			notWant: []string{"t=("},
		},
		{
			name: "Detailed",
			opts: Options{Detailed: true},
			want: []string{
				`"world" -> "car" [label="t=(0, 0, 2)"];`,
				`label="wheel\ngeometry: tire\nside: left"`,
			},
		},
		{
			name: "Highlight",
			opts: Options{Highlight: []forest.Edge{{Parent: "world", Child: "car"}}},
			want: []string{
				`"world" -> "car" [color=red, penwidth=3];`,
				`"car" -> "wheel" [style=dashed];`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(f, tt.opts)
			for _, s := range tt.want {
				if !strings.Contains(dot, s) {
					t.Errorf("ToDOT() missing %q\n%s", s, dot)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(dot, s) {
					t.Errorf("ToDOT() should not contain %q\n%s", s, dot)
				}
			}
		})
	}
}

func TestToDOTEdgeOrder(t *testing.T) {
	dot := ToDOT(sceneForest(t), Options{})
	first := strings.Index(dot, `"world" -> "car"`)
	second := strings.Index(dot, `"car" -> "wheel"`)
	if first < 0 || second < 0 || first > second {
		t.Errorf("edges should follow insertion order:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox() = %s, want %s", out, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("normalizeViewBox() should leave SVGs without viewBox alone")
	}
}
