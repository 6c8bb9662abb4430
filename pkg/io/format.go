package io

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/sceneforest/pkg/errors"
	"github.com/matzehuels/sceneforest/pkg/forest"
	"github.com/matzehuels/sceneforest/pkg/transform"
)

// Format identifies an interchange encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension: .json, .yaml or .yml.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer format of %q (want .json, .yaml or .yml)", path)
}

type document struct {
	Base  string   `json:"base" yaml:"base"`
	Nodes []string `json:"nodes" yaml:"nodes"`
	Edges []edge   `json:"edges" yaml:"edges"`
}

type edge struct {
	Parent   string          `json:"parent" yaml:"parent"`
	Child    string          `json:"child" yaml:"child"`
	Matrix   []row           `json:"matrix,omitempty" yaml:"matrix,omitempty"`
	Geometry string          `json:"geometry,omitempty" yaml:"geometry,omitempty"`
	Meta     forest.Metadata `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// row is one matrix row. YAML writes it inline so a matrix reads as a grid.
type row []float64

func (r row) MarshalYAML() (any, error) {
	var n yaml.Node
	if err := n.Encode([]float64(r)); err != nil {
		return nil, err
	}
	n.Style = yaml.FlowStyle
	return &n, nil
}

func toDocument(f *forest.Forest) document {
	doc := document{
		Base:  f.Base(),
		Nodes: append([]string{}, f.Nodes()...),
		Edges: make([]edge, 0, f.EdgeCount()),
	}
	for _, e := range f.Edges() {
		rows := transform.Rows(e.Matrix)
		out := edge{Parent: e.Parent, Child: e.Child, Matrix: make([]row, 4)}
		for i := range rows {
			out.Matrix[i] = rows[i][:]
		}
		if e.Payload != nil {
			out.Geometry = e.Payload.Geometry
			out.Meta = e.Payload.Meta
		}
		doc.Edges = append(doc.Edges, out)
	}
	return doc
}

func (e edge) matrix() ([4][4]float64, error) {
	var rows [4][4]float64
	if len(e.Matrix) == 0 {
		return rows, nil
	}
	if len(e.Matrix) != 4 {
		return rows, fmt.Errorf("matrix has %d rows, want 4", len(e.Matrix))
	}
	for i, r := range e.Matrix {
		if len(r) != 4 {
			return rows, fmt.Errorf("matrix row %d has %d columns, want 4", i, len(r))
		}
		copy(rows[i][:], r)
	}
	return rows, nil
}
