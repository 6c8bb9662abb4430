package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/sceneforest/pkg/errors"
	"github.com/matzehuels/sceneforest/pkg/forest"
	"github.com/matzehuels/sceneforest/pkg/transform"
)

// ReadJSON decodes a JSON scene from r into a forest.
//
// The input must be an object with "base", "nodes" and "edges":
//
//	{
//	  "base": "world",
//	  "nodes": ["world", "car", "wheel"],
//	  "edges": [
//	    {"parent": "world", "child": "car"},
//	    {"parent": "car", "child": "wheel", "geometry": "tire",
//	     "matrix": [[1,0,0,1],[0,1,0,0],[0,0,1,0],[0,0,0,1]]}
//	  ]
//	}
//
// See [Read] for how the forest is rebuilt and how errors are reported.
// ReadJSON does not close r.
func ReadJSON(r io.Reader, opts forest.Options) (*forest.Forest, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
	}
	return build(doc, opts)
}

// ReadYAML is [ReadJSON] for YAML input.
func ReadYAML(r io.Reader, opts forest.Options) (*forest.Forest, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
	}
	return build(doc, opts)
}

// Read decodes a scene in the given format.
//
// The forest is rebuilt through [forest.Forest.AddNode] and
// [forest.Forest.AddEdge], so every invariant is enforced on the way in.
// Decoding stops at the first syntax error, but structural problems (bad
// node names, malformed matrices, cycles, unknown base) are collected and
// returned together as an INVALID_INPUT error. errors.Is still matches the
// forest sentinels of each collected problem.
func Read(r io.Reader, format Format, opts forest.Options) (*forest.Forest, error) {
	if format == FormatYAML {
		return ReadYAML(r, opts)
	}
	return ReadJSON(r, opts)
}

func build(doc document, opts forest.Options) (*forest.Forest, error) {
	var merr *multierror.Error
	f := forest.NewWithOptions("", opts)

	for _, n := range doc.Nodes {
		if err := errors.ValidateNodeName(n); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("node %q: %w", n, err))
			continue
		}
		if err := f.AddNode(n); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("node %q: %w", n, err))
		}
	}

	for i, e := range doc.Edges {
		rows, err := e.matrix()
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("edge %d (%s->%s): %w: %v", i, e.Parent, e.Child, forest.ErrInvalidEdge, err))
			continue
		}
		m := transform.FromRows(rows)
		var payload *forest.Payload
		if e.Geometry != "" || e.Meta != nil {
			payload = &forest.Payload{Geometry: e.Geometry, Meta: e.Meta}
		}
		if err := f.AddEdge(forest.Edge{Parent: e.Parent, Child: e.Child, Matrix: m, Payload: payload}); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("edge %d (%s->%s): %w", i, e.Parent, e.Child, err))
		}
	}

	if doc.Base != "" {
		if err := f.AddNode(doc.Base); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("base: %w", err))
		} else if err := f.SetBase(doc.Base); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("base: %w", err))
		}
	}

	if err := merr.ErrorOrNil(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%d invalid entries", len(merr.Errors))
	}
	return f, nil
}

// Import reads a scene file, choosing the format from the extension.
func Import(path string, opts forest.Options) (*forest.Forest, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	in, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()
	return Read(in, format, opts)
}
