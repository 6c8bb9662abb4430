package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/sceneforest/pkg/forest"
)

// WriteJSON encodes a forest as indented JSON and writes it to w.
// Edges are written in insertion order with row-major matrices. The output
// can be re-imported with [ReadJSON].
func WriteJSON(f *forest.Forest, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toDocument(f)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes a forest as YAML and writes it to w. Matrix rows are
// written inline.
func WriteYAML(f *forest.Forest, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toDocument(f)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write encodes f in the given format.
func Write(f *forest.Forest, w io.Writer, format Format) error {
	if format == FormatYAML {
		return WriteYAML(f, w)
	}
	return WriteJSON(f, w)
}

// Export writes a forest to path, choosing the format from the extension.
func Export(f *forest.Forest, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, out, format); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
