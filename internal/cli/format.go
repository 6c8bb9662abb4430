package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/sceneforest/pkg/forest"
	"github.com/matzehuels/sceneforest/pkg/transform"
)

// formatMatrix renders m row by row with aligned columns.
func formatMatrix(m mgl64.Mat4) string {
	rows := transform.Rows(m)
	cells := [4][4]string{}
	width := 0
	for i, row := range rows {
		for j, v := range row {
			cells[i][j] = formatFloat(v)
			width = max(width, len(cells[i][j]))
		}
	}

	var b strings.Builder
	for i, row := range cells {
		b.WriteString("[")
		for j, c := range row {
			if j > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%*s", width, c)
		}
		b.WriteString("]")
		if i < 3 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// formatFloat prints v rounded to nine decimals, with -0 shown as 0.
func formatFloat(v float64) string {
	v = math.Round(v*1e9) / 1e9
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatTranslation renders the translation column of m as (x, y, z).
func formatTranslation(m mgl64.Mat4) string {
	t := transform.TranslationOf(m)
	return fmt.Sprintf("(%s, %s, %s)", formatFloat(t[0]), formatFloat(t[1]), formatFloat(t[2]))
}

// formatPath renders the edges traversed by a resolve as "a→b, b→c".
func formatPath(path []forest.Edge) string {
	if len(path) == 0 {
		return "(same frame)"
	}
	parts := make([]string, len(path))
	for i, e := range path {
		parts[i] = e.Parent + iconArrow + e.Child
	}
	return strings.Join(parts, ", ")
}

// edgeIDs formats edges as "parent->child" for cache keys.
func edgeIDs(edges []forest.Edge) []string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.Parent + "->" + e.Child
	}
	return ids
}
