package scene

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/sceneforest/pkg/forest"
)

// Hash returns a structural fingerprint of the scene as 16 hex characters.
//
// The digest covers the base frame, the sorted node set, every edge in
// (parent, child) order with its matrix and geometry, and the forest
// version, so it differs after any mutation and stays stable across reads.
// It is only recomputed when the version changes.
func (g *Graph) Hash() string {
	g.sync()
	if g.cache.hash == "" {
		start := time.Now()
		g.cache.hash = fmt.Sprintf("%016x", digest(g.forest))
		g.rebuilt("hash", start)
	}
	return g.cache.hash
}

func digest(f *forest.Forest) uint64 {
	h := xxhash.New()
	var buf [8]byte

	writeString := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}
	writeUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}

	writeString(f.Base())
	for _, n := range f.Nodes() {
		writeString(n)
	}

	edges := f.Edges()
	slices.SortFunc(edges, func(a, b forest.Edge) int {
		return cmp.Or(cmp.Compare(a.Parent, b.Parent), cmp.Compare(a.Child, b.Child))
	})
	for _, e := range edges {
		writeString(e.Parent)
		writeString(e.Child)
		for _, v := range e.Matrix {
			writeUint(math.Float64bits(v))
		}
		if e.Payload != nil {
			writeString(e.Payload.Geometry)
		} else {
			writeString("")
		}
	}
	writeUint(f.Version())
	return h.Sum64()
}
