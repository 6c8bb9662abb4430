package errors

import (
	"context"
	"errors"
	"io/fs"

	"github.com/matzehuels/sceneforest/pkg/forest"
	"github.com/matzehuels/sceneforest/pkg/scene"
	"github.com/matzehuels/sceneforest/pkg/transform"
)

// sentinelCodes maps library sentinels to codes. Order matters: the first
// match wins, so more specific sentinels come first.
var sentinelCodes = []struct {
	err  error
	code Code
}{
	{scene.ErrUnknownNode, ErrCodeNodeNotFound},
	{forest.ErrNodeNotFound, ErrCodeNodeNotFound},
	{forest.ErrEdgeNotFound, ErrCodeNotFound},
	{forest.ErrInvalidNodeID, ErrCodeInvalidNode},
	{forest.ErrInvalidEdge, ErrCodeInvalidEdge},
	{forest.ErrBaseHasParent, ErrCodeInvalidEdge},
	{transform.ErrNotAffine, ErrCodeInvalidEdge},
	{transform.ErrNotFinite, ErrCodeInvalidEdge},
	{forest.ErrCycleDetected, ErrCodeCycle},
	{forest.ErrDisconnected, ErrCodeDisconnected},
	{forest.ErrCannotRemoveRoot, ErrCodeRootRemoval},
	{forest.ErrNoBase, ErrCodeInvalidInput},
	{scene.ErrNoGeometry, ErrCodeInvalidInput},
	{forest.ErrInconsistent, ErrCodeInternal},
	{fs.ErrNotExist, ErrCodeFileNotFound},
	{context.DeadlineExceeded, ErrCodeTimeout},
}

// Classify returns the code for err. Coded errors keep their code; known
// sentinels from the forest and scene packages are mapped; anything else is
// ErrCodeInternal. A nil error has no code.
func Classify(err error) Code {
	if err == nil {
		return ""
	}
	if c := GetCode(err); c != "" {
		return c
	}
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return ErrCodeInternal
}

// Coded wraps err with its [Classify] code unless it already carries one.
func Coded(err error, format string, args ...any) error {
	if err == nil || GetCode(err) != "" {
		return err
	}
	return Wrap(Classify(err), err, format, args...)
}
