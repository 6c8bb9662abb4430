package cli

import (
	"context"
	"errors"
	"strings"

	apperr "github.com/matzehuels/sceneforest/pkg/errors"
)

// Exit statuses returned by ExitCode.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitBadInput    = 2
	ExitInterrupted = 130
)

// ExitCode maps a command error to a process exit status. Problems with
// the user's input or scene (bad names, missing nodes, cycles) give
// ExitBadInput so scripts can tell them apart from tool failures.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	switch code := apperr.Classify(err); {
	case strings.HasPrefix(string(code), "INVALID_"),
		strings.HasSuffix(string(code), "NOT_FOUND"),
		code == apperr.ErrCodeCycle,
		code == apperr.ErrCodeDisconnected,
		code == apperr.ErrCodeRootRemoval:
		return ExitBadInput
	}
	return ExitFailure
}
