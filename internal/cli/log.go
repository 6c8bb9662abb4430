// Package cli implements the sceneforest command-line interface.
//
// This package provides commands for inspecting scene files, resolving
// transforms between frames, extracting subscenes, scripted editing and
// rendering the frame structure through Graphviz. The CLI is built using
// cobra and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - inspect: Print statistics and the frame tree, or browse nodes interactively
//   - resolve: Print the transform between two frames and the edge path
//   - subscene: Extract a node and its descendants into a new scene file
//   - export: Convert between JSON and YAML, or render DOT, SVG, PDF and PNG
//   - edit: Apply attach, detach and node removal to a scene file
//   - stress: Run random mutations against a forest and check its invariants
//   - cache: Manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Scene,
// cache and render events from the library packages reach the logger
// through observability hooks.
//
// # Configuration
//
// Defaults come from $XDG_CONFIG_HOME/sceneforest/config.toml, or the file
// named by --config. See [Config].
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a charm logger writing to w with centisecond
// timestamps such as "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long a step took, e.g. "Imported scene.json (12ms)".
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time.
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, p.elapsed())
}

// debug logs msg at debug level with the elapsed time.
func (p *progress) debug(msg string) {
	p.logger.Debugf("%s (%s)", msg, p.elapsed())
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() outside of a command run.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
