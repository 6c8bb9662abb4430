package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sceneforest/pkg/observability"
)

// logHooks forwards library events to the CLI logger at debug level.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.SceneHooks  = (*logHooks)(nil)
	_ observability.CacheHooks  = (*logHooks)(nil)
	_ observability.RenderHooks = (*logHooks)(nil)
)

func (h *logHooks) OnRebuild(view string, version uint64, d time.Duration) {
	h.logger.Debug("rebuilt view", "view", view, "version", version, "took", d.Round(time.Microsecond))
}

func (h *logHooks) OnResolve(from, to string, cached bool, err error) {
	if err != nil {
		h.logger.Debug("resolve failed", "from", from, "to", to, "err", err)
		return
	}
	h.logger.Debug("resolve", "from", from, "to", to, "cached", cached)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRenderStart(_ context.Context, format string, inputSize int) {
	h.logger.Debug("render start", "format", format, "input", inputSize)
}

func (h *logHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("render done", "format", format, "took", d.Round(time.Millisecond))
}
