package cli

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflame/pkg/observability"
)

// logHooks reports pipeline, cache, minimap and server events at debug
// level.
type logHooks struct {
	logger *log.Logger
}

var registerOnce sync.Once

// registerHooks installs the logging hooks once per process.
func registerHooks(logger *log.Logger) {
	registerOnce.Do(func() {
		h := &logHooks{logger: logger.WithPrefix("hooks")}
		observability.SetPipelineHooks(h)
		observability.SetCacheHooks(h)
		observability.SetMinimapHooks(h)
		observability.SetServerHooks(h)
	})
}

func (h *logHooks) OnParseStart(_ context.Context, format, source string) {
	h.logger.Debug("parse start", "format", format, "source", source)
}

func (h *logHooks) OnParseComplete(_ context.Context, format, source string, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("parse failed", "format", format, "source", source, "err", err)
		return
	}
	h.logger.Debug("parsed", "format", format, "nodes", nodeCount, "duration", d)
}

func (h *logHooks) OnLayoutStart(_ context.Context, mode string, nodeCount int) {
	h.logger.Debug("layout start", "mode", mode, "nodes", nodeCount)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, mode string, frameCount int, d time.Duration, err error) {
	h.logger.Debug("layout", "mode", mode, "frames", frameCount, "duration", d, "err", err)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render", "formats", formats, "duration", d, "err", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key_type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key_type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key_type", keyType, "bytes", size)
}

func (h *logHooks) OnMinimapStart(ctx context.Context, generation uint64, width int) context.Context {
	h.logger.Debug("minimap start", "generation", generation, "width", width)
	return ctx
}

func (h *logHooks) OnMinimapComplete(_ context.Context, generation uint64, d time.Duration, err error) {
	h.logger.Debug("minimap", "generation", generation, "duration", d, "err", err)
}

func (h *logHooks) OnMinimapDiscarded(_ context.Context, generation uint64) {
	h.logger.Debug("minimap discarded", "generation", generation)
}

func (h *logHooks) OnRequest(context.Context, string, string) {}

func (h *logHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	level := log.DebugLevel
	if status >= 500 {
		level = log.ErrorLevel
	}
	h.logger.Log(level, "request", "method", method, "route", route, "status", status, "duration", d)
}
