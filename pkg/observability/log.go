package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// [PipelineHooks], [CacheHooks] and [HTTPHooks].
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

// Register installs h for all hook categories.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnResolveStart(_ context.Context, source string, limit int) {
	h.Logger.Debug("resolve start", "source", source, "limit", limit)
}

func (h *LogHooks) OnResolveComplete(_ context.Context, source string, covers int, d time.Duration, err error) {
	h.Logger.Debug("resolve done", "source", source, "covers", covers, "duration", d.Round(time.Millisecond), "err", err)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, covers int) {
	h.Logger.Debug("layout start", "covers", covers)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, columns int, d time.Duration, err error) {
	h.Logger.Debug("layout done", "columns", columns, "duration", d, "err", err)
}

func (h *LogHooks) OnComposeStart(_ context.Context, tiles int) {
	h.Logger.Debug("compose start", "tiles", tiles)
}

func (h *LogHooks) OnComposeComplete(_ context.Context, skipped int, d time.Duration, err error) {
	h.Logger.Debug("compose done", "skipped", skipped, "duration", d.Round(time.Millisecond), "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
