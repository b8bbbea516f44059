package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event as a debug record. The CLI installs it for
// --verbose runs.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to l, or to log.Default() when l is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) OnLayoutComplete(items, topDepth, bottomDepth int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("layout failed", "items", items, "err", err)
		return
	}
	h.logger.Debug("layout", "items", items, "top", topDepth, "bottom", bottomDepth, "took", d)
}

func (h *LogHooks) OnScroll(requested, applied int, state string) {
	h.logger.Debug("scroll", "requested", requested, "applied", applied, "state", state)
}

func (h *LogHooks) OnPoolHit(pool string)  { h.logger.Debug("pool hit", "pool", pool) }
func (h *LogHooks) OnPoolMiss(pool string) { h.logger.Debug("pool miss", "pool", pool) }

func (h *LogHooks) OnPoolPut(pool string, free int) {
	h.logger.Debug("pool put", "pool", pool, "free", free)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "kind", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "kind", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "kind", keyType, "bytes", size)
}

func (h *LogHooks) OnSessionCreated(_ context.Context, id string, items int) {
	h.logger.Debug("session created", "id", id, "items", items)
}

func (h *LogHooks) OnSessionClosed(_ context.Context, id string, expired bool) {
	h.logger.Debug("session closed", "id", id, "expired", expired)
}
