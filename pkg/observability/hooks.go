// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about layout passes, view recycling, cache operations, and
// server sessions.
//
// Each event category has an interface and a no-op default. Hooks are registered by main, not by libraries, so the engine packages
// never import a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.Install(observability.NewLogHooks(logger)) // every category
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	// ... lay out items ...
//	observability.Engine().OnLayoutComplete(len(items), top, bottom, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the stack layout engine.
//
// Engine operations are synchronous and short, so these hooks take no context.
type EngineHooks interface {
	// OnLayoutComplete records a full layout pass.
	OnLayoutComplete(items, topDepth, bottomDepth int, duration time.Duration, err error)

	// OnScroll records a scroll request and the delta actually applied.
	OnScroll(requested, applied int, state string)
}

// =============================================================================
// Pool Hooks
// =============================================================================

// PoolHooks receives events from the view recycling pool.
type PoolHooks interface {
	// OnPoolHit records an acquire served from the free list.
	OnPoolHit(pool string)

	// OnPoolMiss records an acquire that had to create a new view.
	OnPoolMiss(pool string)

	// OnPoolPut records a released view and the resulting free-list size.
	OnPoolPut(pool string, free int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Session Hooks
// =============================================================================

// SessionHooks receives events from the HTTP session store.
type SessionHooks interface {
	// OnSessionCreated records a new layout session.
	OnSessionCreated(ctx context.Context, id string, items int)

	// OnSessionClosed records a deleted or expired session.
	OnSessionClosed(ctx context.Context, id string, expired bool)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnLayoutComplete(int, int, int, time.Duration, error) {}
func (NoopEngineHooks) OnScroll(int, int, string)                            {}

// NoopPoolHooks is a no-op implementation of PoolHooks.
type NoopPoolHooks struct{}

func (NoopPoolHooks) OnPoolHit(string)      {}
func (NoopPoolHooks) OnPoolMiss(string)     {}
func (NoopPoolHooks) OnPoolPut(string, int) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSessionHooks is a no-op implementation of SessionHooks.
type NoopSessionHooks struct{}

func (NoopSessionHooks) OnSessionCreated(context.Context, string, int)  {}
func (NoopSessionHooks) OnSessionClosed(context.Context, string, bool) {}

// =============================================================================
// Registry
// =============================================================================

// registry is replaced as a whole on every update, so readers holding an
// old snapshot never see a half-written set.
type registry struct {
	engine  EngineHooks
	pool    PoolHooks
	cache   CacheHooks
	session SessionHooks
}

var noop = registry{
	engine:  NoopEngineHooks{},
	pool:    NoopPoolHooks{},
	cache:   NoopCacheHooks{},
	session: NoopSessionHooks{},
}

var (
	hooksMu sync.RWMutex
	current = noop
)

func update(fn func(*registry)) {
	hooksMu.Lock()
	next := current
	fn(&next)
	current = next
	hooksMu.Unlock()
}

func snapshot() registry {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return current
}

// SetEngineHooks installs h for layout and scroll events. A nil h is ignored.
func SetEngineHooks(h EngineHooks) {
	if h != nil {
		update(func(r *registry) { r.engine = h })
	}
}

// SetPoolHooks installs h for view recycling events. A nil h is ignored.
func SetPoolHooks(h PoolHooks) {
	if h != nil {
		update(func(r *registry) { r.pool = h })
	}
}

// SetCacheHooks installs h for trace and artifact cache events. A nil h is
// ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetSessionHooks installs h for server session events. A nil h is ignored.
func SetSessionHooks(h SessionHooks) {
	if h != nil {
		update(func(r *registry) { r.session = h })
	}
}

// Install registers v for every hook category it implements.
func Install(v any) {
	update(func(r *registry) {
		if h, ok := v.(EngineHooks); ok {
			r.engine = h
		}
		if h, ok := v.(PoolHooks); ok {
			r.pool = h
		}
		if h, ok := v.(CacheHooks); ok {
			r.cache = h
		}
		if h, ok := v.(SessionHooks); ok {
			r.session = h
		}
	})
}

func Engine() EngineHooks   { return snapshot().engine }
func Pool() PoolHooks       { return snapshot().pool }
func Cache() CacheHooks     { return snapshot().cache }
func Session() SessionHooks { return snapshot().session }

// Reset restores the no-op hooks. Tests that install hooks defer it.
func Reset() {
	update(func(r *registry) { *r = noop })
}
