package simulate

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackscroll/pkg/cache"
	"github.com/matzehuels/stackscroll/pkg/trace"
)

// Runner executes simulations with caching. Both the CLI and the server use
// it.
//
// The Runner holds no simulation state, only the cache and logger, so one
// Runner can serve concurrent callers with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-kind cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute plays the script and renders the requested formats.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, wrapStage("invalid options", err)
	}

	result := &Result{}

	// Stage 1: Play
	playStart := time.Now()
	t, hit, err := r.PlayWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, wrapStage("play", err)
	}
	result.Trace = t
	result.Summary = t.Summarize()
	result.Stats.PlayTime = time.Since(playStart)
	result.Stats.Frames = len(t.Frames)
	if t.Pool != nil {
		result.Stats.Pool = *t.Pool
	}
	result.CacheInfo.TraceHit = hit

	if data, err := trace.RenderJSON(t, trace.WithJSONCompact()); err == nil {
		result.TraceHash = cache.Hash(data)
	}

	r.Logger.Info("played script",
		"frames", len(t.Frames),
		"applied", result.Summary.Applied,
		"cached", hit,
		"duration", result.Stats.PlayTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, t, opts)
	if err != nil {
		return nil, wrapStage("render", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// PlayWithCacheInfo records a trace with caching and returns cache hit info.
func (r *Runner) PlayWithCacheInfo(ctx context.Context, opts Options) (*trace.Trace, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.TraceKey(opts.Script.Hash(), opts.TraceKeyOpts())

	// Checked runs always replay so the check sees live engine output.
	if !opts.Refresh && !opts.Check {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if t, err := trace.ReadJSON(data); err == nil {
				return t, true, nil
			}
		}
	}

	t, err := Play(ctx, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := trace.RenderJSON(t, trace.WithJSONCompact()); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLTrace)); err != nil {
			r.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
		}
	}
	return t, false, nil
}

// Play is a convenience wrapper that calls PlayWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Play(ctx context.Context, opts Options) (*trace.Trace, error) {
	t, _, err := r.PlayWithCacheInfo(ctx, opts)
	return t, err
}

// RenderWithCacheInfo renders artifacts with caching and returns cache hit
// info. The hit is true only if every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, t *trace.Trace, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	data, err := trace.RenderJSON(t, trace.WithJSONCompact())
	if err != nil {
		return nil, false, wrapStage("serialize trace for cache key", err)
	}
	traceHash := cache.Hash(data)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(traceHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := Render(t, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(traceHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, r.ttl(cache.TTLArtifact))
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
