// Package cache stores simulation traces and rendered frames between runs.
//
// Three backends implement [Cache]:
//   - [NullCache] never stores anything (caching disabled)
//   - [FileCache] keeps JSON entries under the user cache directory (CLI)
//   - [RedisCache] shares entries between server replicas
//
// Keys are produced by a [Keyer] so that every option that changes the
// output also changes the key.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored data and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Default time-to-live values per entry type.
const (
	TTLTrace    = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// TraceKeyOpts are the simulation parameters that change a recorded trace.
type TraceKeyOpts struct {
	Viewport   [2]int   `json:"viewport"`
	Items      int      `json:"items"`
	ItemWidth  int      `json:"item_width"`
	ItemHeight int      `json:"item_height"`
	Margins    [4]int   `json:"margins"`
	StackStep  string   `json:"stack_step"`
	Density    float64  `json:"density"`
	ZoneDiv    int      `json:"zone_div"`
	Palette    []string `json:"palette,omitempty"`
}

// ArtifactKeyOpts are the render parameters that change an output artifact.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Frame     int     `json:"frame"`
	Scale     float64 `json:"scale,omitempty"`
	Zones     bool    `json:"zones,omitempty"`
	Labels    bool    `json:"labels,omitempty"`
	Filmstrip bool    `json:"filmstrip,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// TraceKey identifies a recorded trace for a script and engine setup.
	TraceKey(scriptHash string, opts TraceKeyOpts) string

	// ArtifactKey identifies a rendered artifact of a trace.
	ArtifactKey(traceHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every option into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// TraceKey generates a key of the form "trace:<sha256>".
func (DefaultKeyer) TraceKey(scriptHash string, opts TraceKeyOpts) string {
	return hashKey("trace", scriptHash, opts)
}

// ArtifactKey generates a key of the form "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(traceHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", traceHash, opts)
}
