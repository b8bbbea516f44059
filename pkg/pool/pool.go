// Package pool recycles item views between layout passes.
//
// A [Pool] keeps a bounded free list of released values. [Pool.Get] serves
// from the free list when it can and falls back to the constructor
// otherwise; [Pool.Put] returns a value for reuse. Hits, misses and drops
// are counted and reported through observability hooks.
//
//	p := pool.New("cards", func() *Card { return new(Card) }, pool.WithMaxFree(16))
//	c := p.Get()
//	defer p.Put(c)
package pool

import (
	"sync"

	"github.com/matzehuels/stackscroll/pkg/observability"
)

// DefaultMaxFree is the default free-list capacity.
const DefaultMaxFree = 32

// Stats are cumulative pool counters.
type Stats struct {
	Hits    int `json:"hits"`    // Get served from the free list
	Misses  int `json:"misses"`  // Get had to construct a new value
	Puts    int `json:"puts"`    // values returned with Put
	Dropped int `json:"dropped"` // Puts discarded because the free list was full
	Free    int `json:"free"`    // values currently in the free list
	Live    int `json:"live"`    // values handed out and not yet returned
}

// Created returns the number of values ever constructed.
func (s Stats) Created() int { return s.Misses }

// HitRate returns the fraction of Gets served from the free list.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Option configures a [Pool].
type Option func(*options)

type options struct {
	maxFree int
}

// WithMaxFree bounds the free list. Values returned beyond the bound are
// dropped. Zero or negative disables recycling.
func WithMaxFree(n int) Option { return func(o *options) { o.maxFree = n } }

// Pool is a free list of reusable values. It is safe for concurrent use.
type Pool[T any] struct {
	name    string
	newFn   func() T
	maxFree int

	mu    sync.Mutex
	free  []T
	stats Stats
}

// New creates a pool whose values are built by newFn. The name labels the
// pool in hook events.
func New[T any](name string, newFn func() T, opts ...Option) *Pool[T] {
	o := options{maxFree: DefaultMaxFree}
	for _, opt := range opts {
		opt(&o)
	}
	return &Pool[T]{name: name, newFn: newFn, maxFree: o.maxFree}
}

// Get returns a recycled value, or a new one if the free list is empty.
func (p *Pool[T]) Get() T {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		var zero T
		p.free[n-1] = zero
		p.free = p.free[:n-1]
		p.stats.Hits++
		p.stats.Live++
		p.mu.Unlock()
		observability.Pool().OnPoolHit(p.name)
		return v
	}
	p.stats.Misses++
	p.stats.Live++
	p.mu.Unlock()

	observability.Pool().OnPoolMiss(p.name)
	return p.newFn()
}

// Put returns v to the free list.
func (p *Pool[T]) Put(v T) {
	p.mu.Lock()
	p.stats.Puts++
	p.stats.Live--
	if len(p.free) >= p.maxFree {
		p.stats.Dropped++
	} else {
		p.free = append(p.free, v)
	}
	free := len(p.free)
	p.mu.Unlock()

	observability.Pool().OnPoolPut(p.name, free)
}

// Stats returns a snapshot of the pool counters.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Free = len(p.free)
	return s
}

// Name returns the pool label.
func (p *Pool[T]) Name() string { return p.name }

// Drain empties the free list and returns how many values were discarded.
func (p *Pool[T]) Drain() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.free)
	p.free = nil
	return n
}
