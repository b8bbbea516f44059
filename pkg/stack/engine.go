package stack

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackscroll/pkg/errors"
	"github.com/matzehuels/stackscroll/pkg/observability"
)

// MaxExtent bounds the expanded height of a collection, count times pitch.
// Half the int range leaves headroom for the viewport and for any scroll
// delta, so positions never overflow.
const MaxExtent = math.MaxInt / 2

// Engine lays out a virtualized list with stacked edges. Create one with
// [New]; the zero value is not usable.
type Engine[V any] struct {
	host Host[V]
	cfg  config
	log  *log.Logger

	geom   Geometry
	frozen bool
	zones  Zones
	state  State
	active activeSet[V]
}

// New creates an engine for host.
func New[V any](host Host[V], opts ...Option) *Engine[V] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine[V]{host: host, cfg: cfg, log: cfg.logger}
}

// =============================================================================
// Queries
// =============================================================================

// Geometry returns the frozen item constants and current pile parameters.
// It is the zero value until the first successful [Engine.Layout].
func (e *Engine[V]) Geometry() Geometry { return e.geom }

// Zones returns the stack zones of the last pass.
func (e *Engine[V]) Zones() Zones { return e.zones }

// State returns the scroll state.
func (e *Engine[V]) State() State { return e.state }

// Len returns the number of materialized items.
func (e *Engine[V]) Len() int { return e.active.len() }

// Items returns the materialized items ordered by index.
func (e *Engine[V]) Items() []Item[V] { return e.active.snapshot() }

// Item returns the materialized item for index.
func (e *Engine[V]) Item(index int) (Item[V], bool) { return e.active.get(index) }

// Anchor returns the first item, in index order, whose top is at or below
// the top stack edge. It is absent when every item is piled at the top.
func (e *Engine[V]) Anchor() (Item[V], bool) { return e.anchor() }

// BottomBoundary returns the last item, in index order, whose top is at or
// above the bottom stack edge.
func (e *Engine[V]) BottomBoundary() (Item[V], bool) { return e.bottomBoundary() }

// TopStackDepth counts the items whose top lies inside the top zone.
func (e *Engine[V]) TopStackDepth() int {
	n := 0
	for _, it := range e.active.items {
		if it.Rect.Top < e.zones.Top {
			n++
		}
	}
	return n
}

// BottomStackDepth counts the items whose top lies inside the bottom zone.
func (e *Engine[V]) BottomStackDepth() int {
	n := 0
	for _, it := range e.active.items {
		if it.Rect.Top >= e.zones.Bottom {
			n++
		}
	}
	return n
}

// =============================================================================
// Passes
// =============================================================================

// Layout runs a full layout pass and resets the scroll state to Neutral.
//
// On the first pass the geometry is derived from item 0 and frozen. With an
// empty active set the viewport is filled from index 0; otherwise the
// current position is kept and re-clamped against the collection size,
// which may have changed since the previous pass.
func (e *Engine[V]) Layout() (err error) {
	start := time.Now()
	defer func() {
		observability.Engine().OnLayoutComplete(e.active.len(), e.TopStackDepth(), e.BottomStackDepth(), time.Since(start), err)
	}()

	e.state = Neutral

	n := e.host.ItemCount()
	if n <= 0 {
		e.releaseAll()
		return nil
	}
	if err := e.refreshZones(); err != nil {
		return err
	}
	if e.zones.Height <= 0 {
		e.releaseAll()
		return nil
	}
	if !e.frozen {
		if err := e.initialize(); err != nil {
			return err
		}
	}
	if err := e.checkCount(n); err != nil {
		return err
	}

	var origin int
	if a, ok := e.expansionBase(); ok {
		origin = e.settle(e.expand(a), n)
	} else {
		origin = e.fillOrigin(0)
	}

	p := e.plan(origin, n)
	if err := e.commit(p); err != nil {
		return err
	}

	e.log.Debug("layout pass",
		"items", n,
		"active", e.active.len(),
		"window", fmt.Sprintf("%d..%d", p.lo, p.hi),
		"top_depth", p.topDepth(),
		"bottom_depth", p.bottomDepth())
	return nil
}

// Scroll moves the content by delta pixels and returns the delta actually
// applied. A positive delta moves content up, revealing later items; a
// negative delta moves it down.
//
// The applied delta is clamped so that the first item's top never goes
// below the top margin and the last item's bottom never rises above the
// bottom margin. When nothing can be applied the engine enters the matching
// boundary state, and further deltas in that direction return 0 without a
// pass until the next [Engine.Layout] or a scroll the other way.
func (e *Engine[V]) Scroll(delta int) (applied int, err error) {
	defer func() {
		if err == nil {
			observability.Engine().OnScroll(delta, applied, e.state.String())
		}
	}()

	if delta == 0 || e.state.blocks(delta) {
		return 0, nil
	}

	n := e.host.ItemCount()
	if n <= 0 {
		e.releaseAll()
		return 0, nil
	}
	if err := e.refreshZones(); err != nil {
		return 0, err
	}
	if err := e.checkCount(n); err != nil {
		return 0, err
	}

	a, ok := e.anchor()
	if !ok {
		return 0, nil
	}

	origin := e.expand(a)
	applied = e.clamp(origin, delta, n)
	if applied == 0 {
		if delta > 0 {
			e.state = AtBottomBoundary
		} else {
			e.state = AtTopBoundary
		}
		e.log.Debug("scroll at boundary", "requested", delta, "state", e.state)
		return 0, nil
	}

	p := e.plan(origin-applied, n)
	if err := e.commit(p); err != nil {
		return 0, err
	}
	e.state = Neutral

	e.log.Debug("scroll pass",
		"requested", delta,
		"applied", applied,
		"active", e.active.len(),
		"top_depth", p.topDepth(),
		"bottom_depth", p.bottomDepth())
	return applied, nil
}

// ReleaseAll hands every materialized view back to the host. The frozen
// geometry is kept; the next [Engine.Layout] fills from index 0.
func (e *Engine[V]) ReleaseAll() {
	e.releaseAll()
	e.state = Neutral
}

// =============================================================================
// Internals
// =============================================================================

// refreshZones re-reads the viewport and derives the stack zones from it.
// Once the geometry is frozen the pile depth is derived as well. Nothing
// changes when the new viewport is rejected.
func (e *Engine[V]) refreshZones() error {
	if e.cfg.divisor < 2 {
		return errors.New(errors.ErrCodeInvalidConfig, "zone divisor must be at least 2, got %d", e.cfg.divisor)
	}
	step := e.cfg.step.Px(e.cfg.density)
	if step <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "stack step must resolve to at least 1px, got %s", e.cfg.step)
	}

	vp := e.host.Viewport()
	zones := newZones(vp.Height, e.cfg.divisor)
	depth := e.geom.MaxDepth
	if e.frozen && zones.Height > 0 {
		d, err := pileDepth(zones, step, e.geom.ItemHeight, e.geom.Margins.Top)
		if err != nil {
			return err
		}
		depth = d
	}
	e.zones = zones
	e.geom.StackStep = step
	e.geom.MaxDepth = depth
	return nil
}

// pileDepth derives the maximum pile depth from the room between the top
// margin and the top stack edge, so that every top pile slot lies inside
// the top zone.
func pileDepth(z Zones, step, itemHeight, topMargin int) (int, error) {
	room := z.Top - topMargin
	if room <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "top margin %dpx must lie above the top stack edge at %dpx", topMargin, z.Top)
	}
	if step >= itemHeight {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "stack step %dpx must be smaller than the item height %dpx", step, itemHeight)
	}
	return max(1, room/step), nil
}

// checkCount rejects collections whose expanded extent does not fit in an
// int with room for the viewport and any scroll delta.
func (e *Engine[V]) checkCount(n int) error {
	if !e.frozen {
		return nil
	}
	if limit := MaxExtent / e.geom.Pitch(); n > limit {
		return errors.New(errors.ErrCodeLimitExceeded, "collection of %d items exceeds the %d that fit at a pitch of %dpx", n, limit, e.geom.Pitch())
	}
	return nil
}

// initialize measures item 0 and freezes the item geometry. The acquired
// view becomes the first member of the active set.
func (e *Engine[V]) initialize() error {
	v, err := e.host.Acquire(0)
	if err != nil {
		return fmt.Errorf("acquire item 0: %w", err)
	}

	m := e.host.Measure(v)
	if m.Height <= 0 || m.Width < 0 {
		e.host.Release(0, v)
		return errors.New(errors.ErrCodeInvalidInput, "item size must be positive, got %dx%d", m.Width, m.Height)
	}

	depth, err := pileDepth(e.zones, e.geom.StackStep, m.Height, m.Margins.Top)
	if err != nil {
		e.host.Release(0, v)
		return err
	}

	e.geom.ItemWidth = m.Width
	e.geom.ItemHeight = m.Height
	e.geom.Margins = m.Margins
	e.geom.MaxDepth = depth
	e.frozen = true

	e.active.replace([]Item[V]{{Index: 0, View: v, flow: m.Margins.Top}})

	e.log.Debug("geometry frozen",
		"width", m.Width,
		"height", m.Height,
		"margins", m.Margins,
		"step", e.geom.StackStep,
		"max_depth", e.geom.MaxDepth)
	return nil
}

// expansionBase picks the item the expanded layout is rebuilt around: the
// anchor when there is one, else the first active item.
func (e *Engine[V]) expansionBase() (Item[V], bool) {
	if a, ok := e.anchor(); ok {
		return a, true
	}
	if e.active.len() > 0 {
		return e.active.items[0], true
	}
	return Item[V]{}, false
}

// fillOrigin returns the expanded top of index 0 for a fill that places
// index from at the top margin.
func (e *Engine[V]) fillOrigin(from int) int {
	return e.geom.Margins.Top - from*e.geom.Pitch()
}

// clamp limits delta so that neither end of the collection leaves its
// resting edge. Both ends are computed in expanded space, so the result is
// exact even when the boundary items are not materialized.
func (e *Engine[V]) clamp(origin, delta, n int) int {
	g := e.geom
	if delta > 0 {
		lastBottom := origin + (n-1)*g.Pitch() + g.ItemHeight
		room := max(0, lastBottom-(e.zones.Height-g.Margins.Bottom))
		if delta > room {
			return room
		}
		return delta
	}
	// Negating delta would overflow for math.MinInt.
	room := max(0, g.Margins.Top-origin)
	if delta < -room {
		return -room
	}
	return delta
}

// settle moves origin back inside the scrollable range, for example after
// the collection shrank.
func (e *Engine[V]) settle(origin, n int) int {
	g := e.geom
	origin = min(origin, g.Margins.Top)
	lastBottom := origin + (n-1)*g.Pitch() + g.ItemHeight
	if short := (e.zones.Height - g.Margins.Bottom) - lastBottom; short > 0 {
		origin = min(g.Margins.Top, origin+short)
	}
	return origin
}

// commit applies a plan in two phases. All missing items are acquired and
// measured first; if any of that fails the new views are released and the
// previous active set is left untouched. Only after the new set is in place
// are the items that left the window released.
func (e *Engine[V]) commit(p plan) error {
	g := e.geom
	pitch := g.Pitch()

	next := make([]Item[V], 0, p.hi-p.lo+1)
	var fresh []Item[V]
	for i := p.lo; i <= p.hi; i++ {
		it, ok := e.active.get(i)
		if !ok {
			v, err := e.acquire(i)
			if err != nil {
				for _, f := range fresh {
					e.host.Release(f.Index, f.View)
				}
				return err
			}
			it = Item[V]{Index: i, View: v}
			fresh = append(fresh, it)
		}

		top := p.top(i)
		it.flow = p.natural(pitch, i)
		it.Rect = Rect{
			Left:   g.Margins.Left,
			Top:    top,
			Right:  g.Margins.Left + g.ItemWidth,
			Bottom: top + g.ItemHeight,
		}
		next = append(next, it)
	}

	for _, it := range e.active.replace(next) {
		e.host.Release(it.Index, it.View)
	}
	return nil
}

// acquire obtains and checks the view for index.
func (e *Engine[V]) acquire(index int) (V, error) {
	v, err := e.host.Acquire(index)
	if err != nil {
		var zero V
		return zero, fmt.Errorf("acquire item %d: %w", index, err)
	}
	if err := e.geom.matches(index, e.host.Measure(v)); err != nil {
		e.host.Release(index, v)
		var zero V
		return zero, err
	}
	return v, nil
}

func (e *Engine[V]) releaseAll() {
	for _, it := range e.active.clear() {
		e.host.Release(it.Index, it.View)
	}
}
