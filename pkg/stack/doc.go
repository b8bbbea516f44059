// Package stack implements a virtualized vertical list whose items collapse
// into small "accordion" piles at the top and bottom edges of the viewport.
//
// # Overview
//
// Only the items that are visible, or resident in one of the two edge piles,
// are materialized. Everything else stays in the host's pool. An [Engine]
// drives this through a small [Host] capability interface:
//
//	type Host[V any] interface {
//	    ItemCount() int
//	    Acquire(index int) (V, error)
//	    Release(index int, v V)
//	    Measure(v V) Measurement
//	    Viewport() Size
//	}
//
// # Geometry
//
// The viewport is split into three bands. Items whose top lies above
// Zones.Top (height/6 by default) are top-pile candidates; items whose top
// lies at or below Zones.Bottom (height - height/6) are bottom-pile
// candidates; everything between is the body, laid out in ordinary flow.
//
// Each pile holds at most Geometry.MaxDepth items, spaced Geometry.StackStep
// pixels apart. The top pile is pinned to the top margin, the bottom pile to
// the viewport height. Older pile members beyond the depth are released.
// MaxDepth is the number of steps that fit between the top margin and
// Zones.Top, so a top margin that reaches Zones.Top, or a step that is not
// smaller than the item, is rejected with INVALID_CONFIG. Collections whose
// count times pitch exceeds [MaxExtent] fail with LIMIT_EXCEEDED.
//
// # Passes
//
//   - [Engine.Layout] runs a full pass: it freezes the item geometry on first
//     use, keeps the current scroll position, and re-stacks both piles.
//   - [Engine.Scroll] shifts the content by a signed delta, clamped so the
//     first item never leaves the top margin and the last item never leaves
//     the bottom margin, and returns the delta actually applied.
//
// Every pass first un-stacks the active items around the anchor (the first
// item below the top zone), applies the delta in that linear "expanded"
// space, and then re-forms both piles. Items are acquired before the new
// active set is committed and released only afterwards, so a failed
// acquire leaves the previous layout intact.
//
// # Example
//
//	e := stack.New[*Card](deck, stack.WithStackStep(units.DpOf(20)), stack.WithDensity(2))
//	if err := e.Layout(); err != nil {
//	    return err
//	}
//	applied, err := e.Scroll(120)
//
// The engine is not safe for concurrent use; callers serialize access the
// way a UI thread serializes layout callbacks.
package stack
