// Package trace records engine passes as frames and renders them.
//
// A [Trace] is a sequence of [Frame] values, one per layout or scroll pass,
// each holding every materialized item with its rectangle and zone. Traces
// are plain data: they marshal to JSON for caching and the HTTP API, and
// the sinks in this package turn them into SVG or text.
//
//	tr := trace.New(e.Geometry(), e.Zones(), deck.ItemCount())
//	applied, _ := e.Scroll(50)
//	tr.Append(trace.Capture(e, trace.KindScroll, 50, applied, deck.Color))
package trace

import (
	"fmt"

	"github.com/matzehuels/stackscroll/pkg/errors"
	"github.com/matzehuels/stackscroll/pkg/pool"
	"github.com/matzehuels/stackscroll/pkg/stack"
)

// Kind is the pass that produced a frame.
type Kind string

const (
	KindLayout Kind = "layout"
	KindScroll Kind = "scroll"
)

// Zone classifies an item by where its top lies.
type Zone string

const (
	ZoneTop    Zone = "top"
	ZoneBody   Zone = "body"
	ZoneBottom Zone = "bottom"
)

// ZoneOf classifies a top edge against the stack zones.
func ZoneOf(top int, z stack.Zones) Zone {
	switch {
	case top < z.Top:
		return ZoneTop
	case top >= z.Bottom:
		return ZoneBottom
	default:
		return ZoneBody
	}
}

// Item is one materialized item in a frame.
type Item struct {
	Index int        `json:"index"`
	Rect  stack.Rect `json:"rect"`
	Zone  Zone       `json:"zone"`
	Color string     `json:"color,omitempty"`
}

// Frame is the engine state after one pass.
type Frame struct {
	Seq         int    `json:"seq"`
	Kind        Kind   `json:"kind"`
	Requested   int    `json:"requested,omitempty"`
	Applied     int    `json:"applied"`
	State       string `json:"state"`
	Anchor      int    `json:"anchor"` // -1 when every item is piled at the top
	TopDepth    int    `json:"top_depth"`
	BottomDepth int    `json:"bottom_depth"`
	Items       []Item `json:"items"`
}

// Trace is a recorded run.
type Trace struct {
	Geometry stack.Geometry `json:"geometry"`
	Zones    stack.Zones    `json:"zones"`
	Count    int            `json:"count"`
	Frames   []Frame        `json:"frames"`
	Pool     *pool.Stats    `json:"pool,omitempty"`
}

// New starts an empty trace.
func New(g stack.Geometry, z stack.Zones, count int) *Trace {
	return &Trace{Geometry: g, Zones: z, Count: count}
}

// Append adds f, numbering it after the last frame.
func (t *Trace) Append(f Frame) {
	f.Seq = len(t.Frames)
	t.Frames = append(t.Frames, f)
}

// Last returns the most recent frame.
func (t *Trace) Last() (Frame, bool) {
	if len(t.Frames) == 0 {
		return Frame{}, false
	}
	return t.Frames[len(t.Frames)-1], true
}

// Frame returns frame i, rejecting out-of-range indices.
func (t *Trace) Frame(i int) (Frame, error) {
	if err := errors.ValidateIndex(i, len(t.Frames)); err != nil {
		return Frame{}, err
	}
	return t.Frames[i], nil
}

// Capture snapshots the engine after a pass. color may be nil.
func Capture[V any](e *stack.Engine[V], kind Kind, requested, applied int, color func(index int) string) Frame {
	z := e.Zones()
	f := Frame{
		Kind:        kind,
		Requested:   requested,
		Applied:     applied,
		State:       e.State().String(),
		Anchor:      -1,
		TopDepth:    e.TopStackDepth(),
		BottomDepth: e.BottomStackDepth(),
	}
	if a, ok := e.Anchor(); ok {
		f.Anchor = a.Index
	}
	for _, it := range e.Items() {
		item := Item{Index: it.Index, Rect: it.Rect, Zone: ZoneOf(it.Rect.Top, z)}
		if color != nil {
			item.Color = color(it.Index)
		}
		f.Items = append(f.Items, item)
	}
	return f
}

// =============================================================================
// Summary
// =============================================================================

// Summary aggregates a trace.
type Summary struct {
	Frames         int `json:"frames"`
	Requested      int `json:"requested"` // sum of absolute requested deltas
	Applied        int `json:"applied"`   // sum of absolute applied deltas
	Clamped        int `json:"clamped"`   // passes where applied != requested
	MaxTopDepth    int `json:"max_top_depth"`
	MaxBottomDepth int `json:"max_bottom_depth"`
	MaxActive      int `json:"max_active"`
}

// Summarize computes the summary of t.
func (t *Trace) Summarize() Summary {
	s := Summary{Frames: len(t.Frames)}
	for _, f := range t.Frames {
		if f.Kind == KindScroll {
			s.Requested += abs(f.Requested)
			s.Applied += abs(f.Applied)
			if f.Applied != f.Requested {
				s.Clamped++
			}
		}
		s.MaxTopDepth = max(s.MaxTopDepth, f.TopDepth)
		s.MaxBottomDepth = max(s.MaxBottomDepth, f.BottomDepth)
		s.MaxActive = max(s.MaxActive, len(f.Items))
	}
	return s
}

// =============================================================================
// Checks
// =============================================================================

// Check verifies the layout properties of every frame. Indices must be
// unique and increasing and pile depths within the geometry's bound. Body
// tops must strictly increase. Item 0 never sits below the top margin, and
// when the collection is taller than the viewport a materialized last item
// outside the bottom pile never ends above the bottom margin.
func (t *Trace) Check() error {
	for _, f := range t.Frames {
		if err := t.checkFrame(f); err != nil {
			return fmt.Errorf("frame %d (%s): %w", f.Seq, f.Kind, err)
		}
	}
	return nil
}

func (t *Trace) checkFrame(f Frame) error {
	g, z := t.Geometry, t.Zones
	fail := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInternal, format, args...)
	}

	if f.TopDepth > g.MaxDepth {
		return fail("top pile depth %d exceeds %d", f.TopDepth, g.MaxDepth)
	}
	if f.BottomDepth > g.MaxDepth {
		return fail("bottom pile depth %d exceeds %d", f.BottomDepth, g.MaxDepth)
	}

	floor := z.Height - g.Margins.Bottom
	restingBottom := g.Margins.Top + (t.Count-1)*g.Pitch() + g.ItemHeight
	tall := restingBottom >= floor

	prevIndex, prevBody := -1, 0
	seenBody := false
	for _, it := range f.Items {
		if it.Index <= prevIndex {
			return fail("index %d follows %d", it.Index, prevIndex)
		}
		prevIndex = it.Index
		if it.Zone == ZoneBody {
			if seenBody && it.Rect.Top <= prevBody {
				return fail("item %d top %d not below %d", it.Index, it.Rect.Top, prevBody)
			}
			prevBody, seenBody = it.Rect.Top, true
		}
		if it.Index == 0 && it.Rect.Top > g.Margins.Top {
			return fail("item 0 top %d below margin %d", it.Rect.Top, g.Margins.Top)
		}
		if tall && it.Index == t.Count-1 && it.Zone != ZoneBottom && it.Rect.Bottom < floor {
			return fail("last item bottom %d above margin %d", it.Rect.Bottom, floor)
		}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
