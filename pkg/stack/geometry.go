package stack

import (
	"github.com/matzehuels/stackscroll/pkg/errors"
)

// DefaultZoneDivisor splits the viewport into stack zones of height/6 at
// each edge.
const DefaultZoneDivisor = 6

// Geometry holds the item constants frozen on the first layout pass plus
// the pile parameters derived from the current viewport.
type Geometry struct {
	ItemWidth  int     `json:"item_width"`
	ItemHeight int     `json:"item_height"`
	Margins    Margins `json:"margins"`
	StackStep  int     `json:"stack_step"`
	MaxDepth   int     `json:"max_depth"`
}

// Pitch is the distance between the tops of two consecutive items in
// ordinary flow.
func (g Geometry) Pitch() int {
	return g.Margins.Top + g.ItemHeight + g.Margins.Bottom
}

// matches compares a later measurement against the frozen constants.
func (g Geometry) matches(index int, m Measurement) error {
	checks := []struct {
		field     string
		want, got int
	}{
		{"width", g.ItemWidth, m.Width},
		{"height", g.ItemHeight, m.Height},
		{"left margin", g.Margins.Left, m.Margins.Left},
		{"top margin", g.Margins.Top, m.Margins.Top},
		{"right margin", g.Margins.Right, m.Margins.Right},
		{"bottom margin", g.Margins.Bottom, m.Margins.Bottom},
	}
	for _, c := range checks {
		if c.want != c.got {
			gerr := &errors.GeometryError{Index: index, Field: c.field, Want: c.want, Got: c.got}
			return gerr.AsError()
		}
	}
	return nil
}

// Zones are the two stack bands of the viewport. Items whose top is above
// Top belong to the top zone; items whose top is at or below Bottom belong
// to the bottom zone.
type Zones struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
	Height int `json:"height"`
}

func newZones(height, divisor int) Zones {
	edge := height / divisor
	return Zones{Top: edge, Bottom: height - edge, Height: height}
}

// State is the scroll state of an engine.
type State int

const (
	// Neutral means scrolling is possible in both directions.
	Neutral State = iota
	// AtTopBoundary means the first item rests at the top margin and
	// further negative deltas are rejected.
	AtTopBoundary
	// AtBottomBoundary means the last item rests at the bottom margin and
	// further positive deltas are rejected.
	AtBottomBoundary
)

// String returns the state name used in logs and JSON.
func (s State) String() string {
	switch s {
	case AtTopBoundary:
		return "top"
	case AtBottomBoundary:
		return "bottom"
	default:
		return "neutral"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// blocks reports whether the state rejects a delta without running a pass.
func (s State) blocks(delta int) bool {
	return (s == AtTopBoundary && delta < 0) || (s == AtBottomBoundary && delta > 0)
}
