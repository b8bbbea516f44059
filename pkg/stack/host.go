package stack

// Host is the capability interface an [Engine] depends on. V is the host's
// view type, e.g. a pooled card.
type Host[V any] interface {
	// ItemCount reports the size of the backing collection.
	ItemCount() int

	// Acquire returns a materialized view for index, reusing a pooled one
	// when available. It fails only if index is out of range.
	Acquire(index int) (V, error)

	// Release returns v to the pool. The engine never touches v afterwards.
	Release(index int, v V)

	// Measure reports the size and margins of v.
	Measure(v V) Measurement

	// Viewport reports the current viewport size in pixels.
	Viewport() Size
}

// Size is a width and height in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Margins are the pixel margins around an item.
type Margins struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Measurement is what a host reports for one materialized item.
type Measurement struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Margins Margins `json:"margins"`
}
