package stack

// Rect is an item rectangle in viewport pixels. Y grows downwards, so Top
// is less than Bottom for any non-empty rectangle.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Offset returns r moved down by dy pixels (up for negative dy).
func (r Rect) Offset(dy int) Rect {
	r.Top += dy
	r.Bottom += dy
	return r
}

// Overlaps reports whether r and o share any vertical extent.
func (r Rect) Overlaps(o Rect) bool {
	return r.Top < o.Bottom && o.Top < r.Bottom
}

// Visible reports whether any part of r lies within a viewport of the given
// height.
func (r Rect) Visible(height int) bool {
	return r.Bottom > 0 && r.Top < height
}
