package stack

import "testing"

func TestRectSize(t *testing.T) {
	tests := []struct {
		name          string
		rect          Rect
		width, height int
	}{
		{"card", Rect{Left: 16, Top: 8, Right: 416, Bottom: 128}, 400, 120},
		{"empty", Rect{Left: 10, Top: 50, Right: 10, Bottom: 50}, 0, 0},
		{"from origin", Rect{Right: 100, Bottom: 100}, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.Width(); got != tt.width {
				t.Errorf("Width() = %v, want %v", got, tt.width)
			}
			if got := tt.rect.Height(); got != tt.height {
				t.Errorf("Height() = %v, want %v", got, tt.height)
			}
		})
	}
}

func TestRectOffset(t *testing.T) {
	r := Rect{Left: 0, Top: 100, Right: 50, Bottom: 200}
	got := r.Offset(-30)
	if want := (Rect{Left: 0, Top: 70, Right: 50, Bottom: 170}); got != want {
		t.Errorf("Offset(-30) = %+v, want %+v", got, want)
	}
	if r.Top != 100 {
		t.Error("Offset must not modify the receiver")
	}
}

func TestRectOverlapsAndVisible(t *testing.T) {
	a := Rect{Top: 0, Bottom: 100}
	b := Rect{Top: 80, Bottom: 180}
	c := Rect{Top: 100, Bottom: 200}

	if !a.Overlaps(b) || a.Overlaps(c) {
		t.Errorf("Overlaps: a/b = %v, a/c = %v, want true, false", a.Overlaps(b), a.Overlaps(c))
	}
	if !b.Visible(100) || c.Visible(100) {
		t.Errorf("Visible(100): b = %v, c = %v, want true, false", b.Visible(100), c.Visible(100))
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Neutral:          "neutral",
		AtTopBoundary:    "top",
		AtBottomBoundary: "bottom",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestFirstAtOrBelow(t *testing.T) {
	tests := []struct {
		origin, pitch, edge, n int
		want                   int
	}{
		{0, 100, 100, 50, 1},
		{0, 100, 500, 50, 5},
		{-50, 100, 100, 50, 2},
		{-50, 100, 500, 50, 6},
		{200, 100, 100, 50, 0},
		{0, 100, 10000, 50, 50},
	}
	for _, tt := range tests {
		if got := firstAtOrBelow(tt.origin, tt.pitch, tt.edge, tt.n); got != tt.want {
			t.Errorf("firstAtOrBelow(%d, %d, %d, %d) = %d, want %d", tt.origin, tt.pitch, tt.edge, tt.n, got, tt.want)
		}
	}
}
