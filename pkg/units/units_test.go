package units

import (
	"testing"

	"github.com/matzehuels/stackscroll/pkg/errors"
)

func TestDpToPx(t *testing.T) {
	tests := []struct {
		name    string
		density Density
		dp      float64
		want    int
	}{
		{"baseline", 1, 20, 20},
		{"xhdpi", 2, 20, 40},
		{"rounds half up", 2.75, 20, 55},
		{"rounds fraction", 1.5, 7, 11},
		{"zero density falls back", 0, 20, 20},
		{"negative density falls back", -3, 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.density.DpToPx(tt.dp); got != tt.want {
				t.Errorf("DpToPx(%v) = %d, want %d", tt.dp, got, tt.want)
			}
		})
	}
}

func TestPxToDp(t *testing.T) {
	if got := Density(2).PxToDp(40); got != 20 {
		t.Errorf("PxToDp(40) = %v, want 20", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Length
		wantErr bool
	}{
		{"20dp", Length{20, Dp}, false},
		{"20DP", Length{20, Dp}, false},
		{"1.5dip", Length{1.5, Dp}, false},
		{"24px", Length{24, Px}, false},
		{" 12 ", Length{12, Px}, false},
		{"", Length{}, true},
		{"dp", Length{}, true},
		{"-4px", Length{}, true},
		{"abc", Length{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("Parse(%q) code = %v, want %v", tt.in, errors.GetCode(err), errors.ErrCodeInvalidInput)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLengthPx(t *testing.T) {
	if got := DpOf(20).Px(3); got != 60 {
		t.Errorf("DpOf(20).Px(3) = %d, want 60", got)
	}
	if got := PxOf(24).Px(3); got != 24 {
		t.Errorf("PxOf(24).Px(3) = %d, want 24", got)
	}
}

func TestLengthText(t *testing.T) {
	var l Length
	if err := l.UnmarshalText([]byte("16dp")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	text, err := l.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != "16dp" {
		t.Errorf("MarshalText = %q, want %q", text, "16dp")
	}
	if (Length{Value: 3}).String() != "3px" {
		t.Errorf("unit-less length should format as px")
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on invalid input")
		}
	}()
	MustParse("nope")
}

func TestMustParse(t *testing.T) {
	tests := []struct {
		in   string
		want Length
	}{
		{"20dp", DpOf(20)},
		{"24px", PxOf(24)},
		{"12", PxOf(12)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := MustParse(tt.in); got != tt.want {
				t.Errorf("MustParse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
