// Package units converts device-independent lengths to pixels.
//
// A [Length] is a value with a [Unit]. Pixel lengths pass through unchanged;
// dp lengths are scaled by a [Density] (pixels per dp) and rounded to the
// nearest whole pixel, so 20dp at density 2.75 is 55px.
//
//	step, err := units.Parse("20dp")
//	px := step.Px(units.Density(2))  // 40
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/stackscroll/pkg/errors"
)

// Unit identifies the unit of a [Length].
type Unit string

const (
	// Px is a physical pixel.
	Px Unit = "px"
	// Dp is a density-independent pixel.
	Dp Unit = "dp"
)

// Density is the number of physical pixels per dp. A zero or negative
// density is treated as 1.
type Density float64

// DefaultDensity is the baseline (mdpi) density.
const DefaultDensity Density = 1

// DpToPx converts dp to pixels, rounding half away from zero.
func (d Density) DpToPx(dp float64) int {
	if d <= 0 {
		d = DefaultDensity
	}
	return int(math.Round(dp * float64(d)))
}

// PxToDp converts pixels back to dp.
func (d Density) PxToDp(px int) float64 {
	if d <= 0 {
		d = DefaultDensity
	}
	return float64(px) / float64(d)
}

// Length is a distance in a given unit.
type Length struct {
	Value float64
	Unit  Unit
}

// DpOf returns a dp length.
func DpOf(v float64) Length { return Length{Value: v, Unit: Dp} }

// PxOf returns a pixel length.
func PxOf(v int) Length { return Length{Value: float64(v), Unit: Px} }

// Px resolves the length to whole pixels at density d.
func (l Length) Px(d Density) int {
	if l.Unit == Dp {
		return d.DpToPx(l.Value)
	}
	return int(math.Round(l.Value))
}

// IsZero reports whether the length is zero in any unit.
func (l Length) IsZero() bool { return l.Value == 0 }

// String formats the length as "<value><unit>", e.g. "20dp".
func (l Length) String() string {
	u := l.Unit
	if u == "" {
		u = Px
	}
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + string(u)
}

// Parse reads a length such as "20dp", "24px", "1.5dp" or "12".
// A bare number is taken as pixels.
func Parse(s string) (Length, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Length{}, errors.New(errors.ErrCodeInvalidInput, "empty length")
	}

	unit := Px
	switch {
	case strings.HasSuffix(s, string(Dp)):
		unit = Dp
		s = strings.TrimSuffix(s, string(Dp))
	case strings.HasSuffix(s, "dip"):
		unit = Dp
		s = strings.TrimSuffix(s, "dip")
	case strings.HasSuffix(s, string(Px)):
		s = strings.TrimSuffix(s, string(Px))
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Length{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid length %q", s)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return Length{}, errors.New(errors.ErrCodeInvalidInput, "length must be a finite non-negative number, got %v", v)
	}
	return Length{Value: v, Unit: unit}, nil
}

// MustParse is like [Parse] but panics on error. It is intended for
// package-level defaults.
func MustParse(s string) Length {
	l, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("units: %v", err))
	}
	return l
}

// MarshalText implements encoding.TextMarshaler.
func (l Length) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so lengths can be
// written as strings in TOML and JSON.
func (l *Length) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
