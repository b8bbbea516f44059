package trace

import (
	"strconv"
	"strings"

	"github.com/matzehuels/stackscroll/pkg/cache"
	"github.com/matzehuels/stackscroll/pkg/errors"
)

// Script is a sequence of scroll deltas replayed against an engine.
//
// With Deltas set, the deltas are played Repeat times. Without them the
// script is a sweep: Sweep pixels per pass down to the bottom boundary and
// back up to the top one, Repeat times.
type Script struct {
	Deltas []int `json:"deltas,omitempty"`
	Repeat int   `json:"repeat,omitempty"`
	Sweep  int   `json:"sweep,omitempty"`
}

// IsSweep reports whether the script sweeps instead of replaying deltas.
func (s Script) IsSweep() bool { return len(s.Deltas) == 0 }

// Rounds returns the number of repetitions, at least 1.
func (s Script) Rounds() int { return max(1, s.Repeat) }

// Validate checks that the script can be played.
func (s Script) Validate() error {
	if s.Repeat < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "repeat cannot be negative, got %d", s.Repeat)
	}
	if s.IsSweep() && s.Sweep <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "script needs deltas or a positive sweep step")
	}
	return nil
}

// Hash identifies the script for cache keys.
func (s Script) Hash() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(s.Rounds()))
	if s.IsSweep() {
		b.WriteString(":sweep:")
		b.WriteString(strconv.Itoa(s.Sweep))
	} else {
		b.WriteString(":deltas:")
		for i, d := range s.Deltas {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(d))
		}
	}
	return cache.Hash([]byte(b.String()))
}

// ParseDeltas reads a delta list such as "50, -20 400". Commas and
// whitespace both separate values.
func ParseDeltas(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	deltas := make([]int, 0, len(fields))
	for _, f := range fields {
		d, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid delta %q", f)
		}
		deltas = append(deltas, d)
	}
	if len(deltas) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no deltas in %q", s)
	}
	return deltas, nil
}
