package trace

import (
	"encoding/json"

	"github.com/matzehuels/stackscroll/pkg/errors"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	summary bool
	from    int
	to      int // exclusive; 0 means all frames
	compact bool
}

// WithJSONSummary adds a "summary" object computed by [Trace.Summarize].
func WithJSONSummary() JSONOption { return func(r *jsonRenderer) { r.summary = true } }

// WithJSONFrames limits the output to frames [from, to).
func WithJSONFrames(from, to int) JSONOption {
	return func(r *jsonRenderer) { r.from, r.to = from, to }
}

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	*Trace
	Summary *Summary `json:"summary,omitempty"`
}

// RenderJSON encodes t. Without options the document is the full trace,
// indented, and can be read back with [ReadJSON].
func RenderJSON(t *Trace, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{Trace: t}
	if r.summary {
		s := t.Summarize()
		out.Summary = &s
	}
	if r.from != 0 || r.to != 0 {
		to := r.to
		if to == 0 || to > len(t.Frames) {
			to = len(t.Frames)
		}
		if r.from < 0 || r.from > to {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid frame range %d..%d of %d", r.from, r.to, len(t.Frames))
		}
		sub := *t
		sub.Frames = t.Frames[r.from:to]
		out.Trace = &sub
	}

	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}

// ReadJSON decodes a trace written by [RenderJSON].
func ReadJSON(data []byte) (*Trace, error) {
	var t Trace
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode trace")
	}
	return &t, nil
}
