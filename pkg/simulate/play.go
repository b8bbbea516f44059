package simulate

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackscroll/pkg/cards"
	"github.com/matzehuels/stackscroll/pkg/config"
	"github.com/matzehuels/stackscroll/pkg/errors"
	"github.com/matzehuels/stackscroll/pkg/stack"
	"github.com/matzehuels/stackscroll/pkg/trace"
)

// Session couples a deck with the engine laying it out. The server keeps
// one per client; [Play] builds a throwaway one.
type Session struct {
	Deck   *cards.Deck
	Engine *stack.Engine[*cards.Card]
}

// NewSession builds a deck and engine from cfg without running a pass.
func NewSession(cfg config.Config, logger *log.Logger) (*Session, error) {
	deck, err := cards.New(cfg.DeckOptions())
	if err != nil {
		return nil, err
	}
	opts := append(cfg.EngineOptions(), stack.WithLogger(logger))
	return &Session{
		Deck:   deck,
		Engine: stack.New[*cards.Card](deck, opts...),
	}, nil
}

// Layout runs a layout pass and captures it.
func (s *Session) Layout() (trace.Frame, error) {
	if err := s.Engine.Layout(); err != nil {
		return trace.Frame{}, err
	}
	return trace.Capture(s.Engine, trace.KindLayout, 0, 0, s.Deck.Color), nil
}

// Scroll runs a scroll pass and captures it.
func (s *Session) Scroll(delta int) (trace.Frame, error) {
	applied, err := s.Engine.Scroll(delta)
	if err != nil {
		return trace.Frame{}, err
	}
	return trace.Capture(s.Engine, trace.KindScroll, delta, applied, s.Deck.Color), nil
}

// Close returns every card the engine holds to the deck's pool.
func (s *Session) Close() {
	s.Engine.ReleaseAll()
}

// Snapshot captures the current state without running a pass.
func (s *Session) Snapshot() trace.Frame {
	return trace.Capture(s.Engine, trace.KindLayout, 0, 0, s.Deck.Color)
}

// NewTrace starts a trace with the session's geometry. Call it after the
// first layout pass.
func (s *Session) NewTrace() *trace.Trace {
	return trace.New(s.Engine.Geometry(), s.Engine.Zones(), s.Deck.ItemCount())
}

// Play runs a layout pass and then the script, recording every pass.
func Play(ctx context.Context, opts Options) (*trace.Trace, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	s, err := NewSession(opts.Config, opts.Logger)
	if err != nil {
		return nil, err
	}
	f, err := s.Layout()
	if err != nil {
		return nil, err
	}
	t := s.NewTrace()
	t.Append(f)

	step := func(delta int) (int, error) {
		if len(t.Frames) >= MaxFrames {
			return 0, errors.New(errors.ErrCodeInvalidInput, "script exceeds %d frames", MaxFrames)
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		f, err := s.Scroll(delta)
		if err != nil {
			return 0, err
		}
		t.Append(f)
		return f.Applied, nil
	}

	for range opts.Script.Rounds() {
		if opts.Script.IsSweep() {
			err = sweep(step, opts.Script.Sweep)
		} else {
			err = replay(step, opts.Script.Deltas)
		}
		if err != nil {
			return nil, err
		}
	}

	stats := s.Deck.Stats()
	t.Pool = &stats

	if opts.Check {
		if err := t.Check(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func replay(step func(int) (int, error), deltas []int) error {
	for _, d := range deltas {
		if _, err := step(d); err != nil {
			return err
		}
	}
	return nil
}

// sweep scrolls by size until the bottom boundary stops it, then by -size
// until the top boundary does.
func sweep(step func(int) (int, error), size int) error {
	for _, d := range []int{size, -size} {
		for {
			applied, err := step(d)
			if err != nil {
				return err
			}
			if applied == 0 {
				break
			}
		}
	}
	return nil
}
