// Package session manages live engine sessions for the preview server.
//
// A [Session] owns one card deck and the engine laying it out. The engine
// is single-threaded, so every operation on a session runs under the
// session's mutex; concurrent requests for the same session are serialized
// and requests for different sessions run in parallel.
//
// Sessions expire after a TTL that is extended on every use. A [Store]
// holds them by ID:
//
//	store := session.NewMemoryStore(256)
//	sess, err := session.New(ctx, cfg, session.DefaultTTL, logger)
//	if err != nil {
//	    return err
//	}
//	if err := store.Set(ctx, sess); err != nil {
//	    sess.Close()
//	    return err
//	}
//
//	frame, err := sess.Scroll(120)
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stackscroll/pkg/config"
	"github.com/matzehuels/stackscroll/pkg/errors"
	"github.com/matzehuels/stackscroll/pkg/pool"
	"github.com/matzehuels/stackscroll/pkg/simulate"
	"github.com/matzehuels/stackscroll/pkg/stack"
	"github.com/matzehuels/stackscroll/pkg/trace"
)

// DefaultTTL is the default idle lifetime of a session.
const DefaultTTL = 30 * time.Minute

// Session is one engine driven by a client.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	ttl       time.Duration
	expiresAt time.Time
	sim       *simulate.Session
	passes    int
	last      trace.Frame
}

// Info describes a session.
type Info struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
	Passes    int            `json:"passes"`
	Count     int            `json:"count"`
	Viewport  stack.Size     `json:"viewport"`
	Geometry  stack.Geometry `json:"geometry"`
	Zones     stack.Zones    `json:"zones"`
	State     string         `json:"state"`
	Pool      pool.Stats     `json:"pool"`
}

// New creates a session from cfg and runs its first layout pass.
func New(ctx context.Context, cfg config.Config, ttl time.Duration, logger *log.Logger) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	sim, err := simulate.NewSession(cfg, logger)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ttl:       ttl,
		expiresAt: now.Add(ttl),
		sim:       sim,
	}
	if _, err := s.Layout(); err != nil {
		sim.Close()
		return nil, err
	}
	return s, nil
}

// IsExpired reports whether the session's idle lifetime has passed.
func (s *Session) IsExpired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.After(s.expiresAt)
}

// Info returns a description of the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.sim.Engine
	return Info{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.expiresAt,
		Passes:    s.passes,
		Count:     s.sim.Deck.ItemCount(),
		Viewport:  s.sim.Deck.Viewport(),
		Geometry:  e.Geometry(),
		Zones:     e.Zones(),
		State:     e.State().String(),
		Pool:      s.sim.Deck.Stats(),
	}
}

// Frame returns the frame of the most recent pass.
func (s *Session) Frame() trace.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Trace wraps the most recent frame in a one-frame trace for rendering.
func (s *Session) Trace() *trace.Trace {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.sim.NewTrace()
	t.Frames = []trace.Frame{s.last}
	return t
}

// Scroll runs a scroll pass.
func (s *Session) Scroll(delta int) (trace.Frame, error) {
	return s.run(func() (trace.Frame, error) { return s.sim.Scroll(delta) })
}

// Layout runs a layout pass.
func (s *Session) Layout() (trace.Frame, error) {
	return s.run(s.sim.Layout)
}

// Change is an update applied before a layout pass. Nil fields are left
// alone.
type Change struct {
	Viewport *stack.Size `json:"viewport,omitempty"`
	Count    *int        `json:"count,omitempty"`
	Palette  []string    `json:"palette,omitempty"`
	Toggle   bool        `json:"toggle,omitempty"`
}

// Apply updates the deck and runs a layout pass so the engine picks up the
// change.
func (s *Session) Apply(c Change) (trace.Frame, error) {
	return s.run(func() (trace.Frame, error) {
		deck := s.sim.Deck
		if c.Viewport != nil {
			if c.Viewport.Width < 0 || c.Viewport.Height < 0 {
				return trace.Frame{}, errors.New(errors.ErrCodeInvalidInput, "viewport cannot be negative, got %dx%d", c.Viewport.Width, c.Viewport.Height)
			}
			deck.Resize(*c.Viewport)
		}
		if c.Count != nil {
			if *c.Count < 0 || *c.Count > config.MaxItemCount {
				return trace.Frame{}, errors.New(errors.ErrCodeInvalidInput, "count must be between 0 and %d, got %d", config.MaxItemCount, *c.Count)
			}
			deck.SetCount(*c.Count)
		}
		if len(c.Palette) > 0 {
			if err := deck.Swap(c.Palette); err != nil {
				return trace.Frame{}, err
			}
		}
		if c.Toggle {
			deck.Toggle()
		}
		return s.sim.Layout()
	})
}

// Close releases every view the session holds. A closed session can be
// revived by a layout pass.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim.Close()
}

func (s *Session) run(pass func() (trace.Frame, error)) (trace.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := pass()
	if err != nil {
		return trace.Frame{}, err
	}
	f.Seq = s.passes
	s.passes++
	s.last = f
	s.expiresAt = time.Now().Add(s.ttl)
	return f, nil
}
