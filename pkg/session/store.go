package session

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/stackscroll/pkg/errors"
	"github.com/matzehuels/stackscroll/pkg/observability"
)

// Store is the interface for session storage.
type Store interface {
	// Get retrieves a session by ID. Unknown and expired sessions fail
	// with SESSION_NOT_FOUND.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session. Storing a new session over the limit fails
	// with LIMIT_EXCEEDED and leaves the session untouched; the caller
	// should Close it.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting an unknown session fails with
	// SESSION_NOT_FOUND.
	Delete(ctx context.Context, id string) error

	// List returns the live sessions ordered by creation time.
	List(ctx context.Context) []*Session

	// Cleanup removes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) int
}

// MemoryStore keeps sessions in process memory. It is safe for concurrent
// use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
	now      func() time.Time
}

// NewMemoryStore creates a store holding at most max sessions. A max of
// zero or less means unbounded.
func NewMemoryStore(max int) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		max:      max,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, notFound(id)
	}
	if s.IsExpired(m.now()) {
		m.remove(ctx, id, true)
		return nil, notFound(id)
	}
	return s, nil
}

func (m *MemoryStore) Set(ctx context.Context, s *Session) error {
	m.mu.Lock()
	_, exists := m.sessions[s.ID]
	if !exists && m.max > 0 && len(m.sessions) >= m.max {
		m.mu.Unlock()
		return errors.New(errors.ErrCodeLimitExceeded, "session limit of %d reached", m.max)
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	if !exists {
		observability.Session().OnSessionCreated(ctx, s.ID, s.Info().Count)
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if !m.remove(ctx, id, false) {
		return notFound(id)
	}
	return nil
}

func (m *MemoryStore) List(ctx context.Context) []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Session) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (m *MemoryStore) Cleanup(ctx context.Context) int {
	now := m.now()
	var expired []string
	m.mu.RLock()
	for id, s := range m.sessions {
		if s.IsExpired(now) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range expired {
		if m.remove(ctx, id, true) {
			n++
		}
	}
	return n
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) remove(ctx context.Context, id string, expired bool) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
		observability.Session().OnSessionClosed(ctx, id, expired)
	}
	return ok
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
}

var _ Store = (*MemoryStore)(nil)
