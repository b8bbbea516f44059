package session

import (
	"context"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackscroll/pkg/config"
	"github.com/matzehuels/stackscroll/pkg/errors"
	"github.com/matzehuels/stackscroll/pkg/observability"
	"github.com/matzehuels/stackscroll/pkg/stack"
	"github.com/matzehuels/stackscroll/pkg/units"
)

var quiet = log.New(io.Discard)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Viewport.Height = units.PxOf(600)
	cfg.Item.Height = units.PxOf(100)
	cfg.Item.Margins = config.MarginConfig{}
	cfg.Item.Count = 50
	cfg.Stack.Step = units.PxOf(20)
	return cfg
}

func newSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(context.Background(), testConfig(), time.Minute, quiet)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

type recordingHooks struct {
	observability.NoopSessionHooks
	mu      sync.Mutex
	created []string
	closed  map[string]bool
}

func (h *recordingHooks) OnSessionCreated(_ context.Context, id string, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.created = append(h.created, id)
}

func (h *recordingHooks) OnSessionClosed(_ context.Context, id string, expired bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed[id] = expired
}

func TestNewRunsLayout(t *testing.T) {
	s := newSession(t)

	if len(s.ID) != 36 {
		t.Errorf("ID = %q, want a UUID", s.ID)
	}
	f := s.Frame()
	if f.Kind != "layout" || len(f.Items) != 10 {
		t.Errorf("first frame = %s with %d items, want layout with 10", f.Kind, len(f.Items))
	}
	info := s.Info()
	if info.Passes != 1 || info.Count != 50 || info.Geometry.MaxDepth != 5 {
		t.Errorf("Info() = %+v", info)
	}
	if info.Pool.Live != 10 {
		t.Errorf("Info().Pool.Live = %d, want 10", info.Pool.Live)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Stack.ZoneDivisor = 0
	if _, err := New(context.Background(), cfg, 0, quiet); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("New() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
	}
}

func TestScrollAndApply(t *testing.T) {
	s := newSession(t)

	f, err := s.Scroll(50)
	if err != nil {
		t.Fatalf("Scroll() error = %v", err)
	}
	if f.Applied != 50 || f.Seq != 1 {
		t.Errorf("Scroll(50) frame seq %d applied %d, want seq 1 applied 50", f.Seq, f.Applied)
	}

	count := 4
	f, err = s.Apply(Change{Count: &count})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(f.Items) != 4 || f.Items[0].Rect.Top != 0 {
		t.Errorf("after shrinking to 4 items: %d items, first top %d", len(f.Items), f.Items[0].Rect.Top)
	}

	f, err = s.Apply(Change{Viewport: &stack.Size{Width: 360, Height: 300}, Toggle: true})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := s.Info().Zones.Height; got != 300 {
		t.Errorf("Zones().Height = %d, want 300", got)
	}
	if f.State != "neutral" {
		t.Errorf("State = %q, want neutral", f.State)
	}

	for _, bad := range []int{-1, config.MaxItemCount + 1, math.MaxInt} {
		if _, err := s.Apply(Change{Count: &bad}); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Apply(count %d) code = %v, want %v", bad, errors.GetCode(err), errors.ErrCodeInvalidInput)
		}
	}
	if got := s.Info().Count; got != 4 {
		t.Errorf("Count after rejected changes = %d, want 4", got)
	}
	if _, err := s.Apply(Change{Palette: []string{"red"}}); !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Errorf("Apply(bad palette) code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidColor)
	}
}

func TestConcurrentScrolls(t *testing.T) {
	s := newSession(t)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			delta := 40
			if i%2 == 1 {
				delta = -40
			}
			for range 20 {
				if _, err := s.Scroll(delta); err != nil {
					t.Errorf("Scroll() error = %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := s.Info().Passes; got != 1+8*20 {
		t.Errorf("Passes = %d, want %d", got, 1+8*20)
	}
	tr := s.Trace()
	if err := tr.Check(); err != nil {
		t.Errorf("final frame fails Check(): %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	hooks := &recordingHooks{closed: make(map[string]bool)}
	observability.SetSessionHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	store := NewMemoryStore(2)

	a, b, c := newSession(t), newSession(t), newSession(t)
	for _, s := range []*Session{a, b} {
		if err := store.Set(ctx, s); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if err := store.Set(ctx, c); !errors.Is(err, errors.ErrCodeLimitExceeded) {
		t.Errorf("Set() over limit code = %v, want %v", errors.GetCode(err), errors.ErrCodeLimitExceeded)
	}
	if err := store.Set(ctx, a); err != nil {
		t.Errorf("replacing a stored session should not count against the limit: %v", err)
	}

	got, err := store.Get(ctx, a.ID)
	if err != nil || got != a {
		t.Errorf("Get(a) = %v, %v", got, err)
	}
	if _, err := store.Get(ctx, "nope"); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get(unknown) code = %v, want %v", errors.GetCode(err), errors.ErrCodeSessionNotFound)
	}

	list := store.List(ctx)
	if len(list) != 2 || list[0] != a || list[1] != b {
		t.Errorf("List() = %v, want [a b]", list)
	}

	if err := store.Delete(ctx, b.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, b.ID); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("second Delete() code = %v, want %v", errors.GetCode(err), errors.ErrCodeSessionNotFound)
	}
	if expired, ok := hooks.closed[b.ID]; !ok || expired {
		t.Errorf("OnSessionClosed(b) expired=%v called=%v, want a non-expired close", expired, ok)
	}
	// c was refused, so only a and b count as created.
	if len(hooks.created) != 2 {
		t.Errorf("OnSessionCreated called %d times, want 2", len(hooks.created))
	}
	if live := b.Info().Pool.Live; live != 0 {
		t.Errorf("deleted session holds %d views, want 0", live)
	}
}

func TestCloseReleasesViews(t *testing.T) {
	s := newSession(t)
	if live := s.Info().Pool.Live; live == 0 {
		t.Fatal("new session should hold views")
	}

	s.Close()
	if live := s.Info().Pool.Live; live != 0 {
		t.Errorf("Pool.Live after Close() = %d, want 0", live)
	}

	f, err := s.Layout()
	if err != nil {
		t.Fatalf("Layout() after Close() error = %v", err)
	}
	if len(f.Items) != 10 || f.Items[0].Index != 0 {
		t.Errorf("Layout() after Close() = %d items from %d, want 10 from 0", len(f.Items), f.Items[0].Index)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	hooks := &recordingHooks{closed: make(map[string]bool)}
	observability.SetSessionHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	store := NewMemoryStore(0)
	a, b := newSession(t), newSession(t)
	_ = store.Set(ctx, a)
	_ = store.Set(ctx, b)
	if len(hooks.created) != 2 {
		t.Errorf("OnSessionCreated called %d times, want 2", len(hooks.created))
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := store.Get(ctx, a.ID); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get(expired) code = %v, want %v", errors.GetCode(err), errors.ErrCodeSessionNotFound)
	}
	if n := store.Cleanup(ctx); n != 1 {
		t.Errorf("Cleanup() = %d, want 1", n)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
	if !hooks.closed[a.ID] || !hooks.closed[b.ID] {
		t.Errorf("closed = %v, want both marked expired", hooks.closed)
	}
}
