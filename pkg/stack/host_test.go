package stack

import (
	"testing"

	"github.com/matzehuels/stackscroll/pkg/errors"
)

// fakeView is the view type handed out by fakeHost.
type fakeView struct {
	index  int
	serial int
}

// fakeHost is an in-memory Host that tracks every acquired view so tests
// can detect leaks and double acquisition.
type fakeHost struct {
	t *testing.T

	n        int
	viewport Size
	measure  Measurement
	// override replaces the measurement reported for specific indices.
	override map[int]Measurement
	// failAt makes Acquire fail for these indices.
	failAt map[int]bool

	live     map[int]fakeView
	serial   int
	acquires int
	releases int
}

func newFakeHost(t *testing.T, n, height, itemHeight int) *fakeHost {
	return &fakeHost{
		t:        t,
		n:        n,
		viewport: Size{Width: 400, Height: height},
		measure:  Measurement{Width: 400, Height: itemHeight},
		override: map[int]Measurement{},
		failAt:   map[int]bool{},
		live:     map[int]fakeView{},
	}
}

func (h *fakeHost) ItemCount() int { return h.n }
func (h *fakeHost) Viewport() Size { return h.viewport }

func (h *fakeHost) Acquire(index int) (fakeView, error) {
	if err := errors.ValidateIndex(index, h.n); err != nil {
		return fakeView{}, err
	}
	if h.failAt[index] {
		return fakeView{}, errors.New(errors.ErrCodeInternal, "pool exhausted at %d", index)
	}
	if _, dup := h.live[index]; dup {
		h.t.Errorf("Acquire(%d) while a view for that index is still live", index)
	}
	h.serial++
	h.acquires++
	v := fakeView{index: index, serial: h.serial}
	h.live[index] = v
	return v, nil
}

func (h *fakeHost) Release(index int, v fakeView) {
	live, ok := h.live[index]
	if !ok || live != v {
		h.t.Errorf("Release(%d, %+v) of a view that is not live", index, v)
	}
	h.releases++
	delete(h.live, index)
}

func (h *fakeHost) Measure(v fakeView) Measurement {
	if m, ok := h.override[v.index]; ok {
		return m
	}
	return h.measure
}

// assertConsistent checks that the engine and host agree on which views are
// materialized.
func assertConsistent(t *testing.T, e *Engine[fakeView], h *fakeHost) {
	t.Helper()
	items := e.Items()
	if len(items) != len(h.live) {
		t.Fatalf("engine holds %d items, host has %d live views", len(items), len(h.live))
	}
	for _, it := range items {
		if v, ok := h.live[it.Index]; !ok || v != it.View {
			t.Fatalf("item %d holds view %+v, host live view %+v", it.Index, it.View, v)
		}
	}
	if got := h.acquires - h.releases; got != len(items) {
		t.Fatalf("acquires - releases = %d, want %d", got, len(items))
	}
}
