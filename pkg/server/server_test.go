package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackscroll/pkg/config"
	"github.com/matzehuels/stackscroll/pkg/errors"
	"github.com/matzehuels/stackscroll/pkg/observability"
	"github.com/matzehuels/stackscroll/pkg/trace"
	"github.com/matzehuels/stackscroll/pkg/units"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Viewport.Height = units.PxOf(600)
	cfg.Item.Height = units.PxOf(100)
	cfg.Item.Margins = config.MarginConfig{}
	cfg.Item.Count = 50
	cfg.Stack.Step = units.PxOf(20)
	cfg.Cache.Backend = config.CacheNone
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()
	srv := New(cfg, WithLogger(log.New(io.Discard)), WithCleanupInterval(0))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectError(t *testing.T, resp *http.Response, status int, code errors.Code) {
	t.Helper()
	if resp.StatusCode != status {
		t.Errorf("status = %d, want %d", resp.StatusCode, status)
	}
	if got := decode[errorResponse](t, resp); got.Code != code {
		t.Errorf("code = %q, want %q (%s)", got.Code, code, got.Error)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, testConfig())
	resp := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[healthResponse](t, resp)
	if got.Status != "ok" || got.Version == "" {
		t.Errorf("health = %+v", got)
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t, testConfig())

	resp := do(t, http.MethodPost, ts.URL+"/sessions", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decode[sessionResponse](t, resp)
	id := created.Session.ID
	if loc := resp.Header.Get("Location"); loc != "/sessions/"+id {
		t.Errorf("Location = %q", loc)
	}
	if len(created.Frame.Items) != 10 {
		t.Errorf("first frame has %d items, want 10", len(created.Frame.Items))
	}

	base := ts.URL + "/sessions/" + id

	resp = do(t, http.MethodPost, base+"/scroll", `{"delta": 50}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("scroll status = %d", resp.StatusCode)
	}
	if f := decode[trace.Frame](t, resp); f.Applied != 50 || f.Items[1].Rect.Top != 50 {
		t.Errorf("scroll frame applied %d, item 1 top %d", f.Applied, f.Items[1].Rect.Top)
	}

	resp = do(t, http.MethodPost, base+"/scroll", `{"delta": -500}`)
	if f := decode[trace.Frame](t, resp); f.Applied != -50 {
		t.Errorf("clamped scroll applied %d, want -50", f.Applied)
	}
	resp = do(t, http.MethodPost, base+"/scroll", `{"delta": -10}`)
	if f := decode[trace.Frame](t, resp); f.Applied != 0 || f.State != "top" {
		t.Errorf("scroll at top applied %d state %q, want 0 top", f.Applied, f.State)
	}

	resp = do(t, http.MethodGet, base, "")
	got := decode[sessionResponse](t, resp)
	if got.Session.Passes != 4 || got.Frame.State != "top" {
		t.Errorf("session passes %d state %q, want 4 top", got.Session.Passes, got.Frame.State)
	}

	resp = do(t, http.MethodPost, base+"/layout", `{"count": 4}`)
	if f := decode[trace.Frame](t, resp); len(f.Items) != 4 || f.State != "neutral" {
		t.Errorf("layout frame has %d items state %q, want 4 neutral", len(f.Items), f.State)
	}

	resp = do(t, http.MethodGet, base+"/frame.svg?zones&labels&scale=0.5", "")
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(body, []byte("<svg")) || !bytes.Contains(body, []byte("zone-top")) {
		t.Errorf("frame.svg body = %.80s", body)
	}

	resp = do(t, http.MethodGet, base+"/frame.svg?scale=big", "")
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeInvalidInput)

	resp = do(t, http.MethodGet, ts.URL+"/sessions", "")
	if list := decode[[]map[string]any](t, resp); len(list) != 1 || list[0]["id"] != id {
		t.Errorf("list = %v", list)
	}

	resp = do(t, http.MethodDelete, base, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, base, "")
	expectError(t, resp, http.StatusNotFound, errors.ErrCodeSessionNotFound)
	resp = do(t, http.MethodDelete, base, "")
	expectError(t, resp, http.StatusNotFound, errors.ErrCodeSessionNotFound)
	resp = do(t, http.MethodGet, ts.URL+"/sessions/bad:id", "")
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeInvalidInput)
}

func TestCreateSessionOverrides(t *testing.T) {
	ts := newTestServer(t, testConfig())

	resp := do(t, http.MethodPost, ts.URL+"/sessions",
		`{"viewport": {"width": 300, "height": 300}, "item": {"width": 300, "height": 50}, "stack_step": "10px", "count": 8}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decode[sessionResponse](t, resp)
	if got.Session.Count != 8 || got.Session.Geometry.ItemHeight != 50 || got.Session.Geometry.StackStep != 10 {
		t.Errorf("session = %+v", got.Session)
	}
}

func TestCreateSessionErrors(t *testing.T) {
	ts := newTestServer(t, testConfig())

	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"malformed", `{"count":`, errors.ErrCodeInvalidInput},
		{"unknown field", `{"speed": 3}`, errors.ErrCodeInvalidInput},
		{"bad step", `{"stack_step": "fast"}`, errors.ErrCodeInvalidInput},
		{"bad divisor", `{"zone_divisor": 1}`, errors.ErrCodeInvalidConfig},
		{"bad colour", `{"colors": ["#zz"]}`, errors.ErrCodeInvalidColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/sessions", tt.body)
			expectError(t, resp, http.StatusBadRequest, tt.code)
		})
	}
}

type countingHooks struct {
	observability.NoopSessionHooks
	created atomic.Int32
}

func (h *countingHooks) OnSessionCreated(context.Context, string, int) { h.created.Add(1) }

func TestSessionLimit(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetSessionHooks(hooks)
	defer observability.Reset()

	cfg := testConfig()
	cfg.Server.MaxSessions = 1
	ts := newTestServer(t, cfg)

	if resp := do(t, http.MethodPost, ts.URL+"/sessions", ""); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create status = %d", resp.StatusCode)
	}
	resp := do(t, http.MethodPost, ts.URL+"/sessions", "")
	expectError(t, resp, http.StatusTooManyRequests, errors.ErrCodeLimitExceeded)

	if n := hooks.created.Load(); n != 1 {
		t.Errorf("OnSessionCreated called %d times, want 1", n)
	}
	list := decode[[]json.RawMessage](t, do(t, http.MethodGet, ts.URL+"/sessions", ""))
	if len(list) != 1 {
		t.Errorf("GET /sessions listed %d sessions, want 1", len(list))
	}
}

func TestSimulate(t *testing.T) {
	ts := newTestServer(t, testConfig())

	resp := do(t, http.MethodPost, ts.URL+"/simulate", `{"deltas": [50, 100], "format": "TXT", "check": true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Trace-Hash") == "" {
		t.Error("X-Trace-Hash missing")
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "frame 2 scroll requested=100 applied=100") {
		t.Errorf("body = %.60s", body)
	}

	resp = do(t, http.MethodPost, ts.URL+"/simulate", `{"sweep": 1000}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sweep status = %d", resp.StatusCode)
	}
	tr, err := trace.ReadJSON(mustRead(t, resp))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if s := tr.Summarize(); s.Applied != 2*4400 {
		t.Errorf("sweep applied %d, want %d", s.Applied, 2*4400)
	}

	resp = do(t, http.MethodPost, ts.URL+"/simulate", `{"format": "png"}`)
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeInvalidFormat)

	resp = do(t, http.MethodPost, ts.URL+"/simulate", `{"deltas": [10], "format": "svg", "frame": 9}`)
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeIndexOutOfRange)
}

func TestRunShutsDown(t *testing.T) {
	srv := New(testConfig(), WithLogger(log.New(io.Discard)), WithCleanupInterval(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func mustRead(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
