package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stackscroll/pkg/buildinfo"
	"github.com/matzehuels/stackscroll/pkg/errors"
	"github.com/matzehuels/stackscroll/pkg/session"
	"github.com/matzehuels/stackscroll/pkg/simulate"
	"github.com/matzehuels/stackscroll/pkg/trace"
)

var contentTypes = map[string]string{
	simulate.FormatJSON: "application/json",
	simulate.FormatSVG:  "image/svg+xml",
	simulate.FormatText: "text/plain; charset=utf-8",
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

type sessionResponse struct {
	Session session.Info `json:"session"`
	Frame   trace.Frame  `json:"frame"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list := s.store.List(r.Context())
	infos := make([]session.Info, 0, len(list))
	for _, sess := range list {
		infos = append(infos, sess.Info())
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	cfg, err := req.apply(s.cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	sess, err := session.New(r.Context(), cfg, cfg.Server.SessionTTL.Duration, s.logger)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Set(r.Context(), sess); err != nil {
		sess.Close()
		writeError(w, err)
		return
	}

	s.logger.Info("session created", "id", sess.ID, "items", cfg.Item.Count)
	w.Header().Set("Location", "/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{Session: sess.Info(), Frame: sess.Frame()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess.Info(), Frame: sess.Frame()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("session closed", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req scrollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	f, err := sess.Scroll(req.Delta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var change session.Change
	if err := decodeJSON(w, r, &change); err != nil {
		writeError(w, err)
		return
	}
	f, err := sess.Apply(change)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleFrameSVG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var opts []trace.SVGOption
	if q.Has("zones") {
		opts = append(opts, trace.WithZones())
	}
	if q.Has("labels") {
		opts = append(opts, trace.WithLabels())
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v))
			return
		}
		opts = append(opts, trace.WithScale(scale))
	}

	svg, err := trace.RenderSVG(sess.Trace(), 0, opts...)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[simulate.FormatSVG])
	_, _ = w.Write(svg)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	cfg, err := req.apply(s.cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	opts := simulate.OptionsFromConfig(cfg)
	if len(req.Deltas) > 0 || req.Sweep > 0 {
		opts.Script = trace.Script{Deltas: req.Deltas, Sweep: req.Sweep, Repeat: req.Repeat}
	}
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = simulate.FormatJSON
	}
	opts.Formats = []string{format}
	if req.Frame != nil {
		opts.Frame = *req.Frame
	}
	opts.Filmstrip = req.Filmstrip
	opts.Zones = req.Zones
	opts.Labels = req.Labels
	opts.Scale = req.Scale
	opts.Check = req.Check

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Trace-Hash", result.TraceHash)
	w.Header().Set("X-Cache-Hit", strconv.FormatBool(result.CacheInfo.TraceHit))
	_, _ = w.Write(result.Artifacts[format])
}

// lookup resolves the {id} URL parameter, writing the error response when
// the session is unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateKeyPart(id); err != nil {
		writeError(w, err)
		return nil, false
	}
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}
