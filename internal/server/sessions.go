package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	lenserr "github.com/matzehuels/lens/pkg/errors"
	"github.com/matzehuels/lens/pkg/layout/force"
	"github.com/matzehuels/lens/pkg/pipeline"
	"github.com/matzehuels/lens/pkg/session"
)

// Drag phases accepted by POST /api/sessions/{id}/drag.
const (
	phaseStart = "start"
	phaseMove  = "move"
	phaseEnd   = "end"
)

type createSessionRequest struct {
	AssetID string  `json:"asset_id"`
	Focal   string  `json:"focal,omitempty"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Seed    uint64  `json:"seed,omitempty"`
}

type reloadRequest struct {
	AssetID string `json:"asset_id"`
	Focal   string `json:"focal,omitempty"`
}

type dragRequest struct {
	Phase string  `json:"phase"`
	Node  string  `json:"node"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type resizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type sessionResponse struct {
	Session session.Info `json:"session"`
	Frame   force.Frame  `json:"frame"`
}

// stepResponse reports whether the requested ticks ran. Applied is false
// when the request named a stale generation; Frame is current either way.
type stepResponse struct {
	Applied bool        `json:"applied"`
	Frame   force.Frame `json:"frame"`
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.cfg.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, focal, err := s.cfg.Runner.Load(r.Context(), pipeline.Options{AssetID: req.AssetID, Focal: req.Focal})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.cfg.Sessions.Create(r.Context(), session.Params{
		AssetID: req.AssetID,
		Graph:   g,
		Focal:   focal,
		Width:   req.Width,
		Height:  req.Height,
		Force:   force.Options{Seed: req.Seed},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.cfg.Logger.Debug("session opened", "id", sess.ID, "asset", req.AssetID)
	writeJSON(w, http.StatusCreated, sessionResponse{Session: sess.Info(), Frame: sess.Frame()})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": s.cfg.Sessions.List()})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess.Info(), Frame: sess.Frame()})
}

func (s *Server) sessionLayout(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Layout())
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// stepSession handles POST /api/sessions/{id}/step. The generation query
// parameter defaults to the session's current generation.
func (s *Server) stepSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	n := 1
	if v := q.Get("n"); v != "" {
		var err error
		if n, err = strconv.Atoi(v); err != nil || n < 1 {
			s.writeError(w, r, lenserr.New(lenserr.ErrCodeInvalidInput, "n must be a positive integer, got %q", v))
			return
		}
	}
	gen := sess.Frame().Generation
	v := q.Get("gen")
	if v == "" {
		v = q.Get("generation")
	}
	if v != "" {
		var err error
		if gen, err = strconv.ParseUint(v, 10, 64); err != nil {
			s.writeError(w, r, lenserr.Wrap(lenserr.ErrCodeInvalidInput, err, "invalid generation %q", v))
			return
		}
	}
	frame, applied := sess.Advance(r.Context(), gen, n)
	writeJSON(w, http.StatusOK, stepResponse{Applied: applied, Frame: frame})
}

func (s *Server) dragSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req dragRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p := force.Point{X: req.X, Y: req.Y}

	var err error
	switch req.Phase {
	case phaseStart:
		err = sess.BeginDrag(req.Node, p)
	case phaseMove:
		err = sess.UpdateDrag(req.Node, p)
	case phaseEnd:
		err = sess.EndDrag(req.Node)
	default:
		err = lenserr.New(lenserr.ErrCodeInvalidInput, "phase must be start, move or end, got %q", req.Phase)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Frame())
}

func (s *Server) resizeSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req resizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := sess.Resize(req.Width, req.Height); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Frame())
}

// reloadSession switches the session to another asset's lineage. The
// response carries the new generation; ticks tagged with the old one are
// ignored from here on.
func (s *Server) reloadSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req reloadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, focal, err := s.cfg.Runner.Load(r.Context(), pipeline.Options{AssetID: req.AssetID, Focal: req.Focal})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.Reload(req.AssetID, g, focal)
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess.Info(), Frame: sess.Frame()})
}
