package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/lens/pkg/buildinfo"
	"github.com/matzehuels/lens/pkg/catalog"
	lenserr "github.com/matzehuels/lens/pkg/errors"
	"github.com/matzehuels/lens/pkg/lineage"
	"github.com/matzehuels/lens/pkg/pipeline"
)

// Content types per layout format.
var contentTypes = map[string]string{
	pipeline.FormatJSON:     "application/json; charset=utf-8",
	pipeline.FormatSVG:      "image/svg+xml",
	pipeline.FormatGraphviz: "image/svg+xml",
	pipeline.FormatDOT:      "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatPNG:      "image/png",
	pipeline.FormatPDF:      "application/pdf",
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  buildinfo.Version,
		"sessions": s.cfg.Sessions.Len(),
	})
}

func (s *Server) listDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := s.cfg.Catalog.Domains(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"domains": domains})
}

// listAssets handles GET /api/assets. Lineage payloads are stripped; fetch a
// single asset or its lineage for those.
func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	assets, err := s.cfg.Catalog.Search(r.Context(), catalog.Query{Text: q.Get("q"), Domain: q.Get("domain")})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]catalog.Asset, len(assets))
	for i, a := range assets {
		out[i] = a.Summary()
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": out, "total": len(out)})
}

type assetResponse struct {
	catalog.Asset
	Focal            string `json:"focal"`
	DirectUpstream   int    `json:"direct_upstream"`
	DirectDownstream int    `json:"direct_downstream"`
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.cfg.Catalog.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, focal, err := s.cfg.Catalog.Lineage(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	up, down := lineage.DirectCounts(g, focal)
	writeJSON(w, http.StatusOK, assetResponse{Asset: a, Focal: focal, DirectUpstream: up, DirectDownstream: down})
}

func (s *Server) getLineage(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.Options{AssetID: chi.URLParam(r, "id"), Focal: r.URL.Query().Get("focal")}
	g, focal, err := s.cfg.Runner.Load(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.cfg.Runner.Trace(r.Context(), g, focal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// getLayout handles GET /api/assets/{id}/layout, settling a layout
// server-side and returning it in one format.
func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	opts := pipeline.Options{
		AssetID:   chi.URLParam(r, "id"),
		Focal:     q.Get("focal"),
		Connected: q.Get("connected") == "true",
		Formats:   []string{format},
		Title:     q.Get("title"),
	}
	var err error
	if opts.Width, err = floatParam(q.Get("width")); err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Height, err = floatParam(q.Get("height")); err != nil {
		s.writeError(w, r, err)
		return
	}
	if v := q.Get("seed"); v != "" {
		if opts.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			s.writeError(w, r, lenserr.Wrap(lenserr.ErrCodeInvalidInput, err, "invalid seed %q", v))
			return
		}
	}
	if err := opts.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	g, focal, err := s.cfg.Runner.Load(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	layout, err := s.cfg.Runner.ComputeLayout(ctx, g, focal, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, err := s.cfg.Runner.Render(ctx, g, layout, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// floatParam parses an optional numeric query parameter. Empty means zero,
// which the pipeline replaces with its default.
func floatParam(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, lenserr.Wrap(lenserr.ErrCodeInvalidInput, err, "invalid number %q", v)
	}
	return f, nil
}
