package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all routes mounted:
//
//	GET    /healthz
//	GET    /metrics
//	GET    /api/domains
//	GET    /api/assets?q=&domain=
//	GET    /api/assets/{id}
//	GET    /api/assets/{id}/lineage?focal=
//	GET    /api/assets/{id}/layout?format=&width=&height=&seed=&focal=&connected=
//	POST   /api/sessions
//	GET    /api/sessions
//	GET    /api/sessions/{id}
//	GET    /api/sessions/{id}/layout
//	POST   /api/sessions/{id}/step?n=&gen=
//	POST   /api/sessions/{id}/drag
//	POST   /api/sessions/{id}/resize
//	POST   /api/sessions/{id}/reload
//	DELETE /api/sessions/{id}
func NewRouter(s *Server) chi.Router {
	r := chi.NewRouter()
	useMiddleware(r, s.cfg.Logger)

	r.Get("/healthz", s.health)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/domains", s.listDomains)

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", s.listAssets)
			r.Get("/{id}", s.getAsset)
			r.Get("/{id}/lineage", s.getLineage)
			r.Get("/{id}/layout", s.getLayout)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Get("/", s.listSessions)
			r.Get("/{id}", s.getSession)
			r.Delete("/{id}", s.deleteSession)
			r.Get("/{id}/layout", s.sessionLayout)
			r.Post("/{id}/step", s.stepSession)
			r.Post("/{id}/drag", s.dragSession)
			r.Post("/{id}/resize", s.resizeSession)
			r.Post("/{id}/reload", s.reloadSession)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("NOT_FOUND", "no route for "+r.URL.Path))
	})
	return r
}
