package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/lens/pkg/buildinfo"
	"github.com/matzehuels/lens/pkg/observability"
)

// useMiddleware mounts the shared middleware stack. instrument sits outside
// Recoverer so recovered panics are still reported as 500s.
func useMiddleware(r chi.Router, logger *log.Logger) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(instrument(logger))
	r.Use(middleware.Recoverer)
}

// instrument logs each request and reports it to the HTTP hooks under its
// route pattern.
func instrument(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			w.Header().Set("Server", buildinfo.UserAgent())
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			d := time.Since(start)
			observability.HTTP().OnResponse(r.Context(), r.Method, route, status, d)
			logger.Debug("request",
				"id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", d)
		})
	}
}
