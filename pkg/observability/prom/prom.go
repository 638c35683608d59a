// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/lens/pkg/observability"
)

// Registry holds all lens metrics and implements every observability hook
// interface.
type Registry struct {
	registry *prometheus.Registry

	// Pipeline
	TracesTotal       prometheus.Counter
	TraceNodes        *prometheus.HistogramVec
	SkippedEdgesTotal prometheus.Counter
	LayoutsTotal      *prometheus.CounterVec
	LayoutDuration    prometheus.Histogram
	LayoutTicks       prometheus.Histogram
	RendersTotal      *prometheus.CounterVec
	RenderDuration    prometheus.Histogram

	// Cache
	CacheOpsTotal   *prometheus.CounterVec
	CacheWriteBytes *prometheus.HistogramVec

	// Sessions
	SessionsActive     prometheus.Gauge
	SessionsOpenTotal  prometheus.Counter
	SessionsCloseTotal *prometheus.CounterVec
	TicksTotal         *prometheus.CounterVec

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
	_ observability.SessionHooks  = (*Registry)(nil)
	_ observability.HTTPHooks     = (*Registry)(nil)
)

// NewRegistry creates a registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initPipelineMetrics()
	r.initCacheMetrics()
	r.initSessionMetrics()
	r.initHTTPMetrics()
	return r
}

// Install registers r as the global pipeline, cache, session and HTTP hooks.
func (r *Registry) Install() {
	observability.SetPipelineHooks(r)
	observability.SetCacheHooks(r)
	observability.SetSessionHooks(r)
	observability.SetHTTPHooks(r)
}

// Prometheus returns the underlying Prometheus registry.
func (r *Registry) Prometheus() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Registry) initPipelineMetrics() {
	f := promauto.With(r.registry)
	r.TracesTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "lens_traces_total",
		Help: "Total number of lineage traces",
	})
	r.TraceNodes = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lens_trace_nodes",
		Help:    "Nodes reached per trace",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
	}, []string{"direction"})
	r.SkippedEdgesTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "lens_trace_skipped_edges_total",
		Help: "Dangling edges skipped during traversal",
	})
	r.LayoutsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "lens_layouts_total",
		Help: "Total number of computed layouts",
	}, []string{"outcome"})
	r.LayoutDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "lens_layout_duration_seconds",
		Help:    "Layout computation latency in seconds",
		Buckets: prometheus.DefBuckets,
	})
	r.LayoutTicks = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "lens_layout_ticks",
		Help:    "Simulation ticks per layout",
		Buckets: []float64{50, 100, 200, 300, 400, 500, 1000},
	})
	r.RendersTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "lens_renders_total",
		Help: "Total number of rendered artifacts",
	}, []string{"format", "status"})
	r.RenderDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "lens_render_duration_seconds",
		Help:    "Render latency in seconds",
		Buckets: prometheus.DefBuckets,
	})
}

func (r *Registry) initCacheMetrics() {
	f := promauto.With(r.registry)
	r.CacheOpsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "lens_cache_operations_total",
		Help: "Cache lookups and writes by key type",
	}, []string{"key_type", "result"})
	r.CacheWriteBytes = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lens_cache_write_bytes",
		Help:    "Size of cache writes in bytes",
		Buckets: []float64{100, 1000, 10000, 100000, 1000000},
	}, []string{"key_type"})
}

func (r *Registry) initSessionMetrics() {
	f := promauto.With(r.registry)
	r.SessionsActive = f.NewGauge(prometheus.GaugeOpts{
		Name: "lens_sessions_active",
		Help: "Current number of live layout sessions",
	})
	r.SessionsOpenTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "lens_sessions_opened_total",
		Help: "Total number of layout sessions opened",
	})
	r.SessionsCloseTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "lens_sessions_closed_total",
		Help: "Total number of layout sessions closed",
	}, []string{"reason"})
	r.TicksTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "lens_session_ticks_total",
		Help: "Simulation ticks advanced in sessions",
	}, []string{"state"})
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)
	r.HTTPRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "lens_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	r.HTTPRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lens_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
}

// =============================================================================
// Hook Implementations
// =============================================================================

func (r *Registry) OnTraceComplete(_ context.Context, _ string, upstream, downstream, skipped int, _ time.Duration) {
	r.TracesTotal.Inc()
	r.TraceNodes.WithLabelValues("upstream").Observe(float64(upstream))
	r.TraceNodes.WithLabelValues("downstream").Observe(float64(downstream))
	r.SkippedEdgesTotal.Add(float64(skipped))
}

func (r *Registry) OnLayoutStart(context.Context, int) {}

func (r *Registry) OnLayoutComplete(_ context.Context, ticks int, settled bool, d time.Duration, err error) {
	outcome := "settled"
	switch {
	case err != nil:
		outcome = "error"
	case !settled:
		outcome = "budget_exhausted"
	}
	r.LayoutsTotal.WithLabelValues(outcome).Inc()
	r.LayoutDuration.Observe(d.Seconds())
	r.LayoutTicks.Observe(float64(ticks))
}

func (r *Registry) OnRenderStart(context.Context, []string) {}

func (r *Registry) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	for _, f := range formats {
		r.RendersTotal.WithLabelValues(f, status).Inc()
	}
	r.RenderDuration.Observe(d.Seconds())
}

func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheOpsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheOpsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheOpsTotal.WithLabelValues(keyType, "set").Inc()
	r.CacheWriteBytes.WithLabelValues(keyType).Observe(float64(size))
}

func (r *Registry) OnSessionOpen(context.Context, string) {
	r.SessionsOpenTotal.Inc()
	r.SessionsActive.Inc()
}

func (r *Registry) OnSessionClose(_ context.Context, reason string) {
	r.SessionsCloseTotal.WithLabelValues(reason).Inc()
	r.SessionsActive.Dec()
}

func (r *Registry) OnTicks(_ context.Context, n int, state string) {
	r.TicksTotal.WithLabelValues(state).Add(float64(n))
}

func (r *Registry) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
