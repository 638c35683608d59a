package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lens/pkg/cache"
	"github.com/matzehuels/lens/pkg/catalog"
	"github.com/matzehuels/lens/pkg/graph"
	"github.com/matzehuels/lens/pkg/lineage"
	"github.com/matzehuels/lens/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLineage  = "lineage"
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators; multiple goroutines
// can safely use the same Runner with different options.
type Runner struct {
	Catalog catalog.Catalog
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(cat catalog.Catalog, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Catalog: cat,
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
	}
}

// Execute runs the complete load → trace → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{}

	// Stage 1: Load
	start := time.Now()
	g, focal, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Graph, result.Focal = g, focal
	result.GraphHash = GraphHash(g)
	result.Stats.LoadTime = time.Since(start)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.Dangling = len(g.Dangling())

	// Stage 2: Trace
	start = time.Now()
	report, hit, err := r.TraceWithCacheInfo(ctx, g, focal, opts)
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	result.Lineage = report
	result.Stats.TraceTime = time.Since(start)
	result.CacheInfo.TraceHit = hit

	r.Logger.Info("traced lineage",
		"focal", focal,
		"upstream", len(report.Upstream),
		"downstream", len(report.Downstream),
		"duration", result.Stats.TraceTime)

	// Stage 3: Layout
	start = time.Now()
	layout, hit, err := r.ComputeLayoutWithCacheInfo(ctx, g, focal, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(start)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"nodes", len(layout.Nodes),
		"ticks", layout.Ticks,
		"settled", layout.Settled,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, g, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the graph and focal node named by opts. Dangling edges are
// logged as warnings; they do not fail the load.
func (r *Runner) Load(ctx context.Context, opts Options) (*lineage.Graph, string, error) {
	g, focal, err := Load(ctx, r.Catalog, opts)
	if err != nil {
		return nil, "", err
	}
	for _, e := range g.Dangling() {
		r.Logger.Warn("dangling edge", "source", e.Source, "target", e.Target)
	}
	r.Logger.Debug("loaded lineage", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "focal", focal)
	return g, focal, nil
}

// TraceWithCacheInfo traces focal with caching and returns cache hit info.
func (r *Runner) TraceWithCacheInfo(ctx context.Context, g *lineage.Graph, focal string, opts Options) (graph.Lineage, bool, error) {
	key := r.Keyer.LineageKey(GraphHash(g), focal)

	var report graph.Lineage
	if r.cacheGetJSON(ctx, keyTypeLineage, key, opts.Refresh, &report) {
		return report, true, nil
	}

	start := time.Now()
	res := lineage.Trace(g, focal)
	report = graph.FromResult(g, res)
	observability.Pipeline().OnTraceComplete(ctx, focal,
		len(res.Upstream), len(res.Downstream), len(res.Skipped), time.Since(start))

	if data, err := json.Marshal(report); err == nil {
		r.cacheSet(ctx, keyTypeLineage, key, data, cache.TTLLineage)
	}
	return report, false, nil
}

// Trace is a convenience wrapper that discards the cache hit info.
func (r *Runner) Trace(ctx context.Context, g *lineage.Graph, focal string) (graph.Lineage, error) {
	report, _, err := r.TraceWithCacheInfo(ctx, g, focal, Options{})
	return report, err
}

// ComputeLayoutWithCacheInfo settles a layout with caching and returns cache
// hit info. The cache key ignores the focal node; see [markFocal].
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, g *lineage.Graph, focal string, opts Options) (graph.Layout, bool, error) {
	opts.SetDefaults()
	if err := opts.ValidateLayout(); err != nil {
		return graph.Layout{}, false, err
	}
	key := r.Keyer.LayoutKey(GraphHash(g), opts.LayoutKeyOpts())

	if data, ok := r.cacheGet(ctx, keyTypeLayout, key, opts.Refresh); ok {
		if cached, err := graph.UnmarshalLayout(data); err == nil {
			markFocal(&cached, focal)
			return cached, true, nil
		}
		// If deserialization fails, fall through to recompute
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, g.NodeCount())
	layout, err := ComputeLayout(ctx, g, focal, opts)
	observability.Pipeline().OnLayoutComplete(ctx, layout.Ticks, layout.Settled, time.Since(start), err)
	if err != nil {
		return graph.Layout{}, false, err
	}
	if !layout.Settled {
		r.Logger.Warn("layout did not settle", "ticks", layout.Ticks, "alpha", layout.Alpha)
	}

	if data, err := graph.MarshalLayout(layout); err == nil {
		r.cacheSet(ctx, keyTypeLayout, key, data, cache.TTLLayout)
	}
	return layout, false, nil
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, g *lineage.Graph, focal string, opts Options) (graph.Layout, error) {
	layout, _, err := r.ComputeLayoutWithCacheInfo(ctx, g, focal, opts)
	return layout, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *lineage.Graph, layout graph.Layout, opts Options) (map[string][]byte, bool, error) {
	opts.SetDefaults()
	if err := opts.ValidateFormats(); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format, layout.Focal))
		data, ok := r.cacheGet(ctx, keyTypeArtifact, key, opts.Refresh)
		if !ok {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := Render(ctx, g, layout, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format, layout.Focal))
		r.cacheSet(ctx, keyTypeArtifact, key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *lineage.Graph, layout graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, layout, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// GraphHash returns the content hash of g's structure. Node and edge order
// are part of the hash since they determine the layout.
func GraphHash(g *lineage.Graph) string {
	data, err := graph.MarshalGraph(graph.FromLineage(g, ""))
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// =============================================================================
// Cache Helpers
// =============================================================================

// cacheGet reads key and reports hit/miss to observability. Backend errors
// count as misses so a flaky cache never fails a run.
func (r *Runner) cacheGet(ctx context.Context, keyType, key string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "type", keyType, "error", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

func (r *Runner) cacheGetJSON(ctx context.Context, keyType, key string, refresh bool, v any) bool {
	data, ok := r.cacheGet(ctx, keyType, key, refresh)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (r *Runner) cacheSet(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
