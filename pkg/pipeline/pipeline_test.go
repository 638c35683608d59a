package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lens/pkg/cache"
	"github.com/matzehuels/lens/pkg/catalog"
	lenserr "github.com/matzehuels/lens/pkg/errors"
	"github.com/matzehuels/lens/pkg/graph"
	"github.com/matzehuels/lens/pkg/lineage"
	"github.com/matzehuels/lens/pkg/observability"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(&strings.Builder{}, log.Options{})
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(catalog.Mock(), fc, nil, quietLogger())
}

func TestOptionsSetDefaults(t *testing.T) {
	opts := Options{AssetID: "asset-123"}
	opts.SetDefaults()

	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("viewport = %vx%v", opts.Width, opts.Height)
	}
	if opts.Seed != DefaultSeed || opts.MaxTicks != DefaultMaxTicks {
		t.Errorf("seed=%d ticks=%d", opts.Seed, opts.MaxTicks)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("formats = %v", opts.Formats)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code lenserr.Code
	}{
		{"Valid", Options{AssetID: "asset-123"}, ""},
		{"ValidFile", Options{GraphFile: "g.json", Formats: []string{"dot", "graphviz"}}, ""},
		{"NoSource", Options{}, lenserr.ErrCodeInvalidInput},
		{"BothSources", Options{AssetID: "a", GraphFile: "g.json"}, lenserr.ErrCodeInvalidInput},
		{"BadAssetID", Options{AssetID: "../etc"}, lenserr.ErrCodeInvalidInput},
		{"NegativeWidth", Options{AssetID: "a", Width: -1}, lenserr.ErrCodeInvalidViewport},
		{"TooManyTicks", Options{AssetID: "a", MaxTicks: lenserr.MaxTicks + 1}, lenserr.ErrCodeInvalidInput},
		{"BadFormat", Options{AssetID: "a", Formats: []string{"svg", "gif"}}, lenserr.ErrCodeInvalidFormat},
		{"UppercaseFormat", Options{AssetID: "a", Formats: []string{"SVG"}}, lenserr.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !lenserr.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	g, focal, err := Load(ctx, catalog.Mock(), Options{AssetID: "asset-123"})
	if err != nil {
		t.Fatal(err)
	}
	if focal != catalog.MockFocal || g.NodeCount() != 8 {
		t.Errorf("focal=%q nodes=%d", focal, g.NodeCount())
	}

	_, focal, err = Load(ctx, catalog.Mock(), Options{AssetID: "asset-123", Focal: "stg_cust"})
	if err != nil || focal != "stg_cust" {
		t.Errorf("override: focal=%q err=%v", focal, err)
	}

	_, _, err = Load(ctx, catalog.Mock(), Options{AssetID: "asset-123", Focal: "nope"})
	if !lenserr.Is(err, lenserr.ErrCodeNodeNotFound) {
		t.Errorf("unknown focal: %v", err)
	}

	_, _, err = Load(ctx, catalog.Mock(), Options{AssetID: "asset-999"})
	if !lenserr.Is(err, lenserr.ErrCodeAssetNotFound) {
		t.Errorf("unknown asset: %v", err)
	}

	_, _, err = Load(ctx, nil, Options{AssetID: "asset-123"})
	if !lenserr.Is(err, lenserr.ErrCodeUnsupported) {
		t.Errorf("nil catalog: %v", err)
	}
}

func TestLoadConnected(t *testing.T) {
	ctx := context.Background()
	opts := Options{AssetID: "asset-123", Focal: "dash_exec"}

	full, _, err := Load(ctx, catalog.Mock(), opts)
	if err != nil {
		t.Fatal(err)
	}
	opts.Connected = true
	g, focal, err := Load(ctx, catalog.Mock(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if focal != "dash_exec" || full.NodeCount() != 8 {
		t.Fatalf("focal=%q full=%d", focal, full.NodeCount())
	}
	// The dashboard sees only its upstream chain; the sibling outputs go.
	if g.NodeCount() != 6 || g.EdgeCount() != 5 {
		t.Errorf("connected graph: %d nodes, %d edges, want 6 and 5", g.NodeCount(), g.EdgeCount())
	}
	if g.Has("model_churn") || g.Has("mart_finance") {
		t.Error("sibling outputs kept")
	}
	if GraphHash(g) == GraphHash(full) {
		t.Error("connected graph shares the full graph's cache hash")
	}
}

func TestLoadGraphFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lineage.json")

	gj := catalog.MockLineage()
	if err := graph.WriteGraphFile(gj, path); err != nil {
		t.Fatal(err)
	}
	g, focal, err := Load(ctx, nil, Options{GraphFile: path})
	if err != nil {
		t.Fatal(err)
	}
	if focal != catalog.MockFocal || g.EdgeCount() != 7 {
		t.Errorf("focal=%q edges=%d", focal, g.EdgeCount())
	}

	gj.Focal = ""
	if err := graph.WriteGraphFile(gj, path); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(ctx, nil, Options{GraphFile: path}); !lenserr.Is(err, lenserr.ErrCodeInvalidInput) {
		t.Errorf("missing focal: %v", err)
	}

	if _, _, err := Load(ctx, nil, Options{GraphFile: filepath.Join(t.TempDir(), "missing.json")}); !lenserr.Is(err, lenserr.ErrCodeInvalidGraph) {
		t.Errorf("missing file: %v", err)
	}
}

func TestExecute(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Execute(context.Background(), Options{
		AssetID: "asset-123",
		Formats: []string{FormatSVG, FormatDOT, FormatJSON},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Lineage.Upstream) != 4 || len(res.Lineage.Downstream) != 3 {
		t.Errorf("lineage = %d up / %d down", len(res.Lineage.Upstream), len(res.Lineage.Downstream))
	}
	if res.Lineage.DirectUpstream != 2 || res.Lineage.DirectDownstream != 3 {
		t.Errorf("badges = %d/%d", res.Lineage.DirectUpstream, res.Lineage.DirectDownstream)
	}
	if !res.Layout.Settled {
		t.Errorf("layout did not settle in %d ticks", res.Layout.Ticks)
	}
	if len(res.Layout.Nodes) != 8 || len(res.Layout.Links) != 7 {
		t.Errorf("layout = %d nodes, %d links", len(res.Layout.Nodes), len(res.Layout.Links))
	}
	n, ok := res.Layout.Lookup(catalog.MockFocal)
	if !ok || !n.Focal {
		t.Error("focal node not marked in layout")
	}

	if !strings.HasPrefix(string(res.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact missing")
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph") {
		t.Error("dot artifact missing")
	}
	if _, err := graph.UnmarshalLayout(res.Artifacts[FormatJSON]); err != nil {
		t.Errorf("json artifact: %v", err)
	}
	if res.GraphHash == "" {
		t.Error("graph hash not set")
	}
}

func TestExecuteUsesCache(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	opts := Options{AssetID: "asset-123", Formats: []string{FormatSVG, FormatJSON}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.TraceHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("cold run hit cache: %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.TraceHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("warm run missed cache: %+v", second.CacheInfo)
	}
	if string(first.Artifacts[FormatSVG]) != string(second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit {
		t.Error("refresh should bypass cache reads")
	}
}

func TestLayoutSharedAcrossFocal(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	g, _, err := r.Load(ctx, Options{AssetID: "asset-123"})
	if err != nil {
		t.Fatal(err)
	}

	a, hit, err := r.ComputeLayoutWithCacheInfo(ctx, g, "this_asset", Options{})
	if err != nil || hit {
		t.Fatalf("first: hit=%v err=%v", hit, err)
	}
	b, hit, err := r.ComputeLayoutWithCacheInfo(ctx, g, "dash_exec", Options{})
	if err != nil || !hit {
		t.Fatalf("second: hit=%v err=%v", hit, err)
	}

	if b.Focal != "dash_exec" {
		t.Errorf("focal = %q", b.Focal)
	}
	for _, n := range b.Nodes {
		if n.Focal != (n.ID == "dash_exec") {
			t.Errorf("node %s focal=%v", n.ID, n.Focal)
		}
		p, _ := a.Lookup(n.ID)
		if p.X != n.X || p.Y != n.Y {
			t.Errorf("node %s moved between focal choices", n.ID)
		}
	}
}

func TestComputeLayoutDeterministic(t *testing.T) {
	ctx := context.Background()
	g, focal, err := Load(ctx, catalog.Mock(), Options{AssetID: "asset-125"})
	if err != nil {
		t.Fatal(err)
	}
	a, err := ComputeLayout(ctx, g, focal, Options{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	b, err := ComputeLayout(ctx, g, focal, Options{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Nodes {
		if a.Nodes[i].X != b.Nodes[i].X || a.Nodes[i].Y != b.Nodes[i].Y {
			t.Fatalf("node %s differs between runs", a.Nodes[i].ID)
		}
	}
}

func TestComputeLayoutCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g, focal, err := Load(context.Background(), catalog.Mock(), Options{AssetID: "asset-123"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ComputeLayout(ctx, g, focal, Options{}); err == nil {
		t.Error("expected context error")
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	if _, err := Render(context.Background(), nil, graph.Layout{Width: 1, Height: 1}, Options{Formats: []string{"gif"}}); err == nil {
		t.Error("expected error")
	}
}

func TestGraphHash(t *testing.T) {
	ctx := context.Background()
	a, _, _ := Load(ctx, catalog.Mock(), Options{AssetID: "asset-123"})
	b, _, _ := Load(ctx, catalog.Mock(), Options{AssetID: "asset-124"})
	if GraphHash(a) != GraphHash(b) {
		t.Error("identical lineage should hash equal")
	}
	if err := b.AddNode(graphNode("extra")); err != nil {
		t.Fatal(err)
	}
	if GraphHash(a) == GraphHash(b) {
		t.Error("different lineage should hash differently")
	}
}

// =============================================================================
// Observability
// =============================================================================

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu      sync.Mutex
	traces  int
	layouts int
	renders int
	hits    map[string]int
	misses  map[string]int
}

func (h *recordingHooks) OnTraceComplete(context.Context, string, int, int, int, time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.traces++
}

func (h *recordingHooks) OnLayoutComplete(context.Context, int, bool, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.layouts++
}

func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders++
}

func (h *recordingHooks) OnCacheHit(_ context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[keyType]++
}

func (h *recordingHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses[keyType]++
}

func TestExecuteEmitsHooks(t *testing.T) {
	h := &recordingHooks{hits: map[string]int{}, misses: map[string]int{}}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	r := newTestRunner(t)
	opts := Options{AssetID: "asset-123"}
	for range 2 {
		if _, err := r.Execute(ctx, opts); err != nil {
			t.Fatal(err)
		}
	}

	if h.traces != 1 || h.layouts != 1 || h.renders != 1 {
		t.Errorf("stage hooks: trace=%d layout=%d render=%d, want 1 each", h.traces, h.layouts, h.renders)
	}
	for _, kt := range []string{keyTypeLineage, keyTypeLayout, keyTypeArtifact} {
		if h.misses[kt] != 1 || h.hits[kt] != 1 {
			t.Errorf("%s: hits=%d misses=%d, want 1/1", kt, h.hits[kt], h.misses[kt])
		}
	}
}

func graphNode(id string) lineage.Node {
	return lineage.Node{ID: id, Name: id, Kind: lineage.KindTable}
}
