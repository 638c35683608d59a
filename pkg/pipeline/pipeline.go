// Package pipeline provides the load → trace → layout → render pipeline
// shared by the lens CLI and HTTP server.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: read the lineage graph of a catalog asset or a JSON graph file
//  2. Trace: split the graph into upstream and downstream of the focal node
//  3. Layout: run the force simulation until it settles
//  4. Render: produce output in the requested formats (SVG, DOT, JSON, ...)
//
// Trace results, settled layouts and artifacts are cached by content hash,
// so re-running a command on an unchanged graph is a cache lookup.
//
// # Usage
//
//	runner := pipeline.NewRunner(catalog.Mock(), c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    AssetID: "asset-123",
//	    Formats: []string{"svg", "json"},
//	})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	g, focal, err := runner.Load(ctx, opts)
//	report, err := runner.Trace(ctx, g, focal)
//	layout, err := runner.ComputeLayout(ctx, g, focal, opts)
//	artifacts, err := runner.Render(ctx, g, layout, opts)
package pipeline

import (
	"time"

	"github.com/matzehuels/lens/pkg/cache"
	lenserr "github.com/matzehuels/lens/pkg/errors"
	"github.com/matzehuels/lens/pkg/graph"
	"github.com/matzehuels/lens/pkg/lineage"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 600.0

	// DefaultSeed is the default jitter seed for reproducible layouts.
	DefaultSeed = uint64(42)

	// DefaultMaxTicks bounds a headless settle. With the default decay the
	// simulation settles after about 300 ticks.
	DefaultMaxTicks = 1000
)

// Format constants for output formats.
const (
	FormatSVG      = "svg"      // force layout drawn as SVG
	FormatDOT      = "dot"      // Graphviz source
	FormatGraphviz = "graphviz" // Graphviz-rendered SVG
	FormatJSON     = "json"     // positioned layout
	FormatPNG      = "png"
	FormatPDF      = "pdf"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatDOT, FormatGraphviz, FormatJSON, FormatPNG, FormatPDF}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Exactly one of AssetID and GraphFile is required.
	AssetID   string `json:"asset_id,omitempty"`
	GraphFile string `json:"graph_file,omitempty"`
	Focal     string `json:"focal,omitempty"`     // overrides the focal node of the source
	Connected bool   `json:"connected,omitempty"` // drop nodes the focal node neither feeds nor is fed by

	// Layout options
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Seed     uint64  `json:"seed,omitempty"`
	MaxTicks int     `json:"max_ticks,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // kind and status in DOT labels
	Title    string   `json:"title,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Graph     *lineage.Graph
	Focal     string
	GraphHash string

	Lineage   graph.Lineage
	Layout    graph.Layout
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Dangling   int
	LoadTime   time.Duration
	TraceTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	TraceHit  bool
	LayoutHit bool
	RenderHit bool // all requested artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.MaxTicks == 0 {
		o.MaxTicks = DefaultMaxTicks
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
}

// ValidateSource checks that the options name exactly one graph source.
func (o *Options) ValidateSource() error {
	switch {
	case o.AssetID == "" && o.GraphFile == "":
		return lenserr.New(lenserr.ErrCodeInvalidInput, "asset id or graph file is required")
	case o.AssetID != "" && o.GraphFile != "":
		return lenserr.New(lenserr.ErrCodeInvalidInput, "asset id and graph file are mutually exclusive")
	case o.AssetID != "":
		return lenserr.ValidateAssetID(o.AssetID)
	}
	return nil
}

// ValidateLayout checks viewport and tick budget. Call after SetDefaults.
func (o *Options) ValidateLayout() error {
	if err := lenserr.ValidateViewport(o.Width, o.Height); err != nil {
		return err
	}
	return lenserr.ValidateTicks(o.MaxTicks)
}

// ValidateFormats checks every requested format.
func (o *Options) ValidateFormats() error {
	for _, f := range o.Formats {
		if err := lenserr.ValidateFormat(f, ValidFormats); err != nil {
			return err
		}
	}
	return nil
}

// Validate applies defaults and checks the options for a full run.
func (o *Options) Validate() error {
	o.SetDefaults()
	if err := o.ValidateSource(); err != nil {
		return err
	}
	if err := o.ValidateLayout(); err != nil {
		return err
	}
	return o.ValidateFormats()
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:    o.Width,
		Height:   o.Height,
		Seed:     o.Seed,
		MaxTicks: o.MaxTicks,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format, focal string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Focal:    focal,
		Detailed: o.Detailed,
		Title:    o.Title,
	}
}
