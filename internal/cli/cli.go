// Package cli implements the lens command-line interface.
//
// Commands resolve their lineage source from the global --catalog and
// --graph flags, run the shared pipeline runner and report progress through
// the charmbracelet logger.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lens/pkg/buildinfo"
	"github.com/matzehuels/lens/pkg/cache"
	"github.com/matzehuels/lens/pkg/catalog"
	"github.com/matzehuels/lens/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "lens"

	envCatalog     = "LENS_CATALOG"
	envRedisURL    = "LENS_REDIS_URL"
	envMongoURI    = "LENS_MONGO_URI"
	envCachePrefix = "LENS_CACHE_PREFIX"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	catalogPath  string
	graphFile    string
	noCache      bool
	cacheBackend string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "lens",
		Short: "Lens traces and lays out data lineage",
		Long: `Lens explores the lineage of catalogued data assets: it traces what feeds
an asset and what it feeds, settles a force-directed layout around it and
renders the result as SVG, Graphviz, PNG or PDF.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.catalogPath, "catalog", os.Getenv(envCatalog), "TOML catalog file (default: built-in demo catalog) [$"+envCatalog+"]")
	flags.StringVar(&c.graphFile, "graph", "", "lineage graph JSON file instead of a catalog asset")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable caching")
	flags.StringVar(&c.cacheBackend, "cache-backend", cache.BackendFile, "cache backend: file, redis, mongo, none")

	root.AddCommand(c.assetsCommand())
	root.AddCommand(c.lineageCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadCatalog opens the --catalog file, falling back to the demo catalog.
func (c *CLI) loadCatalog() (catalog.Catalog, error) {
	if c.catalogPath == "" {
		return catalog.Mock(), nil
	}
	cat, err := catalog.LoadFile(c.catalogPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("Loaded catalog", "path", c.catalogPath)
	return cat, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cat, err := c.loadCatalog()
	if err != nil {
		return nil, err
	}
	ch, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cat, ch, newKeyer(), c.Logger), nil
}

// newKeyer scopes cache keys by $LENS_CACHE_PREFIX so deployments sharing
// one Redis or MongoDB backend do not see each other's entries.
func newKeyer() cache.Keyer {
	if prefix := os.Getenv(envCachePrefix); prefix != "" {
		return cache.NewScopedKeyer(nil, prefix)
	}
	return cache.NewDefaultKeyer()
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	cfg := cache.Config{
		Backend:  c.cacheBackend,
		RedisURL: os.Getenv(envRedisURL),
		MongoURI: os.Getenv(envMongoURI),
	}
	if cfg.Backend == cache.BackendFile {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("No cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		cfg.Dir = dir
	}
	ch, err := cache.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Backend, err)
	}
	c.Logger.Debug("Cache ready", "backend", cfg.Backend)
	return ch, nil
}

// sourceOptions fills the graph source of opts from args and --graph.
func (c *CLI) sourceOptions(args []string, opts *pipeline.Options) error {
	if len(args) > 0 {
		opts.AssetID = args[0]
	}
	opts.GraphFile = c.graphFile
	return opts.ValidateSource()
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/lens/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// outputBase derives the base path artifacts are written to. An explicit
// output loses a known format extension; otherwise the source name is used.
func outputBase(output string, opts pipeline.Options) string {
	if output != "" {
		ext := filepath.Ext(output)
		for _, f := range pipeline.ValidFormats {
			if ext == "."+f {
				return strings.TrimSuffix(output, ext)
			}
		}
		return output
	}
	if opts.GraphFile != "" {
		return strings.TrimSuffix(opts.GraphFile, filepath.Ext(opts.GraphFile))
	}
	return opts.AssetID
}

// fileExt maps a format to the extension written on disk.
func fileExt(format string) string {
	switch format {
	case pipeline.FormatGraphviz:
		return "graphviz.svg"
	case pipeline.FormatJSON:
		return "layout.json"
	}
	return format
}
