package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lens/internal/server"
	"github.com/matzehuels/lens/pkg/observability/prom"
	"github.com/matzehuels/lens/pkg/session"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		sessionTTL time.Duration
		noMetrics  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lineage API and live layout sessions",
		Long: `Serve the lens HTTP API.

The API exposes the catalog, lineage traces and rendered layouts under
/api/assets, and live layout sessions under /api/sessions that clients step,
drag and resize. Prometheus metrics are served at /metrics.

Set --cache-backend redis (with LENS_REDIS_URL) to share cached layouts
between replicas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, sessionTTL, noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", session.DefaultTTL, "idle time before a session expires")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, ttl time.Duration, noMetrics bool) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	cfg := server.Config{
		Catalog:  runner.Catalog,
		Runner:   runner,
		Sessions: session.NewStore(ttl),
		Logger:   c.Logger,
	}
	if !noMetrics {
		reg := prom.NewRegistry()
		reg.Install()
		cfg.Metrics = reg.Handler()
	}

	c.Logger.Info("Starting server", "addr", addr, "metrics", !noMetrics, "session_ttl", ttl)
	err = server.New(cfg).ListenAndServe(ctx, addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
