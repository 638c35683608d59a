package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lens/pkg/pipeline"
)

// lineageCommand prints the upstream and downstream lineage of an asset.
func (c *CLI) lineageCommand() *cobra.Command {
	var (
		opts   pipeline.Options
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "lineage [asset-id]",
		Short: "Trace what feeds an asset and what it feeds",
		Long: `Trace the lineage of an asset.

Upstream lists every node with a path into the focal node, downstream every
node reachable from it, each ordered by distance. Edges naming nodes
missing from the graph are reported and skipped.

Use --graph to trace a lineage JSON file instead of a catalog asset.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeAssetIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.sourceOptions(args, &opts); err != nil {
				return err
			}
			return c.runLineage(cmd.Context(), opts, asJSON)
		},
	}

	cmd.Flags().StringVar(&opts.Focal, "focal", "", "trace from this node instead of the asset's own node")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the lineage report as JSON")

	return cmd
}

func (c *CLI) runLineage(ctx context.Context, opts pipeline.Options, asJSON bool) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, focal, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	report, cacheHit, err := runner.TraceWithCacheInfo(ctx, g, focal, opts)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintln(out, StyleTitle.Render(report.Focal.Name))
	printKeyValue("node", report.Focal.ID)
	printKeyValue("type", report.Focal.Type)
	if report.Focal.Status != "" {
		printKeyValue("status", report.Focal.Status)
	}
	printKeyValue("direct", fmt.Sprintf("%d in · %d out", report.DirectUpstream, report.DirectDownstream))
	printStats(g.NodeCount(), g.EdgeCount(), cacheHit)
	printNewline()

	printEntries("Upstream", report.Upstream)
	printNewline()
	printEntries("Downstream", report.Downstream)

	if len(report.Skipped) > 0 {
		printNewline()
		printWarning("%d edge(s) reference unknown nodes", len(report.Skipped))
		for _, l := range report.Skipped {
			printDetail("%s %s %s", l.Source, iconArrow, l.Target)
		}
	}
	return nil
}
