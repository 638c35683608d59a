package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lens/pkg/graph"
	"github.com/matzehuels/lens/pkg/pipeline"
)

// layoutCommand settles a force-directed layout and writes it as JSON.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		opts   pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout [asset-id]",
		Short: "Compute a settled force-directed layout",
		Long: `Compute a settled force-directed layout for an asset's lineage.

The simulation runs headless until its energy decays below the settle
threshold (or --max-ticks is reached) and the node positions are written as
layout JSON. The same seed always produces the same layout.

Results are cached locally for faster subsequent runs.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeAssetIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.sourceOptions(args, &opts); err != nil {
				return err
			}
			opts.SetDefaults()
			if err := opts.ValidateLayout(); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <asset>.layout.json)")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// addLayoutFlags registers the flags shared by layout and render.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVar(&opts.Focal, "focal", "", "centre the lineage on this node")
	cmd.Flags().BoolVar(&opts.Connected, "connected", false, "lay out only nodes in the focal node's lineage")
	cmd.Flags().Float64Var(&opts.Width, "width", pipeline.DefaultWidth, "viewport width")
	cmd.Flags().Float64Var(&opts.Height, "height", pipeline.DefaultHeight, "viewport height")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "simulation seed")
	cmd.Flags().IntVar(&opts.MaxTicks, "max-ticks", pipeline.DefaultMaxTicks, "tick budget before giving up on settling")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
}

func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, focal, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Settling %d nodes...", g.NodeCount()))
	spinner.Start()
	prog := newProgress(c.Logger)

	layout, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, g, focal, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done("Layout ready", "ticks", layout.Ticks, "settled", layout.Settled)

	if output == "" {
		output = outputBase("", opts) + ".layout.json"
	}
	if err := graph.WriteLayoutFile(layout, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(g.NodeCount(), g.EdgeCount(), cacheHit)
	if !layout.Settled {
		printWarning("Stopped after %d ticks without settling", layout.Ticks)
	}
	printNewline()
	printNextStep("Render", renderHint(opts))
	return nil
}

func renderHint(opts pipeline.Options) string {
	if opts.GraphFile != "" {
		return "lens render --graph " + opts.GraphFile
	}
	return "lens render " + opts.AssetID
}
