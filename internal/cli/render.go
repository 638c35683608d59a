package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lens/pkg/pipeline"
)

// renderCommand runs the full pipeline and writes one file per format.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		opts       pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render [asset-id]",
		Short: "Render an asset's lineage to SVG, Graphviz, PNG or PDF",
		Long: `Render an asset's lineage.

render loads the lineage, settles a layout and writes the requested
formats in one go:

  svg       force-directed diagram (default)
  graphviz  left-to-right node-link diagram laid out by Graphviz
  dot       Graphviz source
  json      settled layout
  png, pdf  force-directed diagram converted with rsvg-convert

With a single format, -o names the output file; with several it is the
base path each format's extension is appended to.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeAssetIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.sourceOptions(args, &opts); err != nil {
				return err
			}
			opts.Formats = parseFormats(formatsStr)
			if err := opts.Validate(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): "+strings.Join(pipeline.ValidFormats, ", ")+" (comma-separated)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include kind and certification in Graphviz labels")
	cmd.Flags().StringVar(&opts.Title, "title", "", "diagram title")
	addLayoutFlags(cmd, &opts)
	cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(pipeline.ValidFormats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Rendering lineage...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	c.Logger.Debug("Pipeline finished",
		"load", result.Stats.LoadTime, "trace", result.Stats.TraceTime,
		"layout", result.Stats.LayoutTime, "render", result.Stats.RenderTime)

	paths, err := writeArtifacts(result.Artifacts, opts, output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", result.Lineage.Focal.Name)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	if result.Stats.Dangling > 0 {
		printWarning("%d edge(s) reference unknown nodes", result.Stats.Dangling)
	}
	return nil
}

// writeArtifacts writes each artifact in format order and returns the
// paths written.
func writeArtifacts(artifacts map[string][]byte, opts pipeline.Options, output string) ([]string, error) {
	formats := opts.Formats
	var paths []string
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		path := output
		if len(formats) > 1 || path == "" {
			path = outputBase(output, opts) + "." + fileExt(f)
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
