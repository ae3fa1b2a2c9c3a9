package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowmap/pkg/graph"
	"github.com/matzehuels/flowmap/pkg/pipeline"
)

// renderOptions holds the flags of the render command.
type renderOptions struct {
	layoutFlags
	output    string
	formats   []string
	detailed  bool
	midpoints bool
}

// renderCommand creates the render command for drawing a layout with Graphviz.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOptions
	var formatsStr string

	cmd := &cobra.Command{
		Use:   "render [input]",
		Short: "Render a flow document or layout to SVG or DOT",
		Long: `Render a flow document or a computed layout (*.layout.json) as a
node-link diagram. Nodes are pinned at their layout coordinates and links
are drawn with their computed widths.`,
		Example: `  flowmap render flows.yaml
  flowmap render flows.layout.json -f svg,dot --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with their value and breadth")
	cmd.Flags().BoolVar(&opts.midpoints, "midpoints", false, "label midpoint nodes")

	return cmd
}

// isLayoutFile reports whether path names a computed layout rather than an
// input document.
func isLayoutFile(path string) bool {
	return strings.HasSuffix(path, layoutSuffix)
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts renderOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Formats:   opts.formats,
		Detailed:  opts.detailed,
		Midpoints: opts.midpoints,
		Refresh:   opts.refresh,
		Logger:    c.Logger,
	}

	var artifacts map[string][]byte
	var stats layoutStats
	if isLayoutFile(input) {
		l, err := graph.ReadLayoutFile(input)
		if err != nil {
			return err
		}
		c.Logger.Debug("loaded layout", "path", input, "nodes", l.Stats.Nodes)
		if artifacts, err = runner.Render(ctx, l, popts); err != nil {
			return err
		}
		stats = layoutStats{Nodes: l.Stats.Nodes, Links: l.Stats.Links, Midpoints: l.Stats.Midpoints, Ticks: l.Stats.Ticks}
	} else {
		doc, err := runner.Parse(ctx, pipeline.Options{Input: input})
		if err != nil {
			return err
		}
		opts.apply(cmd, &doc.Options)
		popts.Document = doc

		spinner := newSpinnerWithContext(ctx, "Rendering...")
		spinner.Start()
		result, err := runner.Execute(ctx, popts)
		spinner.Stop()
		if err != nil {
			return err
		}
		artifacts = result.Artifacts
		stats = layoutStats{
			Nodes:     result.Layout.Stats.Nodes,
			Links:     result.Layout.Stats.Links,
			Midpoints: result.Layout.Stats.Midpoints,
			Ticks:     result.Layout.Stats.Ticks,
			Cached:    result.CacheInfo.LayoutHit,
		}
	}

	formats := slices.Sorted(maps.Keys(artifacts))
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := artifactPath(input, opts.output, f, len(formats) > 1)
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %d file(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	printStats(stats)
	return nil
}
