package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowmap/pkg/bundle"
	"github.com/matzehuels/flowmap/pkg/graph"
	"github.com/matzehuels/flowmap/pkg/metrics"
	"github.com/matzehuels/flowmap/pkg/observability"
	"github.com/matzehuels/flowmap/pkg/pipeline"
)

// layoutOptions holds the flags of the layout command.
type layoutOptions struct {
	layoutFlags
	output  string
	metrics bool
}

// layoutCommand creates the layout command for computing a flow layout.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOptions

	cmd := &cobra.Command{
		Use:   "layout [input]",
		Short: "Compute a layout from a flow document",
		Long: `Compute a layout from a flow document (JSON, YAML or TOML).

The layout is written as JSON next to the input unless -o is given; use -o -
to write it to stdout. Flags override the options stored in the document.`,
		Example: `  flowmap layout flows.yaml
  flowmap layout flows.json --bidirectional --bundle -o out.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "print pipeline, simulation and cache metrics")

	return cmd
}

// runLayout parses the input, applies flag overrides, runs the layout stage
// and writes the result.
func (c *CLI) runLayout(cmd *cobra.Command, input string, opts layoutOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var reg *metrics.Registry
	if opts.metrics {
		reg = metrics.NewRegistry()
		reg.Register()
		defer observability.Reset()
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	doc, err := runner.Parse(ctx, pipeline.Options{Input: input})
	if err != nil {
		return err
	}
	opts.apply(cmd, &doc.Options)

	timer := newOpTimer(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Document: doc,
		Refresh:  opts.refresh,
		Logger:   c.Logger,
		OnTick: func(t bundle.Tick) {
			spinner.SetMessage("Bundling links (tick %d, alpha %.3f)", t.Tick, t.Alpha)
		},
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	data, err := graph.MarshalLayout(result.Layout)
	if err != nil {
		return err
	}
	if opts.output == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}

	out := opts.output
	if out == "" {
		out = layoutPath(input)
	}
	if err := graph.WriteLayoutFile(result.Layout, out); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	timer.done("wrote layout", "path", out)

	printSuccess("Layout computed")
	printFile(out)
	printStats(layoutStats{
		Nodes:     result.Layout.Stats.Nodes,
		Links:     result.Layout.Stats.Links,
		Midpoints: result.Layout.Stats.Midpoints,
		Ticks:     result.Layout.Stats.Ticks,
		Cached:    result.CacheInfo.LayoutHit,
	})

	if reg != nil {
		if err := printMetrics(reg); err != nil {
			return err
		}
	}

	printNextStep("Render it", fmt.Sprintf("%s render %s", appName, out))
	return nil
}

func printMetrics(reg *metrics.Registry) error {
	samples, err := reg.Summary()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	if len(samples) == 0 {
		printInfo("No metrics recorded")
		return nil
	}
	fmt.Println(metricsTable(samples))
	return nil
}
