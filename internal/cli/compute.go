package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/propgraph/pkg/analytics"
	"github.com/matzehuels/propgraph/pkg/computer"
	"github.com/matzehuels/propgraph/pkg/computer/programs"
	"github.com/matzehuels/propgraph/pkg/graph"
)

type computeFlags struct {
	workers    int
	iterations int
	alpha      float64
	labels     []string
	top        int
	noCache    bool
	refresh    bool
	progress   bool
}

// computeCommand runs a bundled vertex program over a graph file.
func (c *CLI) computeCommand() *cobra.Command {
	var flags computeFlags

	cmd := &cobra.Command{
		Use:   "compute <program> <graph.json>",
		Short: "Run a vertex program over a graph",
		Long: fmt.Sprintf(`Run a bundled vertex program over a graph and print the vertices with
the highest results. Available programs: %s.

Results are cached by graph content, so running the same program over an
unchanged graph returns immediately. Use --refresh to recompute.`, strings.Join(programs.Names(), ", ")),
		Args:      cobra.ExactArgs(2),
		ValidArgs: programs.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompute(cmd.Context(), args[0], args[1], flags)
		},
	}

	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "parallel partitions (default: config or number of CPUs)")
	cmd.Flags().IntVar(&flags.iterations, "iterations", 0, "PageRank iterations (default 30)")
	cmd.Flags().Float64Var(&flags.alpha, "alpha", 0, "PageRank damping factor (default 0.85)")
	cmd.Flags().StringSliceVar(&flags.labels, "labels", nil, "edge labels to follow (default: all)")
	cmd.Flags().IntVarP(&flags.top, "top", "n", 10, "number of vertices to print (0 for all)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute even if a cached result exists")
	cmd.Flags().BoolVar(&flags.progress, "progress", false, "show live superstep progress")
	return cmd
}

func (c *CLI) runCompute(ctx context.Context, program, path string, flags computeFlags) error {
	logger := loggerFromContext(ctx)
	g, err := c.loadGraph(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := analytics.Options{
		Program:    program,
		Iterations: flags.iterations,
		Alpha:      flags.alpha,
		Labels:     flags.labels,
		Workers:    flags.workers,
		Refresh:    flags.refresh,
		Logger:     logger,
	}
	if cfg := c.config; cfg != nil {
		if opts.Workers == 0 {
			opts.Workers = cfg.Compute.Workers
		}
		opts.MaxSupersteps = cfg.Compute.MaxSupersteps
		opts.TTL = cfg.Cache.TTL.Duration
	}

	var res *analytics.Result
	if flags.progress {
		res, err = runWithProgress(ctx, program, g.VertexCount(), func(ctx context.Context, report func(computer.Progress)) (*analytics.Result, error) {
			opts.Progress = report
			return runner.Execute(ctx, g, opts)
		})
	} else {
		res, err = runner.Execute(ctx, g, opts)
	}
	if err != nil {
		return err
	}

	printResult(res, flags.top)
	return nil
}

func printResult(res *analytics.Result, top int) {
	fmt.Println(StyleTitle.Render(res.Program))
	printStats([]string{
		fmt.Sprintf("%d vertices", res.Stats.Vertices),
		fmt.Sprintf("%d supersteps", res.Stats.Supersteps),
	}, res.CacheHit)

	var rows [][]string
	for _, r := range res.Top(top) {
		rows = append(rows, []string{r.ID, formatValue(r)})
	}
	fmt.Println(renderTable([]string{"Vertex", res.Key}, rows, true))
}

func formatValue(r analytics.Ranked) string {
	switch r.Value.Kind() {
	case graph.KindFloat, graph.KindDouble:
		return fmt.Sprintf("%.6f", r.Value.Float())
	}
	return r.Value.String()
}
