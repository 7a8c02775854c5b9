package cli

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/propgraph/pkg/cache"
	"github.com/matzehuels/propgraph/pkg/graph"
	pgio "github.com/matzehuels/propgraph/pkg/io"
)

// classicCommand writes the classic sample graph.
func (c *CLI) classicCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "classic",
		Short: "Write the classic six-vertex sample graph as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.config.OpenGraph()
			if err != nil {
				return err
			}
			if err := graph.LoadClassic(g); err != nil {
				return err
			}
			if output == "" {
				return pgio.WriteJSON(g, os.Stdout)
			}
			if err := pgio.ExportJSON(g, output); err != nil {
				return err
			}
			printSuccess("Wrote classic graph")
			printFile(output)
			printNextStep("Rank it", fmt.Sprintf("%s compute pageRank %s", appName, output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// statsCommand prints counts for a graph file.
func (c *CLI) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <graph.json>",
		Short: "Print vertex, edge and label counts of a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)
			g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Loaded %d vertices", g.VertexCount()))

			data, err := pgio.MarshalGraph(g)
			if err != nil {
				return err
			}
			s := summarize(g)

			fmt.Println(StyleTitle.Render(args[0]))
			printKeyValue("vertices", strconv.Itoa(s.vertices))
			printKeyValue("edges", strconv.Itoa(s.edges))
			printKeyValue("hash", cache.Hash(data)[:16])
			fmt.Println()
			fmt.Println(renderTable([]string{"Label", "Vertices", "Edges"}, s.rows(), true))
			return nil
		},
	}
}

type graphSummary struct {
	vertices, edges int
	vertexLabels    map[string]int
	edgeLabels      map[string]int
}

func summarize(g *graph.Graph) graphSummary {
	s := graphSummary{
		vertexLabels: make(map[string]int),
		edgeLabels:   make(map[string]int),
	}
	for _, v := range g.V() {
		s.vertices++
		s.vertexLabels[v.Label()]++
	}
	for _, e := range g.E() {
		s.edges++
		s.edgeLabels[e.Label()]++
	}
	return s
}

// rows returns one row per label, sorted by label.
func (s graphSummary) rows() [][]string {
	labels := make(map[string]bool)
	for l := range s.vertexLabels {
		labels[l] = true
	}
	for l := range s.edgeLabels {
		labels[l] = true
	}
	var rows [][]string
	for _, l := range slices.Sorted(maps.Keys(labels)) {
		rows = append(rows, []string{l, strconv.Itoa(s.vertexLabels[l]), strconv.Itoa(s.edgeLabels[l])})
	}
	return rows
}
