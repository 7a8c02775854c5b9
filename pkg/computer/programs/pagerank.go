package programs

import (
	"github.com/matzehuels/propgraph/pkg/computer"
	"github.com/matzehuels/propgraph/pkg/errors"
	"github.com/matzehuels/propgraph/pkg/graph"
)

// Compute keys written by PageRank.
const (
	KeyPageRank  = "pageRank"
	KeyEdgeCount = "edgeCount"
)

const (
	DefaultAlpha      = 0.85
	DefaultIterations = 30
)

// PageRank ranks vertices by the rank flowing to them along out edges.
// Each vertex starts with 1/VertexCount and, in every later superstep, takes
// Alpha times the rank it received plus (1-Alpha)/VertexCount.
type PageRank struct {
	Alpha       float64
	Iterations  int
	VertexCount int
	Labels      []string // edge labels followed; all when empty
}

// NewPageRank returns a PageRank with the default alpha and iterations.
func NewPageRank() *PageRank {
	return &PageRank{Alpha: DefaultAlpha, Iterations: DefaultIterations}
}

func (p *PageRank) Name() string { return NamePageRank }

func (p *PageRank) ComputeKeys() map[string]graph.KeyType {
	return map[string]graph.KeyType{
		KeyPageRank:  graph.KeyReadWrite,
		KeyEdgeCount: graph.KeyReadOnly,
	}
}

func (p *PageRank) Setup(computer.Memory) error {
	if p.Alpha <= 0 || p.Alpha > 1 {
		return errors.New(errors.ErrCodeInvalidArgument, "alpha must be in (0, 1]: %v", p.Alpha)
	}
	if p.Iterations < 1 {
		return errors.New(errors.ErrCodeInvalidArgument, "iterations must be positive: %d", p.Iterations)
	}
	return nil
}

func (p *PageRank) Execute(v *graph.Vertex, m computer.Messenger, mem computer.Memory) error {
	n := float64(max(p.VertexCount, 1))
	var rank float64
	var edges int64
	if mem.Superstep() == 1 {
		edges = int64(len(v.Edges(graph.Out, p.Labels...)))
		if err := v.SetProperty(KeyEdgeCount, edges); err != nil {
			return err
		}
		rank = 1 / n
	} else {
		edges = v.Property(KeyEdgeCount).Value().Int()
		var sum float64
		for _, msg := range m.Receive() {
			sum += msg.(float64)
		}
		rank = p.Alpha*sum + (1-p.Alpha)/n
	}
	if err := v.SetProperty(KeyPageRank, rank); err != nil {
		return err
	}
	if edges > 0 {
		return m.Broadcast(graph.Out, rank/float64(edges), p.Labels...)
	}
	return nil
}

func (p *PageRank) Terminate(mem computer.Memory) (bool, error) {
	return mem.Superstep() >= p.Iterations, nil
}
