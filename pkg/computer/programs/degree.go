package programs

import (
	"github.com/matzehuels/propgraph/pkg/computer"
	"github.com/matzehuels/propgraph/pkg/graph"
)

const (
	KeyDegree    = "degree"
	KeyInDegree  = "inDegree"
	KeyOutDegree = "outDegree"

	// MemoryEdges holds the sum of out degrees, the number of edges
	// followed.
	MemoryEdges = "edges"
)

// Degree writes the in, out and total degree of every vertex in a single
// superstep.
type Degree struct {
	Labels []string
}

func NewDegree() *Degree { return &Degree{} }

func (*Degree) Name() string { return NameDegree }

func (*Degree) ComputeKeys() map[string]graph.KeyType {
	return map[string]graph.KeyType{
		KeyDegree:    graph.KeyReadOnly,
		KeyInDegree:  graph.KeyReadOnly,
		KeyOutDegree: graph.KeyReadOnly,
	}
}

func (*Degree) Setup(mem computer.Memory) error {
	return mem.Set(MemoryEdges, 0)
}

func (d *Degree) Execute(v *graph.Vertex, _ computer.Messenger, mem computer.Memory) error {
	out := len(v.Edges(graph.Out, d.Labels...))
	in := len(v.Edges(graph.In, d.Labels...))
	for key, n := range map[string]int{KeyOutDegree: out, KeyInDegree: in, KeyDegree: out + in} {
		if err := v.SetProperty(key, n); err != nil {
			return err
		}
	}
	return mem.Incr(MemoryEdges, int64(out))
}

func (*Degree) Terminate(computer.Memory) (bool, error) { return true, nil }
