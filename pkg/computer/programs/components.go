package programs

import (
	"strconv"

	"github.com/matzehuels/propgraph/pkg/computer"
	"github.com/matzehuels/propgraph/pkg/graph"
)

const (
	KeyComponent = "component"

	// MemoryVoteToHalt is true after a superstep in which no vertex changed
	// its component.
	MemoryVoteToHalt = "voteToHalt"
)

// ConnectedComponents labels every vertex with the smallest vertex id of its
// weakly connected component. Numeric ids compare as numbers.
type ConnectedComponents struct{}

func NewConnectedComponents() *ConnectedComponents { return &ConnectedComponents{} }

func (*ConnectedComponents) Name() string { return NameConnectedComponents }

func (*ConnectedComponents) ComputeKeys() map[string]graph.KeyType {
	return map[string]graph.KeyType{KeyComponent: graph.KeyReadWrite}
}

func (*ConnectedComponents) Setup(mem computer.Memory) error {
	return mem.Set(MemoryVoteToHalt, true)
}

func (*ConnectedComponents) Execute(v *graph.Vertex, m computer.Messenger, mem computer.Memory) error {
	if mem.Superstep() == 1 {
		if err := v.SetProperty(KeyComponent, v.ID()); err != nil {
			return err
		}
		if err := mem.And(MemoryVoteToHalt, false); err != nil {
			return err
		}
		return m.Broadcast(graph.Both, v.ID())
	}

	current := v.Property(KeyComponent).Value().Text()
	smallest := current
	for _, msg := range m.Receive() {
		if id := msg.(string); lessID(id, smallest) {
			smallest = id
		}
	}
	if smallest == current {
		return nil
	}
	if err := v.SetProperty(KeyComponent, smallest); err != nil {
		return err
	}
	if err := mem.And(MemoryVoteToHalt, false); err != nil {
		return err
	}
	return m.Broadcast(graph.Both, smallest)
}

func (*ConnectedComponents) Terminate(mem computer.Memory) (bool, error) {
	halt, _ := mem.Get(MemoryVoteToHalt)
	if err := mem.Set(MemoryVoteToHalt, true); err != nil {
		return false, err
	}
	return halt.Bool(), nil
}

func lessID(a, b string) bool {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return x < y
	}
	return a < b
}
