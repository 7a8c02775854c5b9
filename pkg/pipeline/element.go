package pipeline

import (
	"fmt"

	"github.com/matzehuels/propgraph/pkg/graph"
)

func asElement(v any) (graph.Element, error) {
	switch e := v.(type) {
	case *graph.Vertex:
		if e != nil {
			return e, nil
		}
	case *graph.Edge:
		if e != nil {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: want element, got %T", ErrUnexpectedType, v)
}

func asVertex(v any) (*graph.Vertex, error) {
	if x, ok := v.(*graph.Vertex); ok && x != nil {
		return x, nil
	}
	return nil, fmt.Errorf("%w: want vertex, got %T", ErrUnexpectedType, v)
}

func asEdge(v any) (*graph.Edge, error) {
	if x, ok := v.(*graph.Edge); ok && x != nil {
		return x, nil
	}
	return nil, fmt.Errorf("%w: want edge, got %T", ErrUnexpectedType, v)
}

// HasPipe emits the elements that satisfy every container.
type HasPipe struct {
	FilterPipe
	Containers []graph.HasContainer
}

func NewHasPipe(containers ...graph.HasContainer) *HasPipe {
	p := &HasPipe{Containers: containers}
	args := make([]any, len(containers))
	for i, c := range containers {
		args[i] = c
	}
	p.init("HasPipe", func(h *Holder) (bool, error) {
		e, err := asElement(h.value)
		if err != nil {
			return false, err
		}
		return graph.TestAll(e, p.Containers)
	}, args...)
	return p
}

// PropertyPipe emits the property of each element under a key. Absent
// properties are emitted as empty properties.
type PropertyPipe struct {
	MapPipe
	Key string
}

func NewPropertyPipe(key string) *PropertyPipe {
	p := &PropertyPipe{Key: key}
	p.MapPipe.init("PropertyPipe", func(h *Holder) (any, error) {
		e, err := asElement(h.value)
		if err != nil {
			return nil, err
		}
		return e.Property(p.Key), nil
	}, key)
	return p
}

// ValuePipe emits the value of each element's property under a key and
// drops elements that lack it.
type ValuePipe struct {
	FlatMapPipe
	Key string
}

func NewValuePipe(key string) *ValuePipe {
	p := &ValuePipe{Key: key}
	p.FlatMapPipe.init("ValuePipe", func(h *Holder) ([]any, error) {
		e, err := asElement(h.value)
		if err != nil {
			return nil, err
		}
		prop := e.Property(p.Key)
		if !prop.IsPresent() {
			return nil, nil
		}
		return []any{prop.Value()}, nil
	}, key)
	return p
}

// NewIDPipe returns a pipe that emits element ids.
func NewIDPipe() *MapPipe {
	p := &MapPipe{}
	p.init("IDPipe", func(h *Holder) (any, error) {
		e, err := asElement(h.value)
		if err != nil {
			return nil, err
		}
		return e.ID(), nil
	})
	return p
}

// NewLabelPipe returns a pipe that emits element labels.
func NewLabelPipe() *MapPipe {
	p := &MapPipe{}
	p.init("LabelPipe", func(h *Holder) (any, error) {
		e, err := asElement(h.value)
		if err != nil {
			return nil, err
		}
		return e.Label(), nil
	})
	return p
}

// VertexPipe steps from vertices to their adjacent vertices.
type VertexPipe struct {
	FlatMapPipe
	Direction graph.Direction
	Labels    []string
}

func NewVertexPipe(dir graph.Direction, labels ...string) *VertexPipe {
	p := &VertexPipe{Direction: dir, Labels: labels}
	p.FlatMapPipe.init("VertexPipe", func(h *Holder) ([]any, error) {
		v, err := asVertex(h.value)
		if err != nil {
			return nil, err
		}
		return toAny(v.Vertices(p.Direction, p.Labels...)), nil
	}, stepArgs(dir, labels)...)
	return p
}

// EdgePipe steps from vertices to their incident edges.
type EdgePipe struct {
	FlatMapPipe
	Direction graph.Direction
	Labels    []string
}

func NewEdgePipe(dir graph.Direction, labels ...string) *EdgePipe {
	p := &EdgePipe{Direction: dir, Labels: labels}
	p.FlatMapPipe.init("EdgePipe", func(h *Holder) ([]any, error) {
		v, err := asVertex(h.value)
		if err != nil {
			return nil, err
		}
		return toAny(v.Edges(p.Direction, p.Labels...)), nil
	}, stepArgs(dir, labels)...)
	return p
}

// EdgeVertexPipe steps from edges to their endpoints: the tail for [graph.Out],
// the head for [graph.In] and both, tail first, for [graph.Both].
type EdgeVertexPipe struct {
	FlatMapPipe
	Direction graph.Direction
}

func NewEdgeVertexPipe(dir graph.Direction) *EdgeVertexPipe {
	p := &EdgeVertexPipe{Direction: dir}
	p.FlatMapPipe.init("EdgeVertexPipe", func(h *Holder) ([]any, error) {
		e, err := asEdge(h.value)
		if err != nil {
			return nil, err
		}
		if p.Direction == graph.Both {
			return toAny(e.Vertices()), nil
		}
		v, err := e.Vertex(p.Direction)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	}, dir)
	return p
}

// LinkPipe creates an edge between each vertex and the vertex recorded under
// an alias in its path, then emits the vertex unchanged. [graph.Out] links
// from the current vertex to the aliased one, [graph.In] the other way and
// [graph.Both] creates both edges.
type LinkPipe struct {
	SideEffectPipe
	Direction graph.Direction
	Label     string
	Target    string
}

func NewLinkPipe(dir graph.Direction, label, alias string) *LinkPipe {
	p := &LinkPipe{Direction: dir, Label: label, Target: alias}
	p.SideEffectPipe.init("LinkPipe", p.link, dir, label, alias)
	return p
}

func (p *LinkPipe) link(h *Holder) error {
	v, err := asVertex(h.value)
	if err != nil {
		return err
	}
	raw, ok := h.path.Get(p.Target)
	if !ok {
		return fmt.Errorf("%w: %s is not in the path", ErrUnknownAlias, p.Target)
	}
	other, err := asVertex(raw)
	if err != nil {
		return err
	}
	if p.Direction == graph.Out || p.Direction == graph.Both {
		if _, err := v.AddEdge(p.Label, other); err != nil {
			return err
		}
	}
	if p.Direction == graph.In || p.Direction == graph.Both {
		if _, err := other.AddEdge(p.Label, v); err != nil {
			return err
		}
	}
	return nil
}

func toAny[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func stepArgs(dir graph.Direction, labels []string) []any {
	args := []any{dir}
	for _, l := range labels {
		args = append(args, l)
	}
	return args
}
