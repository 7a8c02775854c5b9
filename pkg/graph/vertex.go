package graph

import (
	"slices"

	"github.com/matzehuels/propgraph/pkg/errors"
)

// Vertex is a handle on a vertex of a [Graph]. Handles are cheap and may be
// compared by [Vertex.ID]; two handles with the same id address the same
// vertex.
type Vertex struct {
	graph *Graph
	id    string
	label string
	mode  Mode
	view  *ComputeView
}

var _ Element = (*Vertex)(nil)

func (v *Vertex) ID() string        { return v.id }
func (v *Vertex) Label() string     { return v.label }
func (v *Vertex) Kind() ElementKind { return VertexKind }
func (v *Vertex) Mode() Mode        { return v.mode }
func (v *Vertex) Graph() *Graph     { return v.graph }

// Exists reports whether the vertex is still part of the graph.
func (v *Vertex) Exists() bool { return v.graph.exists(VertexKind, v.id) }

func (v *Vertex) Property(key string) Property {
	return v.graph.property(v, VertexKind, v.id, key)
}

// Value returns the value of a present property and PROPERTY_NOT_FOUND
// otherwise.
func (v *Vertex) Value(key string) (Value, error) {
	return v.Property(key).Get()
}

func (v *Vertex) Properties() map[string]Property {
	return v.graph.properties(v, VertexKind, v.id)
}

// Keys returns the sorted property keys of the vertex.
func (v *Vertex) Keys() []string { return v.graph.keys(VertexKind, v.id) }

// SetProperty writes a property. On a Centric handle the key must be a
// declared compute key and the write is buffered until the superstep
// barrier; on an Adjacent handle it fails with ADJACENT_NOT_WRITABLE.
func (v *Vertex) SetProperty(key string, value any) error {
	return v.graph.setProperty(VertexKind, v.id, v.mode, v.view, key, value)
}

func (v *Vertex) RemoveProperty(key string) error {
	return v.graph.removeProperty(VertexKind, v.id, v.mode, v.view, key)
}

// Remove deletes the vertex together with its incident edges. Removing a
// vertex that is already gone fails with ELEMENT_REMOVED.
func (v *Vertex) Remove() error {
	if v.mode != Standard {
		return errors.New(errors.ErrCodeUnsupported, "graph structure can not be modified during a computation")
	}
	g := v.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkWritable(); err != nil {
		return err
	}
	return g.removeVertexLocked(v.id)
}

// AddEdge creates an edge labeled label from v to in. Extra arguments are
// alternating keys and values as for [Graph.AddVertex]; the "id" key sets
// the edge id.
func (v *Vertex) AddEdge(label string, in *Vertex, keyValues ...any) (*Edge, error) {
	if v.mode != Standard {
		return nil, errors.New(errors.ErrCodeUnsupported, "graph structure can not be modified during a computation")
	}
	if in == nil {
		return nil, errors.New(errors.ErrCodeNullOrEmpty, "edge endpoint can not be null")
	}
	return v.graph.addEdge(v.id, label, in.id, keyValues)
}

// Edges returns the incident edges in the given direction, optionally
// restricted to labels. Out edges come before in edges for [Both], so a
// self loop is returned twice.
func (v *Vertex) Edges(dir Direction, labels ...string) []*Edge {
	g := v.graph
	g.mu.RLock()
	defer g.mu.RUnlock()
	mode := v.mode
	var out []*Edge
	for _, rec := range g.incidentLocked(v.id, dir, labels) {
		out = append(out, g.edgeHandle(rec, mode, v.view))
	}
	return out
}

// Vertices returns the vertices at the other end of the incident edges in
// the given direction. Vertices reached from a Centric handle are Adjacent.
func (v *Vertex) Vertices(dir Direction, labels ...string) []*Vertex {
	g := v.graph
	g.mu.RLock()
	defer g.mu.RUnlock()
	mode := v.mode
	if mode == Centric {
		mode = Adjacent
	}
	var out []*Vertex
	collect := func(d Direction) {
		for _, rec := range g.incidentLocked(v.id, d, labels) {
			other := rec.inV
			if d == In {
				other = rec.outV
			}
			if o, ok := g.vertices[other]; ok {
				out = append(out, g.vertexHandle(o, mode, v.view))
			}
		}
	}
	if dir == Both {
		collect(Out)
		collect(In)
	} else {
		collect(dir)
	}
	return out
}

// Centric returns a Centric handle on v bound to view.
func (v *Vertex) Centric(view *ComputeView) *Vertex {
	return &Vertex{graph: v.graph, id: v.id, label: v.label, mode: Centric, view: view}
}

// Query starts a query over the incident edges of v.
func (v *Vertex) Query() *VertexQuery {
	return &VertexQuery{vertex: v, dir: Both, filter: newFilter()}
}

func (v *Vertex) String() string { return "v[" + v.id + "]" }

func (g *Graph) incidentLocked(id string, dir Direction, labels []string) []*edgeRecord {
	rec, ok := g.vertices[id]
	if !ok {
		return nil
	}
	var ids []string
	switch dir {
	case Out:
		ids = rec.outE
	case In:
		ids = rec.inE
	default:
		ids = slices.Concat(rec.outE, rec.inE)
	}
	out := make([]*edgeRecord, 0, len(ids))
	for _, eid := range ids {
		e := g.edges[eid]
		if len(labels) > 0 && !slices.Contains(labels, e.label) {
			continue
		}
		out = append(out, e)
	}
	return out
}
