package graph

import (
	"github.com/matzehuels/propgraph/pkg/errors"
)

// Edge is a handle on a directed, labeled edge of a [Graph]. The endpoints
// and the label are fixed at creation.
type Edge struct {
	graph *Graph
	id    string
	label string
	outV  string
	inV   string
	mode  Mode
	view  *ComputeView
}

var _ Element = (*Edge)(nil)

func (e *Edge) ID() string        { return e.id }
func (e *Edge) Label() string     { return e.label }
func (e *Edge) Kind() ElementKind { return EdgeKind }
func (e *Edge) Mode() Mode        { return e.mode }
func (e *Edge) Graph() *Graph     { return e.graph }

// Exists reports whether the edge is still part of the graph.
func (e *Edge) Exists() bool { return e.graph.exists(EdgeKind, e.id) }

func (e *Edge) Property(key string) Property {
	return e.graph.property(e, EdgeKind, e.id, key)
}

// Value returns the value of a present property and PROPERTY_NOT_FOUND
// otherwise.
func (e *Edge) Value(key string) (Value, error) {
	return e.Property(key).Get()
}

func (e *Edge) Properties() map[string]Property {
	return e.graph.properties(e, EdgeKind, e.id)
}

func (e *Edge) Keys() []string { return e.graph.keys(EdgeKind, e.id) }

// SetProperty writes a property following the same mode rules as
// [Vertex.SetProperty]. Edges incident to the vertex under execution are
// Centric and may hold compute keys.
func (e *Edge) SetProperty(key string, value any) error {
	return e.graph.setProperty(EdgeKind, e.id, e.mode, e.view, key, value)
}

func (e *Edge) RemoveProperty(key string) error {
	return e.graph.removeProperty(EdgeKind, e.id, e.mode, e.view, key)
}

// Remove deletes the edge. Removing an edge that is already gone fails with
// ELEMENT_REMOVED.
func (e *Edge) Remove() error {
	if e.mode != Standard {
		return errors.New(errors.ErrCodeUnsupported, "graph structure can not be modified during a computation")
	}
	g := e.graph
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkWritable(); err != nil {
		return err
	}
	return g.removeEdgeLocked(e.id)
}

// Vertex returns the tail ([Out]) or head ([In]) of the edge. [Both] fails
// with INVALID_DIRECTION; use [Edge.Vertices] instead.
func (e *Edge) Vertex(dir Direction) (*Vertex, error) {
	var id string
	switch dir {
	case Out:
		id = e.outV
	case In:
		id = e.inV
	default:
		return nil, errors.New(errors.ErrCodeInvalidDirection, "a direction of BOTH is not supported")
	}
	return e.endpoint(id)
}

// OutVertex returns the tail of the edge, or nil if it was removed.
func (e *Edge) OutVertex() *Vertex {
	v, _ := e.endpoint(e.outV)
	return v
}

// InVertex returns the head of the edge, or nil if it was removed.
func (e *Edge) InVertex() *Vertex {
	v, _ := e.endpoint(e.inV)
	return v
}

// Vertices returns the tail and the head of the edge, in that order.
func (e *Edge) Vertices() []*Vertex {
	var out []*Vertex
	for _, id := range []string{e.outV, e.inV} {
		if v, err := e.endpoint(id); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// OtherVertex returns the endpoint of e that is not v. For a self loop it
// returns v itself.
func (e *Edge) OtherVertex(v *Vertex) (*Vertex, error) {
	switch v.id {
	case e.outV:
		return e.endpoint(e.inV)
	case e.inV:
		return e.endpoint(e.outV)
	}
	return nil, errors.New(errors.ErrCodeInvalidArgument, "vertex %s is not incident to edge %s", v, e)
}

// endpoint resolves an endpoint handle. From a Centric edge the vertex under
// execution stays Centric and the other endpoint is Adjacent.
func (e *Edge) endpoint(id string) (*Vertex, error) {
	g := e.graph
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, ok := g.vertices[id]
	if !ok {
		return nil, removedError(VertexKind, id)
	}
	mode := e.mode
	if mode == Centric && (e.view == nil || e.view.Center != id) {
		mode = Adjacent
	}
	return g.vertexHandle(rec, mode, e.view), nil
}

func (e *Edge) String() string {
	return "e[" + e.id + "][" + e.outV + "-" + e.label + "->" + e.inV + "]"
}
