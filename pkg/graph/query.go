package graph

import (
	"slices"

	"github.com/matzehuels/propgraph/pkg/errors"
)

// ElementSource is the raw scan surface a [GraphQuery] needs. Any graph
// that can enumerate its vertices and edges can be queried through
// [NewScanQuery].
type ElementSource interface {
	V(ids ...any) []*Vertex
	E(ids ...any) []*Edge
}

// filter holds the conditions shared by graph and vertex queries. The
// first construction error is kept and reported when the query runs.
type filter struct {
	containers []HasContainer
	limit      int
	err        error
}

func newFilter() filter { return filter{limit: -1} }

func (f *filter) has(key string, pred Predicate, value any) {
	if f.err != nil {
		return
	}
	c, err := NewHasContainer(key, pred, value)
	if err != nil {
		f.err = err
		return
	}
	f.containers = append(f.containers, c)
}

func (f *filter) presence(key string, absent bool) {
	if f.err != nil {
		return
	}
	if key == "" {
		f.err = errors.New(errors.ErrCodeNullOrEmpty, "property key can not be empty")
		return
	}
	f.containers = append(f.containers, HasContainer{Key: key, Absent: absent})
}

func (f *filter) setLimit(n int) {
	if n < 0 && f.err == nil {
		f.err = errors.New(errors.ErrCodeInvalidArgument, "limit must be non-negative, got %d", n)
		return
	}
	f.limit = n
}

func (f *filter) full(n int) bool { return f.limit >= 0 && n >= f.limit }

func labelValues(labels []string) []any {
	out := make([]any, len(labels))
	for i, l := range labels {
		out[i] = l
	}
	return out
}

// GraphQuery selects vertices or edges of a graph by a conjunction of
// [HasContainer] conditions. Results are returned in creation order.
//
// Queries built with [Graph.Query] use the label index, the id map and any
// property index created with [Graph.CreateIndex] to narrow the candidates;
// queries built with [NewScanQuery] test every element. Both produce the
// same results in the same order.
type GraphQuery struct {
	source ElementSource
	graph  *Graph // nil for scan queries
	filter
}

// Query starts an indexed query over g.
func (g *Graph) Query() *GraphQuery {
	return &GraphQuery{source: g, graph: g, filter: newFilter()}
}

// NewScanQuery starts a query that evaluates every element of src.
func NewScanQuery(src ElementSource) *GraphQuery {
	return &GraphQuery{source: src, filter: newFilter()}
}

// Has keeps elements whose key equals value.
func (q *GraphQuery) Has(key string, value any) *GraphQuery {
	q.has(key, Equal, value)
	return q
}

// HasPredicate keeps elements whose key satisfies pred against value.
func (q *GraphQuery) HasPredicate(key string, pred Predicate, value any) *GraphQuery {
	q.has(key, pred, value)
	return q
}

// HasKey keeps elements that carry key.
func (q *GraphQuery) HasKey(key string) *GraphQuery {
	q.presence(key, false)
	return q
}

// HasNot keeps elements that do not carry key.
func (q *GraphQuery) HasNot(key string) *GraphQuery {
	q.presence(key, true)
	return q
}

// HasNotValue keeps elements whose key is present and differs from value.
func (q *GraphQuery) HasNotValue(key string, value any) *GraphQuery {
	q.has(key, NotEqual, value)
	return q
}

// Interval keeps elements with start <= key < end.
func (q *GraphQuery) Interval(key string, start, end any) *GraphQuery {
	q.has(key, GreaterThanEqual, start)
	q.has(key, LessThan, end)
	return q
}

// IDs keeps elements whose id is one of ids.
func (q *GraphQuery) IDs(ids ...any) *GraphQuery {
	q.has(errors.ReservedKeyID, Within, ids)
	return q
}

// Labels keeps elements whose label is one of labels.
func (q *GraphQuery) Labels(labels ...string) *GraphQuery {
	q.has(errors.ReservedKeyLabel, Within, labelValues(labels))
	return q
}

// Limit caps the number of results.
func (q *GraphQuery) Limit(n int) *GraphQuery {
	q.setLimit(n)
	return q
}

// Containers returns the conditions collected so far.
func (q *GraphQuery) Containers() []HasContainer {
	return slices.Clone(q.containers)
}

// Vertices runs the query over vertices.
func (q *GraphQuery) Vertices() ([]*Vertex, error) {
	if q.err != nil {
		return nil, q.err
	}
	var out []*Vertex
	for _, v := range q.vertexCandidates() {
		if q.full(len(out)) {
			break
		}
		ok, err := TestAll(v, q.containers)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Edges runs the query over edges.
func (q *GraphQuery) Edges() ([]*Edge, error) {
	if q.err != nil {
		return nil, q.err
	}
	var out []*Edge
	for _, e := range q.edgeCandidates() {
		if q.full(len(out)) {
			break
		}
		ok, err := TestAll(e, q.containers)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// CountVertices returns the number of matching vertices.
func (q *GraphQuery) CountVertices() (int, error) {
	vs, err := q.Vertices()
	return len(vs), err
}

// CountEdges returns the number of matching edges.
func (q *GraphQuery) CountEdges() (int, error) {
	es, err := q.Edges()
	return len(es), err
}

func (q *GraphQuery) vertexCandidates() []*Vertex {
	if q.graph == nil {
		return q.source.V()
	}
	g := q.graph
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids, ok := g.lookupLocked(VertexKind, q.containers)
	if !ok {
		ids = g.vertexOrder
	}
	out := make([]*Vertex, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.vertexHandle(g.vertices[id], Standard, nil))
	}
	return out
}

func (q *GraphQuery) edgeCandidates() []*Edge {
	if q.graph == nil {
		return q.source.E()
	}
	g := q.graph
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids, ok := g.lookupLocked(EdgeKind, q.containers)
	if !ok {
		ids = g.edgeOrder
	}
	out := make([]*Edge, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.edgeHandle(g.edges[id], Standard, nil))
	}
	return out
}

// lookupLocked narrows the candidates using the first container an index
// can answer. The returned ids exist and are in creation order. Every
// container is still tested against the candidates afterwards.
func (g *Graph) lookupLocked(kind ElementKind, containers []HasContainer) ([]string, bool) {
	x := g.indexFor(kind)
	for _, c := range containers {
		var conditions []Value
		switch p := c.Predicate.(type) {
		case Compare:
			if p != Equal {
				continue
			}
			conditions = []Value{c.Value}
		case Contains:
			if p != Within || c.Value.Kind() != KindList {
				continue
			}
			conditions = c.Value.list
		default:
			continue
		}

		var ids []string
		switch {
		case c.Key == errors.ReservedKeyID:
			for _, v := range conditions {
				ids = append(ids, v.Text())
			}
		case c.Key == errors.ReservedKeyLabel:
			for _, v := range conditions {
				if v.Kind() == KindString {
					ids = append(ids, x.lookupLabel(v.Text())...)
				}
			}
		case x.indexed(c.Key):
			for _, v := range conditions {
				ids = append(ids, x.lookup(c.Key, v)...)
			}
		default:
			continue
		}
		return g.orderLocked(kind, ids), true
	}
	return nil, false
}

func (g *Graph) orderLocked(kind ElementKind, ids []string) []string {
	seqOf := g.vertexSeq
	exists := func(id string) bool { _, ok := g.vertices[id]; return ok }
	if kind == EdgeKind {
		seqOf = g.edgeSeq
		exists = func(id string) bool { _, ok := g.edges[id]; return ok }
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || !exists(id) {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b string) int {
		sa, sb := seqOf(a), seqOf(b)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	})
	return out
}

// VertexQuery selects the incident edges of a vertex, and through them its
// adjacent vertices. The direction defaults to [Both].
type VertexQuery struct {
	vertex    *Vertex
	dir       Direction
	labels    []string
	adjacents map[string]struct{}
	filter
}

// Direction restricts the edges to one direction.
func (q *VertexQuery) Direction(d Direction) *VertexQuery {
	q.dir = d
	return q
}

// Labels restricts the edges to the given labels.
func (q *VertexQuery) Labels(labels ...string) *VertexQuery {
	q.labels = append(q.labels, labels...)
	return q
}

// Adjacents restricts the edges to those whose other end is one of vs.
func (q *VertexQuery) Adjacents(vs ...*Vertex) *VertexQuery {
	if q.adjacents == nil {
		q.adjacents = make(map[string]struct{}, len(vs))
	}
	for _, v := range vs {
		q.adjacents[v.ID()] = struct{}{}
	}
	return q
}

func (q *VertexQuery) Has(key string, value any) *VertexQuery {
	q.has(key, Equal, value)
	return q
}

func (q *VertexQuery) HasPredicate(key string, pred Predicate, value any) *VertexQuery {
	q.has(key, pred, value)
	return q
}

func (q *VertexQuery) HasKey(key string) *VertexQuery {
	q.presence(key, false)
	return q
}

func (q *VertexQuery) HasNot(key string) *VertexQuery {
	q.presence(key, true)
	return q
}

func (q *VertexQuery) HasNotValue(key string, value any) *VertexQuery {
	q.has(key, NotEqual, value)
	return q
}

func (q *VertexQuery) Interval(key string, start, end any) *VertexQuery {
	q.has(key, GreaterThanEqual, start)
	q.has(key, LessThan, end)
	return q
}

func (q *VertexQuery) Limit(n int) *VertexQuery {
	q.setLimit(n)
	return q
}

type incidence struct {
	edge  *Edge
	other string
}

func (q *VertexQuery) run() ([]incidence, error) {
	if q.err != nil {
		return nil, q.err
	}
	var out []incidence
	collect := func(d Direction) error {
		for _, e := range q.vertex.Edges(d, q.labels...) {
			if q.full(len(out)) {
				return nil
			}
			other := e.inV
			if d == In {
				other = e.outV
			}
			if q.adjacents != nil {
				if _, ok := q.adjacents[other]; !ok {
					continue
				}
			}
			ok, err := TestAll(e, q.containers)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, incidence{edge: e, other: other})
			}
		}
		return nil
	}
	dirs := []Direction{q.dir}
	if q.dir == Both {
		dirs = []Direction{Out, In}
	}
	for _, d := range dirs {
		if err := collect(d); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Edges returns the matching incident edges.
func (q *VertexQuery) Edges() ([]*Edge, error) {
	matches, err := q.run()
	if err != nil {
		return nil, err
	}
	out := make([]*Edge, len(matches))
	for i, m := range matches {
		out[i] = m.edge
	}
	return out, nil
}

// Vertices returns the far endpoint of every matching edge.
func (q *VertexQuery) Vertices() ([]*Vertex, error) {
	matches, err := q.run()
	if err != nil {
		return nil, err
	}
	out := make([]*Vertex, 0, len(matches))
	for _, m := range matches {
		if v, err := m.edge.endpoint(m.other); err == nil {
			out = append(out, v)
		}
	}
	return out, nil
}

// Count returns the number of matching incident edges.
func (q *VertexQuery) Count() (int, error) {
	matches, err := q.run()
	return len(matches), err
}
