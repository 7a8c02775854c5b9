package graph

import (
	"slices"
	"sync"

	"github.com/matzehuels/propgraph/pkg/errors"
)

// DefaultVertexLabel is the label of vertices created without one.
const DefaultVertexLabel = "vertex"

type vertexRecord struct {
	id    string
	label string
	seq   uint64
	props map[string]Value
	outE  []string // edge ids ordered by creation
	inE   []string
}

type edgeRecord struct {
	id    string
	label string
	seq   uint64
	outV  string
	inV   string
	props map[string]Value
}

// Graph is an in-memory property graph. Elements live in an arena keyed by
// id and are addressed through lightweight [*Vertex] and [*Edge] handles
// that re-read the arena on every access, so a removed element disappears
// from every handle at once.
//
// The zero value is not usable; create graphs with [New] or [Open].
// Graph is safe for concurrent use.
type Graph struct {
	mu sync.RWMutex

	vertices    map[string]*vertexRecord
	edges       map[string]*edgeRecord
	vertexOrder []string // ids ordered by seq
	edgeOrder   []string
	seq         uint64

	vertexIndex *index
	edgeIndex   *index

	ids      IDManager
	features Features
	tx       *Transaction
	closed   bool
	running  int // vertex programs in progress
}

// New creates an empty graph with [DefaultFeatures] and counter ids.
func New() *Graph {
	return newGraph(DefaultFeatures(), &CounterIDs{})
}

func newGraph(features Features, ids IDManager) *Graph {
	return &Graph{
		vertices:    make(map[string]*vertexRecord),
		edges:       make(map[string]*edgeRecord),
		vertexIndex: newIndex(),
		edgeIndex:   newIndex(),
		ids:         ids,
		features:    features,
	}
}

// Features returns the features declared by the graph.
func (g *Graph) Features() Features { return g.features }

// Close rolls back any open transaction and rejects further mutations.
// Reads keep working on the last committed state.
func (g *Graph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.tx != nil && g.tx.open {
		g.rollbackLocked()
	}
	g.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (g *Graph) IsClosed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.closed
}

func (g *Graph) checkOpen() error {
	if g.closed {
		return errors.New(errors.ErrCodeUnsupported, "the graph is closed")
	}
	return nil
}

// checkWritable guards writes through Standard handles.
func (g *Graph) checkWritable() error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	if g.running > 0 {
		return errors.New(errors.ErrCodeUnsupported, "the graph can not be modified while a vertex program is running")
	}
	return nil
}

// BeginComputation marks the graph as running a vertex program. Until the
// returned function is called, writes through Standard handles fail with
// UNSUPPORTED; buffered compute writes still reach the graph through
// [Graph.ApplyWrites].
func (g *Graph) BeginComputation() (end func()) {
	g.mu.Lock()
	g.running++
	g.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			g.running--
			g.mu.Unlock()
		})
	}
}

// Computing reports whether a vertex program is running over g.
func (g *Graph) Computing() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.running > 0
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertices)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Vertex returns the vertex with the given id.
func (g *Graph) Vertex(id any) (*Vertex, bool) {
	key, err := NormalizeID(id)
	if err != nil {
		return nil, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, ok := g.vertices[key]
	if !ok {
		return nil, false
	}
	return g.vertexHandle(rec, Standard, nil), true
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id any) (*Edge, bool) {
	key, err := NormalizeID(id)
	if err != nil {
		return nil, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, ok := g.edges[key]
	if !ok {
		return nil, false
	}
	return g.edgeHandle(rec, Standard, nil), true
}

// V returns the vertices with the given ids in argument order, skipping
// ids that do not exist. Without ids it returns every vertex in creation
// order.
func (g *Graph) V(ids ...any) []*Vertex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(ids) == 0 {
		out := make([]*Vertex, 0, len(g.vertexOrder))
		for _, id := range g.vertexOrder {
			out = append(out, g.vertexHandle(g.vertices[id], Standard, nil))
		}
		return out
	}
	out := make([]*Vertex, 0, len(ids))
	for _, raw := range ids {
		id, err := NormalizeID(raw)
		if err != nil {
			continue
		}
		if rec, ok := g.vertices[id]; ok {
			out = append(out, g.vertexHandle(rec, Standard, nil))
		}
	}
	return out
}

// E returns the edges with the given ids in argument order, skipping ids
// that do not exist. Without ids it returns every edge in creation order.
func (g *Graph) E(ids ...any) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(ids) == 0 {
		out := make([]*Edge, 0, len(g.edgeOrder))
		for _, id := range g.edgeOrder {
			out = append(out, g.edgeHandle(g.edges[id], Standard, nil))
		}
		return out
	}
	out := make([]*Edge, 0, len(ids))
	for _, raw := range ids {
		id, err := NormalizeID(raw)
		if err != nil {
			continue
		}
		if rec, ok := g.edges[id]; ok {
			out = append(out, g.edgeHandle(rec, Standard, nil))
		}
	}
	return out
}

// VertexIDs returns a snapshot of all vertex ids in creation order.
func (g *Graph) VertexIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.vertexOrder)
}

// EdgeIDs returns a snapshot of all edge ids in creation order.
func (g *Graph) EdgeIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.edgeOrder)
}

// AddVertex creates a vertex from alternating keys and values. The reserved
// keys "id" and "label" set the identifier and the label; every other key
// becomes a property. The vertex label defaults to [DefaultVertexLabel].
//
// All arguments are validated before the graph is touched, so a failed
// call leaves no partial vertex behind.
func (g *Graph) AddVertex(keyValues ...any) (*Vertex, error) {
	spec, err := g.parseElement(VertexKind, keyValues)
	if err != nil {
		return nil, err
	}
	if spec.label == "" {
		spec.label = DefaultVertexLabel
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkWritable(); err != nil {
		return nil, err
	}

	id := spec.id
	if spec.hasID {
		if _, exists := g.vertices[id]; exists {
			return nil, errors.New(errors.ErrCodeIDConflict, "vertex with id already exists: %s", id)
		}
	} else {
		id = g.nextID(VertexKind)
	}

	g.seq++
	rec := &vertexRecord{
		id:    id,
		label: spec.label,
		seq:   g.seq,
		props: make(map[string]Value, len(spec.props)),
	}
	for _, p := range spec.props {
		rec.props[p.key] = p.value
	}
	g.insertVertexLocked(rec)
	g.logUndo(func() { g.deleteVertexLocked(rec) })
	return g.vertexHandle(rec, Standard, nil), nil
}

func (g *Graph) nextID(kind ElementKind) string {
	for {
		id := g.ids.Next(kind)
		var taken bool
		if kind == EdgeKind {
			_, taken = g.edges[id]
		} else {
			_, taken = g.vertices[id]
		}
		if !taken {
			return id
		}
	}
}

func (g *Graph) addEdge(outID, label, inID string, keyValues []any) (*Edge, error) {
	if err := errors.ValidateLabel("edge", label); err != nil {
		return nil, err
	}
	spec, err := g.parseElement(EdgeKind, keyValues)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkWritable(); err != nil {
		return nil, err
	}

	out, ok := g.vertices[outID]
	if !ok {
		return nil, removedError(VertexKind, outID)
	}
	in, ok := g.vertices[inID]
	if !ok {
		return nil, removedError(VertexKind, inID)
	}

	id := spec.id
	if spec.hasID {
		if _, exists := g.edges[id]; exists {
			return nil, errors.New(errors.ErrCodeIDConflict, "edge with id already exists: %s", id)
		}
	} else {
		id = g.nextID(EdgeKind)
	}

	g.seq++
	rec := &edgeRecord{
		id:    id,
		label: label,
		seq:   g.seq,
		outV:  out.id,
		inV:   in.id,
		props: make(map[string]Value, len(spec.props)),
	}
	for _, p := range spec.props {
		rec.props[p.key] = p.value
	}
	g.insertEdgeLocked(rec)
	g.logUndo(func() { g.deleteEdgeLocked(rec) })
	return g.edgeHandle(rec, Standard, nil), nil
}

type keyValue struct {
	key   string
	value Value
}

type elementSpec struct {
	id    string
	hasID bool
	label string
	props []keyValue
}

func (g *Graph) parseElement(kind ElementKind, keyValues []any) (elementSpec, error) {
	var spec elementSpec
	if err := errors.ValidateKeyValues(keyValues); err != nil {
		return spec, err
	}
	for i := 0; i < len(keyValues); i += 2 {
		key := keyValues[i].(string)
		raw := keyValues[i+1]

		switch {
		case key == errors.ReservedKeyID:
			if !g.features.element(kind).UserSuppliedIDs {
				return spec, errors.New(errors.ErrCodeUnsupported, "%s does not support user supplied identifiers", kind)
			}
			id, err := NormalizeID(raw)
			if err != nil {
				return spec, err
			}
			if err := errors.ValidateID(kind.String(), id); err != nil {
				return spec, err
			}
			spec.id, spec.hasID = id, true
			continue
		case key == errors.ReservedKeyLabel && kind == VertexKind:
			label, ok := raw.(string)
			if !ok {
				return spec, errors.New(errors.ErrCodeInvalidArgument, "vertex label must be a string")
			}
			if err := errors.ValidateLabel(kind.String(), label); err != nil {
				return spec, err
			}
			spec.label = label
			continue
		}

		if err := errors.ValidatePropertyKey(key); err != nil {
			return spec, err
		}
		v, err := g.valueOf(kind, raw)
		if err != nil {
			return spec, err
		}
		spec.props = append(spec.props, keyValue{key: key, value: v})
	}
	return spec, nil
}

func (g *Graph) valueOf(kind ElementKind, raw any) (Value, error) {
	if !g.features.element(kind).Properties {
		return Value{}, errors.New(errors.ErrCodeUnsupported, "%s properties are not supported", kind)
	}
	v, err := ValueOf(raw)
	if err != nil {
		return Value{}, err
	}
	if !g.features.SupportsValue(v) {
		return Value{}, errors.New(errors.ErrCodeUnsupportedType, "property value of type %s is not supported", v.Kind())
	}
	return v, nil
}

// ApplyWrites merges buffered compute writes into the graph. Writes to
// elements that no longer exist are skipped.
func (g *Graph) ApplyWrites(writes []Write) error {
	if len(writes) == 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkOpen(); err != nil {
		return err
	}
	for _, w := range writes {
		if w.Remove {
			g.removePropertyLocked(w.Kind, w.ID, w.Key)
			continue
		}
		g.setPropertyLocked(w.Kind, w.ID, w.Key, w.Value)
	}
	return nil
}

// Centric returns a Centric handle on the vertex with the given id, or
// false if it does not exist.
func (g *Graph) Centric(id string, view *ComputeView) (*Vertex, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, ok := g.vertices[id]
	if !ok {
		return nil, false
	}
	return g.vertexHandle(rec, Centric, view), true
}

func (g *Graph) vertexHandle(rec *vertexRecord, mode Mode, view *ComputeView) *Vertex {
	return &Vertex{graph: g, id: rec.id, label: rec.label, mode: mode, view: view}
}

func (g *Graph) edgeHandle(rec *edgeRecord, mode Mode, view *ComputeView) *Edge {
	return &Edge{graph: g, id: rec.id, label: rec.label, outV: rec.outV, inV: rec.inV, mode: mode, view: view}
}

// Arena primitives. All of them expect the write lock to be held.

func (g *Graph) insertVertexLocked(rec *vertexRecord) {
	g.vertices[rec.id] = rec
	g.vertexOrder = insertBySeq(g.vertexOrder, rec.id, rec.seq, g.vertexSeq)
	g.vertexIndex.addLabel(rec.label, rec.id)
	for k, v := range rec.props {
		g.vertexIndex.add(k, v, rec.id)
	}
}

func (g *Graph) deleteVertexLocked(rec *vertexRecord) {
	delete(g.vertices, rec.id)
	g.vertexOrder = slices.DeleteFunc(g.vertexOrder, func(id string) bool { return id == rec.id })
	g.vertexIndex.removeLabel(rec.label, rec.id)
	for k, v := range rec.props {
		g.vertexIndex.remove(k, v, rec.id)
	}
}

func (g *Graph) insertEdgeLocked(rec *edgeRecord) {
	g.edges[rec.id] = rec
	g.edgeOrder = insertBySeq(g.edgeOrder, rec.id, rec.seq, g.edgeSeq)
	if out, ok := g.vertices[rec.outV]; ok {
		out.outE = insertBySeq(out.outE, rec.id, rec.seq, g.edgeSeq)
	}
	if in, ok := g.vertices[rec.inV]; ok {
		in.inE = insertBySeq(in.inE, rec.id, rec.seq, g.edgeSeq)
	}
	g.edgeIndex.addLabel(rec.label, rec.id)
	for k, v := range rec.props {
		g.edgeIndex.add(k, v, rec.id)
	}
}

func (g *Graph) deleteEdgeLocked(rec *edgeRecord) {
	drop := func(id string) bool { return id == rec.id }
	delete(g.edges, rec.id)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, drop)
	if out, ok := g.vertices[rec.outV]; ok {
		out.outE = slices.DeleteFunc(out.outE, drop)
	}
	if in, ok := g.vertices[rec.inV]; ok {
		in.inE = slices.DeleteFunc(in.inE, drop)
	}
	g.edgeIndex.removeLabel(rec.label, rec.id)
	for k, v := range rec.props {
		g.edgeIndex.remove(k, v, rec.id)
	}
}

func (g *Graph) removeEdgeLocked(id string) error {
	rec, ok := g.edges[id]
	if !ok {
		return removedError(EdgeKind, id)
	}
	g.deleteEdgeLocked(rec)
	g.logUndo(func() { g.insertEdgeLocked(rec) })
	return nil
}

func (g *Graph) removeVertexLocked(id string) error {
	rec, ok := g.vertices[id]
	if !ok {
		return removedError(VertexKind, id)
	}
	// Self loops appear in both lists; the second removal is skipped.
	for _, eid := range slices.Concat(rec.outE, rec.inE) {
		if _, ok := g.edges[eid]; ok {
			_ = g.removeEdgeLocked(eid)
		}
	}
	g.deleteVertexLocked(rec)
	g.logUndo(func() { g.insertVertexLocked(rec) })
	return nil
}

func (g *Graph) props(kind ElementKind, id string) (map[string]Value, bool) {
	if kind == EdgeKind {
		rec, ok := g.edges[id]
		if !ok {
			return nil, false
		}
		return rec.props, true
	}
	rec, ok := g.vertices[id]
	if !ok {
		return nil, false
	}
	return rec.props, true
}

func (g *Graph) setPropertyLocked(kind ElementKind, id, key string, v Value) bool {
	props, ok := g.props(kind, id)
	if !ok {
		return false
	}
	x := g.indexFor(kind)
	old, had := props[key]
	if had {
		x.remove(key, old, id)
	}
	props[key] = v
	x.add(key, v, id)
	g.logUndo(func() {
		x.remove(key, v, id)
		if had {
			props[key] = old
			x.add(key, old, id)
			return
		}
		delete(props, key)
	})
	return true
}

func (g *Graph) removePropertyLocked(kind ElementKind, id, key string) bool {
	props, ok := g.props(kind, id)
	if !ok {
		return false
	}
	old, had := props[key]
	if !had {
		return true
	}
	x := g.indexFor(kind)
	delete(props, key)
	x.remove(key, old, id)
	g.logUndo(func() {
		props[key] = old
		x.add(key, old, id)
	})
	return true
}

func (g *Graph) vertexSeq(id string) uint64 { return g.vertices[id].seq }
func (g *Graph) edgeSeq(id string) uint64   { return g.edges[id].seq }

// insertBySeq inserts id into ids, which is ordered by sequence number.
// New elements carry the highest sequence and are appended; restored ones
// return to their original position.
func insertBySeq(ids []string, id string, seq uint64, seqOf func(string) uint64) []string {
	n := len(ids)
	if n == 0 || seqOf(ids[n-1]) < seq {
		return append(ids, id)
	}
	i, _ := slices.BinarySearchFunc(ids, seq, func(e string, target uint64) int {
		s := seqOf(e)
		switch {
		case s < target:
			return -1
		case s > target:
			return 1
		}
		return 0
	})
	return slices.Insert(ids, i, id)
}
