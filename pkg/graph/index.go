package graph

import (
	"slices"

	"github.com/matzehuels/propgraph/pkg/errors"
)

// index maps property values and labels to element ids for one element
// kind. Labels are always indexed; property keys only once created.
type index struct {
	keys   map[string]map[string]map[string]struct{} // key -> value key -> ids
	labels map[string]map[string]struct{}
}

func newIndex() *index {
	return &index{
		keys:   make(map[string]map[string]map[string]struct{}),
		labels: make(map[string]map[string]struct{}),
	}
}

func (x *index) indexed(key string) bool {
	_, ok := x.keys[key]
	return ok
}

func (x *index) add(key string, v Value, id string) {
	byValue, ok := x.keys[key]
	if !ok {
		return
	}
	k := v.Key()
	ids := byValue[k]
	if ids == nil {
		ids = make(map[string]struct{})
		byValue[k] = ids
	}
	ids[id] = struct{}{}
}

func (x *index) remove(key string, v Value, id string) {
	byValue, ok := x.keys[key]
	if !ok {
		return
	}
	k := v.Key()
	delete(byValue[k], id)
	if len(byValue[k]) == 0 {
		delete(byValue, k)
	}
}

func (x *index) addLabel(label, id string) {
	ids := x.labels[label]
	if ids == nil {
		ids = make(map[string]struct{})
		x.labels[label] = ids
	}
	ids[id] = struct{}{}
}

func (x *index) removeLabel(label, id string) {
	delete(x.labels[label], id)
	if len(x.labels[label]) == 0 {
		delete(x.labels, label)
	}
}

func (x *index) lookup(key string, v Value) []string {
	return setKeys(x.keys[key][v.Key()])
}

func (x *index) lookupLabel(label string) []string {
	return setKeys(x.labels[label])
}

func (x *index) indexedKeys() []string {
	keys := make([]string, 0, len(x.keys))
	for k := range x.keys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func setKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// CreateIndex starts indexing key for elements of the given kind. Existing
// elements are indexed immediately. Creating an index twice is a no-op.
func (g *Graph) CreateIndex(kind ElementKind, key string) error {
	if err := errors.ValidatePropertyKey(key); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	x := g.indexFor(kind)
	if x.indexed(key) {
		return nil
	}
	x.keys[key] = make(map[string]map[string]struct{})
	switch kind {
	case VertexKind:
		for _, rec := range g.vertices {
			if v, ok := rec.props[key]; ok {
				x.add(key, v, rec.id)
			}
		}
	case EdgeKind:
		for _, rec := range g.edges {
			if v, ok := rec.props[key]; ok {
				x.add(key, v, rec.id)
			}
		}
	}
	return nil
}

// DropIndex stops indexing key for elements of the given kind.
func (g *Graph) DropIndex(kind ElementKind, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.indexFor(kind).keys, key)
}

// IndexedKeys returns the sorted property keys indexed for kind.
func (g *Graph) IndexedKeys(kind ElementKind) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.indexFor(kind).indexedKeys()
}

func (g *Graph) indexFor(kind ElementKind) *index {
	if kind == EdgeKind {
		return g.edgeIndex
	}
	return g.vertexIndex
}
