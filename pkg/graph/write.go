package graph

import (
	"slices"

	"github.com/matzehuels/propgraph/pkg/errors"
)

// setProperty dispatches a property write according to the handle mode.
// Validation happens first in every mode, so an invalid key is reported as
// such even on a read-only handle.
func (g *Graph) setProperty(kind ElementKind, id string, mode Mode, view *ComputeView, key string, raw any) error {
	if err := errors.ValidatePropertyKey(key); err != nil {
		return err
	}
	v, err := g.valueOf(kind, raw)
	if err != nil {
		return err
	}

	switch mode {
	case Centric:
		keyType, err := g.computeKey(kind, id, view, key)
		if err != nil {
			return err
		}
		return view.Writes.Buffer(Write{Kind: kind, ID: id, Key: key, KeyType: keyType, Value: v})
	case Adjacent:
		return errors.New(errors.ErrCodeAdjacentNotWritable, "adjacent element properties can not be written")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkWritable(); err != nil {
		return err
	}
	if !g.setPropertyLocked(kind, id, key, v) {
		return removedError(kind, id)
	}
	return nil
}

func (g *Graph) removeProperty(kind ElementKind, id string, mode Mode, view *ComputeView, key string) error {
	if err := errors.ValidatePropertyKey(key); err != nil {
		return err
	}

	switch mode {
	case Centric:
		keyType, err := g.computeKey(kind, id, view, key)
		if err != nil {
			return err
		}
		return view.Writes.Buffer(Write{Kind: kind, ID: id, Key: key, KeyType: keyType, Remove: true})
	case Adjacent:
		return errors.New(errors.ErrCodeAdjacentNotWritable, "adjacent element properties can not be written")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkWritable(); err != nil {
		return err
	}
	if !g.removePropertyLocked(kind, id, key) {
		return removedError(kind, id)
	}
	return nil
}

func (g *Graph) computeKey(kind ElementKind, id string, view *ComputeView, key string) (KeyType, error) {
	keyType, ok := view.Keys[key]
	if !ok {
		return 0, errors.New(errors.ErrCodeNotComputeKey, "the provided key is not a compute key: %s", key)
	}
	g.mu.RLock()
	_, exists := g.props(kind, id)
	g.mu.RUnlock()
	if !exists {
		return 0, removedError(kind, id)
	}
	return keyType, nil
}

func (g *Graph) property(e Element, kind ElementKind, id, key string) Property {
	g.mu.RLock()
	defer g.mu.RUnlock()
	props, ok := g.props(kind, id)
	if !ok {
		return Property{key: key}
	}
	v, ok := props[key]
	if !ok {
		return Property{key: key}
	}
	return Property{key: key, value: v, present: true, element: e}
}

func (g *Graph) properties(e Element, kind ElementKind, id string) map[string]Property {
	g.mu.RLock()
	defer g.mu.RUnlock()
	props, _ := g.props(kind, id)
	out := make(map[string]Property, len(props))
	for k, v := range props {
		out[k] = Property{key: k, value: v, present: true, element: e}
	}
	return out
}

func (g *Graph) keys(kind ElementKind, id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	props, _ := g.props(kind, id)
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (g *Graph) exists(kind ElementKind, id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.props(kind, id)
	return ok
}
