package pipeline

import (
	"fmt"
	"strings"
)

// NoFuture is the future of a holder that is not routed back into the
// traversal.
const NoFuture = "noFuture"

// Holder wraps a traversal value with its history: the path of values it
// was derived from, the number of loops it has made and the alias it is
// routed back to, if any.
//
// Holders are treated as immutable once emitted; steps derive new holders
// with [Holder.MakeChild] and [Holder.MakeSibling].
type Holder struct {
	value  any
	path   Path
	loops  int
	future string
}

// NewHolder returns a start holder whose path contains only value.
func NewHolder(value any) *Holder {
	return &Holder{
		value:  value,
		path:   Path{}.Extend("", value),
		future: NoFuture,
	}
}

// Get returns the wrapped value.
func (h *Holder) Get() any { return h.value }

func (h *Holder) Path() Path     { return h.path }
func (h *Holder) Loops() int     { return h.loops }
func (h *Holder) Future() string { return h.future }

// IsDone reports whether the holder has no pending future.
func (h *Holder) IsDone() bool { return h.future == NoFuture }

// MakeChild derives a holder for v produced from h by a step aliased as
// (as may be empty). The child extends the path and keeps loops and future.
func (h *Holder) MakeChild(as string, v any) *Holder {
	return &Holder{
		value:  v,
		path:   h.path.Extend(as, v),
		loops:  h.loops,
		future: h.future,
	}
}

// MakeSibling returns a copy of h sharing its path.
func (h *Holder) MakeSibling() *Holder {
	c := *h
	return &c
}

// IncrLoops increments the loop counter. Only call it on a holder that has
// not been emitted yet, typically a fresh sibling.
func (h *Holder) IncrLoops() { h.loops++ }

// SetFuture sets the alias the holder is routed to.
func (h *Holder) SetFuture(as string) { h.future = as }

// withAlias returns a sibling whose latest path entry is also recorded
// under as. Filters use it so that as() on a filter step labels the value
// that passed.
func (h *Holder) withAlias(as string) *Holder {
	if as == "" {
		return h
	}
	c := *h
	c.path = h.path.Alias(as)
	return &c
}

func (h *Holder) String() string {
	return fmt.Sprint(h.value)
}

// Path is the history of a holder: every value it was derived from,
// oldest first, with the aliases recorded for them. Paths are persistent;
// extending a path never changes the original, so holders that branch from
// a common ancestor share its prefix.
type Path struct {
	tail *pathNode
	n    int
}

type pathNode struct {
	parent  *pathNode
	aliases []string
	value   any
}

// Extend returns the path with v appended under alias as.
func (p Path) Extend(as string, v any) Path {
	node := &pathNode{parent: p.tail, value: v}
	if as != "" {
		node.aliases = []string{as}
	}
	return Path{tail: node, n: p.n + 1}
}

// Alias returns the path with as added to the aliases of its last entry.
func (p Path) Alias(as string) Path {
	if p.tail == nil {
		return p
	}
	node := *p.tail
	node.aliases = append(append([]string(nil), p.tail.aliases...), as)
	return Path{tail: &node, n: p.n}
}

// Get returns the most recent value recorded under alias.
func (p Path) Get(alias string) (any, bool) {
	for node := p.tail; node != nil; node = node.parent {
		for _, a := range node.aliases {
			if a == alias {
				return node.value, true
			}
		}
	}
	return nil, false
}

// Has reports whether alias was recorded.
func (p Path) Has(alias string) bool {
	_, ok := p.Get(alias)
	return ok
}

func (p Path) Len() int { return p.n }

// Objects returns the values of the path, oldest first.
func (p Path) Objects() []any {
	out := make([]any, p.n)
	i := p.n - 1
	for node := p.tail; node != nil; node = node.parent {
		out[i] = node.value
		i--
	}
	return out
}

// Aliases returns the aliases of each entry, aligned with [Path.Objects].
func (p Path) Aliases() [][]string {
	out := make([][]string, p.n)
	i := p.n - 1
	for node := p.tail; node != nil; node = node.parent {
		out[i] = node.aliases
		i--
	}
	return out
}

func (p Path) String() string {
	objects := p.Objects()
	parts := make([]string, len(objects))
	for i, o := range objects {
		parts[i] = fmt.Sprint(o)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
