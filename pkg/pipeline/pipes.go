package pipeline

import (
	"fmt"

	"github.com/matzehuels/propgraph/pkg/graph"
)

// Function values plugged into the generic pipes.
type (
	MapFunc        func(h *Holder) (any, error)
	FlatMapFunc    func(h *Holder) ([]any, error)
	FilterFunc     func(h *Holder) (bool, error)
	SideEffectFunc func(h *Holder) error
	KeyFunc        func(v any) (any, error)
	LoopFunc       func(h *Holder) bool
)

// IdentityPipe emits its starts unchanged.
type IdentityPipe struct{ base }

func NewIdentityPipe() *IdentityPipe {
	p := &IdentityPipe{}
	p.name = "IdentityPipe"
	p.process = func() (*Holder, error) {
		h, err := p.starts.Next()
		if err != nil {
			return nil, err
		}
		return p.pass(h), nil
	}
	return p
}

// MapPipe emits fn(h) for every start h. The output holder extends the
// input path and keeps its loops and future.
type MapPipe struct {
	base
	fn MapFunc
}

func NewMapPipe(fn MapFunc) *MapPipe {
	p := &MapPipe{}
	p.init("MapPipe", fn)
	return p
}

func (p *MapPipe) init(name string, fn MapFunc, args ...any) {
	p.name, p.args, p.fn = name, args, fn
	p.process = p.processNextStart
}

func (p *MapPipe) processNextStart() (*Holder, error) {
	h, err := p.starts.Next()
	if err != nil {
		return nil, err
	}
	v, err := p.fn(h)
	if err != nil {
		return nil, err
	}
	return p.child(h, v), nil
}

// FlatMapPipe emits every value of fn(h) for every start h, in order.
type FlatMapPipe struct {
	base
	fn     FlatMapFunc
	source *Holder
	buffer []any
}

func NewFlatMapPipe(fn FlatMapFunc) *FlatMapPipe {
	p := &FlatMapPipe{}
	p.init("FlatMapPipe", fn)
	return p
}

func (p *FlatMapPipe) init(name string, fn FlatMapFunc, args ...any) {
	p.name, p.args, p.fn = name, args, fn
	p.process = p.processNextStart
}

func (p *FlatMapPipe) processNextStart() (*Holder, error) {
	for len(p.buffer) == 0 {
		h, err := p.starts.Next()
		if err != nil {
			return nil, err
		}
		vs, err := p.fn(h)
		if err != nil {
			return nil, err
		}
		p.source, p.buffer = h, vs
	}
	v := p.buffer[0]
	p.buffer = p.buffer[1:]
	return p.child(p.source, v), nil
}

// FilterPipe emits the starts for which fn returns true and silently drops
// the others.
type FilterPipe struct {
	base
	fn FilterFunc
}

func NewFilterPipe(fn FilterFunc) *FilterPipe {
	p := &FilterPipe{}
	p.init("FilterPipe", fn)
	return p
}

func (p *FilterPipe) init(name string, fn FilterFunc, args ...any) {
	p.name, p.args, p.fn = name, args, fn
	p.process = p.processNextStart
}

func (p *FilterPipe) processNextStart() (*Holder, error) {
	for {
		h, err := p.starts.Next()
		if err != nil {
			return nil, err
		}
		ok, err := p.fn(h)
		if err != nil {
			return nil, err
		}
		if ok {
			return p.pass(h), nil
		}
	}
}

// SideEffectPipe calls fn for every start and emits the start unchanged.
type SideEffectPipe struct {
	base
	fn SideEffectFunc
}

func NewSideEffectPipe(fn SideEffectFunc) *SideEffectPipe {
	p := &SideEffectPipe{}
	p.init("SideEffectPipe", fn)
	return p
}

func (p *SideEffectPipe) init(name string, fn SideEffectFunc, args ...any) {
	p.name, p.args, p.fn = name, args, fn
	p.process = p.processNextStart
}

func (p *SideEffectPipe) processNextStart() (*Holder, error) {
	h, err := p.starts.Next()
	if err != nil {
		return nil, err
	}
	if err := p.fn(h); err != nil {
		return nil, err
	}
	return p.pass(h), nil
}

// BackPipe emits the value recorded under an alias in each start's path.
// Starts whose path lacks the alias are dropped.
type BackPipe struct {
	base
	target string
}

func NewBackPipe(alias string) *BackPipe {
	p := &BackPipe{target: alias}
	p.name, p.args = "BackPipe", []any{alias}
	p.process = func() (*Holder, error) {
		for {
			h, err := p.starts.Next()
			if err != nil {
				return nil, err
			}
			if v, ok := h.path.Get(p.target); ok {
				return p.child(h, v), nil
			}
		}
	}
	return p
}

// DedupPipe emits each distinct value once, in first-seen order. With a
// key function, values are distinct when their keys are. The seen set
// lives as long as the pipe.
type DedupPipe struct {
	base
	key  KeyFunc
	seen map[string]struct{}
}

func NewDedupPipe(key KeyFunc) *DedupPipe {
	p := &DedupPipe{key: key, seen: make(map[string]struct{})}
	p.name = "DedupPipe"
	p.process = p.processNextStart
	return p
}

func (p *DedupPipe) processNextStart() (*Holder, error) {
	for {
		h, err := p.starts.Next()
		if err != nil {
			return nil, err
		}
		v := h.value
		if p.key != nil {
			if v, err = p.key(v); err != nil {
				return nil, err
			}
		}
		k := identity(v)
		if _, dup := p.seen[k]; dup {
			continue
		}
		p.seen[k] = struct{}{}
		return p.pass(h), nil
	}
}

// identity returns a string that is equal for values the traversal treats
// as the same: elements by kind and id, scalars and graph values by their
// canonical value key.
func identity(v any) string {
	switch t := v.(type) {
	case graph.Element:
		return t.Kind().String() + ":" + t.ID()
	case graph.Property:
		if !t.IsPresent() {
			return "property:" + t.Key() + ":empty"
		}
		return "property:" + t.Key() + "=" + t.Value().Key()
	}
	if val, err := graph.ValueOf(v); err == nil {
		return "value:" + val.Key()
	}
	return fmt.Sprintf("%T:%v", v, v)
}

// RangePipe emits the starts with zero-based position in [low, high). A
// negative high means no upper bound. Once high is reached the pipe stops
// pulling.
type RangePipe struct {
	base
	low, high int
	count     int
}

func NewRangePipe(low, high int) *RangePipe {
	p := &RangePipe{low: low, high: high}
	p.name, p.args = "RangePipe", []any{low, high}
	p.process = func() (*Holder, error) {
		for {
			if p.high >= 0 && p.count >= p.high {
				return nil, ErrExhausted
			}
			h, err := p.starts.Next()
			if err != nil {
				return nil, err
			}
			pos := p.count
			p.count++
			if pos >= p.low {
				return p.pass(h), nil
			}
		}
	}
	return p
}

// PathPipe emits the path of each start.
type PathPipe struct{ base }

func NewPathPipe() *PathPipe {
	p := &PathPipe{}
	p.name = "PathPipe"
	p.process = func() (*Holder, error) {
		h, err := p.starts.Next()
		if err != nil {
			return nil, err
		}
		return p.child(h, h.path), nil
	}
	return p
}
