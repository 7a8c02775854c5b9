package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/propgraph/pkg/graph"
)

// Pipeline chains pipes into one traversal. It is itself a [Pipe]: its
// starts feed the first step and its results are those of the last.
//
// The builder methods append a step and return the pipeline. A step that
// can not be built (an invalid has condition, a loop to an unknown alias)
// records the error; it is returned by the first Next, HasNext or
// collector call and later steps are ignored.
type Pipeline struct {
	pipes   []Pipe
	aliases map[string]int
	err     error
}

// New returns a pipeline over pipes, connected in order.
func New(pipes ...Pipe) *Pipeline {
	p := &Pipeline{aliases: make(map[string]int)}
	p.Add(NewIdentityPipe())
	for _, pipe := range pipes {
		p.Add(pipe)
	}
	return p
}

// From returns an empty pipeline reading from starts.
func From(starts Iterator) *Pipeline {
	p := New()
	p.SetStarts(starts)
	return p
}

// Start returns a pipeline over the given values, each wrapped in a fresh
// holder.
func Start(values ...any) *Pipeline {
	holders := make([]*Holder, len(values))
	for i, v := range values {
		holders[i] = NewHolder(v)
	}
	return From(&sliceIterator{items: holders})
}

// V returns a pipeline over the vertices of g with the given ids, or over
// every vertex. The ids are captured on the first pull; vertices removed
// before they are reached are skipped.
func V(g *graph.Graph, ids ...any) *Pipeline {
	return From(&elementIterator{
		snapshot: func() []string { return snapshotIDs(g.VertexIDs, ids) },
		resolve: func(id string) (any, bool) {
			v, ok := g.Vertex(id)
			return v, ok
		},
	})
}

// E returns a pipeline over the edges of g with the given ids, or over
// every edge.
func E(g *graph.Graph, ids ...any) *Pipeline {
	return From(&elementIterator{
		snapshot: func() []string { return snapshotIDs(g.EdgeIDs, ids) },
		resolve: func(id string) (any, bool) {
			e, ok := g.Edge(id)
			return e, ok
		},
	})
}

func snapshotIDs(all func() []string, ids []any) []string {
	if len(ids) == 0 {
		return all()
	}
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		if id, err := graph.NormalizeID(raw); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// Add appends pipe to the pipeline.
func (p *Pipeline) Add(pipe Pipe) *Pipeline {
	if p.err != nil {
		return p
	}
	if n := len(p.pipes); n > 0 {
		pipe.SetStarts(p.pipes[n-1])
	}
	p.pipes = append(p.pipes, pipe)
	if alias := pipe.Alias(); alias != "" {
		p.aliases[alias] = len(p.pipes) - 1
	}
	return p
}

func (p *Pipeline) fail(err error) *Pipeline {
	if p.err == nil {
		p.err = err
	}
	return p
}

// Err returns the first build error, if any.
func (p *Pipeline) Err() error { return p.err }

// Pipes returns the steps of the pipeline.
func (p *Pipeline) Pipes() []Pipe { return p.pipes }

func (p *Pipeline) last() Pipe { return p.pipes[len(p.pipes)-1] }

func (p *Pipeline) Next() (*Holder, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.last().Next()
}

func (p *Pipeline) HasNext() (bool, error) {
	if p.err != nil {
		return false, p.err
	}
	return p.last().HasNext()
}

func (p *Pipeline) SetStarts(starts Iterator) { p.pipes[0].SetStarts(starts) }
func (p *Pipeline) AddStart(h *Holder)        { p.pipes[0].AddStart(h) }
func (p *Pipeline) Alias() string             { return p.last().Alias() }

// SetAs records the output of the last step under alias.
func (p *Pipeline) SetAs(alias string) {
	p.last().SetAs(alias)
	p.aliases[alias] = len(p.pipes) - 1
}

func (p *Pipeline) String() string {
	parts := make([]string, 0, len(p.pipes))
	for _, pipe := range p.pipes[1:] {
		parts = append(parts, pipe.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// As records the output of the last step under alias. Aliases are used by
// [Pipeline.Back], [Pipeline.Loop] and the link steps.
func (p *Pipeline) As(alias string) *Pipeline {
	if p.err != nil {
		return p
	}
	if alias == "" {
		return p.fail(fmt.Errorf("%w: empty alias", ErrUnknownAlias))
	}
	p.SetAs(alias)
	return p
}

func (p *Pipeline) Identity() *Pipeline { return p.Add(NewIdentityPipe()) }

func (p *Pipeline) Out(labels ...string) *Pipeline {
	return p.Add(NewVertexPipe(graph.Out, labels...))
}

func (p *Pipeline) In(labels ...string) *Pipeline {
	return p.Add(NewVertexPipe(graph.In, labels...))
}

func (p *Pipeline) Both(labels ...string) *Pipeline {
	return p.Add(NewVertexPipe(graph.Both, labels...))
}

func (p *Pipeline) OutE(labels ...string) *Pipeline {
	return p.Add(NewEdgePipe(graph.Out, labels...))
}

func (p *Pipeline) InE(labels ...string) *Pipeline {
	return p.Add(NewEdgePipe(graph.In, labels...))
}

func (p *Pipeline) BothE(labels ...string) *Pipeline {
	return p.Add(NewEdgePipe(graph.Both, labels...))
}

func (p *Pipeline) OutV() *Pipeline  { return p.Add(NewEdgeVertexPipe(graph.Out)) }
func (p *Pipeline) InV() *Pipeline   { return p.Add(NewEdgeVertexPipe(graph.In)) }
func (p *Pipeline) BothV() *Pipeline { return p.Add(NewEdgeVertexPipe(graph.Both)) }

// Has keeps elements whose property key equals value. The keys "id" and
// "label" test the element id and label.
func (p *Pipeline) Has(key string, value any) *Pipeline {
	return p.HasPredicate(key, graph.Equal, value)
}

// HasPredicate keeps elements whose property key satisfies pred against
// value. Elements without the key are dropped.
func (p *Pipeline) HasPredicate(key string, pred graph.Predicate, value any) *Pipeline {
	c, err := graph.NewHasContainer(key, pred, value)
	if err != nil {
		return p.fail(err)
	}
	return p.Add(NewHasPipe(c))
}

// HasKey keeps elements that have a property under key.
func (p *Pipeline) HasKey(key string) *Pipeline {
	return p.Add(NewHasPipe(graph.HasContainer{Key: key}))
}

// HasNot keeps elements that have no property under key.
func (p *Pipeline) HasNot(key string) *Pipeline {
	return p.Add(NewHasPipe(graph.HasContainer{Key: key, Absent: true}))
}

// Interval keeps elements whose property key is in [low, high).
func (p *Pipeline) Interval(key string, low, high any) *Pipeline {
	lo, err := graph.NewHasContainer(key, graph.GreaterThanEqual, low)
	if err != nil {
		return p.fail(err)
	}
	hi, err := graph.NewHasContainer(key, graph.LessThan, high)
	if err != nil {
		return p.fail(err)
	}
	return p.Add(NewHasPipe(lo, hi))
}

func (p *Pipeline) Property(key string) *Pipeline { return p.Add(NewPropertyPipe(key)) }
func (p *Pipeline) Value(key string) *Pipeline    { return p.Add(NewValuePipe(key)) }
func (p *Pipeline) ID() *Pipeline                 { return p.Add(NewIDPipe()) }
func (p *Pipeline) Label() *Pipeline              { return p.Add(NewLabelPipe()) }
func (p *Pipeline) Path() *Pipeline               { return p.Add(NewPathPipe()) }

// Back emits the value recorded under alias in each holder's path.
func (p *Pipeline) Back(alias string) *Pipeline { return p.Add(NewBackPipe(alias)) }

func (p *Pipeline) Dedup() *Pipeline { return p.Add(NewDedupPipe(nil)) }

// DedupBy emits values whose key is new.
func (p *Pipeline) DedupBy(key KeyFunc) *Pipeline { return p.Add(NewDedupPipe(key)) }

// DedupProperty emits elements whose property value under key is new.
// Elements lacking the key share one empty key.
func (p *Pipeline) DedupProperty(key string) *Pipeline {
	return p.DedupBy(func(v any) (any, error) {
		e, err := asElement(v)
		if err != nil {
			return nil, err
		}
		return e.Property(key), nil
	})
}

// Range emits the results with position in [low, high).
func (p *Pipeline) Range(low, high int) *Pipeline {
	if low < 0 {
		return p.fail(fmt.Errorf("range low must not be negative: %d", low))
	}
	return p.Add(NewRangePipe(low, high))
}

func (p *Pipeline) Map(fn MapFunc) *Pipeline               { return p.Add(NewMapPipe(fn)) }
func (p *Pipeline) FlatMap(fn FlatMapFunc) *Pipeline       { return p.Add(NewFlatMapPipe(fn)) }
func (p *Pipeline) Filter(fn FilterFunc) *Pipeline         { return p.Add(NewFilterPipe(fn)) }
func (p *Pipeline) SideEffect(fn SideEffectFunc) *Pipeline { return p.Add(NewSideEffectPipe(fn)) }

// Loop sends holders back to the step after the one aliased alias while
// while returns true. See [LoopPipe].
func (p *Pipeline) Loop(alias string, while LoopFunc) *Pipeline {
	return p.LoopEmit(alias, while, nil)
}

// LoopEmit is [Pipeline.Loop] that also emits looping holders for which
// emit returns true.
func (p *Pipeline) LoopEmit(alias string, while, emit LoopFunc) *Pipeline {
	if p.err != nil {
		return p
	}
	idx, ok := p.aliases[alias]
	if !ok {
		return p.fail(fmt.Errorf("%w: %s", ErrUnknownAlias, alias))
	}
	loop := NewLoopPipe(alias, while, emit)
	if idx+1 < len(p.pipes) {
		loop.SetReentry(p.pipes[idx+1])
	} else {
		loop.SetReentry(loop)
	}
	return p.Add(loop)
}

// LinkOut adds an edge from each vertex to the vertex aliased alias.
func (p *Pipeline) LinkOut(label, alias string) *Pipeline {
	return p.Add(NewLinkPipe(graph.Out, label, alias))
}

// LinkIn adds an edge from the vertex aliased alias to each vertex.
func (p *Pipeline) LinkIn(label, alias string) *Pipeline {
	return p.Add(NewLinkPipe(graph.In, label, alias))
}

// LinkBoth adds edges in both directions.
func (p *Pipeline) LinkBoth(label, alias string) *Pipeline {
	return p.Add(NewLinkPipe(graph.Both, label, alias))
}

// ToList drains the pipeline and returns the values in order.
func (p *Pipeline) ToList() ([]any, error) {
	var out []any
	err := Drain(p, func(h *Holder) error {
		out = append(out, h.value)
		return nil
	})
	return out, err
}

// Count drains the pipeline and returns the number of results.
func (p *Pipeline) Count() (int, error) {
	n := 0
	err := Drain(p, func(*Holder) error {
		n++
		return nil
	})
	return n, err
}

// Iterate drains the pipeline for its side effects.
func (p *Pipeline) Iterate() error {
	return Drain(p, func(*Holder) error { return nil })
}

// Drain pulls every holder from it and calls fn on each.
func Drain(it Iterator, fn func(h *Holder) error) error {
	for {
		h, err := it.Next()
		if errors.Is(err, ErrExhausted) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(h); err != nil {
			return err
		}
	}
}

// Collect drains it and returns the values as T.
func Collect[T any](it Iterator) ([]T, error) {
	var out []T
	err := Drain(it, func(h *Holder) error {
		v, ok := h.value.(T)
		if !ok {
			var zero T
			return fmt.Errorf("%w: want %T, got %T", ErrUnexpectedType, zero, h.value)
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

type sliceIterator struct {
	items []*Holder
}

func (s *sliceIterator) Next() (*Holder, error) {
	if len(s.items) == 0 {
		return nil, ErrExhausted
	}
	h := s.items[0]
	s.items = s.items[1:]
	return h, nil
}

type elementIterator struct {
	snapshot func() []string
	resolve  func(id string) (any, bool)
	ids      []string
	started  bool
}

func (it *elementIterator) Next() (*Holder, error) {
	if !it.started {
		it.ids = it.snapshot()
		it.started = true
	}
	for len(it.ids) > 0 {
		id := it.ids[0]
		it.ids = it.ids[1:]
		if e, ok := it.resolve(id); ok {
			return NewHolder(e), nil
		}
	}
	return nil, ErrExhausted
}
