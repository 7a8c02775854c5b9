package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExhausted is returned by Next when a pipe has no more results. It
	// is a control signal, not a failure: test for it with errors.Is and
	// stop iterating.
	ErrExhausted = errors.New("pipe is exhausted")

	// ErrUnknownAlias is returned when a loop or link step refers to an
	// alias that no earlier step declared.
	ErrUnknownAlias = errors.New("unknown step alias")

	// ErrUnexpectedType is returned when a step receives a value of a type
	// it cannot process, such as an edge step over a string.
	ErrUnexpectedType = errors.New("unexpected value type")
)

// Iterator is a pull-based source of holders. Next returns [ErrExhausted]
// when no holder remains.
type Iterator interface {
	Next() (*Holder, error)
}

// Pipe is one lazy stage of a traversal. It pulls holders from its starts
// and emits transformed holders on demand.
//
// HasNext computes and caches the next result so that repeated calls do
// not advance the pipe; Next returns the cached result or computes one.
// A genuine failure (anything other than [ErrExhausted]) is remembered and
// returned by every later call.
type Pipe interface {
	Iterator
	HasNext() (bool, error)

	// SetStarts replaces the upstream source.
	SetStarts(starts Iterator)
	// AddStart injects one holder ahead of the upstream source.
	AddStart(h *Holder)

	// Alias returns the name under which the pipe records its output in
	// holder paths, or "".
	Alias() string
	SetAs(alias string)

	String() string
}

// startQueue is the expandable start iterator of a pipe: injected holders
// are served first, then the upstream source.
type startQueue struct {
	queue    []*Holder
	upstream Iterator
}

func (s *startQueue) Next() (*Holder, error) {
	if len(s.queue) > 0 {
		h := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		return h, nil
	}
	if s.upstream == nil {
		return nil, ErrExhausted
	}
	return s.upstream.Next()
}

type cursor uint8

const (
	notComputed cursor = iota
	pending
	exhausted
)

// base implements the look-ahead protocol shared by every pipe. Concrete
// pipes supply process, which pulls from starts and returns exactly one
// result or ErrExhausted.
type base struct {
	name    string
	args    []any
	as      string
	starts  startQueue
	process func() (*Holder, error)

	state   cursor
	nextEnd *Holder
	err     error
}

func (b *base) SetStarts(starts Iterator) {
	b.starts.upstream = starts
}

func (b *base) AddStart(h *Holder) {
	b.starts.queue = append(b.starts.queue, h)
}

func (b *base) Alias() string      { return b.as }
func (b *base) SetAs(alias string) { b.as = alias }

func (b *base) HasNext() (bool, error) {
	if b.err != nil {
		return false, b.err
	}
	if b.state == pending {
		return true, nil
	}
	h, err := b.process()
	switch {
	case err == nil:
		b.nextEnd = h
		b.state = pending
		return true, nil
	case errors.Is(err, ErrExhausted):
		// Not sticky: a loop may add starts later.
		b.state = exhausted
		return false, nil
	default:
		b.err = err
		return false, err
	}
}

func (b *base) Next() (*Holder, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.state == pending {
		h := b.nextEnd
		b.nextEnd = nil
		b.state = notComputed
		return h, nil
	}
	h, err := b.process()
	switch {
	case err == nil:
		b.state = notComputed
		return h, nil
	case errors.Is(err, ErrExhausted):
		b.state = exhausted
		return nil, err
	default:
		b.err = err
		return nil, err
	}
}

func (b *base) String() string {
	var sb strings.Builder
	sb.WriteString(b.name)
	if len(b.args) > 0 {
		sb.WriteByte('(')
		for i, a := range b.args {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprint(&sb, a)
		}
		sb.WriteByte(')')
	}
	if b.as != "" {
		sb.WriteString("@" + b.as)
	}
	return sb.String()
}

// child derives the output holder of a map-like step.
func (b *base) child(h *Holder, v any) *Holder {
	return h.MakeChild(b.as, v)
}

// pass forwards a holder through a filter-like step.
func (b *base) pass(h *Holder) *Holder {
	return h.withAlias(b.as)
}
