package graph

import (
	"fmt"

	"github.com/matzehuels/propgraph/pkg/errors"
)

// ElementKind distinguishes vertices from edges.
type ElementKind uint8

const (
	VertexKind ElementKind = iota + 1
	EdgeKind
)

func (k ElementKind) String() string {
	switch k {
	case VertexKind:
		return "vertex"
	case EdgeKind:
		return "edge"
	}
	return "element"
}

// Direction selects the edges of a vertex relative to that vertex.
type Direction uint8

const (
	Out Direction = iota
	In
	Both
)

func (d Direction) String() string {
	switch d {
	case Out:
		return "OUT"
	case In:
		return "IN"
	case Both:
		return "BOTH"
	}
	return fmt.Sprintf("Direction(%d)", d)
}

// Opposite returns In for Out, Out for In, and Both for Both.
func (d Direction) Opposite() Direction {
	switch d {
	case Out:
		return In
	case In:
		return Out
	}
	return d
}

// Mode controls how an element handle treats property writes.
//
// Handles obtained from the graph are [Standard]. During a vertex program
// the vertex under execution is [Centric]: writes go to a compute buffer and
// must target a declared compute key. Its incident edges inherit the
// Centric mode, and every other element reached from it is [Adjacent] and
// read-only.
type Mode uint8

const (
	Standard Mode = iota
	Centric
	Adjacent
)

func (m Mode) String() string {
	switch m {
	case Standard:
		return "STANDARD"
	case Centric:
		return "CENTRIC"
	case Adjacent:
		return "ADJACENT"
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// KeyType declares how a vertex program may use a compute key.
type KeyType uint8

const (
	// KeyReadWrite keys may be written in every superstep.
	KeyReadWrite KeyType = iota + 1
	// KeyReadOnly keys are written in the first superstep and only read
	// afterwards.
	KeyReadOnly
)

func (t KeyType) String() string {
	switch t {
	case KeyReadWrite:
		return "READ_WRITE"
	case KeyReadOnly:
		return "READ_ONLY"
	}
	return fmt.Sprintf("KeyType(%d)", t)
}

// Write is a buffered property write made through a Centric handle.
type Write struct {
	Kind    ElementKind
	ID      string
	Key     string
	KeyType KeyType
	Value   Value
	Remove  bool
}

// WriteBuffer receives the writes of Centric handles. The graph computer
// supplies one per partition and merges them at the superstep barrier with
// [Graph.ApplyWrites].
type WriteBuffer interface {
	Buffer(w Write) error
}

// ComputeView is the context shared by the Centric and Adjacent handles
// derived from one vertex under execution.
type ComputeView struct {
	Center string             // id of the vertex under execution
	Keys   map[string]KeyType // declared compute keys
	Writes WriteBuffer
}

// Reserved keys addressing the id and the label of an element in
// conditions and key/value lists.
const (
	KeyID    = errors.ReservedKeyID
	KeyLabel = errors.ReservedKeyLabel
)

// Element is the behavior shared by [*Vertex] and [*Edge].
type Element interface {
	ID() string
	Label() string
	Kind() ElementKind
	Mode() Mode
	Graph() *Graph
	Property(key string) Property
	Properties() map[string]Property
	Keys() []string
	SetProperty(key string, value any) error
	RemoveProperty(key string) error
	Remove() error
}

// Property is the result of reading a key from an element. A Property for a
// key the element does not carry is empty: [Property.IsPresent] is false
// and [Property.Get] fails.
type Property struct {
	key     string
	value   Value
	present bool
	element Element
}

// EmptyProperty returns the absent property for key.
func EmptyProperty(key string) Property { return Property{key: key} }

func (p Property) Key() string      { return p.key }
func (p Property) IsPresent() bool  { return p.present }
func (p Property) Element() Element { return p.element }

// Value returns the property value, or the invalid zero Value if the
// property is empty.
func (p Property) Value() Value { return p.value }

// Get returns the value of a present property and PROPERTY_NOT_FOUND
// otherwise.
func (p Property) Get() (Value, error) {
	if !p.present {
		return Value{}, errors.New(errors.ErrCodePropertyNotFound, "the property does not exist as it has no key, value, or associated element")
	}
	return p.value, nil
}

// OrElse returns the property value, or def when the property is empty.
func (p Property) OrElse(def Value) Value {
	if !p.present {
		return def
	}
	return p.value
}

func (p Property) String() string {
	if !p.present {
		return "p[empty]"
	}
	return "p[" + p.key + "->" + p.value.String() + "]"
}

func removedError(kind ElementKind, id string) error {
	return errors.New(errors.ErrCodeElementRemoved, "the %s with id [%s] has already been removed or does not exist", kind, id)
}
