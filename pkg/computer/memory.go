package computer

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/propgraph/pkg/errors"
	"github.com/matzehuels/propgraph/pkg/graph"
)

// Memory is the global state of a run, shared by all vertices.
//
// Inside Execute, reads observe the state as of the last barrier and writes
// are buffered; the barrier applies them in vertex order, so a run produces
// the same memory whatever the number of workers. Inside Setup and
// Terminate, writes apply immediately.
type Memory interface {
	Get(key string) (graph.Value, bool)
	Set(key string, value any) error

	// Incr adds delta to an integer or floating point value. A missing key
	// counts as zero.
	Incr(key string, delta int64) error

	// And and Or combine a boolean value. A missing key takes b.
	And(key string, b bool) error
	Or(key string, b bool) error

	Keys() []string
	Superstep() int
	Runtime() time.Duration
}

type opKind uint8

const (
	opSet opKind = iota
	opIncr
	opAnd
	opOr
)

type memOp struct {
	kind  opKind
	key   string
	value graph.Value
	delta int64
	flag  bool
}

// memory is the committed state; it applies writes immediately and is the
// Memory passed to Setup and Terminate.
type memory struct {
	mu        sync.RWMutex
	values    map[string]graph.Value
	superstep int
	start     time.Time
}

func newMemory(start time.Time) *memory {
	return &memory{values: make(map[string]graph.Value), start: start}
}

func (m *memory) Get(key string) (graph.Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.values))
}

func (m *memory) Superstep() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.superstep
}

func (m *memory) Runtime() time.Duration { return time.Since(m.start) }

func (m *memory) Set(key string, value any) error {
	op, err := setOp(key, value)
	if err != nil {
		return err
	}
	return m.apply(op)
}

func (m *memory) Incr(key string, delta int64) error {
	return m.apply(memOp{kind: opIncr, key: key, delta: delta})
}

func (m *memory) And(key string, b bool) error {
	return m.apply(memOp{kind: opAnd, key: key, flag: b})
}

func (m *memory) Or(key string, b bool) error {
	return m.apply(memOp{kind: opOr, key: key, flag: b})
}

func (m *memory) apply(op memOp) error {
	if op.key == "" {
		return errors.New(errors.ErrCodeNullOrEmpty, "memory key can not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return applyOp(m.values, op)
}

func (m *memory) setSuperstep(n int) {
	m.mu.Lock()
	m.superstep = n
	m.mu.Unlock()
}

// merge returns the committed values with ops applied in order. The
// committed state is left untouched.
func (m *memory) merge(ops []memOp) (map[string]graph.Value, error) {
	m.mu.RLock()
	next := maps.Clone(m.values)
	m.mu.RUnlock()
	for _, op := range ops {
		if err := applyOp(next, op); err != nil {
			return nil, err
		}
	}
	return next, nil
}

func (m *memory) commit(values map[string]graph.Value) {
	m.mu.Lock()
	m.values = values
	m.mu.Unlock()
}

func (m *memory) snapshot() map[string]graph.Value {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values)
}

// vertexMemory is the Memory passed to Execute. Writes go to the buffer of
// the partition running the vertex.
type vertexMemory struct {
	*memory
	part *partition
}

func (m *vertexMemory) Set(key string, value any) error {
	op, err := setOp(key, value)
	if err != nil {
		return err
	}
	return m.buffer(op)
}

func (m *vertexMemory) Incr(key string, delta int64) error {
	return m.buffer(memOp{kind: opIncr, key: key, delta: delta})
}

func (m *vertexMemory) And(key string, b bool) error {
	return m.buffer(memOp{kind: opAnd, key: key, flag: b})
}

func (m *vertexMemory) Or(key string, b bool) error {
	return m.buffer(memOp{kind: opOr, key: key, flag: b})
}

func (m *vertexMemory) buffer(op memOp) error {
	if op.key == "" {
		return errors.New(errors.ErrCodeNullOrEmpty, "memory key can not be empty")
	}
	m.part.ops = append(m.part.ops, op)
	return nil
}

func setOp(key string, value any) (memOp, error) {
	v, err := graph.ValueOf(value)
	if err != nil {
		return memOp{}, err
	}
	return memOp{kind: opSet, key: key, value: v}, nil
}

func applyOp(values map[string]graph.Value, op memOp) error {
	cur, ok := values[op.key]
	switch op.kind {
	case opSet:
		values[op.key] = op.value
	case opIncr:
		switch {
		case !ok:
			values[op.key] = graph.NewLong(op.delta)
		case cur.Kind() == graph.KindInt || cur.Kind() == graph.KindLong:
			values[op.key] = graph.NewLong(cur.Int() + op.delta)
		case cur.Kind() == graph.KindFloat || cur.Kind() == graph.KindDouble:
			values[op.key] = graph.NewDouble(cur.Float() + float64(op.delta))
		default:
			return errors.New(errors.ErrCodeInvalidArgument, "memory key %s holds a %s, not a number", op.key, cur.Kind())
		}
	case opAnd, opOr:
		switch {
		case !ok:
			values[op.key] = graph.NewBool(op.flag)
		case cur.Kind() != graph.KindBool:
			return errors.New(errors.ErrCodeInvalidArgument, "memory key %s holds a %s, not a bool", op.key, cur.Kind())
		case op.kind == opAnd:
			values[op.key] = graph.NewBool(cur.Bool() && op.flag)
		default:
			values[op.key] = graph.NewBool(cur.Bool() || op.flag)
		}
	}
	return nil
}
