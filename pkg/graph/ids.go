package graph

import (
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/matzehuels/propgraph/pkg/errors"
)

// IDManager allocates identifiers for elements created without a
// user-supplied id. Next is always called with the graph write lock held.
type IDManager interface {
	Next(kind ElementKind) string
}

// CounterIDs hands out increasing decimal ids, one sequence per element
// kind. Ids already taken by user-supplied elements are skipped by the graph.
type CounterIDs struct {
	next [3]int64
}

func (c *CounterIDs) Next(kind ElementKind) string {
	c.next[kind]++
	return strconv.FormatInt(c.next[kind], 10)
}

// UUIDIDs hands out random version 4 UUIDs.
type UUIDIDs struct{}

func (UUIDIDs) Next(ElementKind) string { return uuid.NewString() }

// NormalizeID converts a user-supplied id to its canonical string form.
// Strings are used as-is and integers are formatted in base 10, so the ids
// 1, int64(1) and "1" all address the same element.
func NormalizeID(id any) (string, error) {
	switch t := id.(type) {
	case nil:
		return "", errors.New(errors.ErrCodeNullOrEmpty, "element id can not be null")
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int8:
		return strconv.FormatInt(int64(t), 10), nil
	case int16:
		return strconv.FormatInt(int64(t), 10), nil
	case int32:
		return strconv.FormatInt(int64(t), 10), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint:
		return strconv.FormatUint(uint64(t), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(t), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(t), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(t), 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return strconv.FormatInt(int64(t), 10), nil
		}
	case Value:
		switch {
		case t.Kind() == KindString:
			return t.Text(), nil
		case t.Kind().IsNumeric():
			return NormalizeID(t.Interface())
		}
	case *Vertex:
		return t.ID(), nil
	case *Edge:
		return t.ID(), nil
	}
	return "", errors.New(errors.ErrCodeUnsupportedType, "element id of type %T is not supported", id)
}
