package graph

import (
	"fmt"
	"slices"

	"github.com/matzehuels/propgraph/pkg/errors"
)

// Predicate tests an element value against a condition value.
type Predicate interface {
	Test(actual, condition Value) (bool, error)
	String() string
}

// Compare is an equality or ordering predicate.
type Compare uint8

const (
	Equal Compare = iota
	NotEqual
	GreaterThan
	GreaterThanEqual
	LessThan
	LessThanEqual
)

var compareNames = [...]string{"eq", "neq", "gt", "gte", "lt", "lte"}

func (c Compare) String() string {
	if int(c) < len(compareNames) {
		return compareNames[c]
	}
	return fmt.Sprintf("Compare(%d)", c)
}

// Test evaluates actual <c> condition. Equality never fails, so a string
// is simply not equal to a number; orderings of incomparable kinds fail
// with INVALID_COMPARISON.
func (c Compare) Test(actual, condition Value) (bool, error) {
	switch c {
	case Equal:
		return actual.Equal(condition), nil
	case NotEqual:
		return !actual.Equal(condition), nil
	}
	n, err := CompareValues(actual, condition)
	if err != nil {
		return false, err
	}
	switch c {
	case GreaterThan:
		return n > 0, nil
	case GreaterThanEqual:
		return n >= 0, nil
	case LessThan:
		return n < 0, nil
	case LessThanEqual:
		return n <= 0, nil
	}
	return false, errors.New(errors.ErrCodeInvalidComparison, "unknown comparison %s", c)
}

// Contains tests membership in a list value.
type Contains uint8

const (
	Within Contains = iota
	Without
)

func (c Contains) String() string {
	if c == Without {
		return "without"
	}
	return "within"
}

func (c Contains) Test(actual, condition Value) (bool, error) {
	if condition.Kind() != KindList {
		return false, errors.New(errors.ErrCodeInvalidComparison, "%s requires a list, got %s", c, condition.Kind())
	}
	found := slices.ContainsFunc(condition.list, actual.Equal)
	if c == Without {
		return !found, nil
	}
	return found, nil
}

// HasContainer is a single filter condition: a key, a predicate and a
// condition value. The keys "id" and "label" address the element id and
// label instead of a property.
//
// A container with a nil Predicate tests presence of the key, or absence
// when Absent is set.
type HasContainer struct {
	Key       string
	Predicate Predicate
	Value     Value
	Absent    bool
}

// NewHasContainer builds a container, converting value with [ValueOf].
// Conditions on "id" are normalized to id strings so that Has("id", 1)
// matches the vertex with id "1".
func NewHasContainer(key string, pred Predicate, value any) (HasContainer, error) {
	if key == "" {
		return HasContainer{}, errors.New(errors.ErrCodeNullOrEmpty, "property key can not be empty")
	}
	if key == errors.ReservedKeyID {
		v, err := idCondition(value)
		if err != nil {
			return HasContainer{}, err
		}
		return HasContainer{Key: key, Predicate: pred, Value: v}, nil
	}
	v, err := ValueOf(value)
	if err != nil {
		return HasContainer{}, err
	}
	return HasContainer{Key: key, Predicate: pred, Value: v}, nil
}

func idCondition(value any) (Value, error) {
	v, err := ValueOf(value)
	if err != nil {
		return Value{}, err
	}
	if v.Kind() == KindList {
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			id, err := NormalizeID(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = NewString(id)
		}
		return Value{kind: KindList, list: items}, nil
	}
	id, err := NormalizeID(v)
	if err != nil {
		return Value{}, err
	}
	return NewString(id), nil
}

// Test evaluates the container against e. An element without the key never
// matches a predicate.
func (c HasContainer) Test(e Element) (bool, error) {
	var actual Value
	switch c.Key {
	case errors.ReservedKeyID:
		actual = NewString(e.ID())
	case errors.ReservedKeyLabel:
		actual = NewString(e.Label())
	default:
		p := e.Property(c.Key)
		if c.Predicate == nil {
			return p.IsPresent() != c.Absent, nil
		}
		if !p.IsPresent() {
			return false, nil
		}
		actual = p.Value()
	}
	if c.Predicate == nil {
		return !c.Absent, nil
	}
	return c.Predicate.Test(actual, c.Value)
}

func (c HasContainer) String() string {
	switch {
	case c.Predicate != nil:
		return c.Key + "." + c.Predicate.String() + "(" + c.Value.String() + ")"
	case c.Absent:
		return "!" + c.Key
	}
	return c.Key
}

// fallible reports whether Test can fail for a present property. Equality,
// membership in a list and presence checks never fail.
func (c HasContainer) fallible() bool {
	switch p := c.Predicate.(type) {
	case nil:
		return false
	case Compare:
		return p != Equal && p != NotEqual
	case Contains:
		return c.Value.Kind() != KindList
	}
	return true
}

// TestAll reports whether e satisfies every container. Containers that can
// not fail are tested first, so an element rejected by one of them never
// reaches a failing comparison. An indexed lookup narrows candidates with
// such a container and therefore sees the same results and errors as a
// full scan.
func TestAll(e Element, containers []HasContainer) (bool, error) {
	for _, late := range []bool{false, true} {
		for _, c := range containers {
			if c.fallible() != late {
				continue
			}
			ok, err := c.Test(e)
			if err != nil || !ok {
				return false, err
			}
		}
	}
	return true, nil
}
