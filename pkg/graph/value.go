package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/propgraph/pkg/errors"
)

// Kind identifies the type carried by a [Value].
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindList
	KindMap
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt:     "int",
	KindLong:    "long",
	KindFloat:   "float",
	KindDouble:  "double",
	KindString:  "string",
	KindList:    "list",
	KindMap:     "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind returns the kind with the given name, as produced by [Kind.String].
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if k != int(KindInvalid) && n == name {
			return Kind(k), true
		}
	}
	return KindInvalid, false
}

// IsNumeric reports whether values of this kind compare numerically.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindLong || k == KindFloat || k == KindDouble
}

func (k Kind) isIntegral() bool { return k == KindInt || k == KindLong }

// Value is a property value: a boolean, a number, a string or a list or map
// of values. The zero Value is invalid and is never stored on an element.
//
// Values are immutable. Lists and maps are copied on construction.
type Value struct {
	kind Kind
	num  int64
	flt  float64
	str  string
	list []Value
	m    map[string]Value
}

func NewBool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

func NewInt(i int32) Value      { return Value{kind: KindInt, num: int64(i)} }
func NewLong(i int64) Value     { return Value{kind: KindLong, num: i} }
func NewFloat(f float32) Value  { return Value{kind: KindFloat, flt: float64(f)} }
func NewDouble(f float64) Value { return Value{kind: KindDouble, flt: f} }
func NewString(s string) Value  { return Value{kind: KindString, str: s} }

// NewList returns a list value holding a copy of items.
func NewList(items ...Value) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

// NewMap returns a map value holding a copy of entries.
func NewMap(entries map[string]Value) Value {
	m := make(map[string]Value, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return Value{kind: KindMap, m: m}
}

// ValueOf converts a Go value into a [Value].
//
// Supported inputs are bool, the sized and unsized integer types, float32,
// float64, string, Value, and slices or string-keyed maps of those. An int
// that fits in 32 bits becomes an int value, larger ones become longs.
// A nil input fails with NULL_OR_EMPTY; anything else fails with
// UNSUPPORTED_TYPE.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{}, errors.New(errors.ErrCodeNullOrEmpty, "property value can not be null")
	case Value:
		if t.kind == KindInvalid {
			return Value{}, errors.New(errors.ErrCodeNullOrEmpty, "property value can not be null")
		}
		return t, nil
	case bool:
		return NewBool(t), nil
	case int:
		if t >= math.MinInt32 && t <= math.MaxInt32 {
			return NewInt(int32(t)), nil
		}
		return NewLong(int64(t)), nil
	case int8:
		return NewInt(int32(t)), nil
	case int16:
		return NewInt(int32(t)), nil
	case int32:
		return NewInt(t), nil
	case int64:
		return NewLong(t), nil
	case uint8:
		return NewInt(int32(t)), nil
	case uint16:
		return NewInt(int32(t)), nil
	case uint32:
		return NewLong(int64(t)), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			break
		}
		return NewLong(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			break
		}
		return NewLong(int64(t)), nil
	case float32:
		return NewFloat(t), nil
	case float64:
		return NewDouble(t), nil
	case string:
		return NewString(t), nil
	case []Value:
		return NewList(t...), nil
	case []string:
		items := make([]Value, len(t))
		for i, s := range t {
			items[i] = NewString(s)
		}
		return Value{kind: KindList, list: items}, nil
	case []int:
		items := make([]Value, len(t))
		for i, n := range t {
			items[i], _ = ValueOf(n)
		}
		return Value{kind: KindList, list: items}, nil
	case []float64:
		items := make([]Value, len(t))
		for i, f := range t {
			items[i] = NewDouble(f)
		}
		return Value{kind: KindList, list: items}, nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := ValueOf(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: KindList, list: items}, nil
	case map[string]Value:
		return NewMap(t), nil
	case map[string]string:
		m := make(map[string]Value, len(t))
		for k, s := range t {
			m[k] = NewString(s)
		}
		return Value{kind: KindMap, m: m}, nil
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			v, err := ValueOf(item)
			if err != nil {
				return Value{}, err
			}
			m[k] = v
		}
		return Value{kind: KindMap, m: m}, nil
	}
	return Value{}, errors.New(errors.ErrCodeUnsupportedType, "property value of type %T is not supported", x)
}

// MustValue is like [ValueOf] but panics on error. It is intended for
// literals in tests and fixtures.
func MustValue(x any) Value {
	v, err := ValueOf(x)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Bool returns the boolean held by v, or false for other kinds.
func (v Value) Bool() bool { return v.kind == KindBool && v.num != 0 }

// Int returns v as an int64. Floating point values are truncated; other
// kinds return 0.
func (v Value) Int() int64 {
	switch {
	case v.kind.isIntegral():
		return v.num
	case v.kind == KindFloat || v.kind == KindDouble:
		return int64(v.flt)
	}
	return 0
}

// Float returns v as a float64 for any numeric kind, or 0.
func (v Value) Float() float64 {
	switch {
	case v.kind.isIntegral():
		return float64(v.num)
	case v.kind == KindFloat || v.kind == KindDouble:
		return v.flt
	}
	return 0
}

// Text returns the string held by v, or "" for other kinds.
func (v Value) Text() string {
	if v.kind == KindString {
		return v.str
	}
	return ""
}

// List returns a copy of the items of a list value.
func (v Value) List() []Value {
	if v.kind != KindList {
		return nil
	}
	return slices.Clone(v.list)
}

// Map returns a copy of the entries of a map value.
func (v Value) Map() map[string]Value {
	if v.kind != KindMap {
		return nil
	}
	m := make(map[string]Value, len(v.m))
	for k, e := range v.m {
		m[k] = e
	}
	return m
}

// Interface returns v as a plain Go value: bool, int, int64, float32,
// float64, string, []any or map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.Bool()
	case KindInt:
		return int(v.num)
	case KindLong:
		return v.num
	case KindFloat:
		return float32(v.flt)
	case KindDouble:
		return v.flt
	case KindString:
		return v.str
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, item := range v.m {
			out[k] = item.Interface()
		}
		return out
	}
	return nil
}

// String formats v for display. Strings are returned unquoted.
func (v Value) String() string {
	switch v.kind {
	case KindInvalid:
		return "<invalid>"
	case KindBool:
		return strconv.FormatBool(v.Bool())
	case KindInt, KindLong:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'g', -1, 32)
	case KindDouble:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	case KindString:
		return v.str
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		keys := v.sortedKeys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + v.m[k].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return ""
}

func (v Value) sortedKeys() []string {
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Equal reports whether v and o hold the same value. Numbers are equal when
// they are numerically equal regardless of kind, so NewInt(1) equals
// NewDouble(1). NaN equals nothing, itself included.
func (v Value) Equal(o Value) bool {
	if v.kind.IsNumeric() && o.kind.IsNumeric() {
		c, err := compareNumbers(v, o)
		return err == nil && c == 0
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool, KindInt, KindLong:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindList:
		return slices.EqualFunc(v.list, o.list, Value.Equal)
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, a := range v.m {
			b, ok := o.m[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	}
	return true
}

// CompareValues orders two values. Numbers of any kind compare numerically,
// strings lexically and booleans with false before true. Any other pairing
// fails with INVALID_COMPARISON.
func CompareValues(a, b Value) (int, error) {
	switch {
	case a.kind.IsNumeric() && b.kind.IsNumeric():
		return compareNumbers(a, b)
	case a.kind == KindString && b.kind == KindString:
		return strings.Compare(a.str, b.str), nil
	case a.kind == KindBool && b.kind == KindBool:
		return int(a.num - b.num), nil
	}
	return 0, errors.New(errors.ErrCodeInvalidComparison, "cannot compare %s with %s", a.kind, b.kind)
}

func compareNumbers(a, b Value) (int, error) {
	if a.kind.isIntegral() && b.kind.isIntegral() {
		switch {
		case a.num < b.num:
			return -1, nil
		case a.num > b.num:
			return 1, nil
		}
		return 0, nil
	}
	switch {
	case a.kind.isIntegral():
		return compareIntFloat(a.num, b.flt)
	case b.kind.isIntegral():
		c, err := compareIntFloat(b.num, a.flt)
		return -c, err
	}
	x, y := a.flt, b.flt
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	case x == y:
		return 0, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidComparison, "cannot compare NaN values")
}

// compareIntFloat compares i with f exactly, without rounding i to a float.
func compareIntFloat(i int64, f float64) (int, error) {
	switch {
	case math.IsNaN(f):
		return 0, errors.New(errors.ErrCodeInvalidComparison, "cannot compare NaN values")
	case f >= 1<<63:
		return -1, nil
	case f < -(1 << 63):
		return 1, nil
	}
	t := math.Trunc(f)
	switch n := int64(t); {
	case i < n:
		return -1, nil
	case i > n:
		return 1, nil
	}
	switch {
	case f > t:
		return -1, nil
	case f < t:
		return 1, nil
	}
	return 0, nil
}

// Key returns a canonical string for v that is identical for any two values
// that are [Value.Equal]. It is used for deduplication and indexing.
func (v Value) Key() string {
	var b strings.Builder
	v.writeKey(&b)
	return b.String()
}

func (v Value) writeKey(b *strings.Builder) {
	switch v.kind {
	case KindBool:
		b.WriteString("b:")
		b.WriteString(strconv.FormatBool(v.Bool()))
	case KindInt, KindLong:
		b.WriteString("n:")
		b.WriteString(strconv.FormatInt(v.num, 10))
	case KindFloat, KindDouble:
		if v.flt == math.Trunc(v.flt) && v.flt >= -(1<<63) && v.flt < 1<<63 {
			b.WriteString("n:")
			b.WriteString(strconv.FormatInt(int64(v.flt), 10))
			return
		}
		b.WriteString("f:")
		b.WriteString(strconv.FormatFloat(v.flt, 'g', -1, 64))
	case KindString:
		b.WriteString("s:")
		b.WriteString(strconv.Quote(v.str))
	case KindList:
		b.WriteString("l[")
		for i, item := range v.list {
			if i > 0 {
				b.WriteByte(',')
			}
			item.writeKey(b)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteString("m{")
		for i, k := range v.sortedKeys() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			v.m[k].writeKey(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString("?")
	}
}

type valueJSON struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes v as {"type": <kind>, "value": <payload>} so that the
// kind survives a round trip. List items and map entries are encoded the
// same way.
func (v Value) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.kind {
	case KindInvalid:
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot encode an invalid value")
	case KindBool:
		payload = v.Bool()
	case KindInt, KindLong:
		payload = v.num
	case KindFloat, KindDouble:
		payload = v.flt
	case KindString:
		payload = v.str
	case KindList:
		payload = v.list
	case KindMap:
		payload = v.m
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(valueJSON{Type: v.kind.String(), Value: raw})
}

// UnmarshalJSON decodes the form written by [Value.MarshalJSON].
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw valueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, ok := ParseKind(raw.Type)
	if !ok {
		return errors.New(errors.ErrCodeUnsupportedType, "unknown value type %q", raw.Type)
	}

	var err error
	switch kind {
	case KindBool:
		var b bool
		err = json.Unmarshal(raw.Value, &b)
		*v = NewBool(b)
	case KindInt:
		var n int32
		err = json.Unmarshal(raw.Value, &n)
		*v = NewInt(n)
	case KindLong:
		var n int64
		err = json.Unmarshal(raw.Value, &n)
		*v = NewLong(n)
	case KindFloat:
		var f float32
		err = json.Unmarshal(raw.Value, &f)
		*v = NewFloat(f)
	case KindDouble:
		var f float64
		err = json.Unmarshal(raw.Value, &f)
		*v = NewDouble(f)
	case KindString:
		var s string
		err = json.Unmarshal(raw.Value, &s)
		*v = NewString(s)
	case KindList:
		var items []Value
		err = json.Unmarshal(raw.Value, &items)
		*v = Value{kind: KindList, list: items}
	case KindMap:
		var m map[string]Value
		err = json.Unmarshal(raw.Value, &m)
		*v = Value{kind: KindMap, m: m}
	}
	if err != nil {
		return fmt.Errorf("decode %s value: %w", kind, err)
	}
	return nil
}
