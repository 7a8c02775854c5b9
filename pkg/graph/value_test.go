package graph

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/matzehuels/propgraph/pkg/errors"
)

func TestValueOf(t *testing.T) {
	tests := []struct {
		in   any
		want Kind
	}{
		{true, KindBool},
		{29, KindInt},
		{int64(29), KindLong},
		{1 << 40, KindLong},
		{float32(0.5), KindFloat},
		{0.5, KindDouble},
		{"marko", KindString},
		{[]string{"a", "b"}, KindList},
		{[]any{1, "a"}, KindList},
		{map[string]any{"a": 1}, KindMap},
		{NewInt(3), KindInt},
	}
	for _, tt := range tests {
		v, err := ValueOf(tt.in)
		if err != nil {
			t.Errorf("ValueOf(%v) error: %v", tt.in, err)
			continue
		}
		if v.Kind() != tt.want {
			t.Errorf("ValueOf(%v).Kind() = %s, want %s", tt.in, v.Kind(), tt.want)
		}
	}

	if _, err := ValueOf(nil); !errors.Is(err, errors.ErrCodeNullOrEmpty) {
		t.Errorf("ValueOf(nil) = %v, want NULL_OR_EMPTY", err)
	}
	if _, err := ValueOf([]any{1, struct{}{}}); !errors.Is(err, errors.ErrCodeUnsupportedType) {
		t.Errorf("ValueOf(nested struct) = %v, want UNSUPPORTED_TYPE", err)
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{NewInt(1), NewDouble(1), true},
		{NewLong(2), NewInt(2), true},
		{NewFloat(0.5), NewDouble(0.5), true},
		{NewString("1"), NewInt(1), false},
		{NewBool(true), NewBool(true), true},
		{MustValue([]any{1, "a"}), MustValue([]any{1.0, "a"}), true},
		{MustValue([]any{1}), MustValue([]any{1, 2}), false},
		{MustValue(map[string]any{"a": 1}), MustValue(map[string]any{"a": int64(1)}), true},
		{NewDouble(math.NaN()), NewInt(5), false},
		{NewInt(0), NewDouble(math.NaN()), false},
		{NewDouble(math.NaN()), NewDouble(math.NaN()), false},
		{NewLong(1<<53 + 1), NewDouble(1 << 53), false},
		{NewLong(1 << 53), NewDouble(1 << 53), true},
		{NewLong(math.MaxInt64), NewDouble(1 << 63), false},
		{NewLong(math.MinInt64), NewDouble(-(1 << 63)), true},
		{NewInt(3), NewDouble(3.5), false},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if tt.want && tt.a.Key() != tt.b.Key() {
			t.Errorf("equal values %v and %v have keys %q and %q", tt.a, tt.b, tt.a.Key(), tt.b.Key())
		}
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		a, b    Value
		want    int
		wantErr bool
	}{
		{NewInt(29), NewInt(30), -1, false},
		{NewDouble(32.5), NewInt(32), 1, false},
		{NewString("josh"), NewString("josh"), 0, false},
		{NewBool(false), NewBool(true), -1, false},
		{NewString("lop"), NewInt(30), 0, true},
		{MustValue([]int{1}), NewInt(1), 0, true},
		{NewDouble(math.NaN()), NewInt(1), 0, true},
		{NewLong(1<<53 + 1), NewDouble(1 << 53), 1, false},
		{NewDouble(-2.5), NewLong(-2), -1, false},
		{NewLong(-3), NewDouble(-2.5), -1, false},
		{NewLong(math.MaxInt64), NewDouble(math.Inf(1)), -1, false},
	}
	for _, tt := range tests {
		got, err := CompareValues(tt.a, tt.b)
		if (err != nil) != tt.wantErr {
			t.Errorf("CompareValues(%v, %v) error = %v, wantErr %v", tt.a, tt.b, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, errors.ErrCodeInvalidComparison) {
				t.Errorf("CompareValues(%v, %v) code = %v", tt.a, tt.b, errors.GetCode(err))
			}
			continue
		}
		if got != tt.want {
			t.Errorf("CompareValues(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValueJSON(t *testing.T) {
	in := MustValue(map[string]any{
		"age":    29,
		"weight": float32(0.4),
		"tags":   []any{"a", int64(7), true},
	})
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out Value
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if !in.Equal(out) {
		t.Errorf("round trip = %v, want %v", out, in)
	}
	m := out.Map()
	if m["age"].Kind() != KindInt || m["weight"].Kind() != KindFloat || m["tags"].List()[1].Kind() != KindLong {
		t.Errorf("kinds not preserved: %v", out)
	}

	data, _ = json.Marshal(NewInt(29))
	if string(data) != `{"type":"int","value":29}` {
		t.Errorf("Marshal(int) = %s", data)
	}
	if err := json.Unmarshal([]byte(`{"type":"blob","value":1}`), &out); !errors.Is(err, errors.ErrCodeUnsupportedType) {
		t.Errorf("unknown type error = %v", err)
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NewString("marko"), "marko"},
		{NewInt(29), "29"},
		{NewFloat(0.4), "0.4"},
		{MustValue([]any{1, "a"}), "[1, a]"},
		{MustValue(map[string]any{"b": 2, "a": 1}), "{a:1, b:2}"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
