package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/matzehuels/propgraph/pkg/graph"
)

// Result is the outcome of a program run, detached from the graph it ran on.
type Result struct {
	Program string `json:"program"`

	// Key is the vertex property holding the program's main output.
	Key string `json:"key"`

	// Values maps vertex ids to their value under Key.
	Values map[string]graph.Value `json:"values"`

	// Memory is the final global memory of the run.
	Memory map[string]graph.Value `json:"memory,omitempty"`

	Stats Stats `json:"stats"`

	// CacheHit reports whether the result was served from the cache.
	CacheHit bool `json:"-"`
}

// Stats describes the run that produced a result.
type Stats struct {
	GraphHash  string        `json:"graph_hash"`
	Vertices   int           `json:"vertices"`
	Edges      int           `json:"edges"`
	Supersteps int           `json:"supersteps"`
	Runtime    time.Duration `json:"runtime"`
}

// Ranked is a vertex and its value.
type Ranked struct {
	ID    string
	Value graph.Value
}

// Top returns the n vertices with the largest values, ties broken by id.
// Numbers compare numerically and everything else by its string form.
// A non-positive n returns every vertex.
func (r *Result) Top(n int) []Ranked {
	out := make([]Ranked, 0, len(r.Values))
	for id, v := range r.Values {
		out = append(out, Ranked{ID: id, Value: v})
	}
	slices.SortFunc(out, func(a, b Ranked) int {
		if c := compareValues(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

func compareValues(a, b graph.Value) int {
	if a.Kind().IsNumeric() && b.Kind().IsNumeric() {
		return cmp.Compare(a.Float(), b.Float())
	}
	return cmp.Compare(a.String(), b.String())
}
