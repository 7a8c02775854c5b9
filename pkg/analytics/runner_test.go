package analytics

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/propgraph/pkg/cache"
	"github.com/matzehuels/propgraph/pkg/computer/programs"
	"github.com/matzehuels/propgraph/pkg/errors"
	"github.com/matzehuels/propgraph/pkg/graph"
	"github.com/matzehuels/propgraph/pkg/observability"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func TestExecuteCaches(t *testing.T) {
	hooks := observability.NewPrometheusHooks(nil)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	r := newTestRunner(t)
	g := graph.Classic()

	first, err := r.Execute(ctx, g, Options{Program: programs.NamePageRank, Workers: 2})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheHit {
		t.Error("first run should miss the cache")
	}
	if first.Key != programs.KeyPageRank || len(first.Values) != 6 {
		t.Fatalf("Key = %s, %d values", first.Key, len(first.Values))
	}
	if first.Stats.Supersteps != programs.DefaultIterations || first.Stats.GraphHash == "" {
		t.Errorf("Stats = %+v", first.Stats)
	}

	// The caller's graph is left untouched.
	if v, _ := g.Vertex(3); v.Property(programs.KeyPageRank).IsPresent() {
		t.Error("Execute should not write into the input graph")
	}

	second, err := r.Execute(ctx, g, Options{Program: programs.NamePageRank, Workers: 7})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheHit {
		t.Error("identical run should hit the cache")
	}
	if got, want := second.Values["3"].Float(), first.Values["3"].Float(); got != want {
		t.Errorf("cached rank = %v, want %v", got, want)
	}

	refreshed, err := r.Execute(ctx, g, Options{Program: programs.NamePageRank, Refresh: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if refreshed.CacheHit {
		t.Error("Refresh should bypass the cache")
	}

	if got := testutil.ToFloat64(hooks.CacheEvents.WithLabelValues("compute", "hit")); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(hooks.CacheEvents.WithLabelValues("compute", "set")); got != 2 {
		t.Errorf("sets = %v, want 2", got)
	}
}

func TestExecuteKeyedByContent(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	g := graph.Classic()

	if _, err := r.Execute(ctx, g, Options{Program: programs.NameDegree}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	v, _ := g.Vertex(2)
	if _, err := v.AddEdge("knows", v); err != nil {
		t.Fatal(err)
	}

	res, err := r.Execute(ctx, g, Options{Program: programs.NameDegree})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.CacheHit {
		t.Error("a changed graph should miss the cache")
	}
	if got := res.Values["2"].Int(); got != 3 {
		t.Errorf("degree of v[2] = %d, want 3", got)
	}
	if got := res.Memory[programs.MemoryEdges].Int(); got != 7 {
		t.Errorf("edges = %d, want 7", got)
	}
}

func TestExecuteInvalid(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	tests := []Options{
		{Program: "betweenness"},
		{Program: programs.NamePageRank, Alpha: 1.5},
		{Program: programs.NamePageRank, Iterations: -1},
		{Program: programs.NameDegree, Workers: -2},
	}
	for _, opts := range tests {
		_, err := r.Execute(context.Background(), graph.Classic(), opts)
		if !errors.Is(err, errors.ErrCodeInvalidArgument) {
			t.Errorf("%+v: err = %v, want INVALID_ARGUMENT", opts, err)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Program: programs.NamePageRank}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Iterations != programs.DefaultIterations || opts.Alpha != programs.DefaultAlpha {
		t.Errorf("defaults not applied: %+v", opts)
	}

	degree := Options{Program: programs.NameDegree, Iterations: 9, Alpha: 0.3}
	if err := degree.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if degree.Iterations != 0 || degree.Alpha != 0 {
		t.Error("unused parameters should be cleared")
	}
}

func TestTop(t *testing.T) {
	r := &Result{Values: map[string]graph.Value{
		"a": graph.NewDouble(0.1),
		"b": graph.NewDouble(0.7),
		"c": graph.NewLong(1),
		"d": graph.NewDouble(0.7),
	}}
	top := r.Top(3)
	want := []string{"c", "b", "d"}
	if len(top) != len(want) {
		t.Fatalf("Top(3) returned %d entries", len(top))
	}
	for i, id := range want {
		if top[i].ID != id {
			t.Errorf("Top[%d] = %s, want %s", i, top[i].ID, id)
		}
	}
	if len(r.Top(0)) != 4 {
		t.Error("Top(0) should return every vertex")
	}
}
