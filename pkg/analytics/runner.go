// Package analytics runs bundled vertex programs over a graph with result
// caching.
//
// Both the CLI and library callers go through a [Runner]:
//
//	runner := analytics.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, g, analytics.Options{Program: "pageRank"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range result.Top(3) {
//	    fmt.Println(r.ID, r.Value)
//	}
//
// Results are cached under the hash of the graph's content and the options
// that change the output, so an unchanged graph never runs the same program
// twice. The program runs on a private copy of the graph; the caller's graph
// is never modified.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/propgraph/pkg/cache"
	"github.com/matzehuels/propgraph/pkg/computer"
	"github.com/matzehuels/propgraph/pkg/computer/programs"
	"github.com/matzehuels/propgraph/pkg/graph"
	"github.com/matzehuels/propgraph/pkg/io"
	"github.com/matzehuels/propgraph/pkg/observability"
)

// keyType labels cache events in observability hooks.
const keyType = "compute"

// Runner executes programs with caching. It holds no per-run state, so one
// Runner may serve concurrent calls with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects the DefaultKeyer and a nil logger the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs opts.Program over g, or returns the cached result of an
// earlier identical run.
func (r *Runner) Execute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	data, err := io.MarshalGraph(g)
	if err != nil {
		return nil, fmt.Errorf("hash graph: %w", err)
	}
	graphHash := cache.Hash(data)
	cacheKey := r.Keyer.ComputeKey(graphHash, opts.ComputeKeyOpts())

	if !opts.Refresh {
		if res, ok := r.lookup(ctx, cacheKey); ok {
			opts.Logger.Info("using cached result", "program", opts.Program, "graph", graphHash[:12])
			return res, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyType)

	res, err := r.compute(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.GraphHash = graphHash

	if encoded, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, encoded, opts.TTL); err != nil {
			opts.Logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyType, len(encoded))
		}
	}
	return res, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		// Entries from an older format are recomputed.
		return nil, false
	}
	res.CacheHit = true
	observability.Cache().OnCacheHit(ctx, keyType)
	return &res, true
}

func (r *Runner) compute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	work := graph.New()
	if err := io.Migrate(g, work); err != nil {
		return nil, fmt.Errorf("copy graph: %w", err)
	}

	p, err := programs.New(opts.Program, opts.params(work.VertexCount()))
	if err != nil {
		return nil, err
	}
	c, err := computer.New(work, computer.Options{
		Workers:       opts.Workers,
		MaxSupersteps: opts.MaxSupersteps,
		Logger:        opts.Logger,
		Progress:      opts.Progress,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := c.Run(ctx, p)
	if err != nil {
		return nil, err
	}

	key := programs.OutputKeys(opts.Program)[0]
	res := &Result{
		Program: opts.Program,
		Key:     key,
		Values:  make(map[string]graph.Value, work.VertexCount()),
		Memory:  out.Memory,
		Stats: Stats{
			Vertices:   work.VertexCount(),
			Edges:      work.EdgeCount(),
			Supersteps: out.Supersteps,
			Runtime:    time.Since(start),
		},
	}
	for _, v := range work.V() {
		if prop := v.Property(key); prop.IsPresent() {
			res.Values[v.ID()] = prop.Value()
		}
	}

	opts.Logger.Info("computed",
		"program", opts.Program,
		"vertices", res.Stats.Vertices,
		"supersteps", res.Stats.Supersteps,
		"duration", res.Stats.Runtime)
	return res, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
