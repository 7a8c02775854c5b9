package analytics

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/propgraph/pkg/cache"
	"github.com/matzehuels/propgraph/pkg/computer"
	"github.com/matzehuels/propgraph/pkg/computer/programs"
	"github.com/matzehuels/propgraph/pkg/errors"
)

// TTLCompute is how long program results stay cached. Results are keyed by
// graph content, so they never go stale; the TTL only bounds cache growth.
const TTLCompute = 7 * 24 * time.Hour

// Options configures a single program run.
type Options struct {
	// Program is a name from programs.Names.
	Program string

	// Iterations and Alpha tune PageRank; zero takes the program default.
	Iterations int
	Alpha      float64

	// Labels restricts the edges a program follows.
	Labels []string

	// Workers and MaxSupersteps are passed to the computer.
	Workers       int
	MaxSupersteps int

	// Refresh bypasses cached results; the new result is still stored.
	Refresh bool

	// TTL bounds how long the result stays cached. Defaults to TTLCompute.
	TTL time.Duration

	Logger   *log.Logger
	Progress func(computer.Progress)

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in program defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if !slices.Contains(programs.Names(), o.Program) {
		return errors.New(errors.ErrCodeInvalidArgument, "unknown program %q (must be one of: %v)", o.Program, programs.Names())
	}
	if o.Iterations < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "iterations must be non-negative: %d", o.Iterations)
	}
	if o.Alpha < 0 || o.Alpha > 1 {
		return errors.New(errors.ErrCodeInvalidArgument, "alpha must be in (0, 1]: %v", o.Alpha)
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "workers must be non-negative: %d", o.Workers)
	}
	if o.TTL <= 0 {
		o.TTL = TTLCompute
	}
	if o.Program == programs.NamePageRank {
		if o.Iterations == 0 {
			o.Iterations = programs.DefaultIterations
		}
		if o.Alpha == 0 {
			o.Alpha = programs.DefaultAlpha
		}
	} else {
		// Only PageRank reads them; clearing keeps cache keys stable.
		o.Iterations, o.Alpha = 0, 0
	}
	o.validated = true
	return nil
}

// ComputeKeyOpts returns the options that identify a cached result.
func (o Options) ComputeKeyOpts() cache.ComputeKeyOpts {
	return cache.ComputeKeyOpts{
		Program:    o.Program,
		Iterations: o.Iterations,
		Alpha:      o.Alpha,
		Labels:     o.Labels,
	}
}

func (o Options) params(vertices int) programs.Params {
	return programs.Params{
		Iterations:  o.Iterations,
		Alpha:       o.Alpha,
		VertexCount: vertices,
		Labels:      o.Labels,
	}
}
