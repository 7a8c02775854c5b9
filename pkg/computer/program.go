package computer

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/propgraph/pkg/errors"
	"github.com/matzehuels/propgraph/pkg/graph"
)

// VertexProgram is a vertex-centric computation.
//
// Setup runs once before the first superstep. Execute runs once per vertex
// per superstep, possibly concurrently for different vertices, with the
// vertex in the Centric mode: only the properties named by ComputeKeys can be
// written, and only on the vertex itself and its incident edges. Terminate
// runs after every superstep barrier and ends the run by returning true.
type VertexProgram interface {
	Setup(mem Memory) error
	Execute(v *graph.Vertex, m Messenger, mem Memory) error
	Terminate(mem Memory) (bool, error)
	ComputeKeys() map[string]graph.KeyType
}

// Named is implemented by programs that report a name for logs and metrics.
type Named interface {
	Name() string
}

func programName(p VertexProgram) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}

// Isolation selects how vertices observe each other's writes.
type Isolation int

const (
	// IsolationBSP makes writes of superstep n visible from superstep n+1.
	IsolationBSP Isolation = iota + 1
)

func (i Isolation) String() string {
	if i == IsolationBSP {
		return "BSP"
	}
	return fmt.Sprintf("Isolation(%d)", int(i))
}

// DefaultMaxSupersteps bounds runs whose program never terminates.
const DefaultMaxSupersteps = 1000

// Options configures a [Computer].
type Options struct {
	// Workers is the number of partitions executed in parallel.
	// Defaults to GOMAXPROCS.
	Workers int

	// Isolation defaults to IsolationBSP, the only supported level.
	Isolation Isolation

	// MaxSupersteps aborts a run that has not terminated after this many
	// supersteps. Defaults to DefaultMaxSupersteps.
	MaxSupersteps int

	// Logger defaults to a discarding logger.
	Logger *log.Logger

	// Progress, when set, is called after every superstep barrier.
	Progress func(Progress)

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "workers must not be negative: %d", o.Workers)
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Isolation == 0 {
		o.Isolation = IsolationBSP
	}
	if o.Isolation != IsolationBSP {
		return errors.New(errors.ErrCodeUnsupported, "isolation level %s is not supported", o.Isolation)
	}
	if o.MaxSupersteps < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "max supersteps must not be negative: %d", o.MaxSupersteps)
	}
	if o.MaxSupersteps == 0 {
		o.MaxSupersteps = DefaultMaxSupersteps
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Progress reports a finished superstep.
type Progress struct {
	Program   string
	Superstep int
	Vertices  int
	Messages  int
	Duration  time.Duration
}

// Result is the outcome of a successful run.
type Result struct {
	// Memory is the final graph memory.
	Memory map[string]graph.Value

	// Supersteps is the number of supersteps executed.
	Supersteps int

	// Runtime is the wall time from setup to termination.
	Runtime time.Duration
}
