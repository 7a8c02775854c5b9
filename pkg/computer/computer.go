package computer

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/propgraph/pkg/errors"
	"github.com/matzehuels/propgraph/pkg/graph"
	"github.com/matzehuels/propgraph/pkg/observability"
)

// Computer runs vertex programs over a graph.
type Computer struct {
	graph *graph.Graph
	opts  Options
}

// New returns a computer for g. It fails with UNSUPPORTED when g does not
// declare the computer feature or when the isolation level is unknown.
func New(g *graph.Graph, opts Options) (*Computer, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeNullOrEmpty, "graph can not be null")
	}
	if !g.Features().Computer {
		return nil, errors.New(errors.ErrCodeUnsupported, "graph computer not supported")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Computer{graph: g, opts: opts}, nil
}

// Options returns the validated options.
func (c *Computer) Options() Options { return c.opts }

// Submit starts p in the background and returns its future. Cancelling ctx
// or the future aborts the run at the next vertex.
func (c *Computer) Submit(ctx context.Context, p VertexProgram) *Future {
	ctx, cancel := context.WithCancel(ctx)
	f := &Future{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer cancel()
		f.result, f.err = c.run(ctx, p)
		close(f.done)
	}()
	return f
}

// Run submits p and waits for it.
func (c *Computer) Run(ctx context.Context, p VertexProgram) (*Result, error) {
	return c.Submit(ctx, p).Wait(ctx)
}

// Future is the eventual outcome of a submitted run.
type Future struct {
	done   chan struct{}
	cancel context.CancelFunc
	result *Result
	err    error
}

// Done is closed when the run has finished.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the run finishes or ctx is done. A failed run returns a
// COMPUTATION_FAILED error whose cause is the error that aborted it. When
// ctx ends first, Wait returns ctx.Err() and the run keeps going.
func (f *Future) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel aborts the run. Writes of the superstep in progress are dropped.
func (f *Future) Cancel() { f.cancel() }

// partition is a contiguous slice of the vertex snapshot, executed by one
// goroutine per superstep. Its buffers are owned by that goroutine until
// the barrier.
type partition struct {
	ids    []string
	writes []graph.Write
	ops    []memOp
	outbox []envelope
}

func (p *partition) reset() {
	p.writes = p.writes[:0]
	p.ops = p.ops[:0]
	p.outbox = p.outbox[:0]
}

func split(ids []string, n int) []*partition {
	if n > len(ids) {
		n = len(ids)
	}
	if n == 0 {
		return nil
	}
	parts := make([]*partition, n)
	size, rem := len(ids)/n, len(ids)%n
	start := 0
	for i := range parts {
		end := start + size
		if i < rem {
			end++
		}
		parts[i] = &partition{ids: ids[start:end]}
		start = end
	}
	return parts
}

// vertexWrites buffers the compute key writes of one vertex.
type vertexWrites struct {
	part      *partition
	superstep int
}

func (w *vertexWrites) Buffer(write graph.Write) error {
	if write.KeyType == graph.KeyReadOnly && w.superstep > 1 {
		return errors.New(errors.ErrCodeReadOnlyComputeKey, "the compute key %s is read only after the first superstep", write.Key)
	}
	w.part.writes = append(w.part.writes, write)
	return nil
}

type execution struct {
	c       *Computer
	program VertexProgram
	name    string
	keys    map[string]graph.KeyType
	mem     *memory
	parts   []*partition
	inbox   map[string][]any
	logger  *log.Logger
}

func (c *Computer) run(ctx context.Context, p VertexProgram) (*Result, error) {
	start := time.Now()
	r := &execution{
		c:       c,
		program: p,
		name:    programName(p),
		mem:     newMemory(start),
		inbox:   make(map[string][]any),
		logger:  c.opts.Logger,
	}
	defer c.graph.BeginComputation()()

	hooks := observability.Computer()
	ids := c.graph.VertexIDs()
	r.parts = split(ids, c.opts.Workers)
	hooks.OnRunStart(ctx, r.name, len(ids))

	keys := p.ComputeKeys()
	r.keys = make(map[string]graph.KeyType, len(keys))
	for k, t := range keys {
		if err := errors.ValidatePropertyKey(k); err != nil {
			return nil, r.fail(ctx, 0, start, err)
		}
		r.keys[k] = t
	}

	if err := guard(func() error { return p.Setup(r.mem) }); err != nil {
		return nil, r.fail(ctx, 0, start, err)
	}

	r.logger.Info("vertex program started",
		"program", r.name,
		"vertices", len(ids),
		"workers", len(r.parts))

	step := 0
	for {
		step++
		if step > c.opts.MaxSupersteps {
			return nil, r.fail(ctx, step-1, start,
				errors.New(errors.ErrCodeInternal, "no termination after %d supersteps", c.opts.MaxSupersteps))
		}
		if err := ctx.Err(); err != nil {
			return nil, r.fail(ctx, step-1, start, err)
		}

		stepStart := time.Now()
		r.mem.setSuperstep(step)
		if err := r.superstep(ctx, step); err != nil {
			return nil, r.fail(ctx, step, start, err)
		}
		messages, err := r.barrier()
		if err != nil {
			return nil, r.fail(ctx, step, start, err)
		}
		elapsed := time.Since(stepStart)

		hooks.OnSuperstep(ctx, r.name, step, messages, elapsed)
		r.logger.Debug("superstep",
			"superstep", step,
			"vertices", len(ids),
			"messages", messages,
			"duration", elapsed)
		if c.opts.Progress != nil {
			c.opts.Progress(Progress{
				Program:   r.name,
				Superstep: step,
				Vertices:  len(ids),
				Messages:  messages,
				Duration:  elapsed,
			})
		}

		var done bool
		if err := guard(func() (err error) {
			done, err = p.Terminate(r.mem)
			return err
		}); err != nil {
			return nil, r.fail(ctx, step, start, err)
		}
		if done {
			break
		}
	}

	result := &Result{
		Memory:     r.mem.snapshot(),
		Supersteps: step,
		Runtime:    time.Since(start),
	}
	hooks.OnRunComplete(ctx, r.name, step, result.Runtime, nil)
	r.logger.Info("vertex program finished",
		"program", r.name,
		"supersteps", step,
		"duration", result.Runtime)
	return result, nil
}

// superstep executes every vertex once, one goroutine per partition.
func (r *execution) superstep(ctx context.Context, step int) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, part := range r.parts {
		g.Go(func() error {
			return r.execute(gctx, part, step)
		})
	}
	return g.Wait()
}

func (r *execution) execute(ctx context.Context, part *partition, step int) error {
	mem := &vertexMemory{memory: r.mem, part: part}
	writes := &vertexWrites{part: part, superstep: step}
	for _, id := range part.ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		view := &graph.ComputeView{Center: id, Keys: r.keys, Writes: writes}
		v, ok := r.c.graph.Centric(id, view)
		if !ok {
			continue
		}
		m := &messenger{graph: r.c.graph, vertex: v, inbox: r.inbox[id], part: part}
		if err := guard(func() error { return r.program.Execute(v, m, mem) }); err != nil {
			return err
		}
	}
	return nil
}

// barrier merges the partition buffers in partition order, which is vertex
// order, and delivers the messages of the superstep.
func (r *execution) barrier() (int, error) {
	var (
		ops    []memOp
		writes []graph.Write
	)
	for _, part := range r.parts {
		ops = append(ops, part.ops...)
		writes = append(writes, part.writes...)
	}
	values, err := r.mem.merge(ops)
	if err != nil {
		return 0, err
	}
	if err := r.c.graph.ApplyWrites(writes); err != nil {
		return 0, err
	}
	r.mem.commit(values)

	inbox := make(map[string][]any)
	messages := 0
	for _, part := range r.parts {
		for _, env := range part.outbox {
			inbox[env.target] = append(inbox[env.target], env.msg)
			messages++
		}
		part.reset()
	}
	r.inbox = inbox
	return messages, nil
}

func (r *execution) fail(ctx context.Context, step int, start time.Time, cause error) error {
	err := errors.Wrap(errors.ErrCodeComputationFailed, cause, "vertex program %s failed in superstep %d", r.name, step)
	observability.Computer().OnRunComplete(ctx, r.name, step, time.Since(start), err)
	r.logger.Error("vertex program failed", "program", r.name, "superstep", step, "error", cause)
	return err
}

// guard runs fn and turns a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.New(errors.ErrCodeInternal, "vertex program panicked: %v", rec)
		}
	}()
	return fn()
}
