package computer

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/propgraph/pkg/errors"
	"github.com/matzehuels/propgraph/pkg/graph"
	"github.com/matzehuels/propgraph/pkg/observability"
)

// testProgram adapts functions to VertexProgram. Nil functions do nothing;
// a nil terminate stops after the first superstep.
type testProgram struct {
	keys      map[string]graph.KeyType
	setup     func(Memory) error
	execute   func(*graph.Vertex, Messenger, Memory) error
	terminate func(Memory) (bool, error)
}

func (p *testProgram) Name() string { return "test" }

func (p *testProgram) ComputeKeys() map[string]graph.KeyType { return p.keys }

func (p *testProgram) Setup(mem Memory) error {
	if p.setup == nil {
		return nil
	}
	return p.setup(mem)
}

func (p *testProgram) Execute(v *graph.Vertex, m Messenger, mem Memory) error {
	if p.execute == nil {
		return nil
	}
	return p.execute(v, m, mem)
}

func (p *testProgram) Terminate(mem Memory) (bool, error) {
	if p.terminate == nil {
		return true, nil
	}
	return p.terminate(mem)
}

func stopAfter(n int) func(Memory) (bool, error) {
	return func(mem Memory) (bool, error) { return mem.Superstep() >= n, nil }
}

func run(t *testing.T, g *graph.Graph, workers int, p VertexProgram) (*Result, error) {
	t.Helper()
	c, err := New(g, Options{Workers: workers})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return c.Submit(ctx, p).Wait(ctx)
}

func TestNewUnsupported(t *testing.T) {
	g, err := graph.Open(graph.Config{graph.ConfigGraph: graph.ImplTinker, graph.ConfigComputer: false})
	require.NoError(t, err)

	_, err = New(g, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))
	assert.Contains(t, err.Error(), "graph computer not supported")

	_, err = New(graph.Classic(), Options{Isolation: Isolation(7)})
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))

	_, err = New(graph.Classic(), Options{Workers: -1})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument))
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Positive(t, opts.Workers)
	assert.Equal(t, IsolationBSP, opts.Isolation)
	assert.Equal(t, DefaultMaxSupersteps, opts.MaxSupersteps)
	assert.NotNil(t, opts.Logger)
}

func TestIsolation(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		g := graph.Classic()
		var violations atomic.Int32
		p := &testProgram{
			keys: map[string]graph.KeyType{"x": graph.KeyReadWrite},
			execute: func(v *graph.Vertex, _ Messenger, mem Memory) error {
				step := mem.Superstep()
				for _, u := range append(v.Vertices(graph.Both), v) {
					x := u.Property("x")
					switch {
					case step == 1 && x.IsPresent():
						violations.Add(1)
					case step == 2 && (!x.IsPresent() || x.Value().Int() != 1):
						violations.Add(1)
					}
				}
				return v.SetProperty("x", step)
			},
			terminate: stopAfter(2),
		}
		res, err := run(t, g, workers, p)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Supersteps)
		assert.Zero(t, violations.Load(), "workers=%d", workers)

		for _, v := range g.V() {
			assert.EqualValues(t, 2, v.Property("x").Value().Int())
		}
	}
}

func TestEdgeComputeKeys(t *testing.T) {
	g := graph.Classic()
	p := &testProgram{
		keys: map[string]graph.KeyType{"visits": graph.KeyReadWrite},
		execute: func(v *graph.Vertex, _ Messenger, _ Memory) error {
			for _, e := range v.Edges(graph.Out) {
				if err := e.SetProperty("visits", 1); err != nil {
					return err
				}
			}
			return nil
		},
	}
	_, err := run(t, g, 2, p)
	require.NoError(t, err)
	for _, e := range g.E() {
		assert.True(t, e.Property("visits").IsPresent(), "edge %s", e)
	}
}

func TestWriteRejections(t *testing.T) {
	tests := []struct {
		name    string
		keys    map[string]graph.KeyType
		execute func(*graph.Vertex, Messenger, Memory) error
		want    errors.Code
	}{
		{
			name: "vertex not compute key",
			execute: func(v *graph.Vertex, _ Messenger, _ Memory) error {
				return v.SetProperty("name", "x")
			},
			want: errors.ErrCodeNotComputeKey,
		},
		{
			name: "edge not compute key",
			keys: map[string]graph.KeyType{"rank": graph.KeyReadWrite},
			execute: func(v *graph.Vertex, _ Messenger, _ Memory) error {
				for _, e := range v.Edges(graph.Both) {
					if err := e.SetProperty("weight", 2.0); err != nil {
						return err
					}
				}
				return nil
			},
			want: errors.ErrCodeNotComputeKey,
		},
		{
			name: "adjacent vertex",
			keys: map[string]graph.KeyType{"rank": graph.KeyReadWrite},
			execute: func(v *graph.Vertex, _ Messenger, _ Memory) error {
				for _, u := range v.Vertices(graph.Both) {
					if err := u.SetProperty("rank", 1.0); err != nil {
						return err
					}
				}
				return nil
			},
			want: errors.ErrCodeAdjacentNotWritable,
		},
		{
			name: "read only after first superstep",
			keys: map[string]graph.KeyType{"degree": graph.KeyReadOnly},
			execute: func(v *graph.Vertex, _ Messenger, mem Memory) error {
				return v.SetProperty("degree", mem.Superstep())
			},
			want: errors.ErrCodeReadOnlyComputeKey,
		},
		{
			name: "write through graph handle",
			keys: map[string]graph.KeyType{"rank": graph.KeyReadWrite},
			execute: func(v *graph.Vertex, _ Messenger, _ Memory) error {
				u, ok := v.Graph().Vertex("6")
				if !ok {
					return nil
				}
				return u.SetProperty("hacked", v.ID())
			},
			want: errors.ErrCodeUnsupported,
		},
		{
			name: "vertex added through graph",
			execute: func(v *graph.Vertex, _ Messenger, _ Memory) error {
				_, err := v.Graph().AddVertex()
				return err
			},
			want: errors.ErrCodeUnsupported,
		},
		{
			name: "structure change",
			execute: func(v *graph.Vertex, _ Messenger, _ Memory) error {
				_, err := v.AddEdge("self", v)
				return err
			},
			want: errors.ErrCodeUnsupported,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.Classic()
			p := &testProgram{keys: tt.keys, execute: tt.execute, terminate: stopAfter(3)}
			_, err := run(t, g, 2, p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeComputationFailed), "got %v", err)
			cause := stderrors.Unwrap(err)
			assert.Equal(t, tt.want, errors.GetCode(cause), "cause %v", cause)
		})
	}
}

func TestGraphWritableAfterRun(t *testing.T) {
	g := graph.Classic()
	var seen atomic.Bool
	p := &testProgram{
		execute: func(v *graph.Vertex, _ Messenger, _ Memory) error {
			if v.Graph().Computing() {
				seen.Store(true)
			}
			return nil
		},
	}
	_, err := run(t, g, 2, p)
	require.NoError(t, err)
	assert.True(t, seen.Load())
	assert.False(t, g.Computing())
	assert.False(t, mustVertex(t, g, 6).Property("hacked").IsPresent())
	require.NoError(t, mustVertex(t, g, 6).SetProperty("name", "pete"))

	// A failed run releases the graph too.
	_, err = run(t, g, 2, &testProgram{execute: func(*graph.Vertex, Messenger, Memory) error {
		return stderrors.New("boom")
	}})
	require.Error(t, err)
	_, err = g.AddVertex()
	assert.NoError(t, err)
}

func TestFailureKeepsCommittedWrites(t *testing.T) {
	g := graph.Classic()
	boom := stderrors.New("boom")
	p := &testProgram{
		keys: map[string]graph.KeyType{"rank": graph.KeyReadWrite},
		execute: func(v *graph.Vertex, _ Messenger, mem Memory) error {
			if mem.Superstep() == 2 && v.ID() == "4" {
				return boom
			}
			return v.SetProperty("rank", mem.Superstep())
		},
		terminate: stopAfter(3),
	}
	_, err := run(t, g, 3, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Same(t, boom, errors.Cause(err))

	for _, v := range g.V() {
		assert.EqualValues(t, 1, v.Property("rank").Value().Int(), "vertex %s", v)
	}
}

func TestPanicRecovered(t *testing.T) {
	p := &testProgram{
		execute: func(v *graph.Vertex, _ Messenger, _ Memory) error {
			panic("kaboom")
		},
	}
	_, err := run(t, graph.Classic(), 2, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeComputationFailed))
	assert.Contains(t, errors.Cause(err).Error(), "kaboom")
}

func TestMessages(t *testing.T) {
	g := graph.Classic()
	p := &testProgram{
		execute: func(v *graph.Vertex, m Messenger, mem Memory) error {
			received := int64(len(m.Receive()))
			switch mem.Superstep() {
			case 1:
				if received != 0 {
					return stderrors.New("message before any was sent")
				}
				for _, e := range v.Edges(graph.Out) {
					if err := m.SendAlong(e, v.ID()); err != nil {
						return err
					}
				}
			case 2:
				return mem.Incr("received", received)
			case 3:
				return mem.Incr("late", received)
			}
			return nil
		},
		terminate: stopAfter(3),
	}
	res, err := run(t, g, 4, p)
	require.NoError(t, err)
	assert.EqualValues(t, 6, res.Memory["received"].Int())
	assert.EqualValues(t, 0, res.Memory["late"].Int())
}

func TestSendAndBroadcast(t *testing.T) {
	g := graph.Classic()
	p := &testProgram{
		execute: func(v *graph.Vertex, m Messenger, mem Memory) error {
			if mem.Superstep() == 1 {
				if v.ID() == "1" {
					if err := m.Send(3, "direct"); err != nil {
						return err
					}
				}
				return m.Broadcast(graph.In, "up", "created")
			}
			if v.ID() == "3" {
				return mem.Set("lop", int64(len(m.Receive())))
			}
			if v.ID() == "1" {
				return mem.Set("marko", int64(len(m.Receive())))
			}
			return nil
		},
		terminate: stopAfter(2),
	}
	res, err := run(t, g, 2, p)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Memory["lop"].Int())
	// lop and ripple broadcast to their creators.
	assert.EqualValues(t, 1, res.Memory["marko"].Int())

	bad := &testProgram{
		execute: func(_ *graph.Vertex, m Messenger, _ Memory) error { return m.Send(99, "x") },
	}
	_, err = run(t, g, 1, bad)
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(errors.Cause(err)))
}

func TestMemoryBarrier(t *testing.T) {
	for _, workers := range []int{1, 2, 6} {
		g := graph.Classic()
		var early atomic.Int32
		p := &testProgram{
			setup: func(mem Memory) error {
				if err := mem.Set("count", 0); err != nil {
					return err
				}
				if v, _ := mem.Get("count"); v.Int() != 0 {
					return stderrors.New("setup write not applied immediately")
				}
				return nil
			},
			execute: func(v *graph.Vertex, _ Messenger, mem Memory) error {
				if c, _ := mem.Get("count"); c.Int() != int64(6*(mem.Superstep()-1)) {
					early.Add(1)
				}
				if err := mem.Incr("count", 1); err != nil {
					return err
				}
				if err := mem.Or("any", v.ID() == "6"); err != nil {
					return err
				}
				if err := mem.And("all", v.ID() != "6"); err != nil {
					return err
				}
				return mem.Set("last", v.ID())
			},
			terminate: stopAfter(2),
		}
		res, err := run(t, g, workers, p)
		require.NoError(t, err)
		assert.Zero(t, early.Load(), "memory writes visible before the barrier")
		assert.EqualValues(t, 12, res.Memory["count"].Int())
		assert.True(t, res.Memory["any"].Bool())
		assert.False(t, res.Memory["all"].Bool())
		assert.Equal(t, "6", res.Memory["last"].Text(), "workers=%d", workers)
	}
}

func TestMemoryTypeMismatch(t *testing.T) {
	p := &testProgram{
		setup: func(mem Memory) error { return mem.Set("flag", "text") },
		execute: func(_ *graph.Vertex, _ Messenger, mem Memory) error {
			return mem.Incr("flag", 1)
		},
	}
	_, err := run(t, graph.Classic(), 1, p)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidArgument, errors.GetCode(errors.Cause(err)))
}

func TestMaxSupersteps(t *testing.T) {
	c, err := New(graph.Classic(), Options{MaxSupersteps: 3})
	require.NoError(t, err)
	p := &testProgram{terminate: func(Memory) (bool, error) { return false, nil }}
	_, err = c.Run(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no termination after 3 supersteps")
}

func TestFutureTimeoutAndCancel(t *testing.T) {
	g := graph.Classic()
	release := make(chan struct{})
	p := &testProgram{
		keys: map[string]graph.KeyType{"rank": graph.KeyReadWrite},
		execute: func(v *graph.Vertex, _ Messenger, _ Memory) error {
			<-release
			return v.SetProperty("rank", 1)
		},
	}
	c, err := New(g, Options{Workers: 1})
	require.NoError(t, err)
	f := c.Submit(context.Background(), p)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, mustVertex(t, g, 1).Property("rank").IsPresent())

	f.Cancel()
	close(release)
	<-f.Done()
	_, err = f.Wait(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	for _, v := range g.V() {
		assert.False(t, v.Property("rank").IsPresent(), "cancelled superstep must not be merged")
	}
}

type countingHooks struct {
	observability.NoopComputerHooks
	starts, steps, completes atomic.Int32
}

func (h *countingHooks) OnRunStart(context.Context, string, int) { h.starts.Add(1) }
func (h *countingHooks) OnSuperstep(context.Context, string, int, int, time.Duration) {
	h.steps.Add(1)
}
func (h *countingHooks) OnRunComplete(context.Context, string, int, time.Duration, error) {
	h.completes.Add(1)
}

func TestHooksAndProgress(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetComputerHooks(hooks)
	defer observability.Reset()

	var progress []Progress
	c, err := New(graph.Classic(), Options{
		Workers:  2,
		Progress: func(p Progress) { progress = append(progress, p) },
	})
	require.NoError(t, err)
	_, err = c.Run(context.Background(), &testProgram{terminate: stopAfter(4)})
	require.NoError(t, err)

	assert.EqualValues(t, 1, hooks.starts.Load())
	assert.EqualValues(t, 4, hooks.steps.Load())
	assert.EqualValues(t, 1, hooks.completes.Load())
	require.Len(t, progress, 4)
	assert.Equal(t, "test", progress[0].Program)
	assert.Equal(t, 6, progress[3].Vertices)
	assert.Equal(t, 4, progress[3].Superstep)
}

func mustVertex(t *testing.T, g *graph.Graph, id any) *graph.Vertex {
	t.Helper()
	v, ok := g.Vertex(id)
	require.True(t, ok, "vertex %v", id)
	return v
}
