// Package computer executes vertex programs in bulk synchronous parallel
// supersteps.
//
// A [VertexProgram] is run by a [Computer]: Setup once, then Execute for
// every vertex in each superstep, then Terminate after each barrier until it
// returns true. Vertices of one superstep run concurrently across
// partitions and only see each other's effects after the barrier:
//
//   - property writes go through compute keys into per-partition buffers
//     and are merged into the graph when the superstep succeeds
//   - [Memory] writes are buffered the same way and combined in vertex order
//   - [Messenger] messages are delivered in the next superstep only
//
// While a run is in progress the graph rejects writes through ordinary
// handles, including ones obtained with Vertex.Graph inside Execute.
//
// A run that fails, panics or is cancelled is aborted. The error returned by
// [Future.Wait] has code COMPUTATION_FAILED and carries the original cause:
//
//	c, err := computer.New(g, computer.Options{Workers: 4})
//	if err != nil {
//	    return err
//	}
//	result, err := c.Submit(ctx, programs.NewPageRank()).Wait(ctx)
//	if err != nil {
//	    cause := errors.Cause(err) // e.g. NOT_COMPUTE_KEY
//	}
package computer
