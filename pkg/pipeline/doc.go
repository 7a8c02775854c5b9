// Package pipeline provides lazy, pull-based graph traversals.
//
// A traversal is a chain of [Pipe] values. Each pipe pulls [Holder] values
// from the previous one, transforms them and hands them on only when asked,
// so nothing is computed before the caller iterates. A holder carries the
// current value together with its [Path], the values it was derived from,
// which lets later steps refer back to earlier ones by alias.
//
// # Building Traversals
//
// [Pipeline] offers a fluent builder over the pipe kinds:
//
//	names, err := pipeline.V(g, 1).Out("knows").Value("name").ToList()
//
// Steps fall into a few families:
//
//   - map steps emit one value per input: [MapPipe], [PropertyPipe], id, label, path
//   - flat-map steps emit zero or more: [VertexPipe], [EdgePipe], [EdgeVertexPipe], [ValuePipe]
//   - filter steps drop inputs: [HasPipe], [FilterPipe], [DedupPipe], [RangePipe]
//   - side-effect steps emit their input unchanged: [SideEffectPipe], [LinkPipe]
//
// # Aliases and Loops
//
// [Pipeline.As] records the output of the last step under a name. [Pipeline.Back]
// jumps back to the recorded value, the link steps connect the current
// vertex to it and [Pipeline.Loop] sends holders back to the step after it:
//
//	// friends of friends
//	pipeline.V(g, 1).As("x").Out("knows").Loop("x", func(h *pipeline.Holder) bool {
//		return h.Loops() < 1
//	})
//
// # Errors
//
// [ErrExhausted] signals the end of a pipe and is not a failure. Any other
// error is remembered by the pipe that raised it and returned again by every
// later call.
package pipeline
