// Package graph provides an in-memory property graph.
//
// A property graph is a set of vertices connected by directed, labeled
// edges. Both kinds of element carry an immutable id, an immutable label and
// a mutable map of typed properties.
//
// # Core Types
//
//   - [Graph]: the element arena, safe for concurrent use
//   - [Vertex], [Edge]: handles on elements, re-resolved on every access
//   - [Value]: a typed property value (bool, numbers, string, list, map)
//   - [Property]: the result of reading a key, possibly empty
//   - [GraphQuery], [VertexQuery]: has-container filters with index support
//
// # Creating Graphs
//
// Use [New] for a graph with every feature enabled, or [Open] with a
// [Config] to select features, the id manager and property indexes:
//
//	g, err := graph.Open(graph.Config{
//	    graph.ConfigGraph:       graph.ImplTinker,
//	    graph.ConfigVertexIndex: "name",
//	})
//
// Elements are created from alternating keys and values. The keys "id" and
// "label" are reserved:
//
//	marko, _ := g.AddVertex("id", 1, "name", "marko", "age", 29)
//	vadas, _ := g.AddVertex("id", 2, "name", "vadas", "age", 27)
//	e, _ := marko.AddEdge("knows", vadas, "weight", 0.5)
//
// # Handle Modes
//
// Every handle has a [Mode]. Handles from the graph are [Standard] and
// write straight to the arena. The graph computer hands vertex programs a
// [Centric] handle whose writes are buffered per superstep and restricted
// to declared compute keys; elements reached from it are [Adjacent] and
// read-only. See package computer.
//
// # Queries
//
// A query is a conjunction of [HasContainer] conditions:
//
//	old, err := g.Query().HasPredicate("age", graph.GreaterThan, 30).Vertices()
//
// Queries from [Graph.Query] use indexes; [NewScanQuery] gives the same
// answers by testing every element of any [ElementSource].
package graph
