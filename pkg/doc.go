// Package pkg holds the propgraph libraries.
//
// # Overview
//
// propgraph is an in-memory property graph with two processing models: lazy
// traversals that pull elements one at a time through a chain of pipes, and
// bulk synchronous parallel vertex programs that run every vertex once per
// superstep. The packages are layered:
//
//  1. [errors] - error codes shared by every package
//  2. [graph] - vertices, edges, typed values, indexes, transactions and the query facade
//  3. [pipeline] - the traversal engine and its fluent builder
//  4. [computer] - the vertex program engine; [computer/programs] bundles PageRank and friends
//  5. [analytics] - cached program runs over graph snapshots
//  6. [io], [config], [cache], [observability] - serialization, configuration, storage and metrics
//
// # Data Flow
//
//	JSON file / graph.Open(config)
//	         ↓
//	    [graph] (mutations, queries)
//	         ↓                    ↓
//	    [pipeline]           [analytics] → [computer] → [cache]
//	    (traversals)         (vertex programs)
//	         ↓                    ↓
//	    results              ranked values, Graphviz output via [io]
//
// # Quick Start
//
//	g := graph.Classic()
//	names, err := pipeline.V(g, 1).Out("knows").Value("name").ToList()
//
//	c, _ := computer.New(g, computer.Options{Workers: 4})
//	res, err := c.Run(ctx, programs.NewPageRank())
//
// [errors]: github.com/matzehuels/propgraph/pkg/errors
// [graph]: github.com/matzehuels/propgraph/pkg/graph
// [pipeline]: github.com/matzehuels/propgraph/pkg/pipeline
// [computer]: github.com/matzehuels/propgraph/pkg/computer
// [computer/programs]: github.com/matzehuels/propgraph/pkg/computer/programs
// [analytics]: github.com/matzehuels/propgraph/pkg/analytics
// [io]: github.com/matzehuels/propgraph/pkg/io
// [config]: github.com/matzehuels/propgraph/pkg/config
// [cache]: github.com/matzehuels/propgraph/pkg/cache
// [observability]: github.com/matzehuels/propgraph/pkg/observability
package pkg
