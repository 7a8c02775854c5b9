// Package io moves property graphs in and out of memory.
//
// # JSON Format
//
// A graph is written as every vertex followed by every edge. Property
// values are tagged with their kind so that ints, longs, floats and doubles
// survive a round trip:
//
//	{
//	  "vertices": [
//	    {"id": "1", "label": "person", "properties": {
//	      "name": {"type": "string", "value": "marko"}}},
//	    {"id": "2", "label": "person"}
//	  ],
//	  "edges": [
//	    {"id": "7", "label": "knows", "out": "1", "in": "2", "properties": {
//	      "weight": {"type": "float", "value": 0.5}}}
//	  ]
//	}
//
// # Import and Export
//
// [ReadJSON] and [WriteJSON] work on any reader or writer; [ImportJSON] and
// [ExportJSON] wrap them for files. Loading goes through the ordinary
// mutation API, so the target graph's features (user ids, unsupported
// value kinds) apply exactly as they do to hand-written code.
//
// [Migrate] copies one graph into another by connecting a writer and a
// reader through an in-memory pipe. [MarshalGraph] returns the compact
// encoding used to derive cache keys from graph content.
//
// # Graphviz
//
// [ToDOT] renders a graph as DOT and [RenderSVG] turns DOT into SVG with
// the WebAssembly build of Graphviz, so no system binary is needed.
package io
