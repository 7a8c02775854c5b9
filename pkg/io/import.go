package io

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/matzehuels/propgraph/pkg/graph"
)

// ReadJSON decodes the format written by [WriteJSON] from r and adds its
// elements to g through the ordinary mutation API.
//
// Element ids are kept when g accepts user supplied ids. Otherwise g
// assigns new ids and edges are attached to the vertices created from
// their recorded endpoints.
//
// ReadJSON returns an error if the JSON is malformed, an id collides with
// an existing element, or an edge references an unknown vertex. Elements
// added before the failure stay in g; run ReadJSON inside a transaction to
// make the load all or nothing.
func ReadJSON(r io.Reader, g *graph.Graph) error {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	features := g.Features()
	created := make(map[string]*graph.Vertex, len(doc.Vertices))
	for _, v := range doc.Vertices {
		kv := []any{"label", v.Label}
		if features.Vertex.UserSuppliedIDs {
			kv = append(kv, "id", v.ID)
		}
		nv, err := g.AddVertex(append(kv, keyValues(v.Properties)...)...)
		if err != nil {
			return fmt.Errorf("vertex %s: %w", v.ID, err)
		}
		created[v.ID] = nv
	}

	for _, e := range doc.Edges {
		out, ok := created[e.Out]
		if !ok {
			return fmt.Errorf("edge %s: unknown out vertex %s", e.ID, e.Out)
		}
		in, ok := created[e.In]
		if !ok {
			return fmt.Errorf("edge %s: unknown in vertex %s", e.ID, e.In)
		}
		var kv []any
		if features.Edge.UserSuppliedIDs {
			kv = append(kv, "id", e.ID)
		}
		if _, err := out.AddEdge(e.Label, in, append(kv, keyValues(e.Properties)...)...); err != nil {
			return fmt.Errorf("edge %s: %w", e.ID, err)
		}
	}
	return nil
}

// ImportJSON reads a JSON file at path into a new in-memory graph.
func ImportJSON(path string) (*graph.Graph, error) {
	g := graph.New()
	if err := ImportJSONInto(path, g); err != nil {
		return nil, err
	}
	return g, nil
}

// ImportJSONInto reads a JSON file at path into g.
func ImportJSONInto(path string, g *graph.Graph) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f, g)
}

func keyValues(props map[string]graph.Value) []any {
	kv := make([]any, 0, 2*len(props))
	for _, k := range slices.Sorted(maps.Keys(props)) {
		kv = append(kv, k, props[k])
	}
	return kv
}
