package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/propgraph/pkg/graph"
)

type document struct {
	Vertices []vertex `json:"vertices"`
	Edges    []edge   `json:"edges"`
}

type vertex struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Properties map[string]graph.Value `json:"properties,omitempty"`
}

type edge struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Out        string                 `json:"out"`
	In         string                 `json:"in"`
	Properties map[string]graph.Value `json:"properties,omitempty"`
}

// WriteJSON encodes every vertex and then every edge of g as JSON and
// writes it to w. Property values keep their kind, so [ReadJSON] restores
// an identical graph.
func WriteJSON(g *graph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// MarshalGraph returns the compact JSON encoding of g. Equal graphs built
// in the same order produce identical bytes, which makes the output
// suitable for content hashing.
func MarshalGraph(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(snapshot(g)); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

func snapshot(g *graph.Graph) document {
	vs, es := g.V(), g.E()
	doc := document{
		Vertices: make([]vertex, len(vs)),
		Edges:    make([]edge, len(es)),
	}
	for i, v := range vs {
		doc.Vertices[i] = vertex{ID: v.ID(), Label: v.Label(), Properties: values(v.Properties())}
	}
	for i, e := range es {
		doc.Edges[i] = edge{
			ID:         e.ID(),
			Label:      e.Label(),
			Out:        e.OutVertex().ID(),
			In:         e.InVertex().ID(),
			Properties: values(e.Properties()),
		}
	}
	return doc
}

func values(props map[string]graph.Property) map[string]graph.Value {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]graph.Value, len(props))
	for k, p := range props {
		out[k] = p.Value()
	}
	return out
}
