package io

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/propgraph/pkg/graph"
)

func TestRoundTrip(t *testing.T) {
	src := graph.Classic()
	var buf bytes.Buffer
	if err := WriteJSON(src, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	dst := graph.New()
	if err := ReadJSON(&buf, dst); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if dst.VertexCount() != 6 || dst.EdgeCount() != 6 {
		t.Fatalf("got %d vertices, %d edges", dst.VertexCount(), dst.EdgeCount())
	}

	marko, ok := dst.Vertex(1)
	if !ok {
		t.Fatal("vertex 1 missing")
	}
	if got := marko.Property("age").Value(); got.Kind() != graph.KindInt || got.Int() != 29 {
		t.Errorf("age = %v (%s), want int 29", got, got.Kind())
	}
	e, ok := dst.Edge(7)
	if !ok {
		t.Fatal("edge 7 missing")
	}
	if w := e.Property("weight").Value(); w.Kind() != graph.KindFloat {
		t.Errorf("weight kind = %s, want float", w.Kind())
	}

	a, _ := MarshalGraph(src)
	b, _ := MarshalGraph(dst)
	if !bytes.Equal(a, b) {
		t.Error("round trip should preserve the encoding")
	}
}

func TestReadJSONWithoutUserIDs(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(graph.Classic(), &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	dst, err := graph.Open(graph.Config{graph.ConfigGraph: graph.ImplTinker, graph.ConfigUserIDs: false})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := ReadJSON(&buf, dst); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if dst.EdgeCount() != 6 {
		t.Fatalf("EdgeCount = %d, want 6", dst.EdgeCount())
	}

	// Edges still connect the vertices rebuilt from their endpoints.
	for _, v := range dst.V() {
		if v.Property("name").Value().Text() != "marko" {
			continue
		}
		var names []string
		for _, w := range v.Vertices(graph.Out) {
			names = append(names, w.Property("name").Value().Text())
		}
		if got := strings.Join(names, ","); got != "vadas,josh,lop" {
			t.Errorf("marko out = %s", got)
		}
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"vertices": [`},
		{"unknown endpoint", `{"vertices": [{"id": "1", "label": "a"}], "edges": [{"id": "2", "label": "x", "out": "1", "in": "9"}]}`},
		{"duplicate id", `{"vertices": [{"id": "1", "label": "a"}, {"id": "1", "label": "b"}]}`},
		{"bad value", `{"vertices": [{"id": "1", "label": "a", "properties": {"k": {"type": "blob", "value": 1}}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ReadJSON(strings.NewReader(tt.input), graph.New()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExportImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classic.json")
	if err := ExportJSON(graph.Classic(), path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	g, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if g.VertexCount() != 6 {
		t.Errorf("VertexCount = %d", g.VertexCount())
	}
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestMigrate(t *testing.T) {
	dst := graph.New()
	if err := Migrate(graph.Classic(), dst); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if dst.VertexCount() != 6 || dst.EdgeCount() != 6 {
		t.Errorf("got %d vertices, %d edges", dst.VertexCount(), dst.EdgeCount())
	}

	// Migrating twice collides on ids and must not hang the writer.
	if err := Migrate(graph.Classic(), dst); err == nil {
		t.Error("second migration should fail on id conflict")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(graph.Classic(), DOTOptions{Caption: "name"})
	for _, want := range []string{
		"digraph G {",
		`"1" [label="marko\nv[1]"];`,
		`"1" -> "2" [label="knows"];`,
		`"6" -> "3" [label="created"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	detailed := ToDOT(graph.Classic(), DOTOptions{Detailed: true})
	if !strings.Contains(detailed, `age: 29`) || !strings.Contains(detailed, `weight: 0.5`) {
		t.Errorf("detailed DOT should list properties:\n%s", detailed)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(graph.Classic(), DOTOptions{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Error("SVG should carry a normalized viewBox")
	}
	if _, err := RenderSVG(context.Background(), "not dot {"); err == nil {
		t.Error("invalid DOT should fail")
	}
}
