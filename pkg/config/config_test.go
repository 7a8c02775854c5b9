package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/propgraph/pkg/graph"
)

const sample = `
[graph]
id-manager = "uuid"
user-ids = false
unsupported-types = ["map"]

[graph.index]
vertex = ["name"]

[cache]
redis = "localhost:6379"
ttl = "24h"

[compute]
workers = 4
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("TTL = %v", f.Cache.TTL)
	}
	if f.Compute.Workers != 4 {
		t.Errorf("Workers = %d", f.Compute.Workers)
	}

	want := graph.Config{
		graph.ConfigGraph:            graph.ImplTinker,
		graph.ConfigIDManager:        graph.IDManagerUUID,
		graph.ConfigUserIDs:          false,
		graph.ConfigUnsupportedTypes: []string{"map"},
		graph.ConfigVertexIndex:      []string{"name"},
	}
	if got := f.GraphConfig(); !reflect.DeepEqual(got, want) {
		t.Errorf("GraphConfig = %v, want %v", got, want)
	}
}

func TestOpenGraph(t *testing.T) {
	f, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g, err := f.OpenGraph()
	if err != nil {
		t.Fatalf("OpenGraph: %v", err)
	}
	if g.Features().Vertex.UserSuppliedIDs {
		t.Error("user ids should be disabled")
	}
	if _, err := g.AddVertex("id", 1); err == nil {
		t.Error("user supplied id should be rejected")
	}
	v, err := g.AddVertex()
	if err != nil {
		t.Fatalf("AddVertex: %v", err)
	}
	if len(v.ID()) != 36 {
		t.Errorf("expected a uuid id, got %s", v.ID())
	}

	var nilFile *File
	if _, err := nilFile.OpenGraph(); err != nil {
		t.Errorf("nil file: %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"syntax", "[graph", "parse config"},
		{"unknown key", "[graph]\nflavor = 1", "graph.flavor"},
		{"duration", "[cache]\nttl = \"soon\"", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "propgraph.toml")
	if err := os.WriteFile(path, []byte("[compute]\nworkers = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Compute.Workers != 2 {
		t.Errorf("Workers = %d", f.Compute.Workers)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing file should fail")
	}
}
