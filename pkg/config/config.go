// Package config loads propgraph settings from TOML files.
//
// A file has one table per concern:
//
//	[graph]
//	implementation = "tinker"
//	id-manager = "uuid"
//	user-ids = true
//	transactions = true
//	computer = true
//	unsupported-types = ["map"]
//
//	[graph.index]
//	vertex = ["name"]
//	edge = ["weight"]
//
//	[cache]
//	dir = "/tmp/propgraph"
//	redis = "localhost:6379"
//	ttl = "24h"
//
//	[compute]
//	workers = 4
//	max-supersteps = 500
//
// Every key is optional. [File.GraphConfig] flattens the graph table into
// the map accepted by graph.Open.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/propgraph/pkg/graph"
)

// File is the decoded form of a configuration file.
type File struct {
	Graph   GraphSection   `toml:"graph"`
	Cache   CacheSection   `toml:"cache"`
	Compute ComputeSection `toml:"compute"`
}

type GraphSection struct {
	Implementation   string       `toml:"implementation"`
	IDManager        string       `toml:"id-manager"`
	UserIDs          *bool        `toml:"user-ids"`
	Transactions     *bool        `toml:"transactions"`
	Computer         *bool        `toml:"computer"`
	UnsupportedTypes []string     `toml:"unsupported-types"`
	Index            IndexSection `toml:"index"`
}

type IndexSection struct {
	Vertex []string `toml:"vertex"`
	Edge   []string `toml:"edge"`
}

type CacheSection struct {
	Dir   string   `toml:"dir"`
	Redis string   `toml:"redis"`
	TTL   Duration `toml:"ttl"`
}

type ComputeSection struct {
	Workers       int `toml:"workers"`
	MaxSupersteps int `toml:"max-supersteps"`
}

// Duration decodes TOML strings such as "90s" or "24h".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Load reads and decodes the file at path. Unknown keys are rejected so
// that typos do not pass silently.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a configuration document.
func Parse(data []byte) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return &f, nil
}

// GraphConfig returns the graph table as a graph.Config. The
// implementation defaults to the in-memory graph.
func (f *File) GraphConfig() graph.Config {
	g := f.Graph
	cfg := graph.Config{graph.ConfigGraph: graph.ImplTinker}
	if g.Implementation != "" {
		cfg[graph.ConfigGraph] = g.Implementation
	}
	if g.IDManager != "" {
		cfg[graph.ConfigIDManager] = g.IDManager
	}
	for key, b := range map[string]*bool{
		graph.ConfigUserIDs:      g.UserIDs,
		graph.ConfigTransactions: g.Transactions,
		graph.ConfigComputer:     g.Computer,
	} {
		if b != nil {
			cfg[key] = *b
		}
	}
	for key, list := range map[string][]string{
		graph.ConfigUnsupportedTypes: g.UnsupportedTypes,
		graph.ConfigVertexIndex:      g.Index.Vertex,
		graph.ConfigEdgeIndex:        g.Index.Edge,
	} {
		if len(list) > 0 {
			cfg[key] = list
		}
	}
	return cfg
}

// OpenGraph opens an empty graph configured by f. A nil File opens the
// default in-memory graph.
func (f *File) OpenGraph() (*graph.Graph, error) {
	if f == nil {
		return graph.New(), nil
	}
	return graph.Open(f.GraphConfig())
}
