package graph

import (
	"strconv"
	"strings"

	"github.com/matzehuels/propgraph/pkg/errors"
)

// Configuration keys understood by [Open].
const (
	ConfigGraph            = "graph"                   // implementation selector, must be "tinker"
	ConfigIDManager        = "graph.id-manager"        // "counter" (default) or "uuid"
	ConfigUserIDs          = "graph.user-ids"          // accept user-supplied ids
	ConfigTransactions     = "graph.transactions"      // expose Graph.Tx
	ConfigComputer         = "graph.computer"          // allow vertex programs
	ConfigVertexIndex      = "graph.index.vertex"      // vertex property keys to index
	ConfigEdgeIndex        = "graph.index.edge"        // edge property keys to index
	ConfigUnsupportedTypes = "graph.unsupported-types" // value kinds to refuse
)

// Implementation names accepted under [ConfigGraph].
const ImplTinker = "tinker"

// ID manager names accepted under [ConfigIDManager].
const (
	IDManagerCounter = "counter"
	IDManagerUUID    = "uuid"
)

// Config is a flat configuration map. Values may be native Go values or
// strings, so a map decoded from TOML, flags or the environment works alike.
type Config map[string]any

// Open creates a graph from cfg. The [ConfigGraph] key selects the
// implementation; every other key is optional and defaults to the
// behavior of [New].
func Open(cfg Config) (*Graph, error) {
	impl, ok := cfg[ConfigGraph]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "configuration must contain a value for %q", ConfigGraph)
	}
	name, _ := impl.(string)
	if name != ImplTinker {
		return nil, errors.New(errors.ErrCodeUnsupported, "graph implementation %v is not supported", impl)
	}

	features := DefaultFeatures()
	var err error
	if features.Computer, err = cfg.Bool(ConfigComputer, true); err != nil {
		return nil, err
	}
	if features.Transactions, err = cfg.Bool(ConfigTransactions, true); err != nil {
		return nil, err
	}
	userIDs, err := cfg.Bool(ConfigUserIDs, true)
	if err != nil {
		return nil, err
	}
	features.Vertex.UserSuppliedIDs = userIDs
	features.Edge.UserSuppliedIDs = userIDs

	kinds, err := cfg.Strings(ConfigUnsupportedTypes)
	if err != nil {
		return nil, err
	}
	for _, name := range kinds {
		k, ok := ParseKind(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown value type %q in %s", name, ConfigUnsupportedTypes)
		}
		features.UnsupportedValues = append(features.UnsupportedValues, k)
	}

	var ids IDManager
	switch manager, _ := cfg[ConfigIDManager].(string); manager {
	case "", IDManagerCounter:
		ids = &CounterIDs{}
	case IDManagerUUID:
		ids = UUIDIDs{}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown id manager %q", manager)
	}

	g := newGraph(features, ids)
	for kind, key := range map[ElementKind]string{VertexKind: ConfigVertexIndex, EdgeKind: ConfigEdgeIndex} {
		keys, err := cfg.Strings(key)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if err := g.CreateIndex(kind, k); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// Bool reads a boolean, accepting bool values and strconv.ParseBool strings.
func (c Config) Bool(key string, def bool) (bool, error) {
	raw, ok := c[key]
	if !ok {
		return def, nil
	}
	switch t := raw.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid boolean for %s", key)
		}
		return b, nil
	}
	return false, errors.New(errors.ErrCodeInvalidInput, "invalid boolean for %s: %v", key, raw)
}

// Strings reads a list of strings, accepting []string, []any of strings or
// a comma separated string.
func (c Config) Strings(key string) ([]string, error) {
	raw, ok := c[key]
	if !ok {
		return nil, nil
	}
	switch t := raw.(type) {
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "invalid list entry for %s: %v", key, item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "invalid list for %s: %v", key, raw)
}
