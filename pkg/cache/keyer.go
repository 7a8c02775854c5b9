package cache

// Keyer derives cache keys for the cached stages.
type Keyer interface {
	// GraphKey returns the key of a serialized graph with the given content hash.
	GraphKey(graphHash string) string

	// ComputeKey returns the key of a vertex program result over a graph.
	ComputeKey(graphHash string, opts ComputeKeyOpts) string
}

// ComputeKeyOpts holds the options that change a program's output.
type ComputeKeyOpts struct {
	Program    string   `json:"program"`
	Iterations int      `json:"iterations,omitempty"`
	Alpha      float64  `json:"alpha,omitempty"`
	Labels     []string `json:"labels,omitempty"`
}

// DefaultKeyer builds keys of the form "<stage>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey generates a key for a serialized graph.
func (DefaultKeyer) GraphKey(graphHash string) string {
	return "graph:" + graphHash
}

// ComputeKey generates a key for a program result. Worker count is left out
// because results do not depend on it.
func (DefaultKeyer) ComputeKey(graphHash string, opts ComputeKeyOpts) string {
	return hashKey("compute", graphHash, opts)
}
