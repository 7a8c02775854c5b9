package cache

// ScopedKeyer wraps a Keyer with a prefix so that several users or
// environments can share one backend without seeing each other's entries.
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(graphHash string) string {
	return k.prefix + k.inner.GraphKey(graphHash)
}

// ComputeKey generates a prefixed program result key.
func (k *ScopedKeyer) ComputeKey(graphHash string, opts ComputeKeyOpts) string {
	return k.prefix + k.inner.ComputeKey(graphHash, opts)
}
