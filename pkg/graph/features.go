package graph

import "slices"

// Features declares what a graph supports. Operations that need an
// undeclared feature fail with UNSUPPORTED.
type Features struct {
	Computer     bool // vertex programs can be submitted
	Transactions bool // Graph.Tx returns a usable transaction
	Vertex       ElementFeatures
	Edge         ElementFeatures

	// UnsupportedValues lists value kinds the graph refuses to store.
	UnsupportedValues []Kind
}

// ElementFeatures declares per-kind element features.
type ElementFeatures struct {
	UserSuppliedIDs bool
	Properties      bool
}

// DefaultFeatures returns the features of an in-memory graph: everything
// is supported.
func DefaultFeatures() Features {
	return Features{
		Computer:     true,
		Transactions: true,
		Vertex:       ElementFeatures{UserSuppliedIDs: true, Properties: true},
		Edge:         ElementFeatures{UserSuppliedIDs: true, Properties: true},
	}
}

// SupportsValue reports whether v can be stored. List and
// map values also require every nested kind to be supported.
func (f Features) SupportsValue(v Value) bool {
	if slices.Contains(f.UnsupportedValues, v.Kind()) {
		return false
	}
	switch v.Kind() {
	case KindList:
		for _, item := range v.list {
			if !f.SupportsValue(item) {
				return false
			}
		}
	case KindMap:
		for _, item := range v.m {
			if !f.SupportsValue(item) {
				return false
			}
		}
	}
	return true
}

func (f Features) element(kind ElementKind) ElementFeatures {
	if kind == EdgeKind {
		return f.Edge
	}
	return f.Vertex
}
