// Package programs provides ready-made vertex programs.
//
// Programs can be constructed directly or looked up by name:
//
//	p, err := programs.New("pageRank", programs.Params{Iterations: 20})
package programs

import (
	"slices"

	"github.com/matzehuels/propgraph/pkg/computer"
	"github.com/matzehuels/propgraph/pkg/errors"
)

// Program names accepted by [New].
const (
	NamePageRank            = "pageRank"
	NameConnectedComponents = "connectedComponents"
	NameDegree              = "degree"
)

// Params tunes a program built by [New]. Zero fields take the program
// defaults.
type Params struct {
	Iterations  int
	Alpha       float64
	VertexCount int
	Labels      []string
}

// Names returns the names accepted by [New], sorted.
func Names() []string {
	names := []string{NamePageRank, NameConnectedComponents, NameDegree}
	slices.Sort(names)
	return names
}

// OutputKeys returns the compute keys a program writes and callers usually
// read back.
func OutputKeys(name string) []string {
	switch name {
	case NamePageRank:
		return []string{KeyPageRank}
	case NameConnectedComponents:
		return []string{KeyComponent}
	case NameDegree:
		return []string{KeyDegree, KeyInDegree, KeyOutDegree}
	}
	return nil
}

// New builds the program registered under name.
func New(name string, params Params) (computer.VertexProgram, error) {
	switch name {
	case NamePageRank:
		p := NewPageRank()
		if params.Iterations > 0 {
			p.Iterations = params.Iterations
		}
		if params.Alpha > 0 {
			p.Alpha = params.Alpha
		}
		p.VertexCount = params.VertexCount
		p.Labels = params.Labels
		return p, nil
	case NameConnectedComponents:
		return NewConnectedComponents(), nil
	case NameDegree:
		return &Degree{Labels: params.Labels}, nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "unknown vertex program: %q (must be one of: %v)", name, Names())
}
