package io

import (
	"fmt"
	"io"

	"github.com/matzehuels/propgraph/pkg/graph"
)

// Migrate copies every element of from into to. The writer and the reader
// run concurrently and are connected by an in-memory pipe, so the graph is
// never held twice in serialized form.
func Migrate(from, to *graph.Graph) error {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(WriteJSON(from, pw))
	}()

	err := ReadJSON(pr, to)
	// Unblock the writer if the reader stopped early.
	pr.CloseWithError(err)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
