package computer

import (
	"github.com/matzehuels/propgraph/pkg/errors"
	"github.com/matzehuels/propgraph/pkg/graph"
)

// Messenger passes messages between vertices. Messages sent in superstep n
// are received in superstep n+1 and dropped after that.
type Messenger interface {
	// Send addresses a message to the vertex with the given id.
	Send(vertexID any, msg any) error

	// SendAlong sends to the other endpoint of an incident edge.
	SendAlong(e *graph.Edge, msg any) error

	// Broadcast sends to every adjacent vertex in the direction, once per
	// edge.
	Broadcast(dir graph.Direction, msg any, labels ...string) error

	// Receive returns the messages sent to this vertex in the previous
	// superstep, in the order of their senders.
	Receive() []any
}

type envelope struct {
	target string
	msg    any
}

type messenger struct {
	graph  *graph.Graph
	vertex *graph.Vertex
	inbox  []any
	part   *partition
}

func (m *messenger) Send(vertexID any, msg any) error {
	id, err := graph.NormalizeID(vertexID)
	if err != nil {
		return err
	}
	if _, ok := m.graph.Vertex(id); !ok {
		return errors.New(errors.ErrCodeNotFound, "message target vertex not found: %s", id)
	}
	m.post(id, msg)
	return nil
}

func (m *messenger) SendAlong(e *graph.Edge, msg any) error {
	if e == nil {
		return errors.New(errors.ErrCodeNullOrEmpty, "edge can not be null")
	}
	other, err := e.OtherVertex(m.vertex)
	if err != nil {
		return err
	}
	m.post(other.ID(), msg)
	return nil
}

func (m *messenger) Broadcast(dir graph.Direction, msg any, labels ...string) error {
	for _, v := range m.vertex.Vertices(dir, labels...) {
		m.post(v.ID(), msg)
	}
	return nil
}

func (m *messenger) Receive() []any { return m.inbox }

func (m *messenger) post(target string, msg any) {
	m.part.outbox = append(m.part.outbox, envelope{target: target, msg: msg})
}
