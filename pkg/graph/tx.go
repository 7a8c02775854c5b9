package graph

import "github.com/matzehuels/propgraph/pkg/errors"

// Transaction groups mutations so they can be rolled back together. Every
// mutation made while the transaction is open is recorded in an undo log;
// Commit discards the log and Rollback replays it in reverse.
//
// A graph has a single transaction shared by all callers.
type Transaction struct {
	g    *Graph
	open bool
	undo []func()
}

// Tx returns the graph transaction. It fails with UNSUPPORTED when the
// graph does not declare transactions.
func (g *Graph) Tx() (*Transaction, error) {
	if !g.features.Transactions {
		return nil, errors.New(errors.ErrCodeUnsupported, "the graph does not support transactions")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.tx == nil {
		g.tx = &Transaction{g: g}
	}
	return g.tx, nil
}

// Open starts recording mutations.
func (t *Transaction) Open() error {
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	if err := t.g.checkOpen(); err != nil {
		return err
	}
	if t.open {
		return errors.New(errors.ErrCodeTransactionOpen, "transaction already open")
	}
	t.open = true
	t.undo = nil
	return nil
}

// Commit keeps every mutation made since Open.
func (t *Transaction) Commit() error {
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	if !t.open {
		return errors.New(errors.ErrCodeTransactionClosed, "transaction must be open to commit")
	}
	t.open = false
	t.undo = nil
	return nil
}

// Rollback reverts every mutation made since Open.
func (t *Transaction) Rollback() error {
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	if !t.open {
		return errors.New(errors.ErrCodeTransactionClosed, "transaction must be open to roll back")
	}
	t.g.rollbackLocked()
	return nil
}

// IsOpen reports whether the transaction is recording mutations.
func (t *Transaction) IsOpen() bool {
	t.g.mu.RLock()
	defer t.g.mu.RUnlock()
	return t.open
}

func (g *Graph) logUndo(fn func()) {
	if g.tx != nil && g.tx.open {
		g.tx.undo = append(g.tx.undo, fn)
	}
}

func (g *Graph) rollbackLocked() {
	undo := g.tx.undo
	g.tx.undo = nil
	g.tx.open = false
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}
