package pipeline

import "fmt"

// LoopPipe routes holders back into the traversal. For each start, while
// returns true when the holder should make another pass: a sibling with one
// more loop and its future set to the target alias is injected into the
// reentry pipe, the step that follows the aliased one. Holders that stop
// looping are emitted. With emit set, looping holders for which emit
// returns true are emitted as well.
type LoopPipe struct {
	base
	Target string
	while  LoopFunc
	emit   LoopFunc

	reentry Pipe
}

func NewLoopPipe(alias string, while, emit LoopFunc) *LoopPipe {
	p := &LoopPipe{Target: alias, while: while, emit: emit}
	p.name, p.args = "LoopPipe", []any{alias}
	p.process = p.processNextStart
	return p
}

// SetReentry sets the pipe that receives looped holders.
func (p *LoopPipe) SetReentry(reentry Pipe) { p.reentry = reentry }

func (p *LoopPipe) processNextStart() (*Holder, error) {
	for {
		h, err := p.starts.Next()
		if err != nil {
			return nil, err
		}
		if !p.while(h) {
			return p.settle(h), nil
		}
		if p.reentry == nil {
			return nil, fmt.Errorf("%w: loop target %q has no following step", ErrUnknownAlias, p.Target)
		}
		again := h.MakeSibling()
		again.IncrLoops()
		again.SetFuture(p.Target)
		p.reentry.AddStart(again)
		if p.emit != nil && p.emit(h) {
			return p.settle(h), nil
		}
	}
}

func (p *LoopPipe) settle(h *Holder) *Holder {
	out := h.MakeSibling()
	out.SetFuture(NoFuture)
	return p.pass(out)
}
