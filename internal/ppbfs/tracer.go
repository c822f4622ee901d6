package ppbfs

import (
	"github.com/openfga/ppbfs/pkg/automaton"
)

// Tracer enumerates the trails reaching one target at one length, walking source signposts from
// the target toward the source. Lengths that no trail confirms are pruned on the way back.
type Tracer struct {
	ec    *ExecutionContext
	stack *SignpostStack

	target *NodeState
	length int
	ready  bool
	// pendingZeroLength is set when the target is the source itself at length 0.
	pendingZeroLength bool
}

func NewTracer(ec *ExecutionContext) *Tracer {
	return &Tracer{ec: ec, stack: NewSignpostStack()}
}

// Initialize resets the tracer to enumerate the trails of length reaching target.
func (t *Tracer) Initialize(target *NodeState, length int) {
	t.target = target
	t.length = length
	t.ready = true
	t.pendingZeroLength = target == t.ec.source && length == 0
	t.stack.Reset(target, length)
}

// Active reports whether the tracer may have trails left.
func (t *Tracer) Active() bool {
	return t.ready
}

func (t *Tracer) Target() *NodeState {
	return t.target
}

// Next returns the next trail. The boolean is false once the trails are exhausted.
func (t *Tracer) Next() (TracedPath, bool, error) {
	if !t.ready {
		return TracedPath{}, false, nil
	}

	if t.pendingZeroLength {
		t.pendingZeroLength = false
		t.ready = false
		return TracedPath{
			Entities:     []PathEntity{{Kind: NodeEntity, ID: t.target.nodeID, Slot: automaton.NoSlot}},
			SourceNodeID: t.target.nodeID,
			TargetNodeID: t.target.nodeID,
		}, true, nil
	}

	for !t.stack.IsEmpty() {
		top := t.stack.top()
		sp, err := t.nextCandidate(top)
		if err != nil {
			return TracedPath{}, false, err
		}
		if sp == nil {
			t.backtrack()
			continue
		}

		prevLength := top.length - sp.DataLength()
		if idx := t.stack.conflict(sp, prevLength); idx >= 0 {
			t.stack.taint(idx)
			continue
		}

		t.stack.Push(sp, prevLength)

		if sp.prev == t.ec.source && prevLength == 0 {
			t.stack.confirm()
			path := t.stack.Path()
			t.stack.Pop()
			return path, true, nil
		}
	}

	t.ready = false
	return TracedPath{}, false, nil
}

// nextCandidate advances the frame to its next source signpost that certifies the frame length
// and whose prev node is reachable at the remaining length. Every signpost passed over is traced
// at the distance of the frame to the target, so that longer trails through it are propagated
// even when it certifies no length yet.
func (t *Tracer) nextCandidate(f *frame) (*Signpost, error) {
	sources := f.node.sourceSignposts
	for f.next < len(sources) {
		sp := sources[f.next]
		f.next++

		if err := t.ec.traceSignpost(sp, t.length-f.length); err != nil {
			return nil, err
		}

		prevLength := f.length - sp.DataLength()
		if prevLength < 0 || !sp.lengths.Has(Source, f.length) || !sp.prev.HasLength(prevLength) {
			continue
		}
		return sp, nil
	}
	return nil, nil
}

// backtrack pops the exhausted top frame. A signpost that never led to an emitted trail, and was
// not cut short by a repetition, is pruned: it no longer certifies the length of its forward node
// and never will again.
func (t *Tracer) backtrack() {
	f := t.stack.Pop()
	sp := f.signpost
	if sp == nil || f.confirmed || f.tainted {
		return
	}

	length := t.stack.top().length
	if sp.lengths.Has(ConfirmedSource, length) {
		return
	}

	sp.lengths.Clear(Source, length)
	sp.lengths.Set(Pruned, length)
	forward := sp.forward
	if forward.certifiedBy(length) || (forward == t.ec.source && length == 0) {
		return
	}
	forward.lengths.Clear(Source, length)
}
