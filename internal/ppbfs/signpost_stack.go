package ppbfs

import (
	"github.com/openfga/ppbfs/pkg/automaton"
)

// frame is one node state of the trail being traced, at the length from the source it must be
// reached at.
type frame struct {
	node   *NodeState
	length int
	// signpost leads from node to the node of the frame below; nil for the target.
	signpost *Signpost
	// next is the index of the next source signpost of node to try.
	next int
	// tainted frames sit above a trail that was rejected for repeating a relationship or a node
	// state. Their lengths may still be viable from another trail and must not be pruned.
	tainted bool
	// confirmed frames have been part of an emitted trail.
	confirmed bool
}

type positionKey struct {
	node   int
	length int
}

// SignpostStack is the explicit depth-first stack of the tracer, from the target (bottom) toward
// the source (top). It indexes the relationships and (node state, length) positions it holds so a
// repetition is found in constant time.
type SignpostStack struct {
	frames        []frame
	relationships map[int64]int
	positions     map[positionKey]int
}

func NewSignpostStack() *SignpostStack {
	return &SignpostStack{
		relationships: make(map[int64]int),
		positions:     make(map[positionKey]int),
	}
}

// Reset empties the stack and roots it at target.
func (s *SignpostStack) Reset(target *NodeState, length int) {
	s.frames = s.frames[:0]
	clear(s.relationships)
	clear(s.positions)
	s.frames = append(s.frames, frame{node: target, length: length})
	s.positions[positionKey{node: target.id, length: length}] = 0
}

func (s *SignpostStack) Size() int {
	return len(s.frames)
}

func (s *SignpostStack) IsEmpty() bool {
	return len(s.frames) == 0
}

func (s *SignpostStack) top() *frame {
	return &s.frames[len(s.frames)-1]
}

// Push activates sp from the top frame, reaching its prev node at length.
func (s *SignpostStack) Push(sp *Signpost, length int) {
	idx := len(s.frames)
	s.frames = append(s.frames, frame{node: sp.prev, length: length, signpost: sp})
	if sp.kind == RelationshipTraversal {
		s.relationships[sp.relationship.ID] = idx
	}
	s.positions[positionKey{node: sp.prev.id, length: length}] = idx
}

// Pop removes the top frame and returns it.
func (s *SignpostStack) Pop() frame {
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]

	if f.signpost != nil && f.signpost.kind == RelationshipTraversal {
		delete(s.relationships, f.signpost.relationship.ID)
	}
	delete(s.positions, positionKey{node: f.node.id, length: f.length})
	return f
}

// conflict returns the index of the frame that activating sp at length would repeat, or -1.
func (s *SignpostStack) conflict(sp *Signpost, length int) int {
	if sp.kind == RelationshipTraversal {
		if idx, ok := s.relationships[sp.relationship.ID]; ok {
			return idx
		}
	}
	if idx, ok := s.positions[positionKey{node: sp.prev.id, length: length}]; ok {
		return idx
	}
	return -1
}

// taint marks every frame above index from.
func (s *SignpostStack) taint(from int) {
	for i := from + 1; i < len(s.frames); i++ {
		s.frames[i].tainted = true
	}
}

// confirm marks every frame as part of an emitted trail and records the confirmed lengths.
func (s *SignpostStack) confirm() {
	for i := range s.frames {
		f := &s.frames[i]
		f.confirmed = true
		f.node.lengths.Set(ConfirmedSource, f.length)
		if f.signpost != nil {
			f.signpost.lengths.Set(ConfirmedSource, s.frames[i-1].length)
		}
	}
}

// Path returns the trail held by the stack, from the source to the target.
func (s *SignpostStack) Path() TracedPath {
	last := len(s.frames) - 1
	source := s.frames[last].node
	target := s.frames[0].node

	path := TracedPath{
		Entities:     []PathEntity{{Kind: NodeEntity, ID: source.nodeID, Slot: automaton.NoSlot}},
		Length:       s.frames[0].length,
		TargetNodeID: target.nodeID,
		SourceNodeID: source.nodeID,
	}
	for i := last; i > 0; i-- {
		sp := s.frames[i].signpost
		switch sp.kind {
		case NodeJuxtaposition:
			path.Entities = append(path.Entities, PathEntity{
				Kind: NodeEntity,
				ID:   sp.forward.nodeID,
				Slot: sp.juxtaposition.Slot,
				Name: sp.juxtaposition.Name,
			})
		case RelationshipTraversal:
			path.Entities = append(path.Entities,
				PathEntity{
					Kind: RelationshipEntity,
					ID:   sp.relationship.ID,
					Slot: sp.expansion.Slot,
					Name: sp.expansion.Name,
				},
				PathEntity{Kind: NodeEntity, ID: sp.forward.nodeID, Slot: automaton.NoSlot},
			)
		}
	}
	return path
}
