package ppbfs

import (
	"fmt"

	"github.com/openfga/ppbfs/pkg/automaton"
	"github.com/openfga/ppbfs/pkg/graph"
)

// NoTargetDistance marks a signpost that has never been traced.
const NoTargetDistance = -1

type SignpostKind int

const (
	// NodeJuxtaposition connects two states of the same data node.
	NodeJuxtaposition SignpostKind = iota
	// RelationshipTraversal connects two node states across a relationship.
	RelationshipTraversal
)

func (k SignpostKind) String() string {
	if k == NodeJuxtaposition {
		return "juxtaposition"
	}
	return "relationship"
}

// Signpost is an edge of the product graph oriented from the source side (prev) to the target
// side (forward).
//
// As a source signpost it records, in lengths, every depth of forward it currently certifies. As
// a target signpost it records the distance from forward to a target at which it was traced.
type Signpost struct {
	id      int
	kind    SignpostKind
	prev    *NodeState
	forward *NodeState

	relationship  graph.Relationship
	expansion     *automaton.RelationshipExpansion
	juxtaposition *automaton.NodeJuxtaposition

	lengths           Lengths
	minTargetDistance int
	targetDistances   bitset
	attached          bool
}

func (s *Signpost) Kind() SignpostKind {
	return s.kind
}

func (s *Signpost) Prev() *NodeState {
	return s.prev
}

func (s *Signpost) Forward() *NodeState {
	return s.forward
}

// RelationshipID returns the traversed relationship id, or -1 for a juxtaposition.
func (s *Signpost) RelationshipID() int64 {
	if s.kind == RelationshipTraversal {
		return s.relationship.ID
	}
	return -1
}

// DataLength is the contribution of the signpost to the length of a path in the data graph.
func (s *Signpost) DataLength() int {
	switch s.kind {
	case RelationshipTraversal:
		return 1
	default:
		return 0
	}
}

func (s *Signpost) MinTargetDistance() int {
	return s.minTargetDistance
}

// setMinTargetDistance fixes the distance from forward to the closest target. It can be set once.
func (s *Signpost) setMinTargetDistance(distance int) error {
	if s.minTargetDistance != NoTargetDistance {
		return invariantf("setMinTargetDistance", "signpost %v already traced at distance %d, got %d", s, s.minTargetDistance, distance)
	}
	s.minTargetDistance = distance
	return nil
}

func (s *Signpost) String() string {
	switch s.kind {
	case RelationshipTraversal:
		return fmt.Sprintf("%v-[%d]->%v", s.prev, s.relationship.ID, s.forward)
	default:
		return fmt.Sprintf("%v-->%v", s.prev, s.forward)
	}
}

type signpostKey struct {
	kind           SignpostKind
	prev, forward  int
	relationshipID int64
}

func (s *Signpost) key() signpostKey {
	return signpostKey{
		kind:           s.kind,
		prev:           s.prev.id,
		forward:        s.forward.id,
		relationshipID: s.RelationshipID(),
	}
}
