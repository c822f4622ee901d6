package ppbfs

import (
	"fmt"

	"github.com/openfga/ppbfs/pkg/automaton"
)

// NodeState is the record of one (data node, automaton state) pair. At most one exists per pair
// for the lifetime of a search.
type NodeState struct {
	id     int
	nodeID int64
	state  *automaton.State

	// sourceSignposts are the incoming signposts in discovery order.
	sourceSignposts []*Signpost
	// targetSignposts are the outgoing signposts that have been traced.
	targetSignposts []*Signpost
	// juxtapositions are the outgoing juxtaposition signposts. Source lengths flow through them
	// as soon as they are set.
	juxtapositions []*Signpost

	lengths         Lengths
	targetDistances bitset

	// target is shared by every node state of a target data node; nil when not a target.
	target *TargetCounter

	discoveredForward  bool
	discoveredBackward bool
	forwardDepth       int
	backwardDepth      int
	registeredAt       int
}

func (n *NodeState) NodeID() int64 {
	return n.nodeID
}

func (n *NodeState) State() *automaton.State {
	return n.state
}

func (n *NodeState) IsTarget() bool {
	return n.target != nil
}

func (n *NodeState) SourceSignposts() []*Signpost {
	return n.sourceSignposts
}

func (n *NodeState) TargetSignposts() []*Signpost {
	return n.targetSignposts
}

// HasLength reports whether some signpost currently certifies length from the source.
func (n *NodeState) HasLength(length int) bool {
	return n.lengths.Has(Source, length)
}

func (n *NodeState) Lengths() []int {
	return n.lengths.All(Source)
}

func (n *NodeState) addSourceSignpost(sp *Signpost) error {
	if sp.attached {
		return invariantf("addSourceSignpost", "signpost %v already attached to %v", sp, n)
	}
	sp.attached = true
	n.sourceSignposts = append(n.sourceSignposts, sp)
	return nil
}

// certifiedBy reports whether any source signpost still certifies length.
func (n *NodeState) certifiedBy(length int) bool {
	for _, sp := range n.sourceSignposts {
		if sp.lengths.Has(Source, length) {
			return true
		}
	}
	return false
}

func (n *NodeState) String() string {
	return fmt.Sprintf("(%d,%d)", n.nodeID, n.state.ID())
}
