package ppbfs

import (
	"context"

	"github.com/openfga/ppbfs/internal/stack"
	"github.com/openfga/ppbfs/pkg/automaton"
	"github.com/openfga/ppbfs/pkg/graph"
	"github.com/openfga/ppbfs/pkg/productgraph"
)

// Expander builds the levels of the product graph through a cursor.
type Expander struct {
	ec     *ExecutionContext
	cursor productgraph.Cursor
}

func NewExpander(ec *ExecutionContext, cursor productgraph.Cursor) *Expander {
	return &Expander{ec: ec, cursor: cursor}
}

// Discover marks the pair discovered in direction at depth and floods the juxtapositions
// reachable from it when it is new in that direction.
func (x *Expander) Discover(ctx context.Context, nodeID int64, state *automaton.State, direction productgraph.Direction, depth int) (*NodeState, error) {
	ns, discovered := x.ec.repo.Discover(nodeID, state, direction, depth)
	if !discovered {
		return ns, nil
	}
	return ns, x.flood(ctx, ns, direction)
}

func (x *Expander) signpost(kind SignpostKind, prev, forward *NodeState, rel graph.Relationship, expansion *automaton.RelationshipExpansion, juxtaposition *automaton.NodeJuxtaposition) (*Signpost, error) {
	sp, created := x.ec.repo.Signpost(kind, prev, forward, rel, expansion, juxtaposition)
	if created {
		if err := forward.addSourceSignpost(sp); err != nil {
			return nil, err
		}
	}
	return sp, nil
}

// flood follows the zero-length juxtapositions reachable from ns in direction. Node states newly
// discovered on the way are flooded in turn, at the same depth. States that cannot lie on a path
// from the start to a final state are skipped.
func (x *Expander) flood(ctx context.Context, ns *NodeState, direction productgraph.Direction) error {
	accept := (*automaton.State).CanAccept
	if direction == productgraph.Backward {
		accept = (*automaton.State).Reachable
	}

	work := stack.Push(nil, ns)
	for !stack.IsEmpty(work) {
		var current *NodeState
		current, work = stack.Pop(work)

		juxtapositions, err := x.cursor.Juxtapositions(ctx, current.nodeID, current.state, direction, accept)
		if err != nil {
			return err
		}

		for _, j := range juxtapositions {
			var (
				other      *NodeState
				discovered bool
			)

			switch direction {
			case productgraph.Forward:
				other, discovered = x.ec.repo.Discover(current.nodeID, j.To, direction, current.forwardDepth)
				sp, err := x.signpost(NodeJuxtaposition, current, other, graph.Relationship{}, nil, j)
				if err != nil {
					return err
				}
				for _, length := range current.Lengths() {
					if err := x.ec.addSignpostLength(sp, length); err != nil {
						return err
					}
				}
			case productgraph.Backward:
				other, discovered = x.ec.repo.Discover(current.nodeID, j.From, direction, current.backwardDepth)
				sp, err := x.signpost(NodeJuxtaposition, other, current, graph.Relationship{}, nil, j)
				if err != nil {
					return err
				}
				for _, length := range other.Lengths() {
					if err := x.ec.addSignpostLength(sp, length); err != nil {
						return err
					}
				}
				if err := x.ec.traceSignpost(sp, current.backwardDepth); err != nil {
					return err
				}
			}

			if discovered {
				work = stack.Push(work, other)
			}
		}
	}
	return nil
}

// Expand builds one level in direction from the committed frontier of that direction. Node states
// of the same data node are expanded by a single cursor call.
func (x *Expander) Expand(ctx context.Context, direction productgraph.Direction) error {
	nodeIDs, groups := x.ec.repo.FrontierByNode(direction)
	for _, nodeID := range nodeIDs {
		group := groups[nodeID]

		byState := make(map[int]*NodeState, len(group))
		states := make([]*automaton.State, 0, len(group))
		for _, ns := range group {
			byState[ns.state.ID()] = ns
			states = append(states, ns.state)
		}

		transitions, err := x.cursor.Expand(ctx, nodeID, states, direction)
		if err != nil {
			return err
		}

		for _, tr := range transitions {
			known, ok := byState[tr.State.ID()]
			if !ok {
				return invariantf("expand", "transition %d from unexpanded state %v at node %d", tr.Relationship.ID, tr.State, nodeID)
			}
			x.ec.relationshipIDs[tr.Relationship.ID] = struct{}{}

			if direction == productgraph.Forward {
				err = x.expandForward(ctx, known, tr)
			} else {
				err = x.expandBackward(ctx, known, tr)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (x *Expander) expandForward(ctx context.Context, prev *NodeState, tr productgraph.Transition) error {
	forward, discovered := x.ec.repo.Discover(tr.Other, tr.OtherState, productgraph.Forward, x.ec.forwardDepth)

	sp, err := x.signpost(RelationshipTraversal, prev, forward, tr.Relationship, tr.Expansion, nil)
	if err != nil {
		return err
	}
	if err := x.ec.addSignpostLength(sp, prev.forwardDepth+sp.DataLength()); err != nil {
		return err
	}

	if !discovered {
		return nil
	}
	return x.flood(ctx, forward, productgraph.Forward)
}

// expandBackward records the move from prev, found from the target side, as a signpost already
// traced at the distance of forward to the target.
func (x *Expander) expandBackward(ctx context.Context, forward *NodeState, tr productgraph.Transition) error {
	prev, discovered := x.ec.repo.Discover(tr.Other, tr.OtherState, productgraph.Backward, x.ec.backwardDepth)

	sp, err := x.signpost(RelationshipTraversal, prev, forward, tr.Relationship, tr.Expansion, nil)
	if err != nil {
		return err
	}
	if err := x.ec.traceSignpost(sp, forward.backwardDepth); err != nil {
		return err
	}

	if !discovered {
		return nil
	}
	return x.flood(ctx, prev, productgraph.Backward)
}
