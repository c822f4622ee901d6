// Package productgraph walks the product of a data graph and an automaton: positions are
// (data node, automaton state) pairs and moves are either juxtapositions (state change on the
// same node) or relationship traversals annotated with an automaton transition.
package productgraph

//go:generate mockgen -source cursor.go -destination ../../internal/mocks/mock_cursor.go -package mocks Cursor

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/openfga/ppbfs/pkg/automaton"
	"github.com/openfga/ppbfs/pkg/graph"
)

// Direction is the direction of the search, not of relationships.
type Direction int

const (
	// Forward follows transitions leaving a state, from the source towards targets.
	Forward Direction = iota
	// Backward follows transitions entering a state, from targets towards the source.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Transition is one relationship move out of a (node, state) position.
type Transition struct {
	// Other is the data node at the far end of the relationship.
	Other        int64
	Relationship graph.Relationship
	// State is the automaton state at the expanded node, OtherState the one at Other.
	State      *automaton.State
	OtherState *automaton.State
	Expansion  *automaton.RelationshipExpansion
}

type Cursor interface {
	// Expand returns every relationship move available from nodeID in any of states, in
	// (relationship id, state id, other state id) order.
	Expand(ctx context.Context, nodeID int64, states []*automaton.State, direction Direction) ([]Transition, error)

	// Juxtapositions returns the juxtapositions available from state at nodeID whose other
	// state is accepted.
	Juxtapositions(ctx context.Context, nodeID int64, state *automaton.State, direction Direction, accept func(*automaton.State) bool) ([]*automaton.NodeJuxtaposition, error)

	SetTraceHook(hook Hook)
}

type cursor struct {
	reader graph.Reader
	hook   Hook
	nodes  map[int64]graph.Node
}

var _ Cursor = (*cursor)(nil)

// NewCursor returns a cursor over reader. Node reads are memoized for the cursor's lifetime, so a
// cursor belongs to a single query execution.
func NewCursor(reader graph.Reader) Cursor {
	return &cursor{
		reader: reader,
		hook:   NoopHook{},
		nodes:  make(map[int64]graph.Node),
	}
}

func (c *cursor) SetTraceHook(hook Hook) {
	if hook == nil {
		hook = NoopHook{}
	}
	c.hook = hook
}

func (c *cursor) node(ctx context.Context, id int64) (graph.Node, error) {
	if n, ok := c.nodes[id]; ok {
		return n, nil
	}

	c.hook.OnNodeRead(id)
	n, err := c.reader.Node(ctx, id)
	if err != nil {
		return graph.Node{}, err
	}
	c.nodes[id] = n
	return n, nil
}

type readKey struct {
	direction graph.Direction
	types     string
}

func (c *cursor) Expand(ctx context.Context, nodeID int64, states []*automaton.State, direction Direction) ([]Transition, error) {
	reads := make(map[readKey][]graph.Relationship)

	var transitions []Transition
	for _, state := range states {
		expansions := state.RelationshipExpansions()
		if direction == Backward {
			expansions = state.ReverseRelationshipExpansions()
		}

		for _, e := range expansions {
			relDirection := e.Direction
			otherState := e.To
			if direction == Backward {
				relDirection = e.Direction.Reverse()
				otherState = e.From
			}

			rels, err := c.read(ctx, reads, nodeID, relDirection, e.Types)
			if err != nil {
				return nil, err
			}

			for _, rel := range rels {
				ok, err := e.TestRelationship(rel)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}

				other := rel.Other(nodeID)
				if e.HasNodePredicate() {
					reached := other
					if direction == Backward {
						reached = nodeID
					}
					n, err := c.node(ctx, reached)
					if err != nil {
						return nil, err
					}
					if ok, err = e.TestNode(n); err != nil {
						return nil, err
					} else if !ok {
						continue
					}
				}

				transitions = append(transitions, Transition{
					Other:        other,
					Relationship: rel,
					State:        state,
					OtherState:   otherState,
					Expansion:    e,
				})
			}
		}
	}

	slices.SortStableFunc(transitions, func(a, b Transition) int {
		return cmp.Or(
			cmp.Compare(a.Relationship.ID, b.Relationship.ID),
			cmp.Compare(a.State.ID(), b.State.ID()),
			cmp.Compare(a.OtherState.ID(), b.OtherState.ID()),
		)
	})

	return transitions, nil
}

func (c *cursor) read(ctx context.Context, reads map[readKey][]graph.Relationship, nodeID int64, direction graph.Direction, types []string) ([]graph.Relationship, error) {
	sorted := slices.Clone(types)
	slices.Sort(sorted)
	key := readKey{direction: direction, types: strings.Join(sorted, "|")}

	if rels, ok := reads[key]; ok {
		return rels, nil
	}

	c.hook.OnRelationshipRead(nodeID, direction, types)
	iter, err := c.reader.Relationships(ctx, nodeID, direction, types)
	if err != nil {
		return nil, err
	}

	rels, err := graph.ToArray(ctx, iter)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reads[key] = rels
	return rels, nil
}

func (c *cursor) Juxtapositions(ctx context.Context, nodeID int64, state *automaton.State, direction Direction, accept func(*automaton.State) bool) ([]*automaton.NodeJuxtaposition, error) {
	candidates := state.Juxtapositions()
	if direction == Backward {
		candidates = state.ReverseJuxtapositions()
	}

	var res []*automaton.NodeJuxtaposition
	for _, j := range candidates {
		other := j.To
		if direction == Backward {
			other = j.From
		}
		if accept != nil && !accept(other) {
			continue
		}

		if j.NodePredicate != nil {
			n, err := c.node(ctx, nodeID)
			if err != nil {
				return nil, err
			}
			ok, err := j.TestNode(n)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		res = append(res, j)
	}

	return res, nil
}
