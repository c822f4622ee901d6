// Package automaton models the finite automaton over relationship types that drives a quantified
// path pattern. A state carries its outgoing transitions (for forward search) and its incoming
// transitions (for backward search).
package automaton

import (
	"fmt"

	"github.com/openfga/ppbfs/pkg/graph"
)

type State struct {
	id    int
	name  string
	final bool

	juxtapositions        []*NodeJuxtaposition
	expansions            []*RelationshipExpansion
	reverseJuxtapositions []*NodeJuxtaposition
	reverseExpansions     []*RelationshipExpansion

	// accepting and reachable are computed by Build.
	accepting bool
	reachable bool

	builder *StateBuilder
}

// ID is dense and stable: states are numbered in creation order starting at zero.
func (s *State) ID() int {
	return s.id
}

func (s *State) Name() string {
	return s.name
}

func (s *State) IsFinal() bool {
	return s.final
}

// CanAccept reports whether a final state can be reached from this state.
func (s *State) CanAccept() bool {
	return s.accepting
}

// Reachable reports whether this state can be reached from the start state.
func (s *State) Reachable() bool {
	return s.reachable
}

// Juxtapositions are the zero-length moves leaving this state.
func (s *State) Juxtapositions() []*NodeJuxtaposition {
	return s.juxtapositions
}

// RelationshipExpansions are the relationship traversals leaving this state.
func (s *State) RelationshipExpansions() []*RelationshipExpansion {
	return s.expansions
}

// ReverseJuxtapositions are the zero-length moves entering this state.
func (s *State) ReverseJuxtapositions() []*NodeJuxtaposition {
	return s.reverseJuxtapositions
}

// ReverseRelationshipExpansions are the relationship traversals entering this state.
func (s *State) ReverseRelationshipExpansions() []*RelationshipExpansion {
	return s.reverseExpansions
}

func (s *State) String() string {
	if s.final {
		return fmt.Sprintf("(%d:%s)*", s.id, s.name)
	}
	return fmt.Sprintf("(%d:%s)", s.id, s.name)
}

// NodeJuxtaposition moves from one state to another without leaving the current data node.
type NodeJuxtaposition struct {
	From, To *State
	Slot     int
	Name     string

	// NodePredicate, when set, must hold on the data node for the move to apply.
	NodePredicate *Predicate
}

// TestNode reports whether the juxtaposition applies at node.
func (j *NodeJuxtaposition) TestNode(node graph.Node) (bool, error) {
	return j.NodePredicate.TestNode(node)
}

// RelationshipExpansion traverses one relationship while moving From -> To.
type RelationshipExpansion struct {
	From, To *State

	// Types restricts the relationship type. Empty matches every type.
	Types     []string
	Direction graph.Direction
	Slot      int
	Name      string

	// RelationshipPredicate, when set, must hold on the traversed relationship.
	RelationshipPredicate *Predicate
	// NodePredicate, when set, must hold on the node reached in state To.
	NodePredicate *Predicate
}

func (e *RelationshipExpansion) TestRelationship(rel graph.Relationship) (bool, error) {
	return e.RelationshipPredicate.TestRelationship(rel)
}

func (e *RelationshipExpansion) TestNode(node graph.Node) (bool, error) {
	return e.NodePredicate.TestNode(node)
}

// HasNodePredicate reports whether the expansion needs the reached node to be read.
func (e *RelationshipExpansion) HasNodePredicate() bool {
	return e.NodePredicate != nil
}

func (e *RelationshipExpansion) String() string {
	label := e.Name
	if label == "" {
		label = fmt.Sprintf("#%d", e.Slot)
	}
	return fmt.Sprintf("%s-[%s%v %s]->%s", e.From, label, e.Types, e.Direction, e.To)
}

// Automaton is an immutable set of states with a designated start state.
type Automaton struct {
	start  *State
	states []*State
}

func (a *Automaton) Start() *State {
	return a.start
}

func (a *Automaton) States() []*State {
	return a.states
}

// State returns the state with the given id, or nil.
func (a *Automaton) State(id int) *State {
	if id < 0 || id >= len(a.states) {
		return nil
	}
	return a.states[id]
}

func (a *Automaton) FinalStates() []*State {
	var finals []*State
	for _, s := range a.states {
		if s.final {
			finals = append(finals, s)
		}
	}
	return finals
}
