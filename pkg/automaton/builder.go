package automaton

import (
	"errors"
	"fmt"

	"github.com/openfga/ppbfs/pkg/graph"
)

// StateBuilder assembles an Automaton. It is not safe for concurrent use.
type StateBuilder struct {
	states []*State
	start  *State
	errs   []error
}

func NewStateBuilder() *StateBuilder {
	return &StateBuilder{}
}

// NewState adds a state. Ids are assigned in creation order.
func (b *StateBuilder) NewState(name string, final bool) *State {
	s := &State{
		id:      len(b.states),
		name:    name,
		final:   final,
		builder: b,
	}
	b.states = append(b.states, s)
	return s
}

func (b *StateBuilder) SetStart(s *State) {
	if !b.owns(s) {
		b.errs = append(b.errs, fmt.Errorf("%w: start %v", ErrForeignState, s))
		return
	}
	b.start = s
}

// NoSlot is the slot of an unbound transition.
const NoSlot = -1

type transitionConfig struct {
	types         []string
	slot          int
	name          string
	relPredicate  string
	nodePredicate string
}

type TransitionOption func(*transitionConfig)

// WithTypes restricts an expansion to relationships of the given types.
func WithTypes(types ...string) TransitionOption {
	return func(c *transitionConfig) {
		c.types = append(c.types, types...)
	}
}

func WithSlot(slot int) TransitionOption {
	return func(c *transitionConfig) {
		c.slot = slot
	}
}

func WithName(name string) TransitionOption {
	return func(c *transitionConfig) {
		c.name = name
	}
}

// WithRelationshipPredicate attaches a CEL expression over `rel`.
func WithRelationshipPredicate(expression string) TransitionOption {
	return func(c *transitionConfig) {
		c.relPredicate = expression
	}
}

// WithNodePredicate attaches a CEL expression over `node`.
func WithNodePredicate(expression string) TransitionOption {
	return func(c *transitionConfig) {
		c.nodePredicate = expression
	}
}

func (b *StateBuilder) owns(states ...*State) bool {
	for _, s := range states {
		if s == nil || s.builder != b {
			return false
		}
	}
	return true
}

func (b *StateBuilder) configure(opts []TransitionOption) (*transitionConfig, *Predicate, *Predicate) {
	cfg := &transitionConfig{slot: NoSlot}
	for _, opt := range opts {
		opt(cfg)
	}

	var relPredicate, nodePredicate *Predicate
	var err error
	if cfg.relPredicate != "" {
		if relPredicate, err = CompileRelationshipPredicate(cfg.relPredicate); err != nil {
			b.errs = append(b.errs, err)
		}
	}
	if cfg.nodePredicate != "" {
		if nodePredicate, err = CompileNodePredicate(cfg.nodePredicate); err != nil {
			b.errs = append(b.errs, err)
		}
	}
	return cfg, relPredicate, nodePredicate
}

// AddJuxtaposition adds a zero-length move from -> to on the same data node.
func (b *StateBuilder) AddJuxtaposition(from, to *State, opts ...TransitionOption) *NodeJuxtaposition {
	if !b.owns(from, to) {
		b.errs = append(b.errs, fmt.Errorf("%w: juxtaposition %v -> %v", ErrForeignState, from, to))
		return nil
	}

	cfg, relPredicate, nodePredicate := b.configure(opts)
	if relPredicate != nil || len(cfg.types) > 0 {
		b.errs = append(b.errs, fmt.Errorf("juxtaposition %v -> %v cannot filter relationships", from, to))
	}

	j := &NodeJuxtaposition{
		From:          from,
		To:            to,
		Slot:          cfg.slot,
		Name:          cfg.name,
		NodePredicate: nodePredicate,
	}
	from.juxtapositions = append(from.juxtapositions, j)
	to.reverseJuxtapositions = append(to.reverseJuxtapositions, j)
	return j
}

// AddRelationshipExpansion adds a relationship traversal from -> to.
func (b *StateBuilder) AddRelationshipExpansion(from, to *State, direction graph.Direction, opts ...TransitionOption) *RelationshipExpansion {
	if !b.owns(from, to) {
		b.errs = append(b.errs, fmt.Errorf("%w: expansion %v -> %v", ErrForeignState, from, to))
		return nil
	}

	cfg, relPredicate, nodePredicate := b.configure(opts)

	e := &RelationshipExpansion{
		From:                  from,
		To:                    to,
		Types:                 cfg.types,
		Direction:             direction,
		Slot:                  cfg.slot,
		Name:                  cfg.name,
		RelationshipPredicate: relPredicate,
		NodePredicate:         nodePredicate,
	}
	from.expansions = append(from.expansions, e)
	to.reverseExpansions = append(to.reverseExpansions, e)
	return e
}

// Build validates the states and returns the automaton. Any error recorded while adding states
// or transitions is reported here.
func (b *StateBuilder) Build() (*Automaton, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if b.start == nil {
		return nil, ErrNoStartState
	}

	hasFinal := false
	for _, s := range b.states {
		if s.final {
			hasFinal = true
			break
		}
	}
	if !hasFinal {
		return nil, ErrNoFinalState
	}

	for _, s := range b.states {
		s.accepting, s.reachable = false, false
	}
	walk(b.start, func(s *State) []*State {
		next := make([]*State, 0, len(s.juxtapositions)+len(s.expansions))
		for _, j := range s.juxtapositions {
			next = append(next, j.To)
		}
		for _, e := range s.expansions {
			next = append(next, e.To)
		}
		return next
	}, func(s *State) *bool { return &s.reachable })
	for _, s := range b.states {
		if !s.final {
			continue
		}
		walk(s, func(s *State) []*State {
			next := make([]*State, 0, len(s.reverseJuxtapositions)+len(s.reverseExpansions))
			for _, j := range s.reverseJuxtapositions {
				next = append(next, j.From)
			}
			for _, e := range s.reverseExpansions {
				next = append(next, e.From)
			}
			return next
		}, func(s *State) *bool { return &s.accepting })
	}

	return &Automaton{start: b.start, states: b.states}, nil
}

// walk sets the flag of every state reachable from s through next that does not have it yet.
func walk(s *State, next func(*State) []*State, flag func(*State) *bool) {
	work := []*State{s}
	for len(work) > 0 {
		current := work[len(work)-1]
		work = work[:len(work)-1]

		seen := flag(current)
		if *seen {
			continue
		}
		*seen = true
		work = append(work, next(current)...)
	}
}

// Quantified builds the automaton of `(-[:types]-){min,max}`. A negative max is unbounded.
func Quantified(types []string, direction graph.Direction, minHops, maxHops int, opts ...TransitionOption) (*Automaton, error) {
	if minHops < 0 || (maxHops >= 0 && maxHops < minHops) {
		return nil, fmt.Errorf("%w: {%d,%d}", ErrInvalidBounds, minHops, maxHops)
	}

	b := NewStateBuilder()
	last := minHops
	if maxHops >= 0 {
		last = maxHops
	}

	states := make([]*State, last+1)
	for i := range states {
		states[i] = b.NewState(fmt.Sprintf("q%d", i), i >= minHops)
	}
	b.SetStart(states[0])

	expansionOpts := append([]TransitionOption{WithTypes(types...)}, opts...)
	for i := 0; i < last; i++ {
		b.AddRelationshipExpansion(states[i], states[i+1], direction, append(expansionOpts, WithSlot(i))...)
	}
	if maxHops < 0 {
		b.AddRelationshipExpansion(states[last], states[last], direction, append(expansionOpts, WithSlot(last))...)
	}

	return b.Build()
}
