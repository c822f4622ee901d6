// Package graph defines the data-graph storage contract consumed by the product-graph cursor.
package graph

//go:generate mockgen -source graph.go -destination ../../internal/mocks/mock_graph.go -package mocks Reader

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a node does not exist in the store.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRelationship is returned when writing a relationship whose endpoints are unknown.
	ErrInvalidRelationship = errors.New("invalid relationship")
)

// Direction is the orientation of a relationship relative to the node it is read from.
type Direction int

const (
	DirectionOutgoing Direction = iota
	DirectionIncoming
	DirectionBoth
)

// Reverse returns the direction seen from the other endpoint.
func (d Direction) Reverse() Direction {
	switch d {
	case DirectionOutgoing:
		return DirectionIncoming
	case DirectionIncoming:
		return DirectionOutgoing
	default:
		return DirectionBoth
	}
}

func (d Direction) String() string {
	switch d {
	case DirectionOutgoing:
		return "outgoing"
	case DirectionIncoming:
		return "incoming"
	case DirectionBoth:
		return "both"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection parses the textual form produced by [Direction.String].
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "outgoing", "out", "":
		return DirectionOutgoing, nil
	case "incoming", "in":
		return DirectionIncoming, nil
	case "both", "any":
		return DirectionBoth, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

type Node struct {
	ID         int64          `json:"id"`
	Labels     []string       `json:"labels,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// HasLabel reports whether the node carries the given label.
func (n Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

type Relationship struct {
	ID         int64          `json:"id"`
	Start      int64          `json:"start"`
	End        int64          `json:"end"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Other returns the endpoint opposite to nodeID. For a self-loop it returns nodeID.
func (r Relationship) Other(nodeID int64) int64 {
	if r.Start == nodeID {
		return r.End
	}
	return r.Start
}

// Matches reports whether the relationship touches nodeID in the given direction.
func (r Relationship) Matches(nodeID int64, direction Direction) bool {
	switch direction {
	case DirectionOutgoing:
		return r.Start == nodeID
	case DirectionIncoming:
		return r.End == nodeID
	default:
		return r.Start == nodeID || r.End == nodeID
	}
}

// Reader is the read side of a graph store.
//
// Relationships returns every relationship touching nodeID in the given direction, restricted to
// the given types when types is non-empty, in ascending relationship id order. A self-loop is
// reported once even when direction is DirectionBoth.
type Reader interface {
	Node(ctx context.Context, id int64) (Node, error)
	Relationships(ctx context.Context, nodeID int64, direction Direction, types []string) (Iterator[Relationship], error)
	Close()
}

// Writer is the write side of a graph store.
type Writer interface {
	WriteNodes(ctx context.Context, nodes []Node) error
	WriteRelationships(ctx context.Context, relationships []Relationship) error
}

// Store is a graph store that can be both read and written.
type Store interface {
	Reader
	Writer
}

// TypeFilter returns a predicate that accepts relationships of any of the given types.
// An empty list accepts every type.
func TypeFilter(types []string) func(Relationship) bool {
	if len(types) == 0 {
		return func(Relationship) bool { return true }
	}
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return func(r Relationship) bool {
		_, ok := set[r.Type]
		return ok
	}
}
