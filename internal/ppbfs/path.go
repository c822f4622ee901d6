package ppbfs

import (
	"fmt"
	"strings"
)

type EntityKind int

const (
	NodeEntity EntityKind = iota
	RelationshipEntity
)

// PathEntity is one element of a traced path. Slot and Name label the pattern element that
// matched it; Slot is automaton.NoSlot for an unlabelled node.
type PathEntity struct {
	Kind EntityKind
	ID   int64
	Slot int
	Name string
}

// TracedPath is a trail from the source to a target. A data node reached through juxtapositions
// appears once per juxtaposition, so consecutive node entities may repeat an id.
type TracedPath struct {
	Entities     []PathEntity
	Length       int
	SourceNodeID int64
	TargetNodeID int64
}

// Nodes returns the data nodes of the path in order, one per position.
func (p TracedPath) Nodes() []int64 {
	var nodes []int64
	previousWasNode := false
	for _, e := range p.Entities {
		if e.Kind != NodeEntity {
			previousWasNode = false
			continue
		}
		if previousWasNode && nodes[len(nodes)-1] == e.ID {
			continue
		}
		nodes = append(nodes, e.ID)
		previousWasNode = true
	}
	return nodes
}

// Relationships returns the relationship ids of the path in order.
func (p TracedPath) Relationships() []int64 {
	rels := make([]int64, 0, p.Length)
	for _, e := range p.Entities {
		if e.Kind == RelationshipEntity {
			rels = append(rels, e.ID)
		}
	}
	return rels
}

func (p TracedPath) String() string {
	var b strings.Builder
	nodes := p.Nodes()
	fmt.Fprintf(&b, "(%d)", nodes[0])
	for i, rel := range p.Relationships() {
		fmt.Fprintf(&b, "-[%d]-(%d)", rel, nodes[i+1])
	}
	return b.String()
}
