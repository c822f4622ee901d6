package pathfind

import (
	"fmt"
	"strings"

	"github.com/openfga/ppbfs/internal/ppbfs"
)

const (
	NodeKind         = "node"
	RelationshipKind = "relationship"
)

// Entity is one node or relationship of a path, with the pattern slot that matched it.
type Entity struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
	// Slot is automaton.NoSlot when no pattern element is bound to the entity.
	Slot int    `json:"slot"`
	Name string `json:"name,omitempty"`
}

// Path is a trail returned by a query.
type Path struct {
	Source        int64    `json:"source"`
	Target        int64    `json:"target"`
	Length        int      `json:"length"`
	Nodes         []int64  `json:"nodes"`
	Relationships []int64  `json:"relationships"`
	Entities      []Entity `json:"entities,omitempty"`
}

func newPath(p ppbfs.TracedPath) Path {
	entities := make([]Entity, 0, len(p.Entities))
	for _, e := range p.Entities {
		kind := NodeKind
		if e.Kind == ppbfs.RelationshipEntity {
			kind = RelationshipKind
		}
		entities = append(entities, Entity{Kind: kind, ID: e.ID, Slot: e.Slot, Name: e.Name})
	}

	return Path{
		Source:        p.SourceNodeID,
		Target:        p.TargetNodeID,
		Length:        p.Length,
		Nodes:         p.Nodes(),
		Relationships: p.Relationships(),
		Entities:      entities,
	}
}

// Bound returns the ids of the entities bound to the named pattern element, in path order.
func (p Path) Bound(name string) []int64 {
	var ids []int64
	for _, e := range p.Entities {
		if e.Name == name {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// String renders the path as (1)-[10]-(2).
func (p Path) String() string {
	if len(p.Nodes) == 0 {
		return "()"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "(%d)", p.Nodes[0])
	for i, rel := range p.Relationships {
		fmt.Fprintf(&b, "-[%d]-(%d)", rel, p.Nodes[i+1])
	}
	return b.String()
}

// Identity is the materializer returning the path itself.
func Identity(p Path) (Path, error) {
	return p, nil
}
