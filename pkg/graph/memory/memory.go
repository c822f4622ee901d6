// Package memory provides an in-memory graph store backed by a gonum multigraph.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"

	"github.com/openfga/ppbfs/pkg/graph"
)

// Store keeps relationships as lines of a directed multigraph. Parallel relationships between
// the same pair of nodes are distinct lines; the line id is the relationship id.
type Store struct {
	mu    sync.RWMutex
	g     *multi.DirectedGraph
	nodes map[int64]graph.Node
	rels  map[int64]graph.Relationship
}

var _ graph.Store = (*Store)(nil)

type relationshipLine struct {
	from, to gonumgraph.Node
	id       int64
}

func (l relationshipLine) From() gonumgraph.Node { return l.from }
func (l relationshipLine) To() gonumgraph.Node   { return l.to }
func (l relationshipLine) ID() int64             { return l.id }
func (l relationshipLine) ReversedLine() gonumgraph.Line {
	l.from, l.to = l.to, l.from
	return l
}

// New returns an empty store.
func New() *Store {
	return &Store{
		g:     multi.NewDirectedGraph(),
		nodes: make(map[int64]graph.Node),
		rels:  make(map[int64]graph.Relationship),
	}
}

// NewFromFixture returns a store holding the fixture's graph.
func NewFromFixture(ctx context.Context, f *graph.Fixture) (*Store, error) {
	s := New()
	if err := f.WriteTo(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) WriteNodes(_ context.Context, nodes []graph.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range nodes {
		if _, ok := s.nodes[n.ID]; !ok {
			s.g.AddNode(multi.Node(n.ID))
		}
		s.nodes[n.ID] = n
	}
	return nil
}

func (s *Store) WriteRelationships(_ context.Context, relationships []graph.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range relationships {
		if _, ok := s.nodes[r.Start]; !ok {
			return fmt.Errorf("%w: unknown start node %d", graph.ErrInvalidRelationship, r.Start)
		}
		if _, ok := s.nodes[r.End]; !ok {
			return fmt.Errorf("%w: unknown end node %d", graph.ErrInvalidRelationship, r.End)
		}
		if existing, ok := s.rels[r.ID]; ok {
			s.g.RemoveLine(existing.Start, existing.End, existing.ID)
		}

		s.g.SetLine(relationshipLine{from: s.g.Node(r.Start), to: s.g.Node(r.End), id: r.ID})
		s.rels[r.ID] = r
	}
	return nil
}

func (s *Store) Node(_ context.Context, id int64) (graph.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return graph.Node{}, fmt.Errorf("%w: node %d", graph.ErrNotFound, id)
	}
	return n, nil
}

func (s *Store) Relationships(_ context.Context, nodeID int64, direction graph.Direction, types []string) (graph.Iterator[graph.Relationship], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[nodeID]; !ok {
		return nil, fmt.Errorf("%w: node %d", graph.ErrNotFound, nodeID)
	}

	seen := make(map[int64]struct{})
	var res []graph.Relationship
	collect := func(lines gonumgraph.Lines) {
		for lines.Next() {
			id := lines.Line().ID()
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			res = append(res, s.rels[id])
		}
	}

	if direction == graph.DirectionOutgoing || direction == graph.DirectionBoth {
		to := s.g.From(nodeID)
		for to.Next() {
			collect(s.g.Lines(nodeID, to.Node().ID()))
		}
	}
	if direction == graph.DirectionIncoming || direction == graph.DirectionBoth {
		from := s.g.To(nodeID)
		for from.Next() {
			collect(s.g.Lines(from.Node().ID(), nodeID))
		}
	}

	accept := graph.TypeFilter(types)
	res = slices.DeleteFunc(res, func(r graph.Relationship) bool { return !accept(r) })
	slices.SortFunc(res, func(a, b graph.Relationship) int { return cmp.Compare(a.ID, b.ID) })

	return graph.NewStaticIterator(res), nil
}

// Graph exposes the underlying multigraph for read-only algorithms. Callers must not mutate it.
func (s *Store) Graph() gonumgraph.Directed {
	return s.g
}

func (s *Store) Close() {}
