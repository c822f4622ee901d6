package ppbfs

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openfga/ppbfs/pkg/automaton"
	"github.com/openfga/ppbfs/pkg/graph"
	"github.com/openfga/ppbfs/pkg/graph/memory"
	"github.com/openfga/ppbfs/pkg/productgraph"
)

const unlimited = math.MaxInt32

func rel(id, start, end int64) graph.Relationship {
	return graph.Relationship{ID: id, Start: start, End: end, Type: "R"}
}

// newStore builds an in-memory graph holding the given relationships and every node they touch,
// plus the extra nodes.
func newStore(t *testing.T, rels []graph.Relationship, extraNodes ...int64) *memory.Store {
	t.Helper()

	ids := slices.Clone(extraNodes)
	for _, r := range rels {
		ids = append(ids, r.Start, r.End)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	nodes := make([]graph.Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, graph.Node{ID: id})
	}

	s := memory.New()
	require.NoError(t, s.WriteNodes(context.Background(), nodes))
	require.NoError(t, s.WriteRelationships(context.Background(), rels))
	return s
}

func quantified(t *testing.T, direction graph.Direction, minHops, maxHops int) *automaton.Automaton {
	t.Helper()
	a, err := automaton.Quantified(nil, direction, minHops, maxHops)
	require.NoError(t, err)
	return a
}

func newDriver(reader graph.Reader, a *automaton.Automaton, source int64, opts ...DriverOption) *Driver {
	return New(productgraph.NewCursor(reader), source, a.Start(), opts...)
}

// drain returns every path of the driver until it is exhausted.
func drain(t *testing.T, d *Driver) []TracedPath {
	t.Helper()

	var paths []TracedPath
	for {
		p, err := d.Next(context.Background())
		if errors.Is(err, ErrIteratorDone) {
			return paths
		}
		require.NoError(t, err)
		paths = append(paths, p)
		require.Less(t, len(paths), 100000, "runaway search")
	}
}

func pathKey(p TracedPath) string {
	return fmt.Sprintf("%d:%d:%v:%v", p.TargetNodeID, p.Length, p.Nodes(), p.Relationships())
}

func pathKeys(paths []TracedPath) map[string]int {
	res := make(map[string]int, len(paths))
	for _, p := range paths {
		res[pathKey(p)]++
	}
	return res
}

type productMove struct {
	rel   graph.Relationship
	other int64
	to    *automaton.State
}

// bruteForceTrails enumerates every product-graph trail from the source by depth-first search,
// keyed like pathKey. Juxtaposition cycles are cut per visit of a data node.
func bruteForceTrails(t *testing.T, reader graph.Reader, a *automaton.Automaton, source int64, target *int64, maxLength int) map[string]int {
	t.Helper()
	res, ok := bruteForceTrailsWithin(t, reader, a, source, target, maxLength, unlimited)
	require.True(t, ok)
	return res
}

// bruteForceTrailsWithin is bruteForceTrails giving up, and reporting false, once more than limit
// trails have been found.
func bruteForceTrailsWithin(t *testing.T, reader graph.Reader, a *automaton.Automaton, source int64, target *int64, maxLength, limit int) (map[string]int, bool) {
	t.Helper()
	ctx := context.Background()
	res := make(map[string]int)
	found := 0

	type position struct {
		node  int64
		state int
	}

	var dfs func(node int64, state *automaton.State, used map[int64]bool, nodes, rels []int64, visited map[position]bool)
	dfs = func(node int64, state *automaton.State, used map[int64]bool, nodes, rels []int64, visited map[position]bool) {
		if found > limit {
			return
		}
		if state.IsFinal() && (target == nil || *target == node) {
			res[fmt.Sprintf("%d:%d:%v:%v", node, len(rels), nodes, rels)]++
			found++
		}

		var jumps []*automaton.State
		for _, j := range state.Juxtapositions() {
			jumps = append(jumps, j.To)
		}
		slices.SortFunc(jumps, func(x, y *automaton.State) int { return cmp.Compare(x.ID(), y.ID()) })
		jumps = slices.Compact(jumps)
		for _, to := range jumps {
			p := position{node: node, state: to.ID()}
			if visited[p] {
				continue
			}
			next := make(map[position]bool, len(visited)+1)
			for k := range visited {
				next[k] = true
			}
			next[p] = true
			dfs(node, to, used, nodes, rels, next)
		}

		if len(rels) >= maxLength {
			return
		}

		var moves []productMove
		for _, e := range state.RelationshipExpansions() {
			iter, err := reader.Relationships(ctx, node, e.Direction, e.Types)
			require.NoError(t, err)
			all, err := graph.ToArray(ctx, iter)
			require.NoError(t, err)
			for _, r := range all {
				moves = append(moves, productMove{rel: r, other: r.Other(node), to: e.To})
			}
		}
		slices.SortFunc(moves, func(x, y productMove) int {
			return cmp.Or(cmp.Compare(x.rel.ID, y.rel.ID), cmp.Compare(x.to.ID(), y.to.ID()))
		})
		moves = slices.CompactFunc(moves, func(x, y productMove) bool {
			return x.rel.ID == y.rel.ID && x.to == y.to && x.other == y.other
		})

		for _, m := range moves {
			if used[m.rel.ID] {
				continue
			}
			used[m.rel.ID] = true
			dfs(m.other, m.to, used,
				append(slices.Clone(nodes), m.other),
				append(slices.Clone(rels), m.rel.ID),
				map[position]bool{{node: m.other, state: m.to.ID()}: true})
			delete(used, m.rel.ID)
		}
	}

	dfs(source, a.Start(), make(map[int64]bool), []int64{source}, nil,
		map[position]bool{{node: source, state: a.Start().ID()}: true})
	return res, found <= limit
}
