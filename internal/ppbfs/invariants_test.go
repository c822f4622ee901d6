package ppbfs

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/openfga/ppbfs/pkg/graph"
	"github.com/openfga/ppbfs/pkg/logger"
	"github.com/openfga/ppbfs/pkg/productgraph"
)

func requireInvariant(t *testing.T, err error, op string) {
	t.Helper()
	require.ErrorIs(t, err, ErrInvariantViolation)

	var invariantErr *InvariantError
	require.True(t, errors.As(err, &invariantErr))
	require.Equal(t, op, invariantErr.Op)
}

func TestInvariantViolations(t *testing.T) {
	q0, q1 := testStates(t)

	t.Run("schedule_behind_depth", func(t *testing.T) {
		ec := NewExecutionContext(NewTargetTracker(1, false, nil), logger.NewNoopLogger())
		ns, _ := ec.repo.Discover(1, q0, productgraph.Forward, 0)
		ns.lengths.Set(Source, 1)
		ec.depth = 3
		ec.phase = expanding

		ec.schedule.Add(ns, 1, 1)
		requireInvariant(t, ec.propagateAll(3), "schedule")

		_, stale, ok := ec.schedule.takeFirst(2)
		require.True(t, ok)
		require.Equal(t, []*NodeState{ns}, stale)
		ec.schedule.Add(ns, 1, 2)
		require.NoError(t, ec.propagateAll(3))
		require.True(t, ec.schedule.IsEmpty())
	})

	t.Run("maybe_schedule_drops_stale_pairs", func(t *testing.T) {
		ec := NewExecutionContext(NewTargetTracker(1, false, nil), logger.NewNoopLogger())
		ns, _ := ec.repo.Discover(1, q0, productgraph.Forward, 0)
		ec.depth = 3
		ec.phase = tracing

		require.NoError(t, ec.maybeSchedule(ns, 1, 1))
		require.NoError(t, ec.maybeSchedule(ns, 1, 2))
		require.True(t, ec.schedule.IsEmpty())

		require.NoError(t, ec.maybeSchedule(ns, 2, 2))
		require.NoError(t, ec.maybeSchedule(ns, 2, 2))
		require.Equal(t, 1, ec.schedule.Len())
	})

	t.Run("target_registered_twice_in_a_level", func(t *testing.T) {
		tracker := NewTargetTracker(1, false, nil)
		ns := &NodeState{id: 0, nodeID: 1, state: q1, registeredAt: -1}

		require.NoError(t, tracker.register(ns, 2))
		requireInvariant(t, tracker.register(ns, 2), "registerTarget")
		require.NoError(t, tracker.register(ns, 3))
		require.Len(t, tracker.takeLevel(), 2)
		require.False(t, tracker.hasLevelTargets())
	})

	t.Run("countdown_below_zero", func(t *testing.T) {
		tracker := NewTargetTracker(1, false, nil)
		c := tracker.counterFor(1)
		require.Equal(t, 1, tracker.Live())

		require.NoError(t, tracker.decrement(c, 2))
		require.Zero(t, tracker.Live())
		require.True(t, tracker.saturated(c, 2))
		requireInvariant(t, tracker.decrement(c, 3), "decrementTargetCount")
	})

	t.Run("group_countdown", func(t *testing.T) {
		tracker := NewTargetTracker(1, true, nil)
		c := tracker.counterFor(1)

		require.NoError(t, tracker.decrement(c, 2))
		require.False(t, tracker.saturated(c, 2), "the open group keeps emitting")
		require.NoError(t, tracker.decrement(c, 2))
		require.Zero(t, c.Remaining())
		require.True(t, tracker.saturated(c, 3))
	})

	t.Run("target_distance_set_twice", func(t *testing.T) {
		sp := &Signpost{minTargetDistance: NoTargetDistance}
		require.NoError(t, sp.setMinTargetDistance(2))
		requireInvariant(t, sp.setMinTargetDistance(1), "setMinTargetDistance")
		require.Equal(t, 2, sp.MinTargetDistance())
	})

	t.Run("duplicate_source_signpost", func(t *testing.T) {
		r := NewRepository(nil)
		prev, _ := r.Discover(1, q0, productgraph.Forward, 0)
		forward, _ := r.Discover(2, q1, productgraph.Forward, 1)
		sp, _ := r.Signpost(RelationshipTraversal, prev, forward, graph.Relationship{ID: 10}, nil, nil)

		require.NoError(t, forward.addSourceSignpost(sp))
		requireInvariant(t, forward.addSourceSignpost(sp), "addSourceSignpost")
		require.Len(t, forward.SourceSignposts(), 1)
	})

	t.Run("pruned_length_is_not_certified_again", func(t *testing.T) {
		ec := NewExecutionContext(NewTargetTracker(1, false, nil), logger.NewNoopLogger())
		prev, _ := ec.repo.Discover(1, q0, productgraph.Forward, 0)
		forward, _ := ec.repo.Discover(2, q1, productgraph.Forward, 1)
		sp, _ := ec.repo.Signpost(RelationshipTraversal, prev, forward, graph.Relationship{ID: 10}, nil, nil)
		require.NoError(t, forward.addSourceSignpost(sp))

		sp.lengths.Set(Pruned, 2)
		require.NoError(t, ec.addSignpostLength(sp, 2))
		require.False(t, sp.lengths.Has(Source, 2))
		require.False(t, forward.HasLength(2))

		require.NoError(t, ec.addSignpostLength(sp, 3))
		require.True(t, forward.HasLength(3))
	})

	t.Run("into_target_saturation", func(t *testing.T) {
		target := int64(7)
		tracker := NewTargetTracker(1, false, &target)
		require.False(t, tracker.intoTargetSaturated())

		c := tracker.counterFor(7)
		require.NoError(t, tracker.decrement(c, 1))
		require.True(t, tracker.intoTargetSaturated())
	})
}

// TestFirstDiscoveryDepth checks that every node state is first discovered at its breadth-first
// distance in the explicit product graph.
func TestFirstDiscoveryDepth(t *testing.T) {
	ctx := context.Background()
	r := rand.New(rand.NewPCG(19, 23))
	const stride = 100

	for i := range 100 {
		n := 1 + r.IntN(7)
		rels := make([]graph.Relationship, r.IntN(10))
		for j := range rels {
			rels[j] = rel(int64(j+1), int64(r.IntN(n)), int64(r.IntN(n)))
		}
		nodes := make([]int64, n)
		for j := range nodes {
			nodes[j] = int64(j)
		}
		store := newStore(t, rels, nodes...)

		direction := graph.DirectionBoth
		if r.Float64() < 0.5 {
			direction = graph.DirectionOutgoing
		}
		minHops := r.IntN(3)
		maxHops := []int{-1, 1, 2, 4}[r.IntN(4)]
		if maxHops >= 0 && maxHops < minHops {
			maxHops = minHops
		}
		a := quantified(t, direction, minHops, maxHops)

		product := simple.NewDirectedGraph()
		for _, id := range nodes {
			for _, q := range a.States() {
				product.AddNode(simple.Node(id*stride + int64(q.ID())))
			}
		}
		for _, id := range nodes {
			for _, q := range a.States() {
				for _, e := range q.RelationshipExpansions() {
					iter, err := store.Relationships(ctx, id, e.Direction, e.Types)
					require.NoError(t, err)
					all, err := graph.ToArray(ctx, iter)
					require.NoError(t, err)
					for _, r := range all {
						from := id*stride + int64(q.ID())
						to := r.Other(id)*stride + int64(e.To.ID())
						if from != to {
							product.SetEdge(product.NewEdge(product.Node(from), product.Node(to)))
						}
					}
				}
			}
		}

		want := make(map[int64]int)
		var bfs traverse.BreadthFirst
		bfs.Walk(product, product.Node(int64(a.Start().ID())), func(n gonumgraph.Node, depth int) bool {
			want[n.ID()] = depth
			return false
		})

		d := newDriver(store, a, 0, WithK(unlimited))
		drain(t, d)

		got := make(map[int64]int)
		for _, ns := range d.ec.repo.nodes {
			if ns.discoveredForward {
				got[ns.nodeID*stride+int64(ns.state.ID())] = ns.forwardDepth
			}
		}
		require.Equal(t, want, got, "case %d rels=%v", i, rels)
	}
}

type prunedPair struct {
	signpost int
	length   int
}

// TestPruningIsPermanent checks, after every returned trail, that a signpost pruned at a length
// never certifies that length again, and that the search still returns every trail.
func TestPruningIsPermanent(t *testing.T) {
	ctx := context.Background()
	r := rand.New(rand.NewPCG(37, 41))
	prunedCases := 0

	for i := range 200 {
		c := newRandomCase(t, r, false)
		want, ok := c.oracle(t)
		if !ok {
			continue
		}

		d := newDriver(c.store, c.automaton, 0, c.options(WithK(unlimited))...)
		pruned := make(map[prunedPair]struct{})
		var paths []TracedPath
		for {
			p, err := d.Next(ctx)
			if errors.Is(err, ErrIteratorDone) {
				break
			}
			require.NoError(t, err)
			paths = append(paths, p)

			for _, sp := range d.ec.repo.signposts {
				for _, length := range sp.lengths.All(Pruned) {
					pruned[prunedPair{signpost: sp.id, length: length}] = struct{}{}
				}
			}
			for pair := range pruned {
				sp := d.ec.repo.signposts[pair.signpost]
				require.True(t, sp.lengths.Has(Pruned, pair.length), "case %d: %v unpruned at %d", i, sp, pair.length)
				require.False(t, sp.lengths.Has(Source, pair.length), "case %d: %v certifies pruned length %d", i, sp, pair.length)
			}
		}

		if len(pruned) > 0 {
			prunedCases++
		}
		require.Equal(t, want, pathKeys(paths), "case %d %s", i, c.desc)
	}
	require.Positive(t, prunedCases)
}
