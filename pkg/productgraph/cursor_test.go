package productgraph_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/openfga/ppbfs/internal/mocks"
	"github.com/openfga/ppbfs/pkg/automaton"
	"github.com/openfga/ppbfs/pkg/graph"
	"github.com/openfga/ppbfs/pkg/graph/memory"
	"github.com/openfga/ppbfs/pkg/productgraph"
)

func newStore(t *testing.T) *memory.Store {
	t.Helper()

	f, err := graph.ParseFixture([]byte(`
nodes:
  - {id: 1, labels: [Person]}
  - {id: 2, labels: [Person]}
  - {id: 3, labels: [Robot]}
relationships:
  - {id: 10, start: 1, end: 2, type: KNOWS}
  - {id: 11, start: 1, end: 3, type: KNOWS}
  - {id: 12, start: 2, end: 1, type: LIKES}
  - {id: 13, start: 1, end: 1, type: KNOWS}
`))
	require.NoError(t, err)

	s, err := memory.NewFromFixture(context.Background(), f)
	require.NoError(t, err)
	return s
}

type transition struct {
	rel, other        int64
	state, otherState int
}

func summarize(transitions []productgraph.Transition) []transition {
	res := make([]transition, 0, len(transitions))
	for _, tr := range transitions {
		res = append(res, transition{
			rel:        tr.Relationship.ID,
			other:      tr.Other,
			state:      tr.State.ID(),
			otherState: tr.OtherState.ID(),
		})
	}
	return res
}

func TestCursorExpand(t *testing.T) {
	ctx := context.Background()

	b := automaton.NewStateBuilder()
	q0 := b.NewState("q0", false)
	q1 := b.NewState("q1", false)
	q2 := b.NewState("q2", true)
	b.SetStart(q0)
	b.AddRelationshipExpansion(q0, q1, graph.DirectionOutgoing, automaton.WithTypes("KNOWS"))
	b.AddRelationshipExpansion(q0, q2, graph.DirectionBoth, automaton.WithNodePredicate(`"Person" in node.labels`))
	b.AddRelationshipExpansion(q1, q2, graph.DirectionIncoming, automaton.WithRelationshipPredicate(`rel.type == "LIKES"`))
	_, err := b.Build()
	require.NoError(t, err)

	t.Run("forward", func(t *testing.T) {
		hook := &productgraph.CountingHook{}
		c := productgraph.NewCursor(newStore(t))
		c.SetTraceHook(hook)

		got, err := c.Expand(ctx, 1, []*automaton.State{q0, q1}, productgraph.Forward)
		require.NoError(t, err)
		require.Equal(t, []transition{
			{rel: 10, other: 2, state: 0, otherState: 1},
			{rel: 10, other: 2, state: 0, otherState: 2},
			{rel: 11, other: 3, state: 0, otherState: 1},
			{rel: 12, other: 2, state: 0, otherState: 2},
			{rel: 12, other: 2, state: 1, otherState: 2},
			{rel: 13, other: 1, state: 0, otherState: 1},
			{rel: 13, other: 1, state: 0, otherState: 2},
		}, summarize(got))

		require.Equal(t, 3, hook.RelationshipReads)
		require.Equal(t, 3, hook.NodeReads, "node reads are memoized")
	})

	t.Run("backward", func(t *testing.T) {
		c := productgraph.NewCursor(newStore(t))

		got, err := c.Expand(ctx, 2, []*automaton.State{q2}, productgraph.Backward)
		require.NoError(t, err)
		require.Equal(t, []transition{
			{rel: 10, other: 1, state: 2, otherState: 0},
			{rel: 12, other: 1, state: 2, otherState: 0},
			{rel: 12, other: 1, state: 2, otherState: 1},
		}, summarize(got))

		got, err = c.Expand(ctx, 3, []*automaton.State{q2}, productgraph.Backward)
		require.NoError(t, err)
		require.Empty(t, got, "node 3 fails the predicate on the reached node")
	})

	t.Run("cancelled", func(t *testing.T) {
		c := productgraph.NewCursor(newStore(t))
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := c.Expand(cancelled, 1, []*automaton.State{q0}, productgraph.Forward)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCursorJuxtapositions(t *testing.T) {
	ctx := context.Background()

	b := automaton.NewStateBuilder()
	q0 := b.NewState("q0", false)
	q1 := b.NewState("q1", true)
	q2 := b.NewState("q2", true)
	b.SetStart(q0)
	toPerson := b.AddJuxtaposition(q0, q1, automaton.WithNodePredicate(`"Person" in node.labels`))
	toAny := b.AddJuxtaposition(q0, q2)
	_, err := b.Build()
	require.NoError(t, err)

	c := productgraph.NewCursor(newStore(t))

	got, err := c.Juxtapositions(ctx, 1, q0, productgraph.Forward, nil)
	require.NoError(t, err)
	require.Equal(t, []*automaton.NodeJuxtaposition{toPerson, toAny}, got)

	got, err = c.Juxtapositions(ctx, 3, q0, productgraph.Forward, nil)
	require.NoError(t, err)
	require.Equal(t, []*automaton.NodeJuxtaposition{toAny}, got)

	got, err = c.Juxtapositions(ctx, 1, q0, productgraph.Forward, func(s *automaton.State) bool { return s != q2 })
	require.NoError(t, err)
	require.Equal(t, []*automaton.NodeJuxtaposition{toPerson}, got)

	got, err = c.Juxtapositions(ctx, 2, q1, productgraph.Backward, nil)
	require.NoError(t, err)
	require.Equal(t, []*automaton.NodeJuxtaposition{toPerson}, got)

	got, err = c.Juxtapositions(ctx, 3, q1, productgraph.Backward, nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCursorReadErrors(t *testing.T) {
	ctx := context.Background()

	a, err := automaton.Quantified(nil, graph.DirectionOutgoing, 1, 1, automaton.WithNodePredicate("node.id > 0"))
	require.NoError(t, err)
	start := []*automaton.State{a.Start()}

	t.Run("relationships", func(t *testing.T) {
		mockController := gomock.NewController(t)
		defer mockController.Finish()

		boom := errors.New("boom")
		reader := mocks.NewMockReader(mockController)
		reader.EXPECT().Relationships(gomock.Any(), int64(1), graph.DirectionOutgoing, gomock.Any()).Return(nil, boom)

		_, err := productgraph.NewCursor(reader).Expand(ctx, 1, start, productgraph.Forward)
		require.ErrorIs(t, err, boom)
	})

	t.Run("iteration", func(t *testing.T) {
		mockController := gomock.NewController(t)
		defer mockController.Finish()

		reader := mocks.NewMockReader(mockController)
		reader.EXPECT().
			Relationships(gomock.Any(), int64(1), graph.DirectionOutgoing, gomock.Any()).
			Return(mocks.NewErrorIterator([]graph.Relationship{{ID: 1, Start: 1, End: 2}}), nil)

		_, err := productgraph.NewCursor(reader).Expand(ctx, 1, start, productgraph.Forward)
		require.ErrorIs(t, err, mocks.ErrSimulatedRead)
	})

	t.Run("node", func(t *testing.T) {
		mockController := gomock.NewController(t)
		defer mockController.Finish()

		reader := mocks.NewMockReader(mockController)
		reader.EXPECT().
			Relationships(gomock.Any(), int64(1), graph.DirectionOutgoing, gomock.Any()).
			Return(graph.NewStaticIterator([]graph.Relationship{{ID: 1, Start: 1, End: 2}}), nil)
		reader.EXPECT().Node(gomock.Any(), int64(2)).Return(graph.Node{}, graph.ErrNotFound)

		_, err := productgraph.NewCursor(reader).Expand(ctx, 1, start, productgraph.Forward)
		require.ErrorIs(t, err, graph.ErrNotFound)
	})
}

func TestDirection(t *testing.T) {
	require.Equal(t, "forward", productgraph.Forward.String())
	require.Equal(t, "backward", productgraph.Backward.String())
}
