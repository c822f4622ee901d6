// Package test holds the behavior every graph.Store implementation must share.
package test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/openfga/ppbfs/pkg/graph"
)

// StoreFactory returns an empty store. Stores are closed by the caller of the factory.
type StoreFactory func(t *testing.T) graph.Store

func RunAllTests(t *testing.T, newStore StoreFactory) {
	t.Run("TestNodeWriteAndRead", func(t *testing.T) { NodeWriteAndReadTest(t, newStore(t)) })
	t.Run("TestRelationshipDirections", func(t *testing.T) { RelationshipDirectionsTest(t, newStore(t)) })
	t.Run("TestRelationshipTypes", func(t *testing.T) { RelationshipTypesTest(t, newStore(t)) })
	t.Run("TestRelationshipOverwrite", func(t *testing.T) { RelationshipOverwriteTest(t, newStore(t)) })
	t.Run("TestInvalidRelationship", func(t *testing.T) { InvalidRelationshipTest(t, newStore(t)) })
}

var cmpOpts = []cmp.Option{cmpopts.EquateEmpty()}

func relationshipIDs(t *testing.T, r graph.Reader, nodeID int64, direction graph.Direction, types []string) []int64 {
	t.Helper()

	iter, err := r.Relationships(context.Background(), nodeID, direction, types)
	require.NoError(t, err)
	rels, err := graph.ToArray(context.Background(), iter)
	require.NoError(t, err)

	ids := make([]int64, 0, len(rels))
	for _, rel := range rels {
		ids = append(ids, rel.ID)
	}
	return ids
}

func writeNodes(t *testing.T, s graph.Store, ids ...int64) {
	t.Helper()

	nodes := make([]graph.Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, graph.Node{ID: id})
	}
	require.NoError(t, s.WriteNodes(context.Background(), nodes))
}

func NodeWriteAndReadTest(t *testing.T, s graph.Store) {
	ctx := context.Background()

	alice := graph.Node{
		ID:     1,
		Labels: []string{"Person", "Admin"},
		Properties: map[string]any{
			"name": "alice",
			"age":  float64(31),
		},
	}
	require.NoError(t, s.WriteNodes(ctx, []graph.Node{alice, {ID: 2}}))

	got, err := s.Node(ctx, 1)
	require.NoError(t, err)
	if diff := cmp.Diff(alice, got, cmpOpts...); diff != "" {
		t.Fatalf("node mismatch (-want +got):\n%s", diff)
	}

	got, err = s.Node(ctx, 2)
	require.NoError(t, err)
	if diff := cmp.Diff(graph.Node{ID: 2}, got, cmpOpts...); diff != "" {
		t.Fatalf("node mismatch (-want +got):\n%s", diff)
	}

	_, err = s.Node(ctx, 3)
	require.ErrorIs(t, err, graph.ErrNotFound)

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.WriteNodes(ctx, []graph.Node{{ID: 1, Labels: []string{"Robot"}}}))

		got, err := s.Node(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, []string{"Robot"}, got.Labels)
		require.Empty(t, got.Properties)
	})
}

func RelationshipDirectionsTest(t *testing.T, s graph.Store) {
	ctx := context.Background()
	writeNodes(t, s, 1, 2, 3)

	rels := []graph.Relationship{
		{ID: 5, Start: 1, End: 2, Type: "KNOWS"},
		{ID: 1, Start: 1, End: 2, Type: "KNOWS"},
		{ID: 2, Start: 2, End: 1, Type: "LIKES"},
		{ID: 3, Start: 1, End: 1, Type: "KNOWS"},
		{ID: 4, Start: 1, End: 3, Type: "KNOWS", Properties: map[string]any{"since": float64(2020)}},
	}
	require.NoError(t, s.WriteRelationships(ctx, rels))

	require.Equal(t, []int64{1, 3, 4, 5}, relationshipIDs(t, s, 1, graph.DirectionOutgoing, nil))
	require.Equal(t, []int64{2, 3}, relationshipIDs(t, s, 1, graph.DirectionIncoming, nil))
	require.Equal(t, []int64{1, 2, 3, 4, 5}, relationshipIDs(t, s, 1, graph.DirectionBoth, nil), "a self-loop is reported once")
	require.Equal(t, []int64{4}, relationshipIDs(t, s, 3, graph.DirectionBoth, nil))
	require.Empty(t, relationshipIDs(t, s, 3, graph.DirectionOutgoing, nil))

	iter, err := s.Relationships(ctx, 3, graph.DirectionIncoming, nil)
	require.NoError(t, err)
	got, err := graph.ToArray(ctx, iter)
	require.NoError(t, err)
	if diff := cmp.Diff([]graph.Relationship{rels[4]}, got, cmpOpts...); diff != "" {
		t.Fatalf("relationship mismatch (-want +got):\n%s", diff)
	}
}

func RelationshipTypesTest(t *testing.T, s graph.Store) {
	ctx := context.Background()
	writeNodes(t, s, 1, 2)

	require.NoError(t, s.WriteRelationships(ctx, []graph.Relationship{
		{ID: 1, Start: 1, End: 2, Type: "KNOWS"},
		{ID: 2, Start: 1, End: 2, Type: "LIKES"},
		{ID: 3, Start: 2, End: 1, Type: "HATES"},
	}))

	require.Equal(t, []int64{1}, relationshipIDs(t, s, 1, graph.DirectionOutgoing, []string{"KNOWS"}))
	require.Equal(t, []int64{1, 3}, relationshipIDs(t, s, 1, graph.DirectionBoth, []string{"HATES", "KNOWS"}))
	require.Empty(t, relationshipIDs(t, s, 1, graph.DirectionBoth, []string{"FOLLOWS"}))
}

func RelationshipOverwriteTest(t *testing.T, s graph.Store) {
	ctx := context.Background()
	writeNodes(t, s, 1, 2, 3)

	require.NoError(t, s.WriteRelationships(ctx, []graph.Relationship{{ID: 1, Start: 1, End: 2, Type: "KNOWS"}}))
	require.NoError(t, s.WriteRelationships(ctx, []graph.Relationship{{ID: 1, Start: 1, End: 3, Type: "LIKES"}}))

	require.Empty(t, relationshipIDs(t, s, 2, graph.DirectionBoth, nil))
	require.Equal(t, []int64{1}, relationshipIDs(t, s, 3, graph.DirectionIncoming, []string{"LIKES"}))
}

func InvalidRelationshipTest(t *testing.T, s graph.Store) {
	ctx := context.Background()
	writeNodes(t, s, 1)

	err := s.WriteRelationships(ctx, []graph.Relationship{{ID: 1, Start: 1, End: 9, Type: "KNOWS"}})
	require.ErrorIs(t, err, graph.ErrInvalidRelationship)
	require.Empty(t, relationshipIDs(t, s, 1, graph.DirectionBoth, nil))
}
