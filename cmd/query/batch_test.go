package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openfga/ppbfs/pkg/config"
	"github.com/openfga/ppbfs/pkg/pathfind"
)

func TestParseBatch(t *testing.T) {
	t.Run("names_unnamed_entries", func(t *testing.T) {
		b, err := ParseBatch([]byte(`
queries:
  - name: first
    source: 1
  - source: 2
    target: 3
    max: 2
`))
		require.NoError(t, err)
		require.Len(t, b.Queries, 2)
		require.Equal(t, "first", b.Queries[0].Name)
		require.Equal(t, "query-1", b.Queries[1].Name)
		require.Equal(t, int64(3), *b.Queries[1].Target)
		require.Nil(t, b.Queries[0].Target)
		require.Equal(t, 2, *b.Queries[1].Max)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseBatch([]byte(`queries: []`))
		require.ErrorContains(t, err, "empty")
	})

	t.Run("unknown_field", func(t *testing.T) {
		_, err := ParseBatch([]byte(`
queries:
  - source: 1
    limit: 3
`))
		require.ErrorContains(t, err, "failed to parse query batch")
	})
}

func TestEntryQuery(t *testing.T) {
	defaults := config.DefaultConfig().Query
	defaults.K = 3
	defaults.Mode = "groups"

	t.Run("defaults", func(t *testing.T) {
		q, err := Entry{Source: 1, Types: []string{"R"}}.Query(defaults)
		require.NoError(t, err)
		require.Equal(t, int64(1), q.Source)
		require.Nil(t, q.Target)
		require.Equal(t, 3, q.K)
		require.Equal(t, pathfind.Groups, q.Mode)
		require.Equal(t, pathfind.Unidirectional, q.Search)

		// {1,} compiles to a start state and a final state with a loop.
		require.Len(t, q.Automaton.States(), 2)
		require.False(t, q.Automaton.Start().IsFinal())
	})

	t.Run("entry_overrides_defaults", func(t *testing.T) {
		target := int64(4)
		zero, two := 0, 2
		q, err := Entry{
			Source: 1,
			Target: &target,
			Min:    &zero,
			Max:    &two,
			K:      1,
			Mode:   "paths",
			Search: "bidirectional",
		}.Query(defaults)
		require.NoError(t, err)
		require.Equal(t, 1, q.K)
		require.Equal(t, pathfind.Paths, q.Mode)
		require.Equal(t, pathfind.Bidirectional, q.Search)
		require.Len(t, q.Automaton.States(), 3)
		require.True(t, q.Automaton.Start().IsFinal())
	})

	tests := []struct {
		name  string
		entry Entry
		err   string
	}{
		{
			name:  "unknown_direction",
			entry: Entry{Source: 1, Direction: "sideways"},
			err:   "unknown direction",
		},
		{
			name:  "inverted_bounds",
			entry: Entry{Source: 1, Min: ptr(3), Max: ptr(1)},
			err:   "{3,1}",
		},
		{
			name:  "unknown_mode",
			entry: Entry{Source: 1, Mode: "walks"},
			err:   "unknown mode",
		},
		{
			name:  "unknown_search",
			entry: Entry{Source: 1, Search: "sideways"},
			err:   "unknown search mode",
		},
		{
			name:  "bidirectional_without_target",
			entry: Entry{Source: 1, Search: "bidirectional"},
			err:   "needs a target",
		},
		{
			name:  "invalid_predicate",
			entry: Entry{Source: 1, Where: "rel.props.since >"},
			err:   "rel.props.since",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := test.entry.Query(defaults)
			require.ErrorContains(t, err, test.err)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
