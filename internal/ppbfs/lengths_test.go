package ppbfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLengths(t *testing.T) {
	t.Run("set_reports_new_bits", func(t *testing.T) {
		var l Lengths
		require.True(t, l.IsEmpty(Source))
		require.True(t, l.Set(Source, 3))
		require.False(t, l.Set(Source, 3))
		require.True(t, l.Has(Source, 3))
		require.False(t, l.Has(ConfirmedSource, 3))
	})

	t.Run("dimensions_are_independent", func(t *testing.T) {
		var l Lengths
		l.Set(Source, 1)
		l.Set(ConfirmedSource, 2)
		require.Equal(t, []int{1}, l.All(Source))
		require.Equal(t, []int{2}, l.All(ConfirmedSource))
	})

	t.Run("spans_words", func(t *testing.T) {
		var l Lengths
		for _, i := range []int{0, 63, 64, 130} {
			require.True(t, l.Set(Source, i))
		}
		require.Equal(t, []int{0, 63, 64, 130}, l.All(Source))
		require.Equal(t, 0, l.Min(Source))
		require.Equal(t, 130, l.Max(Source))
		require.False(t, l.Has(Source, 129))
		require.False(t, l.Has(Source, 1000))
		require.False(t, l.Has(Source, -1))
	})

	t.Run("clear", func(t *testing.T) {
		var l Lengths
		l.Set(Source, 70)
		require.True(t, l.Clear(Source, 70))
		require.False(t, l.Clear(Source, 70))
		require.False(t, l.Clear(Source, 500))
		require.True(t, l.IsEmpty(Source))
		require.Equal(t, -1, l.Min(Source))
		require.Equal(t, -1, l.Max(Source))
	})

	t.Run("all_is_a_snapshot", func(t *testing.T) {
		var l Lengths
		l.Set(Source, 1)
		all := l.All(Source)
		l.Set(Source, 2)
		require.Equal(t, []int{1}, all)
	})
}
