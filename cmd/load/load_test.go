package load

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openfga/ppbfs/cmd"
	"github.com/openfga/ppbfs/cmd/util"
	"github.com/openfga/ppbfs/pkg/graph"
	"github.com/openfga/ppbfs/pkg/graph/sqlite"
)

const fixture = `nodes:
  - id: 1
    labels: [Person]
    properties:
      name: ada
  - id: 2
    labels: [Person]
relationships:
  - id: 10
    start: 1
    end: 2
    type: KNOWS
`

func TestLoadCommand(t *testing.T) {
	util.PrepareTempConfigDir(t)

	dir := t.TempDir()
	fixturePath := filepath.Join(dir, "graph.yaml")
	require.NoError(t, os.WriteFile(fixturePath, []byte(fixture), 0600))
	uri := filepath.Join(dir, "graph.db")

	rootCmd := cmd.NewRootCommand()
	rootCmd.AddCommand(NewLoadCommand())
	rootCmd.SetArgs([]string{"load", "--graph", fixturePath, "--datastore-uri", uri, "--log-level", "none"})
	require.NoError(t, rootCmd.Execute())

	store, err := sqlite.New(uri)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	ctx := context.Background()
	node, err := store.Node(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"Person"}, node.Labels)
	require.Equal(t, "ada", node.Properties["name"])

	it, err := store.Relationships(ctx, 2, graph.DirectionIncoming, nil)
	require.NoError(t, err)
	defer it.Stop()

	rel, err := it.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(10), rel.ID)
	require.Equal(t, "KNOWS", rel.Type)

	_, err = it.Next(ctx)
	require.ErrorIs(t, err, graph.ErrIteratorDone)
}

func TestLoadCommandErrors(t *testing.T) {
	dir := t.TempDir()
	uri := filepath.Join(dir, "graph.db")

	tests := []struct {
		name string
		args []string
		err  string
	}{
		{
			name: "missing_fixture_flag",
			args: []string{"load", "--graph", "", "--datastore-uri", uri},
			err:  "missing graph fixture",
		},
		{
			name: "missing_uri",
			args: []string{"load", "--graph", filepath.Join(dir, "graph.yaml"), "--datastore-uri", ""},
			err:  "missing datastore uri",
		},
		{
			name: "unreadable_fixture",
			args: []string{"load", "--graph", filepath.Join(dir, "absent.yaml"), "--datastore-uri", uri},
			err:  "failed to read graph fixture",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			util.PrepareTempConfigDir(t)

			rootCmd := cmd.NewRootCommand()
			rootCmd.AddCommand(NewLoadCommand())
			rootCmd.SetArgs(append(test.args, "--log-level", "none"))
			require.ErrorContains(t, rootCmd.Execute(), test.err)
		})
	}
}
