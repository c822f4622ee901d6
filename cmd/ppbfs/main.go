package main

import (
	"os"

	"github.com/openfga/ppbfs/cmd"
	"github.com/openfga/ppbfs/cmd/load"
	"github.com/openfga/ppbfs/cmd/migrate"
	"github.com/openfga/ppbfs/cmd/query"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	queryCmd := query.NewQueryCommand()
	rootCmd.AddCommand(queryCmd)

	migrateCmd := migrate.NewMigrateCommand()
	rootCmd.AddCommand(migrateCmd)

	loadCmd := load.NewLoadCommand()
	rootCmd.AddCommand(loadCmd)

	versionCmd := cmd.NewVersionCommand()
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
