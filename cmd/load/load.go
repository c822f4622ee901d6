// Package load contains the command that copies a YAML graph fixture into a sqlite graph store.
package load

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/openfga/ppbfs/cmd"
	"github.com/openfga/ppbfs/cmd/util"
	"github.com/openfga/ppbfs/pkg/config"
	"github.com/openfga/ppbfs/pkg/graph"
	"github.com/openfga/ppbfs/pkg/graph/sqlite"
	"github.com/openfga/ppbfs/pkg/logger"
)

const (
	graphFlag        = "graph"
	datastoreURIFlag = "datastore-uri"
	migrateFlag      = "migrate"
	logLevelFlag     = "log-level"
)

func NewLoadCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "load",
		Short: "Load a YAML graph fixture into a sqlite graph store",
		Long: `The load command writes every node and relationship of a YAML graph fixture into a sqlite graph store.
Existing nodes and relationships with the same ids are overwritten.`,
		RunE: runLoad,
		Args: cobra.NoArgs,
	}

	flags := command.Flags()
	flags.String(graphFlag, "", "(required) the YAML graph fixture to load")
	flags.String(datastoreURIFlag, "", "(required) the sqlite database file to load the graph into")
	flags.Bool(migrateFlag, true, "migrate the database schema to the latest version before loading")
	flags.String(logLevelFlag, config.DefaultConfig().Log.Level, "the log level to output logs at")

	command.PreRun = bindLoadFlagsFunc(flags)

	return command
}

func bindLoadFlagsFunc(flags *pflag.FlagSet) func(*cobra.Command, []string) {
	return func(command *cobra.Command, args []string) {
		util.MustBindPFlag("datastore.fixture", flags.Lookup(graphFlag))
		util.MustBindEnv("datastore.fixture", "PPBFS_DATASTORE_FIXTURE")

		util.MustBindPFlag("datastore.uri", flags.Lookup(datastoreURIFlag))
		util.MustBindEnv("datastore.uri", "PPBFS_DATASTORE_URI")

		util.MustBindPFlag(migrateFlag, flags.Lookup(migrateFlag))

		util.MustBindPFlag("log.level", flags.Lookup(logLevelFlag))
		util.MustBindEnv("log.level", "PPBFS_LOG_LEVEL")
	}
}

func runLoad(command *cobra.Command, _ []string) error {
	cfg, err := cmd.ReadConfig()
	if err != nil {
		return err
	}

	if cfg.Datastore.Fixture == "" {
		return fmt.Errorf("missing graph fixture")
	}
	if cfg.Datastore.URI == "" {
		return fmt.Errorf("missing datastore uri")
	}

	log, err := logger.NewLogger(
		logger.WithFormat(cfg.Log.Format),
		logger.WithLevel(cfg.Log.Level),
		logger.WithTimestampFormat(cfg.Log.TimestampFormat),
	)
	if err != nil {
		return err
	}

	ctx := command.Context()

	fixture, err := graph.LoadFixture(cfg.Datastore.Fixture)
	if err != nil {
		return err
	}

	if viper.GetBool(migrateFlag) {
		err := sqlite.Migrate(ctx, sqlite.MigrationConfig{
			URI:     cfg.Datastore.URI,
			Timeout: config.DefaultMigrationTimeout,
			Logger:  log,
		})
		if err != nil {
			return err
		}
	}

	store, err := sqlite.New(cfg.Datastore.URI, sqlite.WithLogger(log))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := fixture.WriteTo(ctx, store); err != nil {
		return fmt.Errorf("failed to load graph fixture: %w", err)
	}

	log.Info("graph loaded",
		zap.String("fixture", cfg.Datastore.Fixture),
		zap.Int("nodes", len(fixture.Nodes)),
		zap.Int("relationships", len(fixture.Relationships)),
	)

	return nil
}
