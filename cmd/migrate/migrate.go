// Package migrate contains the command to perform database migrations.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openfga/ppbfs/cmd"
	"github.com/openfga/ppbfs/pkg/config"
	"github.com/openfga/ppbfs/pkg/graph/sqlite"
	"github.com/openfga/ppbfs/pkg/logger"
)

const (
	datastoreURIFlag       = "datastore-uri"
	versionFlag            = "version"
	timeoutFlag            = "timeout"
	verboseMigrationFlag   = "verbose"
	logFormatFlag          = "log-format"
	logLevelFlag           = "log-level"
	logTimestampFormatFlag = "log-timestamp-format"

	datastoreURIConf       = "datastore.uri"
	logFormatConf          = "log.format"
	logLevelConf           = "log.level"
	logTimestampFormatConf = "log.timestampFormat"
)

func NewMigrateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Run database schema migrations needed for the sqlite graph store",
		Long:  `The migrate command is used to migrate the database schema of the sqlite graph store.`,
		RunE:  runMigration,
		Args:  cobra.NoArgs,
	}

	defaultConfig := config.DefaultConfig()
	flags := command.Flags()

	flags.String(datastoreURIFlag, "", "(required) the sqlite database file to run the migrations against (e.g. 'graph.db')")
	flags.Uint(versionFlag, 0, "the version to migrate to (if omitted the latest schema will be used)")
	flags.Duration(timeoutFlag, config.DefaultMigrationTimeout, "a timeout for the time it takes the migrate process to connect to the database")
	flags.Bool(verboseMigrationFlag, false, "enable verbose migration logs (default false)")
	flags.String(logFormatFlag, defaultConfig.Log.Format, "the log format to output logs in")
	flags.String(logLevelFlag, defaultConfig.Log.Level, "the log level to output logs at")
	flags.String(logTimestampFormatFlag, defaultConfig.Log.TimestampFormat, "the timestamp format to use for log messages")

	// NOTE: if you add a new flag here, update the function below, too

	command.PreRun = bindRunFlagsFunc(flags)

	return command
}

func runMigration(command *cobra.Command, _ []string) error {
	cfg, err := cmd.ReadConfig()
	if err != nil {
		return err
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

	return sqlite.Migrate(command.Context(), sqlite.MigrationConfig{
		URI:           cfg.Datastore.URI,
		TargetVersion: viper.GetUint(versionFlag),
		Timeout:       viper.GetDuration(timeoutFlag),
		Verbose:       viper.GetBool(verboseMigrationFlag),
		Logger:        log,
	})
}
