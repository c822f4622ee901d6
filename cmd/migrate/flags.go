package migrate

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openfga/ppbfs/cmd/util"
)

// bindRunFlagsFunc binds the cobra cmd flags to the equivalent config value being managed
// by viper. This bridges the config between cobra flags and viper flags.
func bindRunFlagsFunc(flags *pflag.FlagSet) func(*cobra.Command, []string) {
	return func(command *cobra.Command, args []string) {
		util.MustBindPFlag(datastoreURIConf, flags.Lookup(datastoreURIFlag))
		util.MustBindEnv(datastoreURIConf, "PPBFS_DATASTORE_URI")

		util.MustBindPFlag(versionFlag, flags.Lookup(versionFlag))
		util.MustBindEnv(versionFlag, "PPBFS_VERSION")

		util.MustBindPFlag(timeoutFlag, flags.Lookup(timeoutFlag))
		util.MustBindEnv(timeoutFlag, "PPBFS_TIMEOUT")

		util.MustBindPFlag(verboseMigrationFlag, flags.Lookup(verboseMigrationFlag))
		util.MustBindEnv(verboseMigrationFlag, "PPBFS_VERBOSE")

		util.MustBindPFlag(logFormatConf, flags.Lookup(logFormatFlag))
		util.MustBindEnv(logFormatConf, "PPBFS_LOG_FORMAT")

		util.MustBindPFlag(logLevelConf, flags.Lookup(logLevelFlag))
		util.MustBindEnv(logLevelConf, "PPBFS_LOG_LEVEL")

		util.MustBindPFlag(logTimestampFormatConf, flags.Lookup(logTimestampFormatFlag))
		util.MustBindEnv(logTimestampFormatConf, "PPBFS_LOG_TIMESTAMP_FORMAT")
	}
}
