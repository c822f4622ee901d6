// Package cmd contains all the commands included in the binary file.
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openfga/ppbfs/pkg/config"
)

// NewRootCommand enables all children commands to read flags from CLI flags, environment variables prefixed with PPBFS, or config.yaml (in that order).
func NewRootCommand() *cobra.Command {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("PPBFS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	configPaths := []string{"/etc/ppbfs", "$HOME/.ppbfs", "."}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	return &cobra.Command{
		Use:   "ppbfs",
		Short: "Shortest and K-shortest trail search over a property graph",
		Long: `Shortest and K-shortest trail search over a property graph.

ppbfs evaluates path patterns, compiled to finite automata, against a graph store by running a
breadth-first search over the product of the graph and the automaton. It returns the shortest
trails (paths without a repeated relationship) or the K shortest length groups of trails.`,
		SilenceUsage: true,
	}
}

// ReadConfig merges the defaults, the config file, the environment and the bound flags.
func ReadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()

	viper.SetTypeByDefaultValue(true)
	err := viper.ReadInConfig()
	if err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}
