package cmd

import (
	"github.com/spf13/cobra"

	"github.com/openfga/ppbfs/internal/build"
)

// NewVersionCommand returns the command to get the ppbfs version
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Return the ppbfs version",
		Long:  "Return the ppbfs version.",
		RunE:  version,
		Args:  cobra.NoArgs,
	}

	return cmd
}

// print out the built version
func version(cmd *cobra.Command, _ []string) error {
	cmd.Printf("%s version %s date %s commit id %s\n", build.ProjectName, build.Version, build.Date, build.Commit)
	return nil
}
