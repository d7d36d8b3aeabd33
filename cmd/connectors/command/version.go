package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/architeacher/connectors/internal/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the connectors version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			version := config.ServiceVersion
			if version == "" {
				version = "dev"
			}

			commit := config.CommitSHA
			if commit == "" {
				commit = "unknown"
			}

			fmt.Fprintf(cmd.OutOrStdout(), "connectors %s (commit %s)\n", version, commit)
		},
	}
}
