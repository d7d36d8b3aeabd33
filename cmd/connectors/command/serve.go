package command

import (
	"github.com/spf13/cobra"

	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/internal/runtime"
)

func newServeCmd(o *options) *cobra.Command {
	var port uint

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := o.overrides()
			if cmd.Flags().Changed("port") {
				overrides = append(overrides, func(cfg *config.ServiceConfig) {
					cfg.PublicHTTPServer.Port = port
				})
			}

			return runtime.New(runtime.WithConfigOverrides(overrides...)).Run()
		},
	}

	cmd.Flags().UintVar(&port, "port", 0, "override HTTP_SERVER_PORT")

	return cmd
}
