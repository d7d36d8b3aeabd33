package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/runtime"
	"github.com/architeacher/connectors/internal/usecases/queries"
)

func newOptionsCmd(o *options) *cobra.Command {
	var (
		node, method, credential string
		params                   []string
		refresh                  bool
	)

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the entries of a dropdown populated from the remote API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values := model.Params{}

			for _, param := range params {
				key, value, ok := strings.Cut(param, "=")
				if !ok || key == "" {
					return fmt.Errorf("--param %q must be key=value", param)
				}

				values[key] = value
			}

			return o.withApplication(cmd, func(app *runtime.Application) error {
				entries, err := app.Queries.LoadOptions.Execute(cmd.Context(), queries.LoadOptionsQuery{
					Node:       node,
					Method:     method,
					Credential: credential,
					Params:     values,
					Refresh:    refresh,
				})
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{entry.Name, fmt.Sprint(entry.Value)})
				}

				return o.print(cmd.OutOrStdout(), entries, []string{"name", "value"}, rows)
			})
		},
	}

	cmd.Flags().StringVar(&node, "node", "", "node name")
	cmd.Flags().StringVar(&method, "method", "", "load options method, e.g. getAgents")
	cmd.Flags().StringVar(&credential, "credential", "", "credential name")
	cmd.Flags().StringArrayVar(&params, "param", nil, "form value as key=value, repeatable")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "skip the options cache")

	for _, name := range []string{"node", "method", "credential"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
