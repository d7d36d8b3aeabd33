// Package command holds the connectors command line: the HTTP service and
// one-shot node runs against the same configuration.
package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/internal/runtime"
)

const (
	outputJSON  = "json"
	outputTable = "table"
)

type options struct {
	credentialsFile string
	logLevel        string
	output          string
}

func NewCmd() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "connectors",
		Short: "Declarative workflow nodes for Magento 2 and Freshservice",
		Long: `Declarative workflow nodes for Magento 2 and Freshservice.

Configuration is read from the environment, for example:
  CREDENTIALS_SOURCE=file
  CREDENTIALS_FILE=credentials.yaml
  CACHE_ENABLED=true
  CACHE_ADDRESS=keydb:6379`,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if o.output != outputJSON && o.output != outputTable {
				return fmt.Errorf("unsupported output %q, want %s or %s", o.output, outputJSON, outputTable)
			}

			return nil
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	cmd.PersistentFlags().StringVar(&o.credentialsFile, "credentials-file", "", "read credentials from this YAML file instead of the configured source")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "override LOG_LEVEL")
	cmd.PersistentFlags().StringVarP(&o.output, "output", "o", outputJSON, "json, or table for nodes, fields and options")

	cmd.AddCommand(
		newServeCmd(o),
		newNodesCmd(o),
		newFieldsCmd(o),
		newExecCmd(o),
		newOptionsCmd(o),
		newVersionCmd(),
	)

	return cmd
}

func (o *options) overrides() []func(*config.ServiceConfig) {
	return []func(*config.ServiceConfig){
		func(cfg *config.ServiceConfig) {
			if o.credentialsFile != "" {
				cfg.Credentials.Source = config.CredentialSourceFile
				cfg.Credentials.File = o.credentialsFile
			}

			if o.logLevel != "" {
				cfg.Logging.Level = o.logLevel
			}
		},
	}
}

// withApplication builds the application, runs fn and releases it.
func (o *options) withApplication(cmd *cobra.Command, fn func(app *runtime.Application) error) error {
	app, err := runtime.NewApplication(cmd.Context(), cmd.ErrOrStderr(), o.overrides()...)
	if err != nil {
		return err
	}

	defer app.Close(context.WithoutCancel(cmd.Context()))

	return fn(app)
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

// print writes v as JSON, or as a table of rows when the table output was
// requested.
func (o *options) print(w io.Writer, v any, header []string, rows [][]string) error {
	if o.output != outputTable {
		return printJSON(w, v)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()

	return nil
}
