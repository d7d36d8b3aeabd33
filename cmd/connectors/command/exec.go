package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/runtime"
	"github.com/architeacher/connectors/internal/usecases/commands"
)

func newExecCmd(o *options) *cobra.Command {
	var (
		node, resource, operation, credential, input string
		continueOnFail                               bool
	)

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run a node operation once per input item",
		Long: `Run a node operation once per input item and print the execution.

--input names a JSON file holding one item object or an array of them; "-"
reads standard input. Without --input the operation runs once with no
parameters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := readItems(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}

			return o.withApplication(cmd, func(app *runtime.Application) error {
				execution, err := app.Commands.ExecuteNode.Handle(cmd.Context(), commands.ExecuteNodeCommand{
					Node:           node,
					Resource:       resource,
					Operation:      model.Operation(operation),
					Credential:     credential,
					Items:          items,
					ContinueOnFail: continueOnFail,
				})
				if execution != nil {
					if printErr := printJSON(cmd.OutOrStdout(), execution); printErr != nil {
						return printErr
					}
				}

				return err
			})
		},
	}

	cmd.Flags().StringVar(&node, "node", "", "node name")
	cmd.Flags().StringVar(&resource, "resource", "", "resource name")
	cmd.Flags().StringVar(&operation, "operation", "", "operation name")
	cmd.Flags().StringVar(&credential, "credential", "", "credential name")
	cmd.Flags().StringVarP(&input, "input", "i", "", `JSON file with the input items, "-" for stdin`)
	cmd.Flags().BoolVar(&continueOnFail, "continue-on-fail", false, "record failed items as {\"error\": ...} and keep going")

	for _, name := range []string{"node", "resource", "operation", "credential"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func readItems(stdin io.Reader, input string) ([]model.Params, error) {
	var (
		data []byte
		err  error
	)

	switch input {
	case "":
		return []model.Params{{}}, nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(input)
	}

	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	data = bytes.TrimSpace(data)

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	if len(data) > 0 && data[0] == '[' {
		var items []model.Params
		if err := decoder.Decode(&items); err != nil {
			return nil, fmt.Errorf("decoding input items: %w", err)
		}

		return items, nil
	}

	var item model.Params
	if err := decoder.Decode(&item); err != nil {
		return nil, fmt.Errorf("decoding input item: %w", err)
	}

	return []model.Params{item}, nil
}
