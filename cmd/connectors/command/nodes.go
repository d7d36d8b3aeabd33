package command

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/domain/schema"
	"github.com/architeacher/connectors/internal/runtime"
	"github.com/architeacher/connectors/internal/usecases/queries"
)

type nodeSummary struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	Credential  string   `json:"credential"`
	Resources   []string `json:"resources"`
}

func newNodesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List the registered nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApplication(cmd, func(app *runtime.Application) error {
				schemas, err := app.Queries.ListNodes.Execute(cmd.Context(), queries.ListNodesQuery{})
				if err != nil {
					return err
				}

				summaries := make([]nodeSummary, 0, len(schemas))
				rows := make([][]string, 0, len(schemas))

				for _, nodeSchema := range schemas {
					resources := make([]string, 0, len(nodeSchema.Resources))
					for _, resource := range nodeSchema.Resources {
						resources = append(resources, resource.Name)
					}

					summaries = append(summaries, nodeSummary{
						Name:        nodeSchema.Name,
						DisplayName: nodeSchema.DisplayName,
						Credential:  nodeSchema.Credential,
						Resources:   resources,
					})
					rows = append(rows, []string{nodeSchema.Name, nodeSchema.DisplayName, nodeSchema.Credential, strings.Join(resources, ", ")})
				}

				return o.print(cmd.OutOrStdout(), summaries, []string{"name", "display name", "credential", "resources"}, rows)
			})
		},
	}
}

func newFieldsCmd(o *options) *cobra.Command {
	var (
		node, resource, operation, values string
	)

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Describe the form fields of a node operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := model.Params{}
			if values != "" {
				if err := json.Unmarshal([]byte(values), &params); err != nil {
					return fmt.Errorf("--values must be a JSON object: %w", err)
				}
			}

			return o.withApplication(cmd, func(app *runtime.Application) error {
				fields, err := app.Queries.DescribeNode.Execute(cmd.Context(), queries.DescribeNodeQuery{
					Node:      node,
					Resource:  resource,
					Operation: model.Operation(operation),
					Values:    params,
				})
				if err != nil {
					return err
				}

				return o.print(cmd.OutOrStdout(), fields, []string{"name", "type", "required", "default", "options from"}, fieldRows(fields))
			})
		},
	}

	cmd.Flags().StringVar(&node, "node", "", "node name")
	cmd.Flags().StringVar(&resource, "resource", "", "resource name")
	cmd.Flags().StringVar(&operation, "operation", "", "operation name")
	cmd.Flags().StringVar(&values, "values", "", "form values entered so far, as a JSON object")
	_ = cmd.MarkFlagRequired("node")
	_ = cmd.MarkFlagRequired("resource")
	_ = cmd.MarkFlagRequired("operation")

	return cmd
}

func fieldRows(fields []schema.FieldSpec) [][]string {
	rows := make([][]string, 0, len(fields))

	for _, field := range fields {
		defaultValue := ""
		if field.Default != nil {
			defaultValue = fmt.Sprint(field.Default)
		}

		rows = append(rows, []string{
			field.Name,
			string(field.Type),
			strconv.FormatBool(field.Required),
			defaultValue,
			field.LoadOptionsMethod,
		})
	}

	return rows
}
