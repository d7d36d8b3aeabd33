package nodes

import (
	"context"
	"fmt"

	"github.com/architeacher/connectors/internal/domain/model"
)

type RunRequest struct {
	Resource  string
	Operation model.Operation
	// Items holds the raw parameters of each input item. An empty list runs
	// one item without parameters.
	Items []model.Params
	// ContinueOnFail records a failed item as {"error": msg} and moves on
	// instead of aborting the run.
	ContinueOnFail bool
}

// Run processes the items one after another. Without ContinueOnFail the first
// failure stops the run and is returned as *model.ItemError together with
// the output gathered so far.
func Run(ctx context.Context, node Node, api API, req RunRequest) ([]model.Item, error) {
	schema := node.Schema()

	if !schema.SupportsOperation(req.Resource, req.Operation) {
		return nil, fmt.Errorf("%w: %s %s.%s", model.ErrUnsupportedOperation, schema.Name, req.Resource, req.Operation)
	}

	items := req.Items
	if len(items) == 0 {
		items = []model.Params{{}}
	}

	output := make([]model.Item, 0, len(items))

	for index, params := range items {
		if err := ctx.Err(); err != nil {
			return output, err
		}

		result, err := runItem(ctx, node, api, req, params)
		if err != nil {
			if req.ContinueOnFail && ctx.Err() == nil {
				output = append(output, model.ErrorItem(err))

				continue
			}

			return output, &model.ItemError{Index: index, Err: err}
		}

		output = append(output, result...)
	}

	return output, nil
}

func runItem(ctx context.Context, node Node, api API, req RunRequest, params model.Params) ([]model.Item, error) {
	resolved, err := node.Schema().Resolve(req.Resource, req.Operation, params)
	if err != nil {
		return nil, err
	}

	return node.Execute(ctx, api, ExecuteRequest{
		Resource:  req.Resource,
		Operation: req.Operation,
		Params:    resolved,
	})
}
