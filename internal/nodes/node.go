package nodes

import (
	"context"
	"net/url"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/domain/schema"
)

type (
	// Request is one call against the credential's host.
	Request struct {
		Method string
		Path   string
		Query  url.Values
		// Body is encoded as JSON. Nil or an empty object sends no body.
		Body any
	}

	// API issues requests against the remote service of a node.
	API interface {
		Do(ctx context.Context, req Request) (any, error)
	}

	// ExecuteRequest is one item's resolved input.
	ExecuteRequest struct {
		Resource  string
		Operation model.Operation
		Params    model.Params
	}

	Node interface {
		Schema() *schema.NodeSchema
		// Execute runs one item and returns its output records.
		Execute(ctx context.Context, api API, req ExecuteRequest) ([]model.Item, error)
		// LoadOptions populates the dropdown served by method. params holds
		// the values entered so far, including "resource".
		LoadOptions(ctx context.Context, api API, method string, params model.Params) ([]model.Option, error)
		// LoadOptionsMethods lists the methods LoadOptions understands.
		LoadOptionsMethods() []string
	}
)
