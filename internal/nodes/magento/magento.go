// Package magento implements the Magento 2 node: customers and products over
// the Magento REST API.
package magento

import (
	"context"
	"fmt"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/domain/schema"
	"github.com/architeacher/connectors/internal/nodes"
)

const (
	Name = "magento2"

	resourceCustomer = "customer"
	resourceProduct  = "product"
)

type Node struct {
	schema *schema.NodeSchema
}

func New() *Node {
	return &Node{schema: schema.MustLoad(Name)}
}

func (n *Node) Schema() *schema.NodeSchema {
	return n.schema
}

func (n *Node) Execute(ctx context.Context, api nodes.API, req nodes.ExecuteRequest) ([]model.Item, error) {
	switch req.Resource {
	case resourceCustomer:
		return n.executeCustomer(ctx, api, req.Operation, req.Params)
	case resourceProduct:
		return n.executeProduct(ctx, api, req.Operation, req.Params)
	default:
		return nil, fmt.Errorf("%w: %s %s.%s", model.ErrUnsupportedOperation, Name, req.Resource, req.Operation)
	}
}

func unsupported(resource string, operation model.Operation) error {
	return fmt.Errorf("%w: %s %s.%s", model.ErrUnsupportedOperation, Name, resource, operation)
}
