package magento

import (
	"context"
	"net/http"
	"net/url"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/nodes"
)

const productsPath = "/rest/default/V1/products"

func (n *Node) executeProduct(ctx context.Context, api nodes.API, operation model.Operation, params model.Params) ([]model.Item, error) {
	sku, _ := params.String("sku")
	skuPath := productsPath + "/" + url.PathEscape(sku)

	switch operation {
	case model.OperationCreate:
		fields := params.Collection("additionalFields")

		body := productRequest{Product: newProduct(sku, fields)}
		body.Product.AttributeSetID = params.IntPtr("attributeSetId")
		body.Product.Name = params.StringPtr("name")
		body.Product.CustomAttributes = createCustomAttributes(fields)

		return send(ctx, api, http.MethodPost, productsPath, body)
	case model.OperationUpdate:
		fields := params.Collection("updateFields")
		if len(fields.Keys()) == 0 {
			return nil, model.ErrNoUpdateFieldsSupplied
		}

		body := productRequest{Product: newProduct(sku, fields)}
		body.Product.CustomAttributes = updateCustomAttributes(fields)

		return send(ctx, api, http.MethodPut, skuPath, body)
	case model.OperationGet:
		return send(ctx, api, http.MethodGet, skuPath, nil)
	case model.OperationDelete:
		if _, err := api.Do(ctx, nodes.Request{Method: http.MethodDelete, Path: skuPath}); err != nil {
			return nil, err
		}

		return []model.Item{model.DeletedItem()}, nil
	case model.OperationSearch:
		return searchItems(ctx, api, productsPath, params)
	default:
		return nil, unsupported(resourceProduct, operation)
	}
}

func newProduct(sku string, fields model.Params) product {
	p := product{
		SKU:            sku,
		AttributeSetID: fields.IntPtr("attribute_set_id"),
		Name:           fields.StringPtr("name"),
		Price:          fields.FloatPtr("price"),
		Status:         fields.IntPtr("status"),
		TypeID:         fields.StringPtr("type_id"),
		Visibility:     fields.IntPtr("visibility"),
		Weight:         fields.FloatPtr("weight"),
	}

	if category, ok := fields.String("category"); ok && category != "" {
		p.ExtensionAttributes = &productExtension{
			CategoryLinks: []categoryLink{{Position: 0, CategoryID: category}},
		}
	}

	return p
}
