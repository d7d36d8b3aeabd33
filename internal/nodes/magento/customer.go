package magento

import (
	"context"
	"net/http"
	"net/url"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/nodes"
)

const (
	customersPath      = "/rest/V1/customers"
	customersStorePath = "/rest/default/V1/customers"
	customersSearch    = "/rest/default/V1/customers/search"
)

func (n *Node) executeCustomer(ctx context.Context, api nodes.API, operation model.Operation, params model.Params) ([]model.Item, error) {
	switch operation {
	case model.OperationCreate:
		body := newCustomerRequest(params.Collection("additionalFields"), true)
		body.Customer.Email = params.StringPtr("email")
		body.Customer.Firstname = params.StringPtr("firstname")
		body.Customer.Lastname = params.StringPtr("lastname")

		return send(ctx, api, http.MethodPost, customersPath, body)
	case model.OperationUpdate:
		fields := params.Collection("updateFields")
		if len(fields.Keys()) == 0 {
			return nil, model.ErrNoUpdateFieldsSupplied
		}

		id, _ := params.String("customerId")

		return send(ctx, api, http.MethodPut, customersPath+"/"+url.PathEscape(id), newCustomerRequest(fields, false))
	case model.OperationGet:
		id, _ := params.String("customerId")

		return send(ctx, api, http.MethodGet, customersStorePath+"/"+url.PathEscape(id), nil)
	case model.OperationDelete:
		id, _ := params.String("customerId")
		if _, err := api.Do(ctx, nodes.Request{Method: http.MethodDelete, Path: customersStorePath + "/" + url.PathEscape(id)}); err != nil {
			return nil, err
		}

		return []model.Item{model.DeletedItem()}, nil
	case model.OperationSearch:
		return searchItems(ctx, api, customersSearch, params)
	default:
		return nil, unsupported(resourceCustomer, operation)
	}
}

// newCustomerRequest maps the optional customer fields. A create always
// carries the address list and the custom attributes, even when empty.
func newCustomerRequest(fields model.Params, create bool) customerRequest {
	body := customerRequest{
		Customer: customer{
			Email:            fields.StringPtr("email"),
			Firstname:        fields.StringPtr("firstname"),
			Lastname:         fields.StringPtr("lastname"),
			Confirmation:     fields.StringPtr("confirmation"),
			Dob:              fields.StringPtr("dob"),
			DefaultBilling:   fields.StringPtr("default_billing"),
			DefaultShipping:  fields.StringPtr("default_shipping"),
			Gender:           fields.IntPtr("gender"),
			GroupID:          fields.IntPtr("group_id"),
			Middlename:       fields.StringPtr("middlename"),
			Prefix:           fields.StringPtr("prefix"),
			StoreID:          fields.IntPtr("store_id"),
			Suffix:           fields.StringPtr("suffix"),
			Taxvat:           fields.StringPtr("taxvat"),
			WebsiteID:        fields.IntPtr("website_id"),
			CustomAttributes: updateCustomAttributes(fields),
		},
		Password: fields.NonEmptyStringPtr("password"),
	}

	if fields.Has("addresses") || create {
		addresses := addressList(fields.Group("addresses", "address"))
		body.Customer.Addresses = &addresses
	}

	if create {
		body.Customer.CustomAttributes = createCustomAttributes(fields)
	}

	if fields.Has("extensionAttributes") {
		extension := fields.Collection("extensionAttributes")
		body.Customer.ExtensionAttributes = &customerExtension{
			AmazonID:              extension.StringPtr("amazon_id"),
			IsSubscribed:          extension.BoolPtr("is_subscribed"),
			VertexCustomerCode:    extension.StringPtr("vertex_customer_code"),
			VertexCustomerCountry: extension.StringPtr("vertex_customer_country"),
		}
	}

	return body
}

func addressList(entries []model.Params) []address {
	addresses := make([]address, 0, len(entries))

	for _, entry := range entries {
		a := address{
			City:            entry.StringPtr("city"),
			Company:         entry.StringPtr("company"),
			CountryID:       entry.StringPtr("country_id"),
			DefaultBilling:  entry.BoolPtr("default_billing"),
			DefaultShipping: entry.BoolPtr("default_shipping"),
			Fax:             entry.StringPtr("fax"),
			Firstname:       entry.StringPtr("firstname"),
			Lastname:        entry.StringPtr("lastname"),
			Middlename:      entry.StringPtr("middlename"),
			Postcode:        entry.StringPtr("postcode"),
			Prefix:          entry.StringPtr("prefix"),
			Suffix:          entry.StringPtr("suffix"),
			Telephone:       entry.StringPtr("telephone"),
		}

		if street, ok := entry.String("street"); ok {
			a.Street = []string{street}
		}

		if value, ok := entry.String("region"); ok {
			a.Region = &region{Region: value}
		}

		addresses = append(addresses, a)
	}

	return addresses
}

func send(ctx context.Context, api nodes.API, method, path string, body any) ([]model.Item, error) {
	response, err := api.Do(ctx, nodes.Request{Method: method, Path: path, Body: body})
	if err != nil {
		return nil, err
	}

	return nodes.Flatten(response), nil
}
