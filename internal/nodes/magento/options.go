package magento

import (
	"context"
	"net/http"
	"net/url"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/domain/search"
	"github.com/architeacher/connectors/internal/nodes"
)

type loader func(ctx context.Context, api nodes.API, params model.Params) ([]model.Option, error)

func (n *Node) loaders() map[string]loader {
	return map[string]loader{
		"getAttributeSets":     loadAttributeSets,
		"getCategories":        loadCategories,
		"getCountries":         loadCountries,
		"getCustomAttributes":  loadCustomAttributes,
		"getGroups":            loadGroups,
		"getProductAttributes": loadProductAttributes,
		"getProductTypes":      loadProductTypes,
		"getStores":            loadStores,
		"getSystemAttributes":  loadSystemAttributes,
		"getWebsites":          loadWebsites,
	}
}

func (n *Node) LoadOptionsMethods() []string {
	return nodes.MethodNames(n.loaders())
}

// LoadOptions fetches the dropdown entries of method. params carries the
// current form values; "resource" selects whose attributes are listed.
func (n *Node) LoadOptions(ctx context.Context, api nodes.API, method string, params model.Params) ([]model.Option, error) {
	load, ok := n.loaders()[method]
	if !ok {
		return nil, nodes.UnknownMethod(Name, method)
	}

	return load(ctx, api, params)
}

func fetch(ctx context.Context, api nodes.API, path string, query url.Values) (any, error) {
	return api.Do(ctx, nodes.Request{Method: http.MethodGet, Path: path, Query: query})
}

func loadCountries(ctx context.Context, api nodes.API, _ model.Params) ([]model.Option, error) {
	body, err := fetch(ctx, api, "/rest/default/V1/directory/countries", nil)
	if err != nil {
		return nil, err
	}

	return nodes.Options(nodes.Flatten(body), "full_name_english", "id", nil), nil
}

// loadGroups lists the default customer group, the only one the API exposes
// without admin scope.
func loadGroups(ctx context.Context, api nodes.API, _ model.Params) ([]model.Option, error) {
	body, err := fetch(ctx, api, "/rest/default/V1/customerGroups/default", nil)
	if err != nil {
		return nil, err
	}

	return nodes.Options(nodes.Flatten(body), "code", "id", nil), nil
}

func loadStores(ctx context.Context, api nodes.API, _ model.Params) ([]model.Option, error) {
	body, err := fetch(ctx, api, "/rest/default/V1/store/storeConfigs", nil)
	if err != nil {
		return nil, err
	}

	return nodes.Options(nodes.Flatten(body), "base_url", "id", nil), nil
}

func loadWebsites(ctx context.Context, api nodes.API, _ model.Params) ([]model.Option, error) {
	body, err := fetch(ctx, api, "/rest/default/V1/store/websites", nil)
	if err != nil {
		return nil, err
	}

	return nodes.Options(nodes.Flatten(body), "name", "id", nil), nil
}

func loadCustomAttributes(ctx context.Context, api nodes.API, params model.Params) ([]model.Option, error) {
	if params.StringOr("resource", resourceCustomer) == resourceProduct {
		return productAttributes(ctx, api, func(attribute model.Params) bool {
			userDefined, _ := attribute.Bool("is_user_defined")

			return userDefined
		})
	}

	return customerAttributes(ctx, api, func(attribute model.Params) bool {
		system, ok := attribute.Bool("system")

		return ok && !system
	})
}

func loadSystemAttributes(ctx context.Context, api nodes.API, params model.Params) ([]model.Option, error) {
	if params.StringOr("resource", resourceCustomer) == resourceProduct {
		return productAttributes(ctx, api, func(attribute model.Params) bool {
			userDefined, _ := attribute.Bool("is_user_defined")

			return !userDefined
		})
	}

	return customerAttributes(ctx, api, func(attribute model.Params) bool {
		system, _ := attribute.Bool("system")

		return system && attribute.Has("frontend_label")
	})
}

func customerAttributes(ctx context.Context, api nodes.API, keep func(model.Params) bool) ([]model.Option, error) {
	body, err := fetch(ctx, api, "/rest/default/V1/attributeMetadata/customer", nil)
	if err != nil {
		return nil, err
	}

	return nodes.Options(nodes.Flatten(body), "frontend_label", "attribute_code", keep), nil
}

func loadProductAttributes(ctx context.Context, api nodes.API, _ model.Params) ([]model.Option, error) {
	return productAttributes(ctx, api, nil)
}

func productAttributes(ctx context.Context, api nodes.API, keep func(model.Params) bool) ([]model.Option, error) {
	body, err := fetch(ctx, api, "/rest/default/V1/products/attributes", unfiltered())
	if err != nil {
		return nil, err
	}

	return nodes.Options(nodes.Flatten(nodes.Field(body, "items")), "default_frontend_label", "attribute_code", keep), nil
}

func loadProductTypes(ctx context.Context, api nodes.API, _ model.Params) ([]model.Option, error) {
	body, err := fetch(ctx, api, "/rest/default/V1/products/types", nil)
	if err != nil {
		return nil, err
	}

	return nodes.Options(nodes.Flatten(body), "label", "name", nil), nil
}

func loadCategories(ctx context.Context, api nodes.API, _ model.Params) ([]model.Option, error) {
	criteria, err := model.NewCriteria().Where("is_active", model.ConditionEq, 1).Build()
	if err != nil {
		return nil, err
	}

	body, err := fetch(ctx, api, "/rest/default/V1/categories/list", search.FromCriteria(criteria).Values())
	if err != nil {
		return nil, err
	}

	return nodes.Options(nodes.Flatten(nodes.Field(body, "items")), "name", "id", nil), nil
}

func loadAttributeSets(ctx context.Context, api nodes.API, _ model.Params) ([]model.Option, error) {
	body, err := fetch(ctx, api, "/rest/default/V1/products/attribute-sets/sets/list", unfiltered())
	if err != nil {
		return nil, err
	}

	return nodes.Options(nodes.Flatten(nodes.Field(body, "items")), "attribute_set_name", "attribute_set_id", nil), nil
}

// unfiltered asks list endpoints for every record.
func unfiltered() url.Values {
	return url.Values{"search_criteria": {"0"}}
}
