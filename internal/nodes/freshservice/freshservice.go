// Package freshservice implements the Freshservice node: asset types, changes
// and departments over the v2 REST API.
package freshservice

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/domain/paging"
	"github.com/architeacher/connectors/internal/domain/schema"
	"github.com/architeacher/connectors/internal/nodes"
)

const (
	Name = "freshservice"

	apiPrefix = "/api/v2/"

	// perPage is the largest page the API serves.
	perPage      = 100
	defaultLimit = 50
)

// endpoint describes where a resource lives and how its responses are
// wrapped.
type endpoint struct {
	path     string
	singular string
	plural   string
	idParam  string
}

var endpoints = map[string]endpoint{
	"assetType":  {path: "asset_types", singular: "asset_type", plural: "asset_types", idParam: "assetTypeId"},
	"change":     {path: "changes", singular: "change", plural: "changes", idParam: "changeId"},
	"department": {path: "departments", singular: "department", plural: "departments", idParam: "departmentId"},
}

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
	ep, ok := endpoints[req.Resource]
	if !ok {
		return nil, unsupported(req.Resource, req.Operation)
	}

	params := req.Params
	recordPath := ep.path + "/" + url.PathEscape(params.StringOr(ep.idParam, ""))

	switch req.Operation {
	case model.OperationCreate:
		body, err := createBody(req.Resource, params)
		if err != nil {
			return nil, err
		}

		return ep.one(ctx, api, http.MethodPost, ep.path, body)
	case model.OperationUpdate:
		fields := params.Collection("updateFields")
		if len(fields.Keys()) == 0 {
			return nil, model.ErrNoUpdateFieldsSupplied
		}

		body, err := updateBody(req.Resource, fields)
		if err != nil {
			return nil, err
		}

		return ep.one(ctx, api, http.MethodPut, recordPath, body)
	case model.OperationGet:
		return ep.one(ctx, api, http.MethodGet, recordPath, nil)
	case model.OperationDelete:
		if _, err := api.Do(ctx, nodes.Request{Method: http.MethodDelete, Path: apiPrefix + recordPath}); err != nil {
			return nil, err
		}

		return []model.Item{model.DeletedItem()}, nil
	case model.OperationGetAll:
		return ep.all(ctx, api, listQuery(req.Resource, params.Collection("filters")), params)
	default:
		return nil, unsupported(req.Resource, req.Operation)
	}
}

func (e endpoint) one(ctx context.Context, api nodes.API, method, path string, body any) ([]model.Item, error) {
	response, err := api.Do(ctx, nodes.Request{Method: method, Path: apiPrefix + path, Body: body})
	if err != nil {
		return nil, err
	}

	if record, ok := nodes.Object(response)[e.singular]; ok {
		return nodes.Flatten(record), nil
	}

	return nodes.Flatten(response), nil
}

// all lists records. With returnAll every page is walked; otherwise the
// first page is fetched with per_page set to the limit.
func (e endpoint) all(ctx context.Context, api nodes.API, query url.Values, params model.Params) ([]model.Item, error) {
	if returnAll, _ := params.Bool("returnAll"); returnAll {
		result, err := e.collect(ctx, api, query)
		if err != nil {
			return nil, err
		}

		return result.Items, nil
	}

	limit := params.IntOr("limit", defaultLimit)

	page, err := e.page(ctx, api, query, paging.FirstPage, limit)
	if err != nil {
		return nil, err
	}

	return paging.Limit(page.Items, limit), nil
}

func (e endpoint) collect(ctx context.Context, api nodes.API, query url.Values) (paging.Result, error) {
	return paging.CollectUntilShort(ctx, perPage, func(ctx context.Context, page int) (paging.Page, error) {
		return e.page(ctx, api, query, page, perPage)
	})
}

func (e endpoint) page(ctx context.Context, api nodes.API, query url.Values, page, size int) (paging.Page, error) {
	values := url.Values{}
	for key, list := range query {
		values[key] = append([]string(nil), list...)
	}

	values.Set("page", strconv.Itoa(page))
	values.Set("per_page", strconv.Itoa(size))

	response, err := api.Do(ctx, nodes.Request{Method: http.MethodGet, Path: apiPrefix + e.path, Query: values})
	if err != nil {
		return paging.Page{}, err
	}

	return paging.Page{Items: nodes.Flatten(nodes.Field(response, e.plural))}, nil
}

// listQuery maps the getAll filters onto query parameters.
func listQuery(resource string, filters model.Params) url.Values {
	query := url.Values{}

	switch resource {
	case "change":
		if value, ok := filters.String("type"); ok && value != "" {
			query.Set("filter", value)
		}

		if value, ok := filters.String("sort_by"); ok && value != "" {
			query.Set("order_type", value)
		}

		if value, ok := filters.String("updated_since"); ok && value != "" {
			query.Set("updated_since", value)
		}
	case "department":
		if value, ok := filters.String("name"); ok && value != "" {
			query.Set("query", fmt.Sprintf("name:'%s'", value))
		}
	}

	return query
}

func unsupported(resource string, operation model.Operation) error {
	return fmt.Errorf("%w: %s %s.%s", model.ErrUnsupportedOperation, Name, resource, operation)
}
