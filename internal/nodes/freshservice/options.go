package freshservice

import (
	"context"
	"strings"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/nodes"
)

// listing is a load options source: every record of an endpoint mapped to a
// name and an id.
type listing struct {
	endpoint endpoint
	name     func(record model.Params) string
}

var listings = map[string]listing{
	"getAgentGroups": {endpoint: endpoint{path: "groups", plural: "groups"}, name: field("name")},
	"getAgents":      {endpoint: endpoint{path: "agents", plural: "agents"}, name: fullName},
	"getAssetTypes":  {endpoint: endpoints["assetType"], name: field("name")},
	"getDepartments": {endpoint: endpoints["department"], name: field("name")},
	"getRequesters":  {endpoint: endpoint{path: "requesters", plural: "requesters"}, name: fullName},
}

func (n *Node) LoadOptionsMethods() []string {
	return nodes.MethodNames(listings)
}

func (n *Node) LoadOptions(ctx context.Context, api nodes.API, method string, _ model.Params) ([]model.Option, error) {
	source, ok := listings[method]
	if !ok {
		return nil, nodes.UnknownMethod(Name, method)
	}

	result, err := source.endpoint.collect(ctx, api, nil)
	if err != nil {
		return nil, err
	}

	options := make([]model.Option, 0, len(result.Items))

	for _, item := range result.Items {
		record := model.Params(item)
		if name := source.name(record); name != "" {
			options = append(options, model.Option{Name: name, Value: record["id"]})
		}
	}

	nodes.SortOptions(options)

	return options, nil
}

func field(key string) func(model.Params) string {
	return func(record model.Params) string {
		return record.StringOr(key, "")
	}
}

func fullName(record model.Params) string {
	return strings.TrimSpace(record.StringOr("first_name", "") + " " + record.StringOr("last_name", ""))
}
