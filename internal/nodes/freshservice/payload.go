package freshservice

import (
	"fmt"
	"strings"

	"github.com/architeacher/connectors/internal/domain/model"
)

type (
	assetType struct {
		Name              *string `json:"name,omitempty"`
		Description       *string `json:"description,omitempty"`
		ParentAssetTypeID *int    `json:"parent_asset_type_id,omitempty"`
	}

	change struct {
		RequesterID    *int    `json:"requester_id,omitempty"`
		AgentID        *int    `json:"agent_id,omitempty"`
		ApprovalStatus *int    `json:"approval_status,omitempty"`
		ChangeType     *int    `json:"change_type,omitempty"`
		DepartmentID   *int    `json:"department_id,omitempty"`
		Description    *string `json:"description,omitempty"`
		GroupID        *int    `json:"group_id,omitempty"`
		Impact         *int    `json:"impact,omitempty"`
		Priority       *int    `json:"priority,omitempty"`
		Risk           *int    `json:"risk,omitempty"`
		Status         *int    `json:"status,omitempty"`
		Subject        *string `json:"subject,omitempty"`
	}

	department struct {
		Name        *string  `json:"name,omitempty"`
		Description *string  `json:"description,omitempty"`
		Domains     []string `json:"domains,omitempty"`
	}
)

// createBody merges the required top-level inputs with the additional fields.
func createBody(resource string, params model.Params) (any, error) {
	fields := params.Collection("additionalFields").Clone()
	if fields == nil {
		fields = model.Params{}
	}

	for _, name := range []string{"name", "requester_id"} {
		if params.Has(name) {
			fields[name] = params[name]
		}
	}

	return updateBody(resource, fields)
}

func updateBody(resource string, fields model.Params) (any, error) {
	switch resource {
	case "assetType":
		return assetType{
			Name:              fields.StringPtr("name"),
			Description:       fields.StringPtr("description"),
			ParentAssetTypeID: fields.IntPtr("parent_asset_type_id"),
		}, nil
	case "change":
		return change{
			RequesterID:    fields.IntPtr("requester_id"),
			AgentID:        fields.IntPtr("agent_id"),
			ApprovalStatus: fields.IntPtr("approval_status"),
			ChangeType:     fields.IntPtr("change_type"),
			DepartmentID:   fields.IntPtr("department_id"),
			Description:    fields.StringPtr("description"),
			GroupID:        fields.IntPtr("group_id"),
			Impact:         fields.IntPtr("impact"),
			Priority:       fields.IntPtr("priority"),
			Risk:           fields.IntPtr("risk"),
			Status:         fields.IntPtr("status"),
			Subject:        fields.StringPtr("subject"),
		}, nil
	case "department":
		return department{
			Name:        fields.StringPtr("name"),
			Description: fields.StringPtr("description"),
			Domains:     splitList(fields, "domains"),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s %s", model.ErrUnsupportedOperation, Name, resource)
	}
}

// splitList turns a comma-separated input into its trimmed, non-empty parts.
func splitList(fields model.Params, name string) []string {
	raw, ok := fields.String(name)
	if !ok {
		return nil
	}

	var parts []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}

	return parts
}
