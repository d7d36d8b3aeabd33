package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// errorMessage extracts a readable message from an error response.
// Magento sends {"message": "...%1...", "parameters": [...]}; Freshservice
// sends {"description": "...", "errors": [{"field", "message"}]}.
func errorMessage(status int, body any, raw []byte) string {
	if object, ok := body.(map[string]any); ok {
		if message, ok := object["message"].(string); ok && message != "" {
			return substitute(message, object["parameters"])
		}

		if description, ok := object["description"].(string); ok && description != "" {
			if details := fieldErrors(object["errors"]); details != "" {
				return description + ": " + details
			}

			return description
		}

		if message, ok := object["error"].(string); ok && message != "" {
			return message
		}
	}

	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 512 && body == nil {
		return text
	}

	if text := http.StatusText(status); text != "" {
		return text
	}

	return fmt.Sprintf("unexpected status %d", status)
}

func substitute(message string, parameters any) string {
	switch params := parameters.(type) {
	case []any:
		for index := len(params) - 1; index >= 0; index-- {
			message = strings.ReplaceAll(message, "%"+strconv.Itoa(index+1), fmt.Sprint(params[index]))
		}
	case map[string]any:
		for key, value := range params {
			message = strings.ReplaceAll(message, "%"+key, fmt.Sprint(value))
		}
	}

	return message
}

func fieldErrors(errs any) string {
	list, ok := errs.([]any)
	if !ok {
		return ""
	}

	parts := make([]string, 0, len(list))

	for _, entry := range list {
		object, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		message, _ := object["message"].(string)
		if field, ok := object["field"].(string); ok && field != "" {
			message = field + " " + message
		}

		if message = strings.TrimSpace(message); message != "" {
			parts = append(parts, message)
		}
	}

	return strings.Join(parts, "; ")
}
