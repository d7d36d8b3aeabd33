package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/architeacher/connectors/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/domain/schema"
	"github.com/architeacher/connectors/internal/usecases"
	"github.com/architeacher/connectors/internal/usecases/commands"
	"github.com/architeacher/connectors/internal/usecases/queries"
	"github.com/architeacher/connectors/pkg/decorator"
)

const cacheStatusHeader = "X-Cache"

type (
	nodeSummary struct {
		Name        string                `json:"name"`
		DisplayName string                `json:"displayName"`
		Description string                `json:"description,omitempty"`
		Credential  string                `json:"credential"`
		Resources   []schema.ResourceSpec `json:"resources"`
		Methods     []string              `json:"loadOptionsMethods,omitempty"`
	}

	executeRequest struct {
		Resource       string          `json:"resource"`
		Operation      model.Operation `json:"operation"`
		Credential     string          `json:"credential"`
		Items          []model.Params  `json:"items"`
		ContinueOnFail bool            `json:"continueOnFail"`
	}

	NodesHandler struct {
		app          *usecases.WebApplication
		maxBodyBytes int64
	}
)

func NewNodesHandler(app *usecases.WebApplication, maxBodyBytes int64) *NodesHandler {
	return &NodesHandler{app: app, maxBodyBytes: maxBodyBytes}
}

func (h *NodesHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	schemas, err := h.app.Queries.ListNodes.Execute(r.Context(), queries.ListNodesQuery{})
	if err != nil {
		writeError(w, err)

		return
	}

	summaries := make([]nodeSummary, 0, len(schemas))
	for _, nodeSchema := range schemas {
		summaries = append(summaries, nodeSummary{
			Name:        nodeSchema.Name,
			DisplayName: nodeSchema.DisplayName,
			Description: nodeSchema.Description,
			Credential:  nodeSchema.Credential,
			Resources:   nodeSchema.Resources,
			Methods:     loadOptionsMethods(nodeSchema.Fields),
		})
	}

	writeEnveloped(w, r, http.StatusOK, summaries)
}

// DescribeNode answers GET /nodes/{node}/fields?resource=&operation=&values=.
// values is an optional JSON object with the form values entered so far.
func (h *NodesHandler) DescribeNode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	values := model.Params{}
	if raw := query.Get("values"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, codeInvalidJSON, "values must be a JSON object")

			return
		}
	}

	fields, err := h.app.Queries.DescribeNode.Execute(r.Context(), queries.DescribeNodeQuery{
		Node:      chi.URLParam(r, "node"),
		Resource:  query.Get("resource"),
		Operation: model.Operation(query.Get("operation")),
		Values:    values,
	})
	if err != nil {
		writeError(w, err)

		return
	}

	writeEnveloped(w, r, http.StatusOK, fields)
}

func (h *NodesHandler) ExecuteNode(w http.ResponseWriter, r *http.Request) {
	var req executeRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	decoder.UseNumber()

	if err := decoder.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large")

			return
		}

		if errors.Is(err, io.EOF) {
			middleware.WriteError(w, http.StatusBadRequest, codeInvalidJSON, "request body is required")

			return
		}

		middleware.WriteError(w, http.StatusBadRequest, codeInvalidJSON, "invalid request body")

		return
	}

	if validation := req.validate(); validation.HasErrors() {
		writeError(w, validation)

		return
	}

	execution, err := h.app.Commands.ExecuteNode.Handle(r.Context(), commands.ExecuteNodeCommand{
		Node:           chi.URLParam(r, "node"),
		Resource:       req.Resource,
		Operation:      req.Operation,
		Credential:     req.Credential,
		Items:          req.Items,
		ContinueOnFail: req.ContinueOnFail,
	})
	if err != nil {
		writeExecutionError(w, execution, err)

		return
	}

	writeEnveloped(w, r, http.StatusOK, execution)
}

// LoadOptions answers GET /nodes/{node}/options/{method}?credential=. Every
// other query parameter except refresh is passed on as a form value.
func (h *NodesHandler) LoadOptions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	credential := query.Get("credential")
	if credential == "" {
		validation := model.NewValidationErrors()
		validation.Add("credential", "credential is required", "required")
		writeError(w, validation)

		return
	}

	refresh, _ := strconv.ParseBool(query.Get("refresh"))

	params := model.Params{}
	for key, values := range query {
		if key == "credential" || key == "refresh" || len(values) == 0 {
			continue
		}

		params[key] = values[0]
	}

	ctx, cacheStatus := decorator.WithCacheStatusRecorder(r.Context())

	options, err := h.app.Queries.LoadOptions.Execute(ctx, queries.LoadOptionsQuery{
		Node:       chi.URLParam(r, "node"),
		Method:     chi.URLParam(r, "method"),
		Credential: credential,
		Params:     params,
		Refresh:    refresh,
	})
	if err != nil {
		writeError(w, err)

		return
	}

	w.Header().Set(cacheStatusHeader, string(cacheStatus()))
	writeEnveloped(w, r, http.StatusOK, options)
}

func (h *NodesHandler) Health(w http.ResponseWriter, r *http.Request) {
	report, err := h.app.Queries.FetchHealthReport.Execute(r.Context(), queries.FetchHealthReportQuery{})
	if err != nil {
		writeError(w, err)

		return
	}

	status := http.StatusOK
	if report.Status != model.HealthStatusOK {
		status = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, status, report)
}

func (req executeRequest) validate() *model.ValidationErrors {
	validation := model.NewValidationErrors()

	if req.Resource == "" {
		validation.Add("resource", "resource is required", "required")
	}

	if req.Operation == "" {
		validation.Add("operation", "operation is required", "required")
	}

	if req.Credential == "" {
		validation.Add("credential", "credential is required", "required")
	}

	return validation
}

func writeExecutionError(w http.ResponseWriter, execution *model.Execution, err error) {
	if execution == nil {
		writeError(w, err)

		return
	}

	status, code := statusFor(err)
	details := executionDetails{
		ExecutionID: execution.ID,
		Items:       execution.Items,
		Upstream:    errorDetails(err),
	}

	var itemErr *model.ItemError
	if errors.As(err, &itemErr) {
		details.ItemIndex = &itemErr.Index
	}

	if details.Items == nil {
		details.Items = []model.Item{}
	}

	middleware.WriteErrorDetails(w, status, code, err.Error(), details)
}

func loadOptionsMethods(fields []schema.FieldSpec) []string {
	seen := make(map[string]struct{})
	methods := make([]string, 0)

	var walk func([]schema.FieldSpec)
	walk = func(fields []schema.FieldSpec) {
		for _, field := range fields {
			if field.LoadOptionsMethod != "" {
				if _, ok := seen[field.LoadOptionsMethod]; !ok {
					seen[field.LoadOptionsMethod] = struct{}{}
					methods = append(methods, field.LoadOptionsMethod)
				}
			}

			walk(field.Fields)
		}
	}

	walk(fields)

	return methods
}
