package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/architeacher/connectors/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/pkg/circuitbreaker"
)

const (
	apiVersion = "v1"

	codeInvalidJSON          = "INVALID_JSON"
	codeInvalidInput         = "INVALID_INPUT"
	codeValidationFailed     = "VALIDATION_FAILED"
	codeUnsupportedOperation = "UNSUPPORTED_OPERATION"
	codeNotFound             = "NOT_FOUND"
	codeUpstreamError        = "UPSTREAM_ERROR"
	codeUpstreamUnavailable  = "UPSTREAM_UNAVAILABLE"
	codeTimeout              = "TIMEOUT"
	codeInternalError        = "INTERNAL_ERROR"
)

type (
	ResponseMeta struct {
		RequestID  string `json:"requestId"`
		TraceID    string `json:"traceId,omitempty"`
		APIVersion string `json:"apiVersion"`
	}

	EnvelopedResponse struct {
		Data any          `json:"data"`
		Meta ResponseMeta `json:"meta"`
	}

	upstreamDetails struct {
		StatusCode int `json:"statusCode,omitempty"`
		Body       any `json:"body,omitempty"`
	}

	// executionDetails accompanies a run that stopped at a failed item.
	executionDetails struct {
		ExecutionID string       `json:"executionId"`
		ItemIndex   *int         `json:"itemIndex,omitempty"`
		Items       []model.Item `json:"items"`
		Upstream    any          `json:"upstream,omitempty"`
	}
)

func NewMeta(r *http.Request) ResponseMeta {
	meta := ResponseMeta{
		RequestID:  middleware.GetRequestID(r.Context()),
		APIVersion: apiVersion,
	}

	if spanCtx := trace.SpanContextFromContext(r.Context()); spanCtx.HasTraceID() {
		meta.TraceID = spanCtx.TraceID().String()
	}

	return meta
}

func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeEnveloped(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSONResponse(w, status, EnvelopedResponse{Data: data, Meta: NewMeta(r)})
}

// statusFor maps an error to its HTTP status and code.
func statusFor(err error) (int, string) {
	var (
		validation *model.ValidationErrors
		upstream   *model.UpstreamAPIError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, codeValidationFailed
	case errors.Is(err, model.ErrInvalidFilterJSON),
		errors.Is(err, model.ErrNoFilterSupplied),
		errors.Is(err, model.ErrNoUpdateFieldsSupplied):
		return http.StatusBadRequest, codeInvalidInput
	case errors.Is(err, model.ErrUnsupportedOperation):
		return http.StatusBadRequest, codeUnsupportedOperation
	case errors.Is(err, model.ErrUnknownNode),
		errors.Is(err, model.ErrCredentialNotFound),
		errors.Is(err, model.ErrUnknownLoadOptionsMethod):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, circuitbreaker.ErrCircuitOpen),
		errors.Is(err, model.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, codeUpstreamUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeTimeout
	case errors.As(err, &upstream):
		return http.StatusBadGateway, codeUpstreamError
	default:
		return http.StatusInternalServerError, codeInternalError
	}
}

func errorDetails(err error) any {
	var (
		validation *model.ValidationErrors
		upstream   *model.UpstreamAPIError
	)

	switch {
	case errors.As(err, &validation):
		return validation.Errors
	case errors.As(err, &upstream):
		return upstreamDetails{StatusCode: upstream.StatusCode, Body: upstream.Body}
	default:
		return nil
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	middleware.WriteErrorDetails(w, status, code, message, errorDetails(err))
}
