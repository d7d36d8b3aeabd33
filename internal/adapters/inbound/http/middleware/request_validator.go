package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/architeacher/connectors/pkg/logger"
)

const codeInvalidRequest = "INVALID_REQUEST"

// RequestValidationFailure names the part of the request that broke the contract.
type RequestValidationFailure struct {
	In     string `json:"in"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// RequestValidator rejects requests that do not match doc with 400.
// Requests for routes doc does not describe pass through untouched, so the
// router still answers them with 404 or 405.
func RequestValidator(doc *openapi3.T, serverURL string, maxBodyBytes int64, log logger.Logger) (func(http.Handler) http.Handler, error) {
	doc.Servers = openapi3.Servers{{URL: serverURL}}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("building openapi router: %w", err)
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)

				return
			}

			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				if !errors.Is(err, routers.ErrPathNotFound) && !errors.Is(err, routers.ErrMethodNotAllowed) {
					log.Warn().Err(err).Str("path", r.URL.Path).Msg("openapi route lookup failed")
				}

				next.ServeHTTP(w, r)

				return
			}

			if maxBodyBytes > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			}

			err = openapi3filter.ValidateRequest(r.Context(), &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			})
			if err == nil {
				next.ServeHTTP(w, r)

				return
			}

			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large")

				return
			}

			var requestErr *openapi3filter.RequestError
			if !errors.As(err, &requestErr) {
				log.Error().Err(err).Str("path", r.URL.Path).Msg("request validation failed unexpectedly")
				WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")

				return
			}

			WriteErrorDetails(w, http.StatusBadRequest, codeInvalidRequest,
				"request does not match the API contract", []RequestValidationFailure{describeFailure(requestErr)})
		})
	}, nil
}

func describeFailure(err *openapi3filter.RequestError) RequestValidationFailure {
	failure := RequestValidationFailure{In: "body", Reason: err.Reason}

	if err.Parameter != nil {
		failure.In = err.Parameter.In
		failure.Name = err.Parameter.Name
	}

	var schemaErr *openapi3.SchemaError
	switch {
	case errors.As(err.Err, &schemaErr):
		failure.Reason = schemaErr.Reason
		if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
			failure.Name = strings.Join(pointer, ".")
		}
	case failure.Reason == "" && err.Err != nil:
		failure.Reason = err.Err.Error()
	}

	return failure
}
