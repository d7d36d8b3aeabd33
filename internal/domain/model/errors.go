package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFilterJSON        = errors.New("filter (JSON) must be a valid json")
	ErrNoFilterSupplied         = errors.New("at least one filter must be defined")
	ErrNoUpdateFieldsSupplied   = errors.New("at least one parameter has to be updated")
	ErrUnknownNode              = errors.New("unknown node")
	ErrUnsupportedOperation     = errors.New("unsupported resource operation")
	ErrUnknownLoadOptionsMethod = errors.New("unknown load options method")
	ErrCredentialNotFound       = errors.New("credential not found")
	ErrServiceUnavailable       = errors.New("service unavailable")
)

// UpstreamAPIError is returned for non-2xx responses and transport failures.
// StatusCode is 0 when no response was received.
type UpstreamAPIError struct {
	StatusCode int
	Message    string
	Body       any
	Err        error
}

func (e *UpstreamAPIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream request failed: %s", e.Message)
	}

	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
}

func (e *UpstreamAPIError) Unwrap() error {
	return e.Err
}

// ItemError ties a failure to the input item that produced it.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %s", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

type ValidationError struct {
	Field   string
	Message string
	Code    string
}

type ValidationErrors struct {
	Errors []ValidationError
}

func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}

	return v.Errors[0].Message
}

func (v *ValidationErrors) Add(field, message, code string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
		Code:    code,
	})
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]ValidationError, 0),
	}
}
