package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/shoefit/shoefit-server/internal/errors"
	"github.com/shoefit/shoefit-server/internal/http/response"
	"github.com/shoefit/shoefit-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// FieldError describes one failed request field from huma's schema checks.
type FieldError struct {
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
	Value    any    `json:"value,omitempty"`
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		var fields []FieldError
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
			}

			var storeErr *store.Error
			if errors.As(err, &storeErr) {
				return &APIError{
					status:  storeErr.HTTPCode(),
					Code:    string(response.CodeForStatus(storeErr.HTTPCode())),
					Message: storeErr.Message,
				}
			}

			var detail *huma.ErrorDetail
			if errors.As(err, &detail) {
				fields = append(fields, FieldError{
					Location: detail.Location,
					Message:  detail.Message,
					Value:    detail.Value,
				})
			}
		}

		// Anything else reaching a 500 is an unexpected failure; keep its
		// text out of the response.
		if status >= http.StatusInternalServerError && len(errs) > 0 {
			message = "internal server error"
		}

		apiErr := &APIError{
			status:  status,
			Code:    string(response.CodeForStatus(status)),
			Message: message,
		}
		if len(fields) > 0 {
			apiErr.Details = fields
		}
		return apiErr
	}
}
