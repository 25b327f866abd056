package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
	"github.com/mymichiganlake/lakes-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// Every error body has the shape {"code", "detail", "details"}.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Detail  string `json:"detail" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Detail
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this before registering routes.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				if domainErr.Code == domainerrors.CodeInternal {
					logger.Error("Internal error", "error", err)
				}
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Detail:  domainErr.Message,
					Details: domainErr.Details,
				}
			}

			var storeErr *store.Error
			if errors.As(err, &storeErr) {
				return &APIError{
					status: storeErr.HTTPCode(),
					Code:   string(domainerrors.CodeForStatus(storeErr.HTTPCode())),
					Detail: storeErr.Message,
				}
			}
		}

		// Request validation failures are reported as 400 with per-field details.
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		details := fieldDetails(errs)

		if status >= http.StatusInternalServerError {
			logger.Error("Unhandled error", "status", status, "message", message, "errors", errs)
			message = "internal server error"
			details = nil
		}

		apiErr := &APIError{
			status: status,
			Code:   string(domainerrors.CodeForStatus(status)),
			Detail: message,
		}
		if len(details) > 0 {
			apiErr.Details = details
		}
		return apiErr
	}
}

// fieldDetails collects huma's per-location messages.
func fieldDetails(errs []error) map[string]string {
	details := make(map[string]string)
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if errors.As(err, &detail) {
			loc := detail.Location
			if loc == "" {
				loc = "request"
			}
			details[loc] = detail.Message
		}
	}
	return details
}
