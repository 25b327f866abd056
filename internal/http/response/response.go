// Package response writes JSON bodies for handlers that run outside huma,
// such as router-level middleware and fallbacks.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
	"github.com/mymichiganlake/lakes-server/internal/store"
)

// ErrorBody is the error shape shared with huma handlers.
type ErrorBody struct {
	Code    string `json:"code"`
	Detail  string `json:"detail"`
	Details any    `json:"details,omitempty"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Error writes an error body whose code is derived from status.
func Error(w http.ResponseWriter, status int, detail string, logger *slog.Logger) {
	JSON(w, status, ErrorBody{
		Code:   string(domainerrors.CodeForStatus(status)),
		Detail: detail,
	}, logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, detail string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, detail, logger)
}

// MethodNotAllowed writes a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter, detail string, logger *slog.Logger) {
	Error(w, http.StatusMethodNotAllowed, detail, logger)
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter, detail string, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, detail, logger)
}

// HandleError writes an appropriate HTTP response based on the error type.
// Domain and store errors keep their status, unknown errors become 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		JSON(w, domainErr.HTTPStatus(), ErrorBody{
			Code:    string(domainErr.Code),
			Detail:  domainErr.Message,
			Details: domainErr.Details,
		}, logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		Error(w, storeErr.HTTPCode(), storeErr.Message, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	Error(w, http.StatusInternalServerError, "internal server error", logger)
}
