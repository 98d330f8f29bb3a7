package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"airbnb-dashboard/services"
)

// APIError is the JSON body of every failed API request.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// FieldError describes one rejected query parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func newAPIError(status int, code, message string, details any) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: message, Details: details}
}

// ErrInvalidParameters is returned for unparsable or out-of-range filters.
func ErrInvalidParameters(fields []FieldError) *APIError {
	return newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", "Invalid filter parameters", fields)
}

// ErrDataUnavailable is returned on every data route while the dataset
// cannot be loaded.
func ErrDataUnavailable(err error) *APIError {
	return newAPIError(http.StatusServiceUnavailable, "DATA_UNAVAILABLE",
		fmt.Sprintf("%v (%s)", err, services.DataFileHint), nil)
}

func ErrInternal(err error) *APIError {
	return newAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", err.Error())
}

func renderError(w http.ResponseWriter, r *http.Request, e *APIError) {
	_ = render.Render(w, r, e)
}
