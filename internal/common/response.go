package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorBody represents a consistent error payload returned by the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONData wraps the payload in the canonical {"data": ...} envelope.
func JSONData(w http.ResponseWriter, status int, v any) {
	JSON(w, status, map[string]any{"data": v})
}

// JSONError renders an error response using the canonical error shape.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteAppError renders an AppError, falling back to a generic 400 for plain errors.
func WriteAppError(w http.ResponseWriter, err error) {
	if err == nil {
		JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
		return
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		code := appErr.Code
		if code == "" {
			code = "BAD_REQUEST"
		}
		JSONError(w, status, code, appErr.Message, appErr.Details)
		return
	}
	JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
}
