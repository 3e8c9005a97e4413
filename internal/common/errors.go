package common

import "net/http"

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BadRequest constructs a 400 AppError with optional structured details.
func BadRequest(code, message string, details any) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: http.StatusBadRequest, Details: details}
}

// Conflict constructs a 409 AppError.
func Conflict(code, message string, details any) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: http.StatusConflict, Details: details}
}

// Upstream constructs a 502 AppError wrapping a failed collaborator call.
func Upstream(message string, err error) *AppError {
	return &AppError{Code: "UPSTREAM_FAILURE", Message: message, HTTPStatus: http.StatusBadGateway, Err: err}
}
