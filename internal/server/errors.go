package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/localrivet/textsummarizer/internal/errortypes"
)

// ErrorResponse represents the structure of error responses sent by the API
type ErrorResponse struct {
	Status  string                 `json:"status"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Common error codes
const (
	// ErrorCodeInvalidRequest indicates the client sent an invalid request
	ErrorCodeInvalidRequest = "INVALID_REQUEST"

	// ErrorCodeUnsupported indicates a request for something the server does not do
	ErrorCodeUnsupported = "UNSUPPORTED"

	// ErrorCodeInternalError indicates an internal server error
	ErrorCodeInternalError = "INTERNAL_ERROR"

	// ErrorCodeResourceNotFound indicates a requested resource was not found
	ErrorCodeResourceNotFound = "RESOURCE_NOT_FOUND"

	// ErrorCodeBadGateway indicates a failure in an upstream service
	ErrorCodeBadGateway = "BAD_GATEWAY"

	// ErrorCodeTooLarge indicates the request body exceeded the upload limit
	ErrorCodeTooLarge = "REQUEST_TOO_LARGE"

	// ErrorCodeMethodNotAllowed indicates the route does not accept the method
	ErrorCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// writeErrorResponse writes a structured error response to the HTTP response
// writer. Server-side failures are logged with their stack; client errors
// are logged at warn level.
func writeErrorResponse(w http.ResponseWriter, status int, code, message string, err error) {
	errResp := ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
		var appErr *errortypes.AppError
		if errors.As(err, &appErr) {
			for k, v := range appErr.Fields {
				errResp.Details[k] = v
			}
		}

		if status >= http.StatusInternalServerError {
			errortypes.LogError(nil, err)
		} else {
			slog.Warn("Request rejected", "status", status, "code", code, "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// HandleBadRequest handles 400 Bad Request errors
func HandleBadRequest(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusBadRequest, ErrorCodeInvalidRequest, message, err)
}

// HandleNotFound handles 404 Not Found errors
func HandleNotFound(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusNotFound, ErrorCodeResourceNotFound, message, err)
}

// HandleInternalError handles 500 Internal Server Error errors
func HandleInternalError(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusInternalServerError, ErrorCodeInternalError, message, err)
}

// HandleBadGateway handles 502 Bad Gateway errors
func HandleBadGateway(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusBadGateway, ErrorCodeBadGateway, message, err)
}

// ErrorWithStatus creates an error with an HTTP status code
type ErrorWithStatus struct {
	err        error
	statusCode int
	errorCode  string
	message    string
}

// NewErrorWithStatus creates a new error with HTTP status code
func NewErrorWithStatus(err error, status int, code, message string) *ErrorWithStatus {
	return &ErrorWithStatus{
		err:        err,
		statusCode: status,
		errorCode:  code,
		message:    message,
	}
}

// Error returns the error message
func (e *ErrorWithStatus) Error() string {
	if e.message != "" {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.err.Error()
}

// Unwrap returns the underlying error
func (e *ErrorWithStatus) Unwrap() error {
	return e.err
}

// StatusCode returns the HTTP status code
func (e *ErrorWithStatus) StatusCode() int {
	return e.statusCode
}

// ErrorCode returns the application error code
func (e *ErrorWithStatus) ErrorCode() string {
	return e.errorCode
}

// Message returns the client-friendly message
func (e *ErrorWithStatus) Message() string {
	return e.message
}

// StatusFor maps an error to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	var statusErr *ErrorWithStatus
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode(), statusErr.ErrorCode()
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, ErrorCodeTooLarge
	}

	switch errortypes.TypeOf(err) {
	case errortypes.ErrorTypeInvalidInput:
		return http.StatusBadRequest, ErrorCodeInvalidRequest
	case errortypes.ErrorTypeUnsupported:
		return http.StatusBadRequest, ErrorCodeUnsupported
	case errortypes.ErrorTypeNotFound:
		return http.StatusNotFound, ErrorCodeResourceNotFound
	case errortypes.ErrorTypeExternal, errortypes.ErrorTypeNetwork:
		return http.StatusBadGateway, ErrorCodeBadGateway
	default:
		return http.StatusInternalServerError, ErrorCodeInternalError
	}
}

// clientMessage returns the message shown to API clients. Internal errors
// get a generic message; everything else uses the error's own message.
func clientMessage(err error, status int) string {
	var statusErr *ErrorWithStatus
	if errors.As(err, &statusErr) && statusErr.Message() != "" {
		return statusErr.Message()
	}
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		return "An unexpected error occurred"
	}
	var appErr *errortypes.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

// HandleError handles any error, inspecting its type to determine the appropriate HTTP response
func HandleError(w http.ResponseWriter, err error) {
	status, code := StatusFor(err)
	var cause error = err
	var statusErr *ErrorWithStatus
	if errors.As(err, &statusErr) {
		cause = statusErr.Unwrap()
	}
	writeErrorResponse(w, status, code, clientMessage(err, status), cause)
}
