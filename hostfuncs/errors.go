package hostfuncs

import (
	"encoding/json"
	"fmt"
)

// ErrorResponse represents a structured channel error returned as JSON.
// It is used when the request never reached an export (unknown name,
// malformed payload, recovered panic). Export failures are reported in
// entities.CallResponse instead.
type ErrorResponse struct {
	// Error is a machine-readable error type identifier (e.g., "VALIDATION_ERROR", "INTERNAL_ERROR").
	Error string `json:"error"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Code is a numeric error code (e.g., 400, 500).
	Code int `json:"code"`
}

// ToJSON serializes the ErrorResponse to JSON bytes.
// Returns nil if serialization fails (which should never happen for this simple type).
func (e ErrorResponse) ToJSON() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	return data
}

// NewValidationError creates an error response for bad input (e.g., malformed JSON).
func NewValidationError(message string) ErrorResponse {
	return ErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Code:    400,
	}
}

// NewNotFoundError creates an error response for unknown handler names.
func NewNotFoundError(name string) ErrorResponse {
	return ErrorResponse{
		Error:   "NOT_FOUND",
		Message: "unknown host function: " + name,
		Code:    404,
	}
}

// NewTooLargeError creates an error response for payloads over the size limit.
func NewTooLargeError(size, limit int) ErrorResponse {
	return ErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: fmt.Sprintf("request size %d exceeds maximum %d bytes", size, limit),
		Code:    413,
	}
}

// NewInternalError creates an error response for unexpected failures.
func NewInternalError(message string) ErrorResponse {
	return ErrorResponse{
		Error:   "INTERNAL_ERROR",
		Message: message,
		Code:    500,
	}
}

// NewPanicError creates an error response for recovered panics.
func NewPanicError(panicValue any) ErrorResponse {
	var msg string
	if err, ok := panicValue.(error); ok {
		msg = err.Error()
	} else if s, ok := panicValue.(string); ok {
		msg = s
	} else {
		msg = "panic recovered"
	}
	return ErrorResponse{
		Error:   "INTERNAL_ERROR",
		Message: "panic: " + msg,
		Code:    500,
	}
}

// ParseErrorResponse reports whether data is an ErrorResponse and decodes it.
func ParseErrorResponse(data []byte) (ErrorResponse, bool) {
	var probe struct {
		Error   *string `json:"error"`
		Message string  `json:"message"`
		Code    int     `json:"code"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.Error == nil {
		return ErrorResponse{}, false
	}
	return ErrorResponse{Error: *probe.Error, Message: probe.Message, Code: probe.Code}, true
}
