package entities

import "encoding/json"

// CallRequest is the JSON wire format for invoking an export.
// Args are kept raw so the boundary, not the JSON decoder, decides how each
// value is coerced.
type CallRequest struct {
	Args []json.RawMessage `json:"args"`
}

// CallResponse is the JSON wire format for the outcome of an export call.
// Exactly one of Value and Error is set.
type CallResponse struct {
	Error *ErrorDetail `json:"error,omitempty"`
	Value any          `json:"value,omitempty"`
}

// OK reports whether the call succeeded.
func (r CallResponse) OK() bool {
	return r.Error == nil
}
