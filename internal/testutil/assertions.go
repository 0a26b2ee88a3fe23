// Package testutil provides assertions shared by the boundary tests.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/reglet-dev/native-starter/domain/entities"
	domainerrors "github.com/reglet-dev/native-starter/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode requires err to be non-nil and carry the given wire code.
func AssertErrorCode(t *testing.T, err error, code string, msgAndArgs ...any) {
	t.Helper()
	require.Error(t, err, msgAndArgs...)
	assert.Equal(t, code, domainerrors.Code(err), msgAndArgs...)
}

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...any) {
	t.Helper()

	var expectedJSON, actualJSON any
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// DecodeCallResponse decodes a channel response, failing the test on bad JSON.
func DecodeCallResponse(t *testing.T, data []byte) entities.CallResponse {
	t.Helper()
	var resp entities.CallResponse
	require.NoError(t, json.Unmarshal(data, &resp), "response is not a CallResponse: %s", data)
	return resp
}

// AssertCallError requires a channel response to carry a domain error with
// the given code.
func AssertCallError(t *testing.T, data []byte, code string) *entities.ErrorDetail {
	t.Helper()
	resp := DecodeCallResponse(t, data)
	require.NotNil(t, resp.Error, "expected an error in %s", data)
	assert.Equal(t, code, resp.Error.Code)
	assert.Nil(t, resp.Value, "a failed call must not carry a value")
	return resp.Error
}

// MustJSON marshals v, failing the test on error.
func MustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
