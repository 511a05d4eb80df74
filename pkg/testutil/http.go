// Package testutil provides common test utilities for handler tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fhir-server/pkg/platform/httputil"
)

// NewRequest creates a simple HTTP request without a body.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// ReadBody reads the response body as bytes.
func ReadBody(t *testing.T, rr *httptest.ResponseRecorder) []byte {
	t.Helper()
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err, "failed to read response body")
	return body
}

// UnmarshalResponse unmarshals the response body into the target struct.
func UnmarshalResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	body := ReadBody(t, rr)
	var result T
	require.NoError(t, json.Unmarshal(body, &result), "failed to unmarshal response")
	return &result
}

// AssertStatus asserts the response status code matches expected.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status code")
}

// AssertFHIRJSON asserts the response carries the FHIR JSON media type.
func AssertFHIRJSON(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "application/fhir+json"),
		"unexpected content type %q", rr.Header().Get("Content-Type"))
}

// AssertOutcome asserts status and the code of the first OperationOutcome issue.
func AssertOutcome(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, expectedCode string) *httputil.OperationOutcome {
	t.Helper()
	AssertStatus(t, rr, expectedStatus)
	outcome := UnmarshalResponse[httputil.OperationOutcome](t, rr)
	assert.Equal(t, "OperationOutcome", outcome.ResourceType)
	require.NotEmpty(t, outcome.Issue, "expected at least one issue")
	assert.Equal(t, expectedCode, outcome.Issue[0].Code, "unexpected issue code")
	return outcome
}
