// Package httputil writes FHIR JSON responses and OperationOutcome errors.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"fhir-server/pkg/platform/sentinel"
)

// ContentTypeFHIRJSON is the media type for FHIR JSON resources.
const ContentTypeFHIRJSON = "application/fhir+json; charset=utf-8"

// OperationOutcome is the FHIR error envelope.
type OperationOutcome struct {
	ResourceType string  `json:"resourceType"`
	Issue        []Issue `json:"issue"`
}

// Issue is a single OperationOutcome entry.
type Issue struct {
	Severity    string `json:"severity"`
	Code        string `json:"code"`
	Diagnostics string `json:"diagnostics,omitempty"`
}

// WriteJSON writes v as a FHIR JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", ContentTypeFHIRJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into an OperationOutcome. Internal failures are
// reported without diagnostics so configuration details do not leak.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	issue := Issue{Severity: "error", Code: "exception"}

	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		status = http.StatusNotFound
		issue.Code = "not-found"
		issue.Diagnostics = err.Error()
	case errors.Is(err, sentinel.ErrConflict):
		status = http.StatusConflict
		issue.Code = "conflict"
		issue.Diagnostics = err.Error()
	}

	WriteOutcome(w, status, issue)
}

// WriteOutcome writes an OperationOutcome holding a single issue.
func WriteOutcome(w http.ResponseWriter, status int, issue Issue) {
	WriteJSON(w, status, OperationOutcome{
		ResourceType: "OperationOutcome",
		Issue:        []Issue{issue},
	})
}
