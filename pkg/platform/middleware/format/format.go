// Package format provides middleware for FHIR response format negotiation.
package format

import (
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"fhir-server/pkg/platform/httputil"
)

var canonical = map[string]string{
	"json":                  "json",
	"application/json":      "json",
	"application/fhir+json": "json",
	"xml":                   "xml",
	"text/xml":              "xml",
	"application/xml":       "xml",
	"application/fhir+xml":  "xml",
	"ttl":                   "ttl",
	"text/turtle":           "ttl",
}

// producible holds the formats responses can be encoded in. Every handler
// writes FHIR JSON.
var producible = map[string]struct{}{"json": {}}

// Producible reports whether responses can be written in format f.
func Producible(f string) bool {
	_, ok := producible[Canonical(f)]
	return ok
}

// Canonical maps a _format value or media type to its short format name.
// Unknown values map to "".
func Canonical(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if mt, _, err := mime.ParseMediaType(v); err == nil {
		v = mt
	}
	return canonical[v]
}

// Negotiate creates middleware that rejects requests asking for a format the
// server does not advertise or cannot produce. The _format query parameter
// takes precedence over the Accept header; a missing preference is always
// accepted.
//
// Usage:
//
//	r.Use(format.Negotiate(cfg.Conformance.Formats, logger))
func Negotiate(supported []string, logger *slog.Logger) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(supported))
	for _, f := range supported {
		if Producible(f) {
			allowed[Canonical(f)] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested, ok := acceptable(r, allowed)
			if !ok {
				logger.InfoContext(r.Context(), "unsupported format requested",
					"request_id", middleware.GetReqID(r.Context()),
					"format", requested,
				)
				httputil.WriteOutcome(w, http.StatusNotAcceptable, httputil.Issue{
					Severity:    "error",
					Code:        "not-supported",
					Diagnostics: "unsupported format: " + requested,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func acceptable(r *http.Request, allowed map[string]struct{}) (string, bool) {
	if f := r.URL.Query().Get("_format"); f != "" {
		_, ok := allowed[Canonical(f)]
		return f, ok
	}

	accept := r.Header.Get("Accept")
	if strings.TrimSpace(accept) == "" {
		return "", true
	}
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if mt == "*/*" || mt == "application/*" {
			return mt, true
		}
		if _, ok := allowed[Canonical(mt)]; ok {
			return mt, true
		}
	}
	return accept, false
}
