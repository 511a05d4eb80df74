package routing

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"fhir-server/internal/capability"
	"fhir-server/internal/operations"
	"fhir-server/pkg/platform/sentinel"
)

// OperationDefinitionPath is the server-relative namespace definitions are
// served under.
const OperationDefinitionPath = "OperationDefinition"

// BaseURLProvider supplies the server's own absolute address.
type BaseURLProvider interface {
	BaseURL() *url.URL
}

// StaticBase is a configured base URL.
type StaticBase struct {
	base *url.URL
}

// NewStaticBase parses raw into an absolute base URL.
func NewStaticBase(raw string) (StaticBase, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return StaticBase{}, fmt.Errorf("parse base url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return StaticBase{}, fmt.Errorf("base url %q must be absolute", raw)
	}
	return StaticBase{base: u}, nil
}

// BaseURL implements BaseURLProvider.
func (b StaticBase) BaseURL() *url.URL {
	u := *b.base
	return &u
}

// RequestBase derives the base URL from an incoming request. X-Forwarded-Proto
// and X-Forwarded-Host are honoured only when the server sits behind a proxy
// that sets them; any client can send them otherwise.
type RequestBase struct {
	r              *http.Request
	trustForwarded bool
}

// FromRequest returns a provider for r that ignores forwarded headers.
func FromRequest(r *http.Request) RequestBase {
	return RequestBase{r: r}
}

// FromProxiedRequest returns a provider for r that honours forwarded headers.
func FromProxiedRequest(r *http.Request) RequestBase {
	return RequestBase{r: r, trustForwarded: true}
}

// BaseURL implements BaseURLProvider. The scheme is always http or https.
func (b RequestBase) BaseURL() *url.URL {
	scheme := "http"
	if b.r.TLS != nil {
		scheme = "https"
	}
	host := b.r.Host

	if b.trustForwarded {
		switch proto := strings.ToLower(firstHeaderValue(b.r.Header.Get("X-Forwarded-Proto"))); proto {
		case "http", "https":
			scheme = proto
		}
		if fwd := firstHeaderValue(b.r.Header.Get("X-Forwarded-Host")); validHost(fwd) {
			host = fwd
		}
	}
	return &url.URL{Scheme: scheme, Host: host, Path: "/"}
}

func firstHeaderValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}

// validHost accepts host or host:port without userinfo, path or query.
func validHost(h string) bool {
	if h == "" || strings.ContainsAny(h, "/?#@\\ \t") {
		return false
	}
	u, err := url.Parse("//" + h)
	return err == nil && u.Host == h
}

// URLResolver resolves operation identifiers to definition URLs. It holds no
// mutable state and is safe for concurrent use.
type URLResolver struct {
	base  BaseURLProvider
	known func(string) bool
}

// NewURLResolver creates a resolver over the operation catalogue.
func NewURLResolver(base BaseURLProvider) (*URLResolver, error) {
	if base == nil {
		return nil, errors.New("base url provider is required")
	}
	return &URLResolver{base: base, known: operations.Known}, nil
}

// ResolveOperationDefinitionURL returns {base}/OperationDefinition/{operation}.
func (r *URLResolver) ResolveOperationDefinitionURL(operation string) (*url.URL, error) {
	if operation == "" || !r.known(operation) {
		return nil, capability.NewResolutionError(operation, sentinel.ErrNotFound)
	}
	return r.base.BaseURL().JoinPath(OperationDefinitionPath, operation), nil
}
