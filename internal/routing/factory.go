package routing

import (
	"net/http"
	"net/url"

	"fhir-server/internal/capability"
)

// Factory hands out resolvers per request. With a configured base every
// request shares one resolver; otherwise the base is taken from the request.
type Factory struct {
	static         *URLResolver
	base           StaticBase
	trustForwarded bool
}

// NewFactory creates a factory. An empty baseURL means request-derived, in
// which case trustForwarded decides whether proxy headers are honoured.
func NewFactory(baseURL string, trustForwarded bool) (*Factory, error) {
	if baseURL == "" {
		return &Factory{trustForwarded: trustForwarded}, nil
	}
	b, err := NewStaticBase(baseURL)
	if err != nil {
		return nil, err
	}
	r, err := NewURLResolver(b)
	if err != nil {
		return nil, err
	}
	return &Factory{static: r, base: b}, nil
}

// ForRequest returns the resolver to use while serving r.
func (f *Factory) ForRequest(r *http.Request) (capability.Resolver, error) {
	if f.static != nil {
		return f.static, nil
	}
	return NewURLResolver(f.requestBase(r))
}

// BaseURL returns the server base as seen by r.
func (f *Factory) BaseURL(r *http.Request) *url.URL {
	if f.static != nil {
		return f.base.BaseURL()
	}
	return f.requestBase(r).BaseURL()
}

func (f *Factory) requestBase(r *http.Request) RequestBase {
	if f.trustForwarded {
		return FromProxiedRequest(r)
	}
	return FromRequest(r)
}
