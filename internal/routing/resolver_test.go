package routing

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"fhir-server/internal/capability"
	"fhir-server/internal/operations"
	"fhir-server/pkg/platform/sentinel"
)

func newStaticResolver(t *testing.T, base string) *URLResolver {
	t.Helper()
	b, err := NewStaticBase(base)
	require.NoError(t, err)
	r, err := NewURLResolver(b)
	require.NoError(t, err)
	return r
}

func TestNewStaticBase(t *testing.T) {
	t.Run("rejects relative url", func(t *testing.T) {
		_, err := NewStaticBase("/fhir")
		require.Error(t, err)
	})

	t.Run("rejects unparsable url", func(t *testing.T) {
		_, err := NewStaticBase("http://[::1")
		require.Error(t, err)
	})

	t.Run("accepts absolute url", func(t *testing.T) {
		b, err := NewStaticBase("https://fhir.example.com/r4/")
		require.NoError(t, err)
		assert.Equal(t, "https://fhir.example.com/r4/", b.BaseURL().String())
	})
}

func TestNewURLResolver(t *testing.T) {
	_, err := NewURLResolver(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base url provider is required")
}

func TestResolveOperationDefinitionURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		op   string
		want string
	}{
		{"host only", "https://fhir.example.com", operations.Export, "https://fhir.example.com/OperationDefinition/export"},
		{"trailing slash", "https://fhir.example.com/", operations.Reindex, "https://fhir.example.com/OperationDefinition/reindex"},
		{"base path", "https://fhir.example.com/r4", operations.GroupExport, "https://fhir.example.com/r4/OperationDefinition/group-export"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := newStaticResolver(t, tt.base).ResolveOperationDefinitionURL(tt.op)
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}

	t.Run("unknown operation is a resolution error", func(t *testing.T) {
		r := newStaticResolver(t, "https://fhir.example.com")
		for _, op := range []string{"", "bogus", "Export"} {
			u, err := r.ResolveOperationDefinitionURL(op)
			assert.Nil(t, u)
			assert.True(t, capability.IsResolutionError(err), op)
			assert.ErrorIs(t, err, sentinel.ErrNotFound)
		}
	})

	t.Run("every catalogued operation resolves", func(t *testing.T) {
		r := newStaticResolver(t, "https://fhir.example.com")
		for _, op := range operations.Names() {
			_, err := r.ResolveOperationDefinitionURL(op)
			assert.NoError(t, err, op)
		}
	})

	t.Run("results do not alias the base", func(t *testing.T) {
		r := newStaticResolver(t, "https://fhir.example.com")
		u, err := r.ResolveOperationDefinitionURL(operations.Export)
		require.NoError(t, err)
		u.Path = "/changed"

		again, err := r.ResolveOperationDefinitionURL(operations.Export)
		require.NoError(t, err)
		assert.Equal(t, "https://fhir.example.com/OperationDefinition/export", again.String())
	})
}

func TestResolveOperationDefinitionURL_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		host := rapid.StringMatching(`[a-z]{1,12}\.example\.(com|org)`).Draw(t, "host")
		op := rapid.SampledFrom(operations.Names()).Draw(t, "operation")

		b, err := NewStaticBase("https://" + host)
		if err != nil {
			t.Fatalf("base: %v", err)
		}
		r, err := NewURLResolver(b)
		if err != nil {
			t.Fatalf("resolver: %v", err)
		}

		first, err := r.ResolveOperationDefinitionURL(op)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		second, err := r.ResolveOperationDefinitionURL(op)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if first.String() != second.String() {
			t.Fatalf("non-deterministic: %s != %s", first, second)
		}
	})
}

func TestRequestBase(t *testing.T) {
	t.Run("plain request", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://fhir.local:8080/metadata", nil)
		assert.Equal(t, "http://fhir.local:8080/", FromRequest(req).BaseURL().String())
	})

	t.Run("tls request", func(t *testing.T) {
		req := httptest.NewRequest("GET", "https://fhir.local/metadata", nil)
		req.TLS = &tls.ConnectionState{}
		assert.Equal(t, "https", FromRequest(req).BaseURL().Scheme)
	})

	t.Run("forwarded headers win behind a proxy", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://10.0.0.4:8080/metadata", nil)
		req.Header.Set("X-Forwarded-Proto", "https, http")
		req.Header.Set("X-Forwarded-Host", "fhir.example.com")
		assert.Equal(t, "https://fhir.example.com/", FromProxiedRequest(req).BaseURL().String())
	})

	t.Run("forwarded headers are ignored without a proxy", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://10.0.0.4:8080/metadata", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		req.Header.Set("X-Forwarded-Host", "attacker.example.net")
		assert.Equal(t, "http://10.0.0.4:8080/", FromRequest(req).BaseURL().String())
	})

	t.Run("only http and https schemes are taken from the proxy", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://fhir.local/metadata", nil)
		req.Header.Set("X-Forwarded-Proto", "javascript")
		assert.Equal(t, "http", FromProxiedRequest(req).BaseURL().Scheme)

		req.Header.Set("X-Forwarded-Proto", "HTTPS")
		assert.Equal(t, "https", FromProxiedRequest(req).BaseURL().Scheme)
	})

	t.Run("malformed forwarded host is ignored", func(t *testing.T) {
		for _, host := range []string{"evil.example.net/path", "user@evil.example.net", "evil.example.net?x=1"} {
			req := httptest.NewRequest("GET", "http://fhir.local/metadata", nil)
			req.Header.Set("X-Forwarded-Host", host)
			assert.Equal(t, "fhir.local", FromProxiedRequest(req).BaseURL().Host, host)
		}
	})

	t.Run("resolves against request base", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://fhir.local/metadata", nil)
		r, err := NewURLResolver(FromRequest(req))
		require.NoError(t, err)
		u, err := r.ResolveOperationDefinitionURL(operations.PatientExport)
		require.NoError(t, err)
		assert.Equal(t, "http://fhir.local/OperationDefinition/patient-export", u.String())
	})
}
