package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registrar mounts a module's endpoints.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires all public endpoints behind the shared middleware stack and
// exposes gatherer on /metrics. fhirMiddleware applies to module routes only.
func NewRouter(gatherer prometheus.Gatherer, fhirMiddleware []func(http.Handler) http.Handler, modules ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(fhirMiddleware...)
		for _, m := range modules {
			m.Register(r)
		}
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}
