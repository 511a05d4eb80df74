package httpserver

import (
	"net/http"

	"fhir-server/internal/platform/config"
)

// New builds the HTTP server from the configured address and timeouts.
// Metadata responses are small, so the read timeout matches the header one.
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
