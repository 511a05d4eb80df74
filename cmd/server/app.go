package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"fhir-server/internal/capability"
	capabilityhandler "fhir-server/internal/capability/handler"
	"fhir-server/internal/operations"
	operationshandler "fhir-server/internal/operations/handler"
	"fhir-server/internal/platform/config"
	"fhir-server/internal/platform/metrics"
	"fhir-server/internal/routing"
	httptransport "fhir-server/internal/transport/http"
	"fhir-server/pkg/platform/middleware/format"
)

const metricsNamespace = "fhir_server"

// app holds the wired dependencies shared by every command.
type app struct {
	cfg          config.Config
	logger       *slog.Logger
	registry     *prometheus.Registry
	capabilities *capability.Service
	resolvers    *routing.Factory
	info         capabilityhandler.Info
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	contributors := capability.NewRegistry(cfg.FeatureFlags())
	if err := operations.Register(contributors, cfg.Features.ExportStorageURI); err != nil {
		return nil, fmt.Errorf("register capability contributors: %w", err)
	}

	svc, err := capability.New(contributors,
		capability.WithLogger(logger),
		capability.WithMetrics(metrics.New(reg, metricsNamespace)),
	)
	if err != nil {
		return nil, err
	}

	resolvers, err := routing.NewFactory(cfg.Server.BaseURL, cfg.Server.TrustForwardedHeaders)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:          cfg,
		logger:       logger,
		registry:     reg,
		capabilities: svc,
		resolvers:    resolvers,
		info: capabilityhandler.Info{
			FHIRVersion:     cfg.Conformance.FHIRVersion,
			Formats:         cfg.Conformance.Formats,
			SoftwareName:    cfg.Conformance.SoftwareName,
			SoftwareVersion: cfg.Conformance.SoftwareVersion,
		},
	}, nil
}

// statement runs one build pass against a fixed base URL.
func (a *app) statement(ctx context.Context, baseURL string) (*capability.Statement, error) {
	base, err := routing.NewStaticBase(baseURL)
	if err != nil {
		return nil, err
	}
	resolver, err := routing.NewURLResolver(base)
	if err != nil {
		return nil, err
	}
	return a.capabilities.Statement(ctx, resolver)
}

// fallbackBaseURL is used when no base is configured and there is no request
// to derive one from.
func (a *app) fallbackBaseURL() string {
	if a.cfg.Server.BaseURL != "" {
		return a.cfg.Server.BaseURL
	}
	return "http://localhost" + a.cfg.Server.Addr
}

func (a *app) router() http.Handler {
	return httptransport.NewRouter(a.registry,
		[]func(http.Handler) http.Handler{format.Negotiate(a.info.Formats, a.logger)},
		capabilityhandler.New(a.capabilities, a.resolvers, a.info, a.logger),
		operationshandler.New(a.resolvers, a.logger),
	)
}
