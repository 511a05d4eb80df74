package capability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fhir-server/internal/platform/metrics"
)

const tracerName = "fhir-server/internal/capability"

// Service runs build passes over the registered contributors.
type Service struct {
	registry *Registry
	logger   *slog.Logger
	tracer   trace.Tracer

	updatesApplied metrics.MetricLogger
	buildDuration  metrics.MetricLogger
}

type Option func(*serviceOptions)

type serviceOptions struct {
	logger  *slog.Logger
	metrics metrics.MetricLoggerFactory
	tracer  trace.Tracer
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

func WithMetrics(factory metrics.MetricLoggerFactory) Option {
	return func(o *serviceOptions) {
		o.metrics = factory
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *serviceOptions) {
		o.tracer = tracer
	}
}

// New constructs the service. The registry must be fully populated; the
// service reads it but never modifies it.
func New(registry *Registry, opts ...Option) (*Service, error) {
	if registry == nil {
		return nil, errors.New("contributor registry is required")
	}

	o := serviceOptions{
		logger:  slog.Default(),
		metrics: metrics.NopFactory{},
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Service{
		registry:       registry,
		logger:         o.logger,
		tracer:         o.tracer,
		updatesApplied: o.metrics.CreateCounterLogger("capability_updates_applied_total", "contributor"),
		buildDuration:  o.metrics.CreateMetricLogger("capability_build_duration_seconds", "outcome"),
	}, nil
}

// Statement builds a fresh statement. Contributors are consulted in
// registration order and their updates applied in that same order; any
// failure aborts the pass.
func (s *Service) Statement(ctx context.Context, resolver Resolver) (*Statement, error) {
	buildID := uuid.New()
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "capability.build",
		trace.WithAttributes(attribute.String("capability.build_id", buildID.String())))
	defer span.End()

	stmt, err := s.build(ctx, buildID, resolver)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "capability build failed")
		s.buildDuration.LogMetric(time.Since(start).Seconds(), "failure")
		s.logger.ErrorContext(ctx, "capability statement build failed",
			"build_id", buildID,
			"error", err,
		)
		return nil, err
	}

	stmt.ID = buildID.String()
	s.buildDuration.LogMetric(time.Since(start).Seconds(), "success")
	span.SetAttributes(
		attribute.Int("capability.server_operations", len(stmt.Operations)),
		attribute.Int("capability.resources", len(stmt.Resources)),
	)
	s.logger.DebugContext(ctx, "capability statement built",
		"build_id", buildID,
		"server_operations", len(stmt.Operations),
		"resources", len(stmt.Resources),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return stmt, nil
}

func (s *Service) build(ctx context.Context, buildID uuid.UUID, resolver Resolver) (*Statement, error) {
	b, err := NewBuilder(resolver)
	if err != nil {
		return nil, err
	}
	b.applied = func(contributor string) {
		s.updatesApplied.LogMetric(1, contributor)
	}

	flags := s.registry.Flags()
	for _, c := range s.registry.All() {
		updates, err := c.Contribute(flags)
		if err != nil {
			return nil, fmt.Errorf("contributor %s: %w", c.Name(), err)
		}
		if len(updates) == 0 {
			s.logger.DebugContext(ctx, "capability contributor skipped",
				"build_id", buildID,
				"contributor", c.Name(),
			)
			continue
		}
		b.Update(c.Name(), updates...)
	}

	return b.Build()
}
