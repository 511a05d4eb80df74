package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fhir-server/internal/capability"
	"fhir-server/pkg/platform/httputil"
)

var errStatementUnavailable = errors.New("capability statement unavailable")

// Service builds capability statements.
type Service interface {
	Statement(ctx context.Context, resolver capability.Resolver) (*capability.Statement, error)
}

// ResolverFactory provides the operation URL resolver for a request.
type ResolverFactory interface {
	ForRequest(r *http.Request) (capability.Resolver, error)
	BaseURL(r *http.Request) *url.URL
}

// Handler serves the capability statement.
type Handler struct {
	service   Service
	resolvers ResolverFactory
	info      Info
	logger    *slog.Logger
	now       func() time.Time
}

// New constructs a capability handler with its dependencies.
func New(service Service, resolvers ResolverFactory, info Info, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		resolvers: resolvers,
		info:      info,
		logger:    logger,
		now:       time.Now,
	}
}

// Register mounts the metadata endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/metadata", h.HandleMetadata)
}

// HandleMetadata handles GET /metadata. A failed build pass yields an
// OperationOutcome; a partial statement is never returned.
func (h *Handler) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)
	start := time.Now()

	resolver, err := h.resolvers.ForRequest(r)
	if err != nil {
		h.logger.ErrorContext(ctx, "operation url resolver unavailable",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	stmt, err := h.service.Statement(ctx, resolver)
	if err != nil {
		h.logger.ErrorContext(ctx, "capability statement failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, errStatementUnavailable)
		return
	}

	h.logger.InfoContext(ctx, "capability statement served",
		"request_id", requestID,
		"statement_id", stmt.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromStatement(stmt, h.info, h.resolvers.BaseURL(r).String(), h.now()))
}
