package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fhir-server/internal/capability"
	"fhir-server/internal/operations"
	"fhir-server/pkg/platform/httputil"
)

// ResolverFactory provides the operation URL resolver for a request.
type ResolverFactory interface {
	ForRequest(r *http.Request) (capability.Resolver, error)
}

// Handler serves OperationDefinition resources for catalogued operations,
// making the definition URLs in the capability statement dereferenceable.
type Handler struct {
	resolvers ResolverFactory
	logger    *slog.Logger
}

func New(resolvers ResolverFactory, logger *slog.Logger) *Handler {
	return &Handler{resolvers: resolvers, logger: logger}
}

// Register mounts the definition endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/OperationDefinition/{name}", h.HandleGetDefinition)
}

// HandleGetDefinition handles GET /OperationDefinition/{name}.
func (h *Handler) HandleGetDefinition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	def, err := operations.Lookup(name)
	if err != nil {
		h.logger.InfoContext(ctx, "operation definition not found",
			"request_id", middleware.GetReqID(ctx),
			"operation", name,
		)
		httputil.WriteError(w, err)
		return
	}

	resolver, err := h.resolvers.ForRequest(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	u, err := resolver.ResolveOperationDefinitionURL(def.Name)
	if err != nil {
		h.logger.ErrorContext(ctx, "operation definition url unresolvable",
			"request_id", middleware.GetReqID(ctx),
			"operation", name,
			"error", err,
		)
		httputil.WriteError(w, capability.NewConfigurationError("operations", "catalogue", "resolver out of sync"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDefinition(def, u.String()))
}
