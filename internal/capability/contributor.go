package capability

//go:generate mockgen -source=contributor.go -destination=mocks/mocks.go -package=mocks Contributor,Resolver

import (
	"fmt"
	"net/url"

	"fhir-server/pkg/domain"
	"fhir-server/pkg/platform/sentinel"
)

// FeatureFlags is the read-only snapshot of feature switches contributors
// consult when deciding whether to contribute.
type FeatureFlags struct {
	ExportEnabled           bool
	ReindexEnabled          bool
	AnonymizedExportEnabled bool
}

// Resolver turns an operation identifier into the URL of its definition.
type Resolver interface {
	ResolveOperationDefinitionURL(operation string) (*url.URL, error)
}

// Update mutates the statement of the current build pass.
type Update func(s *Statement, r Resolver) error

// Contributor is a feature module that advertises its operations.
type Contributor interface {
	// Name identifies the contributor in logs and metrics
	Name() string

	// Contribute returns the updates for the statement, or none when the
	// governing feature is switched off.
	Contribute(flags FeatureFlags) ([]Update, error)
}

// ServerOperation returns an update registering a server-level operation.
func ServerOperation(name string) Update {
	return func(s *Statement, r Resolver) error {
		u, err := resolve(r, name)
		if err != nil {
			return err
		}
		s.AddServerOperation(name, u.String())
		return nil
	}
}

// ResourceOperation returns an update registering an operation scoped to
// resourceType. An empty or malformed type fails the update.
func ResourceOperation(name string, resourceType domain.ResourceType) Update {
	return func(s *Statement, r Resolver) error {
		if _, err := domain.ParseResourceType(resourceType.String()); err != nil {
			return fmt.Errorf("operation %s: %w", name, err)
		}
		u, err := resolve(r, name)
		if err != nil {
			return err
		}
		s.AddResourceOperation(name, u.String(), resourceType)
		return nil
	}
}

func resolve(r Resolver, name string) (*url.URL, error) {
	u, err := r.ResolveOperationDefinitionURL(name)
	if err != nil {
		if IsResolutionError(err) {
			return nil, err
		}
		return nil, NewResolutionError(name, err)
	}
	return u, nil
}

// Registry keeps contributors in registration order.
type Registry struct {
	flags        FeatureFlags
	contributors []Contributor
	names        map[string]struct{}
}

// NewRegistry creates an empty registry bound to a feature flag snapshot.
func NewRegistry(flags FeatureFlags) *Registry {
	return &Registry{
		flags: flags,
		names: make(map[string]struct{}),
	}
}

// Register appends contributors. Names must be unique.
func (r *Registry) Register(contributors ...Contributor) error {
	for _, c := range contributors {
		if c == nil {
			return fmt.Errorf("contributor is required")
		}
		name := c.Name()
		if _, exists := r.names[name]; exists {
			return fmt.Errorf("contributor %s already registered: %w", name, sentinel.ErrConflict)
		}
		r.names[name] = struct{}{}
		r.contributors = append(r.contributors, c)
	}
	return nil
}

// Flags returns the feature flag snapshot.
func (r *Registry) Flags() FeatureFlags {
	return r.flags
}

// All returns contributors in registration order.
func (r *Registry) All() []Contributor {
	result := make([]Contributor, len(r.contributors))
	copy(result, r.contributors)
	return result
}
