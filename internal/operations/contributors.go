package operations

import (
	"strings"

	"fhir-server/internal/capability"
	"fhir-server/pkg/domain"
)

// ExportContributor advertises bulk export at system, Patient and Group level.
type ExportContributor struct {
	storageURI string
}

// NewExportContributor creates the export contributor. storageURI is the
// destination exports are written to.
func NewExportContributor(storageURI string) *ExportContributor {
	return &ExportContributor{storageURI: storageURI}
}

func (c *ExportContributor) Name() string { return Export }

func (c *ExportContributor) Contribute(flags capability.FeatureFlags) ([]capability.Update, error) {
	if !flags.ExportEnabled {
		return nil, nil
	}
	if strings.TrimSpace(c.storageURI) == "" {
		return nil, capability.NewConfigurationError(c.Name(), "FHIR_SERVER_EXPORT_STORAGE_URI", "required when export is enabled")
	}
	return []capability.Update{
		capability.ServerOperation(Export),
		capability.ResourceOperation(PatientExport, domain.ResourceTypePatient),
		capability.ResourceOperation(GroupExport, domain.ResourceTypeGroup),
	}, nil
}

// ReindexContributor advertises system and resource reindexing.
type ReindexContributor struct{}

func NewReindexContributor() *ReindexContributor {
	return &ReindexContributor{}
}

func (c *ReindexContributor) Name() string { return Reindex }

func (c *ReindexContributor) Contribute(flags capability.FeatureFlags) ([]capability.Update, error) {
	if !flags.ReindexEnabled {
		return nil, nil
	}
	return []capability.Update{
		capability.ServerOperation(Reindex),
		capability.ServerOperation(ResourceReindex),
	}, nil
}

// AnonymizedExportContributor advertises de-identified export. It is gated on
// its own flag only.
type AnonymizedExportContributor struct{}

func NewAnonymizedExportContributor() *AnonymizedExportContributor {
	return &AnonymizedExportContributor{}
}

func (c *AnonymizedExportContributor) Name() string { return AnonymizedExport }

func (c *AnonymizedExportContributor) Contribute(flags capability.FeatureFlags) ([]capability.Update, error) {
	if !flags.AnonymizedExportEnabled {
		return nil, nil
	}
	return []capability.Update{
		capability.ServerOperation(AnonymizedExport),
	}, nil
}

// Register adds the operation contributors to registry in their fixed order.
func Register(registry *capability.Registry, exportStorageURI string) error {
	return registry.Register(
		NewExportContributor(exportStorageURI),
		NewReindexContributor(),
		NewAnonymizedExportContributor(),
	)
}
