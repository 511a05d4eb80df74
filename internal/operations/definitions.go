package operations

import (
	"fmt"

	"fhir-server/pkg/domain"
	"fhir-server/pkg/platform/sentinel"
)

// Operation identifiers advertised in the capability statement.
const (
	Export           = "export"
	PatientExport    = "patient-export"
	GroupExport      = "group-export"
	AnonymizedExport = "anonymized-export"
	Reindex          = "reindex"
	ResourceReindex  = "resource-reindex"
)

// Definition describes how an operation is invoked.
type Definition struct {
	Name        string
	Code        string
	Description string
	System      bool
	Type        bool
	Instance    bool
	Resources   []domain.ResourceType
}

var catalogue = []Definition{
	{
		Name:        Export,
		Code:        "export",
		Description: "Exports all data from the server in bulk",
		System:      true,
	},
	{
		Name:        PatientExport,
		Code:        "export",
		Description: "Exports data for all patients on the server",
		Type:        true,
		Resources:   []domain.ResourceType{domain.ResourceTypePatient},
	},
	{
		Name:        GroupExport,
		Code:        "export",
		Description: "Exports data for the patients in a group",
		Instance:    true,
		Resources:   []domain.ResourceType{domain.ResourceTypeGroup},
	},
	{
		Name:        AnonymizedExport,
		Code:        "export",
		Description: "Exports de-identified data using an anonymization configuration",
		System:      true,
	},
	{
		Name:        Reindex,
		Code:        "reindex",
		Description: "Reindexes all resources against the current search parameters",
		System:      true,
	},
	{
		Name:        ResourceReindex,
		Code:        "reindex",
		Description: "Reindexes a single resource",
		Instance:    true,
	},
}

var byName = func() map[string]Definition {
	m := make(map[string]Definition, len(catalogue))
	for _, d := range catalogue {
		m[d.Name] = d
	}
	return m
}()

// Lookup returns the definition for an operation identifier.
func Lookup(name string) (Definition, error) {
	d, ok := byName[name]
	if !ok {
		return Definition{}, fmt.Errorf("operation %q: %w", name, sentinel.ErrNotFound)
	}
	return d, nil
}

// Known reports whether name is in the catalogue.
func Known(name string) bool {
	_, ok := byName[name]
	return ok
}

// Names lists every operation identifier in catalogue order.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for _, d := range catalogue {
		names = append(names, d.Name)
	}
	return names
}
