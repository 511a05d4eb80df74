package handler

import (
	"time"

	"fhir-server/internal/capability"
)

// Info carries the descriptive fields of the statement envelope.
type Info struct {
	FHIRVersion     string
	Formats         []string
	SoftwareName    string
	SoftwareVersion string
}

// CapabilityStatementResponse is the wire form of the statement.
type CapabilityStatementResponse struct {
	ResourceType   string                 `json:"resourceType" yaml:"resourceType"`
	ID             string                 `json:"id" yaml:"id"`
	Status         string                 `json:"status" yaml:"status"`
	Kind           string                 `json:"kind" yaml:"kind"`
	Date           string                 `json:"date" yaml:"date"`
	FHIRVersion    string                 `json:"fhirVersion" yaml:"fhirVersion"`
	Format         []string               `json:"format" yaml:"format"`
	Software       SoftwareResponse       `json:"software" yaml:"software"`
	Implementation ImplementationResponse `json:"implementation" yaml:"implementation"`
	Rest           []RestResponse         `json:"rest" yaml:"rest"`
}

type SoftwareResponse struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

type ImplementationResponse struct {
	Description string `json:"description" yaml:"description"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
}

type RestResponse struct {
	Mode      string              `json:"mode" yaml:"mode"`
	Resource  []ResourceResponse  `json:"resource,omitempty" yaml:"resource,omitempty"`
	Operation []OperationResponse `json:"operation,omitempty" yaml:"operation,omitempty"`
}

type ResourceResponse struct {
	Type      string              `json:"type" yaml:"type"`
	Profile   string              `json:"profile" yaml:"profile"`
	Operation []OperationResponse `json:"operation,omitempty" yaml:"operation,omitempty"`
}

type OperationResponse struct {
	Name       string `json:"name" yaml:"name"`
	Definition string `json:"definition" yaml:"definition"`
}

// FromStatement wraps a built statement in the CapabilityStatement envelope.
func FromStatement(stmt *capability.Statement, info Info, baseURL string, now time.Time) CapabilityStatementResponse {
	rest := RestResponse{
		Mode:      "server",
		Operation: fromOperations(stmt.Operations),
	}
	for _, r := range stmt.Resources {
		rest.Resource = append(rest.Resource, ResourceResponse{
			Type:      r.Type.String(),
			Profile:   r.Profile,
			Operation: fromOperations(r.Operations),
		})
	}

	return CapabilityStatementResponse{
		ResourceType: "CapabilityStatement",
		ID:           stmt.ID,
		Status:       "active",
		Kind:         "instance",
		Date:         now.UTC().Format(time.RFC3339),
		FHIRVersion:  info.FHIRVersion,
		Format:       info.Formats,
		Software: SoftwareResponse{
			Name:    info.SoftwareName,
			Version: info.SoftwareVersion,
		},
		Implementation: ImplementationResponse{
			Description: info.SoftwareName,
			URL:         baseURL,
		},
		Rest: []RestResponse{rest},
	}
}

func fromOperations(ops []capability.Operation) []OperationResponse {
	if len(ops) == 0 {
		return nil
	}
	out := make([]OperationResponse, 0, len(ops))
	for _, op := range ops {
		out = append(out, OperationResponse{Name: op.Name, Definition: op.Definition})
	}
	return out
}
