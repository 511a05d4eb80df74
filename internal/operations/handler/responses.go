package handler

import "fhir-server/internal/operations"

// OperationDefinitionResponse is the wire form of an operation definition.
type OperationDefinitionResponse struct {
	ResourceType string   `json:"resourceType"`
	ID           string   `json:"id"`
	URL          string   `json:"url"`
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	Kind         string   `json:"kind"`
	Description  string   `json:"description,omitempty"`
	Code         string   `json:"code"`
	Resource     []string `json:"resource,omitempty"`
	System       bool     `json:"system"`
	Type         bool     `json:"type"`
	Instance     bool     `json:"instance"`
}

func FromDefinition(def operations.Definition, url string) OperationDefinitionResponse {
	resp := OperationDefinitionResponse{
		ResourceType: "OperationDefinition",
		ID:           def.Name,
		URL:          url,
		Name:         def.Name,
		Status:       "active",
		Kind:         "operation",
		Description:  def.Description,
		Code:         def.Code,
		System:       def.System,
		Type:         def.Type,
		Instance:     def.Instance,
	}
	for _, rt := range def.Resources {
		resp.Resource = append(resp.Resource, rt.String())
	}
	return resp
}
