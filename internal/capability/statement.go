package capability

import "fhir-server/pkg/domain"

// Operation is a named operation and the URL of its definition.
type Operation struct {
	Name       string `json:"name" yaml:"name"`
	Definition string `json:"definition" yaml:"definition"`
}

// Resource is the part of the statement scoped to one resource type.
type Resource struct {
	Type       domain.ResourceType `json:"type" yaml:"type"`
	Profile    string              `json:"profile" yaml:"profile"`
	Operations []Operation         `json:"operation,omitempty" yaml:"operation,omitempty"`
}

// Statement is the conformance document assembled during one build pass.
// It is owned by the builder until Build returns and is never shared between
// passes.
type Statement struct {
	ID         string      `json:"id,omitempty" yaml:"id,omitempty"`
	Operations []Operation `json:"operation,omitempty" yaml:"operation,omitempty"`
	Resources  []Resource  `json:"resource,omitempty" yaml:"resource,omitempty"`
}

// AddServerOperation appends a server-level operation.
func (s *Statement) AddServerOperation(name, definition string) {
	s.Operations = append(s.Operations, Operation{Name: name, Definition: definition})
}

// AddResourceOperation appends an operation to the section for resourceType,
// creating the section with the default profile when none exists yet.
func (s *Statement) AddResourceOperation(name, definition string, resourceType domain.ResourceType) {
	op := Operation{Name: name, Definition: definition}

	if section := s.Resource(resourceType); section != nil {
		section.Operations = append(section.Operations, op)
		return
	}

	s.Resources = append(s.Resources, Resource{
		Type:       resourceType,
		Profile:    resourceType.ProfileURL(),
		Operations: []Operation{op},
	})
}

// Resource returns the first section whose type matches resourceType
// case-insensitively, or nil.
func (s *Statement) Resource(resourceType domain.ResourceType) *Resource {
	for i := range s.Resources {
		if s.Resources[i].Type.Equal(resourceType) {
			return &s.Resources[i]
		}
	}
	return nil
}

// ServerOperationNames lists server-level operation names in order.
func (s *Statement) ServerOperationNames() []string {
	names := make([]string, 0, len(s.Operations))
	for _, op := range s.Operations {
		names = append(names, op.Name)
	}
	return names
}

// Validate reports a MergeError for the first resource type that has more
// than one section.
func (s *Statement) Validate() error {
	for _, r := range s.Resources {
		n := 0
		for _, other := range s.Resources {
			if r.Type.Equal(other.Type) {
				n++
			}
		}
		if n > 1 {
			return &MergeError{ResourceType: r.Type.String(), Sections: n}
		}
	}
	return nil
}
