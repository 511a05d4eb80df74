package domain

import (
	"fmt"
	"strings"
)

// ProfileNamespace is the canonical namespace for base resource profiles.
const ProfileNamespace = "http://hl7.org/fhir/StructureDefinition/"

// ResourceType names a category of clinical resource (Patient, Group, ...).
// This is a domain primitive that enforces validity at parse time.
type ResourceType string

// Resource types the server declares operations against.
const (
	ResourceTypePatient ResourceType = "Patient"
	ResourceTypeGroup   ResourceType = "Group"
)

// ParseResourceType validates and returns a ResourceType.
// Returns an error if the value is empty or contains whitespace.
func ParseResourceType(s string) (ResourceType, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("resource type is required")
	}
	if strings.ContainsAny(s, " \t\r\n/") {
		return "", fmt.Errorf("invalid resource type: %q", s)
	}
	return ResourceType(s), nil
}

// String returns the string representation of the resource type.
func (t ResourceType) String() string {
	return string(t)
}

// Equal compares resource types case-insensitively.
func (t ResourceType) Equal(other ResourceType) bool {
	return strings.EqualFold(string(t), string(other))
}

// ProfileURL returns the default profile for the resource type.
func (t ResourceType) ProfileURL() string {
	return ProfileNamespace + string(t)
}
