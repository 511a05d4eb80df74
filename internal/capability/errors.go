package capability

import (
	"errors"
	"fmt"

	"fhir-server/pkg/platform/sentinel"
)

// ConfigurationError reports a feature that is switched on while the settings
// it depends on are missing. It aborts the build pass.
type ConfigurationError struct {
	Contributor string
	Setting     string
	Message     string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("capability contributor %s: configuration %s: %s", e.Contributor, e.Setting, e.Message)
}

// NewConfigurationError creates a configuration error for a contributor.
func NewConfigurationError(contributor, setting, message string) *ConfigurationError {
	return &ConfigurationError{Contributor: contributor, Setting: setting, Message: message}
}

// ResolutionError reports an operation identifier the URL resolver does not
// know. The contributor set and the operation catalogue are out of sync.
type ResolutionError struct {
	Operation  string
	Underlying error
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("resolve operation definition %q: %v", e.Operation, e.Underlying)
	}
	return fmt.Sprintf("resolve operation definition %q", e.Operation)
}

// Unwrap supports error unwrapping
func (e *ResolutionError) Unwrap() error {
	return e.Underlying
}

// NewResolutionError creates a resolution error for an operation identifier.
func NewResolutionError(operation string, underlying error) *ResolutionError {
	return &ResolutionError{Operation: operation, Underlying: underlying}
}

// MergeError reports a statement holding more than one section for the same
// resource type.
type MergeError struct {
	ResourceType string
	Sections     int
}

// Error implements the error interface
func (e *MergeError) Error() string {
	return fmt.Sprintf("capability statement has %d sections for resource type %s", e.Sections, e.ResourceType)
}

// Unwrap supports error unwrapping
func (e *MergeError) Unwrap() error {
	return sentinel.ErrInvalidState
}

// IsConfigurationError reports whether err carries a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsResolutionError reports whether err carries a ResolutionError.
func IsResolutionError(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}

// IsMergeError reports whether err carries a MergeError.
func IsMergeError(err error) bool {
	var me *MergeError
	return errors.As(err, &me)
}
