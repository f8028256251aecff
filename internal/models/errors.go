package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three failure kinds of the design and simulation
// core. The typed errors below match them with errors.Is.
var (
	ErrConfiguration  = errors.New("configuration error")
	ErrPrecondition   = errors.New("precondition error")
	ErrDesignMismatch = errors.New("design mismatch")
)

// ConfigurationError reports an unrecognized design method or a malformed
// or missing study configuration field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// NewConfigurationError builds a ConfigurationError with a formatted reason.
func NewConfigurationError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// PreconditionError reports a simulation requested without a design.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %s", e.Reason)
}

func (e *PreconditionError) Is(target error) bool { return target == ErrPrecondition }

// DesignMismatchError reports a (version, task) combination the design has
// no rows for.
type DesignMismatchError struct {
	Version int
	Task    int
}

func (e *DesignMismatchError) Error() string {
	return fmt.Sprintf("design mismatch: no rows for version %d task %d", e.Version, e.Task)
}

func (e *DesignMismatchError) Is(target error) bool { return target == ErrDesignMismatch }
