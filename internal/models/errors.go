package models

import "fmt"

// MissingFieldError reports a required applicant field that was absent from
// the submitted payload.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// SerializationError reports malformed or unreadable persisted ledger data.
type SerializationError struct {
	Cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("ledger serialization failed: %v", e.Cause)
}

func (e *SerializationError) Unwrap() error { return e.Cause }

// ConfigError reports invalid agent configuration rejected at construction.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid agent config: %s", e.Reason)
}
