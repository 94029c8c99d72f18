package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when attempting to register with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrMissingLEI is returned when a bond payload carries no legal entity identifier.
	ErrMissingLEI = errors.New("LEI not specified")
	// ErrExportDisabled is returned when no export bucket is configured.
	ErrExportDisabled = errors.New("bond export is not configured")
)

// ValidationError maps each rejected field to a human readable reason.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = reason
	}
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

// FilterError reports a listing filter whose value cannot be coerced to the field's type.
type FilterError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid value %q for filter %s: %s", e.Value, e.Field, e.Reason)
}
