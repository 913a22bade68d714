package types

import (
	"errors"
	"fmt"
)

// AdapterErrorKind is the common failure taxonomy every adapter maps its
// backend-specific errors into. Unmapped failures default to Unreachable,
// which triggers fallback rather than propagating an opaque error.
type AdapterErrorKind string

const (
	ErrKindTimeout         AdapterErrorKind = "timeout"
	ErrKindQuotaExceeded   AdapterErrorKind = "quota_exceeded"
	ErrKindInvalidResponse AdapterErrorKind = "invalid_response"
	ErrKindUnreachable     AdapterErrorKind = "unreachable"
	ErrKindUnsupported     AdapterErrorKind = "unsupported"
)

// AdapterError is the only error type an adapter invocation may return. It
// never crosses the engine boundary raw; the router absorbs it via fallback.
type AdapterError struct {
	Provider string
	Kind     AdapterErrorKind
	Err      error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Kind)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// NewAdapterError wraps a backend failure under the given taxonomy kind.
func NewAdapterError(provider string, kind AdapterErrorKind, err error) *AdapterError {
	return &AdapterError{Provider: provider, Kind: kind, Err: err}
}

// AsAdapterError extracts an AdapterError from an error chain.
func AsAdapterError(err error) (*AdapterError, bool) {
	var ae *AdapterError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// ClassificationError reports a task kind with no configured capability
// mapping. Fatal to the single request, never silently defaulted.
type ClassificationError struct {
	Kind TaskKind
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("unknown task kind %q", e.Kind)
}

// ConfigurationError reports an invalid provider or capability mapping at
// startup. Fatal to process startup; never recovered at runtime.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}
