package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration signals a malformed filter, an unknown enum value or a
	// geo-dependent clause requested without a center point.
	ErrConfiguration = errors.New("invalid search configuration")
	// ErrIndexExecution signals a failure reported by the search index.
	ErrIndexExecution = errors.New("index execution failed")
	// ErrReconciliation signals a failed stale-entry cleanup.
	ErrReconciliation = errors.New("index reconciliation failed")
)

// ConfigurationError describes why a filter or builder call was rejected.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %s", ErrConfiguration.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration.Error(), e.Key, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// NewConfigurationError creates a configuration error for the given key.
func NewConfigurationError(key, format string, args ...any) error {
	return &ConfigurationError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// IndexExecutionError wraps an index failure together with the request body that caused it.
type IndexExecutionError struct {
	Query []byte
	Err   error
}

func (e *IndexExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", ErrIndexExecution.Error(), e.Err)
}

// Unwrap exposes both the sentinel and the transport error.
func (e *IndexExecutionError) Unwrap() []error { return []error{ErrIndexExecution, e.Err} }

// ReconciliationError records IDs whose removal from the index failed.
type ReconciliationError struct {
	IDs []string
	Err error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%s (%d ids): %v", ErrReconciliation.Error(), len(e.IDs), e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *ReconciliationError) Unwrap() []error { return []error{ErrReconciliation, e.Err} }
