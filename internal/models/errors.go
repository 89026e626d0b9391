// Package models defines data structures for Fundscan
package models

import "fmt"

// ValidationError reports malformed input. Validation errors are never
// retried and surface immediately to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// ProviderError reports a failure from an external provider (holdings, news,
// report). Retryable controls whether the orchestrator may retry the stage.
type ProviderError struct {
	Provider  string
	Message   string
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s provider error: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s provider error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ComputationError reports malformed data reaching the risk engine. It
// indicates an upstream contract violation and is always fatal for the scan.
type ComputationError struct {
	Message string
	Err     error
}

func (e *ComputationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("computation error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("computation error: %s", e.Message)
}

func (e *ComputationError) Unwrap() error { return e.Err }
