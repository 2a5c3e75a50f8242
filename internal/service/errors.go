package service

import (
	"errors"
	"fmt"
)

// ErrorCategory labels a pipeline failure at the request boundary. Every
// error below the boundary is fatal to the current report-generation
// attempt; there is no partial-success mode.
type ErrorCategory string

const (
	CategoryValidation        ErrorCategory = "validation_error"
	CategoryConfiguration     ErrorCategory = "configuration_error"
	CategoryProviderRateLimit ErrorCategory = "provider_rate_limit"
	CategoryProvider          ErrorCategory = "provider_error"
	CategoryMalformedResponse ErrorCategory = "malformed_response"
	CategoryProfileFetch      ErrorCategory = "profile_fetch_error"
	CategoryPersistence       ErrorCategory = "persistence_error"
)

// PipelineError carries the failure category alongside a human-readable
// message and the underlying cause.
type PipelineError struct {
	Category ErrorCategory
	Message  string
	Err      error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func validationError(format string, args ...any) *PipelineError {
	return &PipelineError{Category: CategoryValidation, Message: fmt.Sprintf(format, args...)}
}

func pipelineError(cat ErrorCategory, msg string, err error) *PipelineError {
	return &PipelineError{Category: cat, Message: msg, Err: err}
}

// CategoryOf extracts the category from an error chain; unclassified errors
// report as provider errors since only the pipeline produces typed ones.
func CategoryOf(err error) ErrorCategory {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return CategoryProvider
}
