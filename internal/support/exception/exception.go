// Package exception provides the error type shared by the VeloTrend pipeline stages.
// It standardizes errors raised during a batch run so callers can distinguish
// transient conditions (worth retrying the stage) from fatal contract violations.
package exception

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// PipelineError is the error type raised by pipeline components. It carries the
// component where the error occurred, a message, the wrapped original error and
// flags describing how the failure may be handled.
type PipelineError struct {
	// Module indicates the component where the error occurred (e.g. "reader", "repository", "export").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error, if any.
	OriginalErr error
	// isRetryable indicates whether re-running the stage may succeed.
	isRetryable bool
	// isSkippable indicates whether the run may continue without the failed unit.
	isSkippable bool
	// StackTrace is the stack captured when the error was created.
	StackTrace string
}

// NewPipelineError creates a new PipelineError.
func NewPipelineError(module, message string, originalErr error, isSkippable, isRetryable bool) *PipelineError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)

	return &PipelineError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		isRetryable: isRetryable,
		isSkippable: isSkippable,
		StackTrace:  string(buf[:n]),
	}
}

// NewSchemaViolation creates a fatal PipelineError for a source-schema contract
// violation, e.g. a bronze extract missing a required column. Schema violations
// are neither retryable nor skippable: the run must abort.
func NewSchemaViolation(module, message string, originalErr error) *PipelineError {
	var errToWrap error
	if originalErr != nil {
		errToWrap = errors.Join(ErrSchemaViolation, originalErr)
	} else {
		errToWrap = ErrSchemaViolation
	}
	return NewPipelineError(module, message, errToWrap, false, false)
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *PipelineError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable returns whether this error is retryable.
func (e *PipelineError) IsRetryable() bool {
	return e.isRetryable
}

// IsSkippable returns whether this error is skippable.
func (e *PipelineError) IsSkippable() bool {
	return e.isSkippable
}

// IsTemporary determines whether an error is transient (e.g. a network error or a
// temporary database condition). The IsRetryable flag of a PipelineError takes
// precedence over message inspection.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.IsRetryable()
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset")
}

// IsFatal determines whether an error can be neither retried nor skipped.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return !pe.IsRetryable() && !pe.IsSkippable()
	}
	return false
}

// IsSchemaViolation reports whether the error chain contains a source-schema
// contract violation.
func IsSchemaViolation(err error) bool {
	return errors.Is(err, ErrSchemaViolation)
}

// ErrSchemaViolation is the sentinel wrapped by every schema-contract error.
var ErrSchemaViolation = errors.New("source schema contract violation")
