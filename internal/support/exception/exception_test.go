package exception_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/velotrend/velotrend/internal/support/exception"
)

func TestPipelineError_Error(t *testing.T) {
	inner := errors.New("disk full")
	err := exception.NewPipelineError("repository", "failed to replace table", inner, false, true)

	assert.Contains(t, err.Error(), "[repository]")
	assert.Contains(t, err.Error(), "failed to replace table")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, inner, errors.Unwrap(err))
	assert.True(t, err.IsRetryable())
	assert.False(t, err.IsSkippable())
}

func TestIsTemporary(t *testing.T) {
	assert.False(t, exception.IsTemporary(nil))
	assert.True(t, exception.IsTemporary(errors.New("dial tcp: connection refused")))
	assert.False(t, exception.IsTemporary(errors.New("parse error")))

	// PipelineError flags win over message inspection.
	retryable := exception.NewPipelineError("reader", "upstream 503", nil, false, true)
	assert.True(t, exception.IsTemporary(retryable))
	permanent := exception.NewPipelineError("reader", "timeout while decoding", nil, false, false)
	assert.False(t, exception.IsTemporary(permanent))
}

func TestIsFatal(t *testing.T) {
	fatal := exception.NewPipelineError("reader", "malformed header", nil, false, false)
	assert.True(t, exception.IsFatal(fatal))

	skippable := exception.NewPipelineError("reader", "bad row", nil, true, false)
	assert.False(t, exception.IsFatal(skippable))

	assert.False(t, exception.IsFatal(errors.New("plain error")))
}

func TestSchemaViolation(t *testing.T) {
	err := exception.NewSchemaViolation("trip_reader", "missing column 'ride_id'", nil)

	assert.True(t, exception.IsSchemaViolation(err))
	assert.True(t, exception.IsFatal(err))

	wrapped := fmt.Errorf("run aborted: %w", err)
	assert.True(t, exception.IsSchemaViolation(wrapped))

	assert.False(t, exception.IsSchemaViolation(errors.New("other")))
}
