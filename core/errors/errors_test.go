package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := NewAppError(ErrSourceUnavailable, "Availability source unreachable", cause)

	assert.Equal(t, "SOURCE_UNAVAILABLE: Availability source unreachable: connection refused", appErr.Error())
	assert.ErrorIs(t, appErr, cause)

	wrapped := fmt.Errorf("poll: %w", appErr)
	got, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrSourceUnavailable, got.Code)

	_, ok = AsAppError(cause)
	assert.False(t, ok)
}

func TestAppError_WithoutCause(t *testing.T) {
	appErr := NewAppError(ErrNotFound, "Poll not found", nil)
	assert.Equal(t, "NOT_FOUND: Poll not found", appErr.Error())
	assert.Nil(t, appErr.Unwrap())
}
