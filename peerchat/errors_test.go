package peerchat

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeMatching(t *testing.T) {
	base := errors.New("connection refused")
	err := WrapError(ErrorJoinFailed, "room join failed", base)

	assert.True(t, errors.Is(err, NewError(ErrorJoinFailed, "")))
	assert.False(t, errors.Is(err, NewError(ErrorSendFailed, "")))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, ErrorJoinFailed, CodeOf(err))

	// Survives further wrapping.
	wrapped := fmt.Errorf("ui action: %w", err)
	assert.Equal(t, ErrorJoinFailed, CodeOf(wrapped))

	assert.Equal(t, ErrorUnknown, CodeOf(errors.New("plain")))
	assert.Equal(t, ErrorUnknown, CodeOf(nil))
}

func TestErrorStrings(t *testing.T) {
	err := NewError(ErrorCatalogUnavailable, "room list fetch failed")
	assert.Equal(t, "catalog_unavailable: room list fetch failed", err.Error())

	wrapped := WrapError(ErrorSendFailed, "message send failed", errors.New("timeout"))
	assert.Contains(t, wrapped.Error(), "send_failed")
	assert.Contains(t, wrapped.Error(), "timeout")
}

func TestIsUsageError(t *testing.T) {
	assert.True(t, IsUsageError(NewError(ErrorNotActive, "")))
	assert.True(t, IsUsageError(NewError(ErrorMessageReported, "")))
	assert.False(t, IsUsageError(NewError(ErrorJoinFailed, "")))
	assert.False(t, IsUsageError(errors.New("plain")))
}
