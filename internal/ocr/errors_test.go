package ocr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractErrorMatchesSentinel(t *testing.T) {
	err := NewExtractError("TextLayer", ErrUnreadablePDF, "truncated xref")

	assert.True(t, errors.Is(err, ErrUnreadablePDF))
	assert.False(t, errors.Is(err, ErrNoText))
	assert.Contains(t, err.Error(), "TextLayer")
	assert.Contains(t, err.Error(), "truncated xref")
}

func TestWrapExtractErrorIdempotent(t *testing.T) {
	inner := NewExtractError("Recognize", ErrEngineUnavailable, "")
	wrapped := WrapExtractError("ExtractText", fmt.Errorf("page 1: %w", inner), "outer")

	// An already wrapped error is passed through, not double-wrapped.
	assert.Equal(t, fmt.Sprintf("page 1: %v", inner), wrapped.Error())
	assert.True(t, errors.Is(wrapped, ErrEngineUnavailable))

	assert.Nil(t, WrapExtractError("ExtractText", nil, ""))
}
