package ocr

import (
	"errors"
	"fmt"
)

// Common text extraction errors.
var (
	// ErrUnreadablePDF is returned when a document cannot be opened or its
	// pages cannot be decoded.
	ErrUnreadablePDF = errors.New("unreadable or corrupted PDF document")

	// ErrNoText is returned when neither the text layer nor OCR produced
	// usable text.
	ErrNoText = errors.New("no text could be extracted from document")

	// ErrEngineUnavailable is returned when the configured OCR engine
	// cannot run, for example when the tesseract binary is not installed.
	ErrEngineUnavailable = errors.New("OCR engine unavailable")

	// ErrMissingAPIKey is returned when an AI vision engine is selected
	// without credentials for its provider.
	ErrMissingAPIKey = errors.New("missing API key for AI vision engine")

	// ErrEmptyResponse is returned when an AI vision engine replies without
	// any text content.
	ErrEmptyResponse = errors.New("vision engine returned no text")
)

// ExtractError wraps extraction failures with the operation that caused
// them.
type ExtractError struct {
	// Op is the operation that failed (e.g. "TextLayer", "Recognize").
	Op string

	// Err is the underlying error.
	Err error

	// Details carries additional context about the failure.
	Details string
}

func (e *ExtractError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Is matches the wrapped error so callers can test against the sentinels.
func (e *ExtractError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExtractError creates an ExtractError for the given operation.
func NewExtractError(op string, err error, details string) *ExtractError {
	return &ExtractError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapExtractError wraps err as an ExtractError unless it already is one.
func WrapExtractError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var extractErr *ExtractError
	if errors.As(err, &extractErr) {
		return err
	}

	return NewExtractError(op, err, details)
}
