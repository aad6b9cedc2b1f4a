package caption

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRule indicates an unsupported segmentation rule name.
	ErrUnknownRule = errors.New("unknown segmentation rule")

	// ErrUnknownPunctuation indicates an unsupported punctuation mode.
	ErrUnknownPunctuation = errors.New("unknown punctuation mode")

	// ErrNoLines indicates a document produced no caption lines.
	ErrNoLines = errors.New("no caption lines after assembly")
)

// SegmentationError is returned by a Splitter that could not segment text.
type SegmentationError struct {
	Splitter string
	Err      error
}

// Error implements the error interface.
func (e *SegmentationError) Error() string {
	return fmt.Sprintf("%s segmentation: %v", e.Splitter, e.Err)
}

// Unwrap returns the underlying error.
func (e *SegmentationError) Unwrap() error {
	return e.Err
}
