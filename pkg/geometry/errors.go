package geometry

import "errors"

var (
	// ErrInvalidDimensions indicates a non-positive document width or height.
	ErrInvalidDimensions = errors.New("document dimensions must be positive")
	// ErrEmptyCrop indicates the clamped crop rectangle collapsed to zero area.
	ErrEmptyCrop = errors.New("crop rectangle is empty")
)
