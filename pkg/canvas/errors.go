package canvas

import "errors"

var (
	// ErrInvalidCanvas indicates a canvas document that cannot be decoded.
	ErrInvalidCanvas = errors.New("invalid canvas")
	// ErrUnknownRole indicates an object role outside the known set.
	ErrUnknownRole = errors.New("unknown object role")
	// ErrEmptyRegion indicates a render region without area.
	ErrEmptyRegion = errors.New("render region is empty")
	// ErrInvalidImage indicates object image data that cannot be decoded.
	ErrInvalidImage = errors.New("invalid object image")
	// ErrInvalidDataURL indicates a malformed data URL.
	ErrInvalidDataURL = errors.New("invalid data url")
)
