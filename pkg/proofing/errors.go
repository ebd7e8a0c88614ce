package proofing

import "errors"

var (
	// ErrInvalidProfile indicates ICC data that cannot serve the requested role.
	ErrInvalidProfile = errors.New("invalid icc profile")
	// ErrProfileUnavailable indicates profile bytes could not be loaded.
	ErrProfileUnavailable = errors.New("icc profile unavailable")
	// ErrNoCanvas indicates a capture without a canvas.
	ErrNoCanvas = errors.New("canvas is required")
)
