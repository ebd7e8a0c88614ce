package designs

import (
	"errors"
	"net/http"
)

// Domain errors for design operations.
var (
	ErrNotFound      = errors.New("design not found")
	ErrDuplicate     = errors.New("design already exists")
	ErrInvalidDesign = errors.New("invalid design")
	ErrInvalidPDF    = errors.New("invalid PDF")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
)

// MapHTTPStatus maps design domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidDesign) || errors.Is(err, ErrInvalidPDF) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
