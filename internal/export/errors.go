package export

import (
	"errors"
	"net/http"
)

// Domain errors for export operations.
var (
	ErrUnsupportedMode     = errors.New("unsupported export mode")
	ErrMissingCanvas       = errors.New("canvas is not available")
	ErrOriginalUnavailable = errors.New("original PDF is not available: no uploaded PDF or the design has been edited")
	ErrNoPDFBackground     = errors.New("no PDF page background detected")
	ErrPageOutOfRange      = errors.New("PDF page index out of range")
	ErrInvalidPDF          = errors.New("invalid PDF")
	ErrFetchFailed         = errors.New("fetch failed")
	ErrFetchTooLarge       = errors.New("fetched resource exceeds maximum size")
	ErrEmbedFailed         = errors.New("overlay embed failed")
	ErrCaptureFailed       = errors.New("canvas capture failed")
	ErrInvalidRequest      = errors.New("invalid export request")
	ErrNotFound            = errors.New("export not found")
	ErrDesignNotFound      = errors.New("design not found")
	ErrNotArchived         = errors.New("export file was not archived")
	ErrDuplicate           = errors.New("export already exists")
)

// MapHTTPStatus maps export domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDesignNotFound), errors.Is(err, ErrNotArchived):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrUnsupportedMode):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
