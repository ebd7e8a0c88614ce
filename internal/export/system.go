package export

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/pagination"
)

// SessionProvider loads the export inputs of a persisted design. Session
// returns an error wrapping ErrDesignNotFound for unknown ids.
type SessionProvider interface {
	Session(ctx context.Context, id uuid.UUID) (*Session, error)
}

// Availability lists which modes a design can currently be exported in.
type Availability struct {
	DesignID uuid.UUID     `json:"design_id"`
	Modes    map[Mode]bool `json:"modes"`
}

// System defines the public contract for export operations.
type System interface {
	// Handler builds the HTTP endpoints. limit wraps the routes that
	// produce files; nil leaves them unthrottled.
	Handler(maxRequestSize int64, limit func(http.Handler) http.Handler) *Handler

	// Export runs one export of a persisted design. The returned error
	// covers loading the design only; export failures are reported in
	// the Result.
	Export(ctx context.Context, designID uuid.UUID, opts Options) (Result, error)
	// ExportSession runs one export of an unsaved design.
	ExportSession(ctx context.Context, s Session, opts Options) Result
	Availability(ctx context.Context, designID uuid.UUID) (*Availability, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Record], error)

	Find(ctx context.Context, id uuid.UUID) (*Record, error)
	// Download returns the archived file of a successful export.
	Download(ctx context.Context, id uuid.UUID) (*Artifact, error)
}
