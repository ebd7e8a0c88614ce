package designs

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/comboworks-ops/webprinter-platform-sub007/internal/export"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/pagination"
)

// System defines the public contract for design operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Design], error)

	Find(ctx context.Context, id uuid.UUID) (*Design, error)
	Create(ctx context.Context, cmd CreateCommand) (*Design, error)
	// SaveCanvas replaces the canvas and marks the design as edited.
	SaveCanvas(ctx context.Context, id uuid.UUID, raw json.RawMessage) (*Design, error)
	// AttachPDF uploads a PDF and places one of its pages as the canvas
	// background. The design counts as unedited afterwards.
	AttachPDF(ctx context.Context, id uuid.UUID, cmd AttachCommand) (*Design, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Session loads everything an export of the design reads, including
	// the background PDF bytes.
	Session(ctx context.Context, id uuid.UUID) (*export.Session, error)
}
