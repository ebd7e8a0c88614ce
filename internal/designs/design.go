// Package designs persists print designs: the document specification, the
// editor canvas and an optional imported background PDF. It feeds the export
// system with ready-to-export sessions.
package designs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/comboworks-ops/webprinter-platform-sub007/internal/export"
)

// Design is a stored design. Canvas is the editor's canvas JSON without the
// background PDF bytes, which live in blob storage under PDFStorageKey.
type Design struct {
	ID            uuid.UUID             `json:"id"`
	Name          string                `json:"name"`
	Document      export.DocumentSpec   `json:"document"`
	Canvas        json.RawMessage       `json:"canvas"`
	PDFSource     *export.PDFSourceMeta `json:"pdf_source"`
	PDFStorageKey *string               `json:"pdf_storage_key"`
	PDFPageCount  *int                  `json:"pdf_page_count"`
	HasChanges    bool                  `json:"has_changes"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// CreateCommand carries a new design. A nil Canvas is replaced by the
// default layout of Document.
type CreateCommand struct {
	Name     string              `json:"name"`
	Document export.DocumentSpec `json:"document"`
	Canvas   json.RawMessage     `json:"canvas,omitempty"`
}

// AttachCommand imports page PageIndex (0-based) of a PDF as the design
// background. Preview is an optional PNG or JPEG rendition of that page used
// by the raster exports.
type AttachCommand struct {
	Data      []byte
	Filename  string
	PageIndex int
	Preview   []byte
}
