// Package export turns a design canvas into print PDFs. It owns the four
// export pipelines, the export history and the archive of produced files.
package export

import (
	"fmt"
	"time"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/canvas"
)

// ContentTypePDF is the media type of every export artifact.
const ContentTypePDF = "application/pdf"

// DocumentSpec describes the physical print document.
type DocumentSpec struct {
	Name         string   `json:"name"`
	WidthMM      float64  `json:"width_mm"`
	HeightMM     float64  `json:"height_mm"`
	BleedMM      float64  `json:"bleed_mm"`
	SafeAreaMM   *float64 `json:"safe_area_mm,omitempty"`
	DPI          int      `json:"dpi,omitempty"`
	ColorProfile string   `json:"color_profile,omitempty"`
	ProductID    string   `json:"product_id,omitempty"`
	TemplateID   string   `json:"template_id,omitempty"`
}

// Validate checks the physical dimensions and the requested resolution. A
// zero DPI selects the configured default.
func (d DocumentSpec) Validate() error {
	if d.WidthMM <= 0 || d.HeightMM <= 0 {
		return fmt.Errorf("%w: document size %gx%g mm", ErrInvalidRequest, d.WidthMM, d.HeightMM)
	}
	if d.BleedMM < 0 {
		return fmt.Errorf("%w: negative bleed %g mm", ErrInvalidRequest, d.BleedMM)
	}
	if d.DPI < 0 || d.DPI > MaxDPI {
		return fmt.Errorf("%w: dpi %d outside 0..%d", ErrInvalidRequest, d.DPI, MaxDPI)
	}
	return nil
}

// PDFSourceMeta records where an uploaded background PDF can be fetched from.
type PDFSourceMeta struct {
	OriginalURL      string    `json:"original_url"`
	OriginalFilename string    `json:"original_filename"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// Session is everything one export reads. The canvas is mutated during
// capture and restored before Export returns.
type Session struct {
	Document      DocumentSpec
	Canvas        *canvas.Canvas
	PDFSource     *PDFSourceMeta
	PDFBackground *canvas.PDFBackground
	HasChanges    bool
}

// Options selects the pipeline and its parameters.
type Options struct {
	Mode         Mode `json:"mode"`
	IncludeBleed bool `json:"include_bleed"`
	// IncludeTrimMarks and PreserveVector are accepted and recorded but do
	// not change output yet.
	IncludeTrimMarks bool   `json:"include_trim_marks,omitempty"`
	PreserveVector   bool   `json:"preserve_vector,omitempty"`
	ProfileID        string `json:"profile_id,omitempty"`
}

// Result is the terminal value of one export. Data and ContentType are set
// only on success.
type Result struct {
	Success     bool   `json:"success"`
	Filename    string `json:"filename"`
	Error       string `json:"error,omitempty"`
	Data        []byte `json:"-"`
	ContentType string `json:"-"`
}

func failed(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// Artifact is a produced file.
type Artifact struct {
	Data     []byte
	Filename string
}
