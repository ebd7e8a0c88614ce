package designs

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/comboworks-ops/webprinter-platform-sub007/internal/export"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/query"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/repository"
)

var projection = query.
	NewProjection("public", "designs", "d").
	Project("id", "ID").
	Project("name", "Name").
	Project("document", "Document").
	Project("canvas", "Canvas").
	Project("pdf_source", "PDFSource").
	Project("pdf_storage_key", "PDFStorageKey").
	Project("pdf_page_count", "PDFPageCount").
	Project("has_changes", "HasChanges").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for design queries.
// Nil fields are ignored.
type Filters struct {
	Name       *string `json:"name,omitempty"`
	HasChanges *bool   `json:"has_changes,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("HasChanges", f.HasChanges)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if hc := values.Get("has_changes"); hc != "" {
		if v, err := strconv.ParseBool(hc); err == nil {
			f.HasChanges = &v
		}
	}

	return f
}

func scanDesign(s repository.Scanner) (Design, error) {
	var (
		d         Design
		document  []byte
		canvasRaw []byte
		pdfSource []byte
	)
	err := s.Scan(
		&d.ID,
		&d.Name,
		&document,
		&canvasRaw,
		&pdfSource,
		&d.PDFStorageKey,
		&d.PDFPageCount,
		&d.HasChanges,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return d, err
	}

	if err := json.Unmarshal(document, &d.Document); err != nil {
		return d, fmt.Errorf("decode document of design %s: %w", d.ID, err)
	}
	d.Canvas = json.RawMessage(canvasRaw)
	if len(pdfSource) > 0 {
		var src export.PDFSourceMeta
		if err := json.Unmarshal(pdfSource, &src); err != nil {
			return d, fmt.Errorf("decode pdf source of design %s: %w", d.ID, err)
		}
		d.PDFSource = &src
	}
	return d, nil
}
