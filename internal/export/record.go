package export

import (
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/query"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/repository"
)

// Record is one export attempt in the export history.
type Record struct {
	ID           uuid.UUID  `json:"id"`
	DesignID     *uuid.UUID `json:"design_id"`
	Mode         string     `json:"mode"`
	IncludeBleed bool       `json:"include_bleed"`
	Filename     string     `json:"filename"`
	Success      bool       `json:"success"`
	Error        string     `json:"error,omitempty"`
	SizeBytes    int64      `json:"size_bytes"`
	StorageKey   *string    `json:"storage_key"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Archived reports whether the produced file was kept in blob storage.
func (r Record) Archived() bool {
	return r.StorageKey != nil && *r.StorageKey != ""
}

var projection = query.
	NewProjection("public", "exports", "e").
	Project("id", "ID").
	Project("design_id", "DesignID").
	Project("mode", "Mode").
	Project("include_bleed", "IncludeBleed").
	Project("filename", "Filename").
	Project("success", "Success").
	Project("error", "Error").
	Project("size_bytes", "SizeBytes").
	Project("storage_key", "StorageKey").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters narrows the export history. Nil fields are ignored.
type Filters struct {
	DesignID *uuid.UUID `json:"design_id,omitempty"`
	Mode     *string    `json:"mode,omitempty"`
	Success  *bool      `json:"success,omitempty"`
	Filename *string    `json:"filename,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("DesignID", f.DesignID).
		WhereEquals("Mode", f.Mode).
		WhereEquals("Success", f.Success).
		WhereContains("Filename", f.Filename)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Malformed values are dropped.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("design_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			f.DesignID = &id
		}
	}

	if m := values.Get("mode"); m != "" {
		if _, err := ParseMode(m); err == nil {
			f.Mode = &m
		}
	}

	if s := values.Get("success"); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			f.Success = &v
		}
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	return f
}

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	err := s.Scan(
		&r.ID,
		&r.DesignID,
		&r.Mode,
		&r.IncludeBleed,
		&r.Filename,
		&r.Success,
		&r.Error,
		&r.SizeBytes,
		&r.StorageKey,
		&r.CreatedAt,
	)
	return r, err
}
