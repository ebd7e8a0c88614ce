package designs

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/comboworks-ops/webprinter-platform-sub007/internal/export"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/canvas"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/pagination"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/query"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/repository"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/storage"
)

const returning = `RETURNING id, name, document, canvas, pdf_source, pdf_storage_key, pdf_page_count, has_changes, created_at, updated_at`

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
	paddingPx  float64
}

// New creates a design repository implementing the System interface.
// paddingPx is the pasteboard margin used to lay out new canvases.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
	paddingPx float64,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "designs"),
		pagination: pagination,
		paddingPx:  paddingPx,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Design], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderBy(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count designs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	designs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDesign)
	if err != nil {
		return nil, fmt.Errorf("query designs: %w", err)
	}

	result := pagination.NewPageResult(designs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Design, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDesign)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Design, error) {
	if err := cmd.Document.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDesign, err)
	}

	var c *canvas.Canvas
	if len(bytes.TrimSpace(cmd.Canvas)) == 0 {
		c = NewCanvas(cmd.Document, r.paddingPx)
	} else {
		parsed, err := canvas.Parse(cmd.Canvas)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDesign, err)
		}
		c = parsed
	}

	canvasJSON, err := encodeCanvas(c)
	if err != nil {
		return nil, err
	}
	document, err := json.Marshal(cmd.Document)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		name = cmd.Document.Name
	}

	q := `
		INSERT INTO designs(id, name, document, canvas)
		VALUES ($1, $2, $3, $4)
		` + returning

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Design, error) {
		return repository.QueryOne(ctx, tx, q, []any{uuid.New(), name, string(document), canvasJSON}, scanDesign)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("design created", "id", d.ID, "name", d.Name)
	return &d, nil
}

func (r *repo) SaveCanvas(ctx context.Context, id uuid.UUID, raw json.RawMessage) (*Design, error) {
	c, err := canvas.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDesign, err)
	}

	canvasJSON, err := encodeCanvas(c)
	if err != nil {
		return nil, err
	}

	q := `
		UPDATE designs SET canvas = $2, has_changes = true, updated_at = now()
		WHERE id = $1
		` + returning

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Design, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, canvasJSON}, scanDesign)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Debug("design canvas saved", "id", id, "objects", len(c.Objects))
	return &d, nil
}

func (r *repo) AttachPDF(ctx context.Context, id uuid.UUID, cmd AttachCommand) (*Design, error) {
	existing, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := api.PageCount(bytes.NewReader(cmd.Data), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}
	if cmd.PageIndex < 0 || cmd.PageIndex >= count {
		return nil, fmt.Errorf("%w: page index %d, document has %d pages", ErrInvalidPDF, cmd.PageIndex, count)
	}

	c, err := canvas.Parse(existing.Canvas)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDesign, err)
	}

	area := BleedArea(existing.Document, r.paddingPx)
	c.SetPDFBackground(
		canvas.NewPDFBackground(nil, cmd.PageIndex, cmd.Filename),
		area.Left, area.Top, area.Width, area.Height,
		cmd.Preview,
	)

	canvasJSON, err := encodeCanvas(c)
	if err != nil {
		return nil, err
	}

	key := buildStorageKey(id, cmd.Filename)
	if err := r.storage.Upload(ctx, key, cmd.Data, export.ContentTypePDF); err != nil {
		return nil, fmt.Errorf("upload design pdf: %w", err)
	}

	source, err := json.Marshal(export.PDFSourceMeta{
		OriginalURL:      export.StorageURL(key),
		OriginalFilename: cmd.Filename,
		UploadedAt:       time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode pdf source: %w", err)
	}

	q := `
		UPDATE designs
		SET canvas = $2, pdf_source = $3, pdf_storage_key = $4, pdf_page_count = $5,
			has_changes = false, updated_at = now()
		WHERE id = $1
		` + returning

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Design, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, canvasJSON, string(source), key, count}, scanDesign)
	})
	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if old := existing.PDFStorageKey; old != nil && *old != key {
		if delErr := r.storage.Delete(ctx, *old); delErr != nil {
			r.logger.Warn("replaced pdf blob delete failed", "key", *old, "error", delErr)
		}
	}

	r.logger.Info("design pdf attached", "id", id, "filename", cmd.Filename, "page_index", cmd.PageIndex, "pages", count)
	return &d, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	d, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM designs WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if d.PDFStorageKey != nil {
		if delErr := r.storage.Delete(ctx, *d.PDFStorageKey); delErr != nil {
			r.logger.Warn("blob delete failed after DB delete", "key", *d.PDFStorageKey, "error", delErr)
		}
	}

	r.logger.Info("design deleted", "id", id)
	return nil
}

func (r *repo) Session(ctx context.Context, id uuid.UUID) (*export.Session, error) {
	d, err := r.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", export.ErrDesignNotFound, id)
		}
		return nil, err
	}

	c, err := canvas.Parse(d.Canvas)
	if err != nil {
		return nil, fmt.Errorf("%w: design %s: %w", ErrInvalidDesign, id, err)
	}

	s := &export.Session{
		Document:   d.Document,
		Canvas:     c,
		PDFSource:  d.PDFSource,
		HasChanges: d.HasChanges,
	}

	if obj := c.PDFBackgroundObject(); obj != nil && d.PDFStorageKey != nil {
		data, err := r.download(ctx, *d.PDFStorageKey)
		if err != nil {
			return nil, err
		}
		obj.PDF.OriginalPDF = data
		s.PDFBackground = obj.PDF
	}

	return s, nil
}

func (r *repo) download(ctx context.Context, key string) ([]byte, error) {
	blob, err := r.storage.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download design pdf %s: %w", key, err)
	}
	defer blob.Body.Close()

	data, err := io.ReadAll(blob.Body)
	if err != nil {
		return nil, fmt.Errorf("read design pdf %s: %w", key, err)
	}
	return data, nil
}

// encodeCanvas serializes c without the background PDF bytes, which are
// kept in blob storage.
func encodeCanvas(c *canvas.Canvas) (string, error) {
	var kept []byte
	obj := c.PDFBackgroundObject()
	if obj != nil {
		kept = obj.PDF.OriginalPDF
		obj.PDF.OriginalPDF = nil
		defer func() { obj.PDF.OriginalPDF = kept }()
	}

	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode canvas: %w", err)
	}
	return string(data), nil
}

func buildStorageKey(id uuid.UUID, filename string) string {
	stem := export.SanitizeFilename(strings.TrimSuffix(filename, ".pdf"))
	if stem == "" {
		stem = "background"
	}
	return fmt.Sprintf("designs/%s/%s.pdf", id, stem)
}
