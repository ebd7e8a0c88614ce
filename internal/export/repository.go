package export

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/pagination"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/query"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/repository"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/storage"
)

type repo struct {
	db           *sql.DB
	storage      storage.System
	sessions     SessionProvider
	orchestrator *Orchestrator
	logger       *slog.Logger
	pagination   pagination.Config
	archive      bool
}

// New creates the export system. Successful exports are uploaded to store
// when archive is set.
func New(
	db *sql.DB,
	store storage.System,
	sessions SessionProvider,
	orchestrator *Orchestrator,
	logger *slog.Logger,
	pagination pagination.Config,
	archive bool,
) System {
	return &repo{
		db:           db,
		storage:      store,
		sessions:     sessions,
		orchestrator: orchestrator,
		logger:       logger.With("system", "exports"),
		pagination:   pagination,
		archive:      archive,
	}
}

func (r *repo) Handler(maxRequestSize int64, limit func(http.Handler) http.Handler) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxRequestSize, limit)
}

func (r *repo) Export(ctx context.Context, designID uuid.UUID, opts Options) (Result, error) {
	s, err := r.sessions.Session(ctx, designID)
	if err != nil {
		return Result{}, fmt.Errorf("load design %s: %w", designID, err)
	}

	res := r.orchestrator.Export(ctx, *s, opts)
	r.record(ctx, &designID, opts, res)
	return res, nil
}

func (r *repo) ExportSession(ctx context.Context, s Session, opts Options) Result {
	res := r.orchestrator.Export(ctx, s, opts)
	r.record(ctx, nil, opts, res)
	return res
}

func (r *repo) Availability(ctx context.Context, designID uuid.UUID) (*Availability, error) {
	s, err := r.sessions.Session(ctx, designID)
	if err != nil {
		return nil, fmt.Errorf("load design %s: %w", designID, err)
	}

	return &Availability{
		DesignID: designID,
		Modes:    Available(*s),
	}, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename", "Error")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderBy(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count exports: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	records, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}

	result := pagination.NewPageResult(records, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) Download(ctx context.Context, id uuid.UUID) (*Artifact, error) {
	rec, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.Archived() || r.storage == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotArchived, id)
	}

	blob, err := r.storage.Download(ctx, *rec.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("download export %s: %w", id, err)
	}
	defer blob.Body.Close()

	data, err := io.ReadAll(blob.Body)
	if err != nil {
		return nil, fmt.Errorf("read export %s: %w", id, err)
	}

	return &Artifact{Data: data, Filename: rec.Filename}, nil
}

// record writes the history row of one export and archives its file. The
// export has already happened, so failures here are logged and dropped.
func (r *repo) record(ctx context.Context, designID *uuid.UUID, opts Options, res Result) {
	id := uuid.New()

	var key *string
	if res.Success && r.archive && r.storage != nil {
		k := buildStorageKey(id, res.Filename)
		if err := r.storage.Upload(ctx, k, res.Data, res.ContentType); err != nil {
			r.logger.WarnContext(ctx, "export archive failed", "id", id, "key", k, "error", err)
		} else {
			key = &k
		}
	}

	q := `
		INSERT INTO exports(id, design_id, mode, include_bleed, filename, success, error, size_bytes, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, q,
		id,
		designID,
		opts.Mode.String(),
		opts.IncludeBleed,
		res.Filename,
		res.Success,
		res.Error,
		int64(len(res.Data)),
		key,
	)
	if err != nil {
		r.logger.WarnContext(ctx, "export history insert failed", "id", id, "error", err)
		if key != nil {
			if delErr := r.storage.Delete(ctx, *key); delErr != nil {
				r.logger.WarnContext(ctx, "compensating archive delete failed", "key", *key, "error", delErr)
			}
		}
	}
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("exports/%s/%s", id, filename)
}
