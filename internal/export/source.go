package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/storage"
)

// StorageScheme prefixes URLs that resolve to blob storage keys.
const StorageScheme = "storage://"

// StorageURL returns the fetchable URL of a blob storage key.
func StorageURL(key string) string {
	return StorageScheme + key
}

// Fetcher loads bytes by URL: storage:// keys from blob storage, http(s)
// URLs over the network.
type Fetcher struct {
	client  *http.Client
	store   storage.System
	logger  *slog.Logger
	timeout time.Duration
	maxSize int64
}

// NewFetcher creates a Fetcher. A zero timeout leaves cancellation to the
// caller's context. store may be nil when no storage:// URLs are used.
func NewFetcher(store storage.System, timeout time.Duration, maxSize int64, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client:  &http.Client{},
		store:   store,
		logger:  logger.With("system", "fetcher"),
		timeout: timeout,
		maxSize: maxSize,
	}
}

// Fetch returns the resource at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()

	var (
		data []byte
		err  error
	)
	if key, ok := strings.CutPrefix(rawURL, StorageScheme); ok {
		data, err = f.fetchBlob(ctx, key)
	} else {
		data, err = f.fetchHTTP(ctx, rawURL)
	}
	if err != nil {
		return nil, err
	}

	f.logger.DebugContext(ctx, "fetched", "url", rawURL, "bytes", len(data), "duration", time.Since(start))
	return data, nil
}

func (f *Fetcher) fetchBlob(ctx context.Context, key string) ([]byte, error) {
	if f.store == nil {
		return nil, fmt.Errorf("%w: no storage configured for %s", ErrFetchFailed, key)
	}

	blob, err := f.store.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, key, err)
	}
	defer blob.Body.Close()

	return f.readAll(blob.Body, key)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported url %q", ErrFetchFailed, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetchFailed, u.Redacted(), resp.Status)
	}

	return f.readAll(resp.Body, u.Redacted())
}

func (f *Fetcher) readAll(r io.Reader, name string) ([]byte, error) {
	if f.maxSize > 0 {
		r = io.LimitReader(r, f.maxSize+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFetchFailed, name, err)
	}
	if f.maxSize > 0 && int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("%w: %s", ErrFetchTooLarge, name)
	}
	return data, nil
}
