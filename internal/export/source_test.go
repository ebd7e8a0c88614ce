package export_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/comboworks-ops/webprinter-platform-sub007/internal/export"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/lifecycle"
	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/storage"
)

type mockStore struct {
	blobs map[string][]byte
}

func (m *mockStore) Start(*lifecycle.Coordinator) error { return nil }

func (m *mockStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	m.blobs[key] = data
	return nil
}

func (m *mockStore) Download(_ context.Context, key string) (*storage.Blob, error) {
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   "application/pdf",
		ContentLength: int64(len(data)),
	}, nil
}

func (m *mockStore) Find(_ context.Context, key string) (*storage.Meta, error) {
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Meta{Key: key, ContentLength: int64(len(data))}, nil
}

func (m *mockStore) Delete(_ context.Context, key string) error {
	delete(m.blobs, key)
	return nil
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/katalog.pdf":
			w.Write([]byte("%PDF-1.7 katalog"))
		case "/big.pdf":
			w.Write(bytes.Repeat([]byte("x"), 64))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := export.NewFetcher(nil, 0, 32, discard())

	data, err := f.Fetch(context.Background(), srv.URL+"/katalog.pdf")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "%PDF-1.7 katalog" {
		t.Errorf("data = %q", data)
	}

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"not found", srv.URL + "/missing.pdf", export.ErrFetchFailed},
		{"too large", srv.URL + "/big.pdf", export.ErrFetchTooLarge},
		{"unsupported scheme", "ftp://example.com/a.pdf", export.ErrFetchFailed},
		{"no storage", "storage://designs/a.pdf", export.ErrFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), tt.url)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := export.NewFetcher(nil, 50*time.Millisecond, 0, discard())

	_, err := f.Fetch(context.Background(), srv.URL+"/slow.pdf")
	if !errors.Is(err, export.ErrFetchFailed) {
		t.Errorf("err = %v, want ErrFetchFailed", err)
	}
}

func TestFetchStorage(t *testing.T) {
	store := &mockStore{blobs: map[string][]byte{
		"designs/a/katalog.pdf": []byte("%PDF-1.7 stored"),
	}}
	f := export.NewFetcher(store, time.Second, 0, discard())

	data, err := f.Fetch(context.Background(), export.StorageURL("designs/a/katalog.pdf"))
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "%PDF-1.7 stored" {
		t.Errorf("data = %q", data)
	}

	_, err = f.Fetch(context.Background(), export.StorageURL("designs/b/missing.pdf"))
	if !errors.Is(err, export.ErrFetchFailed) || !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrFetchFailed wrapping storage.ErrNotFound", err)
	}
}
