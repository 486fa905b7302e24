// Package documents fetches case documents and extracts their text
package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"legaleagle-backend/storage"

	"github.com/rs/zerolog"
)

const defaultMaxSizeMB = 10

// ErrTooLarge is returned when a document exceeds the configured size limit
var ErrTooLarge = errors.New("document exceeds size limit")

// Fetcher returns the extracted text of the document behind a URL
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches documents over HTTP
type HTTPFetcher struct {
	httpClient    *http.Client
	authorization string
	userAgent     string
	maxBytes      int64
	logger        zerolog.Logger
}

// HTTPFetcherOption is a functional option for HTTPFetcher
type HTTPFetcherOption func(*HTTPFetcher)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(client *http.Client) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.httpClient = client
	}
}

// WithAuthorization sets the Authorization header sent with every fetch
func WithAuthorization(value string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.authorization = value
	}
}

// WithMaxSizeMB sets the document size limit; non-positive values keep the default
func WithMaxSizeMB(mb int) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		if mb > 0 {
			f.maxBytes = int64(mb) * 1024 * 1024
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// NewHTTPFetcher creates a new HTTP document fetcher
func NewHTTPFetcher(opts ...HTTPFetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		userAgent:  "legaleagle-backend/1.0",
		maxBytes:   defaultMaxSizeMB * 1024 * 1024,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchText retrieves a URL and returns its extracted text
func (f *HTTPFetcher) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf,text/plain;q=0.9,*/*;q=0.8")
	if f.authorization != "" {
		req.Header.Set("Authorization", f.authorization)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := readLimited(resp.Body, f.maxBytes)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}

	text, err := ExtractText(resp.Header.Get("Content-Type"), body, url)
	if err != nil {
		return "", err
	}

	f.logger.Debug().
		Str("url", url).
		Int("bytes", len(body)).
		Int("text_length", len(text)).
		Msg("Fetched case document")

	return text, nil
}

// StorageFetcher reads stored documents through a storage backend
type StorageFetcher struct {
	store    storage.Storage
	maxBytes int64
}

// NewStorageFetcher creates a fetcher reading from the given storage.
// maxSizeMB <= 0 uses the default limit.
func NewStorageFetcher(store storage.Storage, maxSizeMB int) *StorageFetcher {
	if maxSizeMB <= 0 {
		maxSizeMB = defaultMaxSizeMB
	}
	return &StorageFetcher{
		store:    store,
		maxBytes: int64(maxSizeMB) * 1024 * 1024,
	}
}

// FetchText reads the stored path and returns its extracted text.
// The content type is derived from the file extension.
func (f *StorageFetcher) FetchText(ctx context.Context, storagePath string) (string, error) {
	ok, err := f.store.Exists(ctx, storagePath)
	if err != nil {
		return "", fmt.Errorf("failed to check %s: %w", storagePath, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, storagePath)
	}

	rc, err := f.store.Download(ctx, storagePath)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	body, err := readLimited(rc, f.maxBytes)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", storagePath, err)
	}

	return ExtractText(storage.ContentType(storagePath), body, "")
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, maxBytes)
	}
	return body, nil
}
