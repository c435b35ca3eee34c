// Package media resolves image sources for display. URLs under the backend's
// protected file prefix are fetched with bearer auth and wrapped in a
// revocable blob handle; every other URL is usable directly and passes
// through untouched.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/eralove/eralove-go/internal/auth"
	"github.com/eralove/eralove-go/internal/util"
	"github.com/eralove/eralove-go/sdk/config"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ErrReleased is returned by BlobHandle.Bytes after the handle was released.
var ErrReleased = fmt.Errorf("eralove media: blob handle released")

// FetchError is a non-2xx response from a protected file fetch. The media
// pipeline never retries and never coordinates with the token refresh
// machinery; a 401 here is surfaced as-is.
type FetchError struct {
	StatusCode int
	URL        string
}

func (e *FetchError) Error() string {
	if e == nil {
		return "eralove media: fetch failed"
	}
	return fmt.Sprintf("eralove media: fetch %s failed: status %d", e.URL, e.StatusCode)
}

// BlobHandle is a locally scoped, revocable reference to fetched binary
// content. Ownership is exclusive to the caller that received it; Release
// drops the content reference and is safe to call at any time, any number of
// times, including after the owning component is long gone.
type BlobHandle struct {
	id          string
	contentType string

	mu       sync.Mutex
	data     []byte
	released bool
}

// ID returns the handle's unique identifier.
func (h *BlobHandle) ID() string { return h.id }

// ContentType returns the MIME type reported by the backend.
func (h *BlobHandle) ContentType() string { return h.contentType }

// Bytes returns the binary content, or ErrReleased once revoked.
func (h *BlobHandle) Bytes() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil, ErrReleased
	}
	return h.data, nil
}

// Release revokes the handle. Idempotent.
func (h *BlobHandle) Release() {
	h.mu.Lock()
	h.data = nil
	h.released = true
	h.mu.Unlock()
}

// Resource is the display source resolved for a URL: either a directly
// usable URL, or a blob handle for content that lives behind bearer auth.
type Resource struct {
	URL  string
	Blob *BlobHandle
}

// blobData is the shared fetch result; each caller wraps it in its own handle.
type blobData struct {
	data        []byte
	contentType string
}

// Option customises a Fetcher at construction time.
type Option func(*Fetcher)

// WithHTTPClient replaces the outbound transport, mainly for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(f *Fetcher) { f.httpClient = httpClient }
}

// Fetcher classifies URLs against the configured protected file prefix and
// performs the manual authorized fetch for the ones that need it.
type Fetcher struct {
	baseURL     string
	filesPrefix string
	tokens      *auth.Store
	httpClient  *http.Client
	group       singleflight.Group
}

// NewFetcher constructs a fetcher sharing the pipeline's credential store.
func NewFetcher(cfg *config.Config, tokens *auth.Store, opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		filesPrefix: cfg.FilesPathPrefix,
		tokens:      tokens,
		httpClient:  util.NewHTTPClient(cfg.ProxyURL, cfg.RequestTimeout()),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RequiresAuth reports whether the URL serves protected user files. Only
// paths under the configured prefix of the API base qualify; external hosts,
// avatar generators, and bundled static assets do not.
func (f *Fetcher) RequiresAuth(rawURL string) bool {
	if strings.HasPrefix(rawURL, f.baseURL+f.filesPrefix) {
		return true
	}
	return strings.HasPrefix(rawURL, f.filesPrefix)
}

// Resolve returns the display source for rawURL. Public URLs come back
// unchanged with no network call and no credential read. Protected URLs are
// fetched with the current access token; concurrent resolves of the same URL
// share one network call, but every caller receives its own handle.
func (f *Fetcher) Resolve(ctx context.Context, rawURL string) (*Resource, error) {
	if !f.RequiresAuth(rawURL) {
		return &Resource{URL: rawURL}, nil
	}

	fetchURL := rawURL
	if strings.HasPrefix(rawURL, f.filesPrefix) {
		fetchURL = f.baseURL + rawURL
	}

	v, err, shared := f.group.Do(fetchURL, func() (any, error) {
		return f.fetch(ctx, fetchURL)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debugf("deduplicated concurrent fetch of %s", fetchURL)
	}
	blob := v.(*blobData)
	return &Resource{Blob: &BlobHandle{
		id:          uuid.NewString(),
		contentType: blob.contentType,
		data:        blob.data,
	}}, nil
}

func (f *Fetcher) fetch(ctx context.Context, fetchURL string) (*blobData, error) {
	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if errReq != nil {
		return nil, fmt.Errorf("eralove media: create request failed: %w", errReq)
	}
	if token := f.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, errDo := f.httpClient.Do(req)
	if errDo != nil {
		return nil, fmt.Errorf("eralove media: fetch %s failed: %w", fetchURL, errDo)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{StatusCode: resp.StatusCode, URL: fetchURL}
	}

	data, errRead := io.ReadAll(resp.Body)
	if errRead != nil {
		return nil, fmt.Errorf("eralove media: read %s failed: %w", fetchURL, errRead)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &blobData{data: data, contentType: contentType}, nil
}
