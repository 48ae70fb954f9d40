package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// listPageSize is the number of entries requested per list call.
const listPageSize = 100

// Config holds connection settings for a storage bucket.
type Config struct {
	// URL is the project URL, e.g. https://xyz.supabase.co.
	URL string
	// Key is the service role or anon key.
	Key string
	// Bucket is the storage bucket name.
	Bucket string
	// PublicBaseURL overrides the derived public object URL prefix.
	PublicBaseURL string
	// RequestsPerSecond throttles API calls. Zero selects the default.
	RequestsPerSecond float64
	// HTTPClient is used for requests. Nil selects a client with no
	// timeout; callers bound requests through the context.
	HTTPClient *http.Client
}

// BlobStore talks to the Supabase Storage REST API.
type BlobStore struct {
	base    string
	key     string
	bucket  string
	public  string
	client  *http.Client
	limiter *RateLimiter
}

// NewBlobStore validates cfg and creates a store.
func NewBlobStore(cfg Config) (*BlobStore, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, fmt.Errorf("%w: supabase url and key are required", domain.ErrInvalidInput)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: supabase bucket is required", domain.ErrInvalidInput)
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("%w: supabase url: %v", domain.ErrInvalidInput, err)
	}

	base := strings.TrimRight(cfg.URL, "/")
	public := strings.TrimRight(cfg.PublicBaseURL, "/")
	if public == "" {
		public = base + "/storage/v1/object/public/" + url.PathEscape(cfg.Bucket)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &BlobStore{
		base:    base,
		key:     cfg.Key,
		bucket:  cfg.Bucket,
		public:  public,
		client:  client,
		limiter: NewRateLimiter(cfg.RequestsPerSecond),
	}, nil
}

// listRequest is the body of POST /object/list/{bucket}.
type listRequest struct {
	Prefix string     `json:"prefix"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
	SortBy listSortBy `json:"sortBy"`
}

type listSortBy struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

// listEntry is one row of a list response. Folders have a null id.
type listEntry struct {
	Name      string     `json:"name"`
	ID        *string    `json:"id"`
	UpdatedAt *time.Time `json:"updated_at"`
	Metadata  *struct {
		Size     int64  `json:"size"`
		MIMEType string `json:"mimetype"`
	} `json:"metadata"`
}

// List pages through the bucket root. Folder placeholders are skipped.
func (s *BlobStore) List(ctx context.Context) ([]driven.BlobObject, error) {
	var result []driven.BlobObject
	for offset := 0; ; offset += listPageSize {
		body, err := json.Marshal(listRequest{
			Limit:  listPageSize,
			Offset: offset,
			SortBy: listSortBy{Column: "name", Order: "asc"},
		})
		if err != nil {
			return nil, err
		}

		var page []listEntry
		if err := s.doJSON(ctx, http.MethodPost, "/storage/v1/object/list/"+url.PathEscape(s.bucket), body, &page); err != nil {
			return nil, fmt.Errorf("listing bucket %s: %w", s.bucket, err)
		}

		for _, e := range page {
			if e.ID == nil {
				continue
			}
			obj := driven.BlobObject{Name: e.Name}
			if e.Metadata != nil {
				obj.Size = e.Metadata.Size
			}
			if e.UpdatedAt != nil {
				obj.UpdatedAt = e.UpdatedAt.UTC()
			}
			result = append(result, obj)
		}
		if len(page) < listPageSize {
			return result, nil
		}
	}
}

// Download fetches the object through the authenticated endpoint.
func (s *BlobStore) Download(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.do(ctx, http.MethodGet, s.objectPath(name), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// Upload creates the object with upsert disabled.
func (s *BlobStore) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := http.Header{}
	header.Set("Content-Type", contentType)
	header.Set("x-upsert", "false")

	resp, err := s.do(ctx, http.MethodPost, s.objectPath(name), data, header)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// PublicURL returns the public object URL.
func (s *BlobStore) PublicURL(name string) string {
	return s.public + "/" + url.PathEscape(name)
}

func (s *BlobStore) objectPath(name string) string {
	return "/storage/v1/object/" + url.PathEscape(s.bucket) + "/" + url.PathEscape(name)
}

func (s *BlobStore) doJSON(ctx context.Context, method, path string, body []byte, out any) error {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	resp, err := s.do(ctx, method, path, body, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// do sends an authenticated request and returns the response for 2xx
// statuses. Other statuses are converted to *APIError.
func (s *BlobStore) do(ctx context.Context, method, path string, body []byte, header http.Header) (*http.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.base+path, reader)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	s.limiter.Update(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, readError(resp)
	}
	return resp, nil
}
