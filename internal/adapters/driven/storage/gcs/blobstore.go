package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// Config holds bucket settings.
type Config struct {
	// Bucket is the bucket name.
	Bucket string
	// CredentialsFile is a service account key. Empty selects
	// application default credentials.
	CredentialsFile string
	// PublicBaseURL overrides https://storage.googleapis.com/{bucket}.
	PublicBaseURL string
}

// BlobStore reads and writes objects at the bucket root.
type BlobStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	public string
}

// NewBlobStore creates a storage client for cfg.
func NewBlobStore(ctx context.Context, cfg Config, opts ...option.ClientOption) (*BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: gcs bucket is required", domain.ErrInvalidInput)
	}
	if cfg.CredentialsFile != "" {
		if _, err := os.Stat(cfg.CredentialsFile); err != nil {
			return nil, fmt.Errorf("service account key not found at path %s: %w", cfg.CredentialsFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return newBlobStore(client, cfg), nil
}

func newBlobStore(client *storage.Client, cfg Config) *BlobStore {
	public := strings.TrimRight(cfg.PublicBaseURL, "/")
	if public == "" {
		public = "https://storage.googleapis.com/" + cfg.Bucket
	}
	return &BlobStore{
		client: client,
		bucket: client.Bucket(cfg.Bucket),
		public: public,
	}
}

// Close releases the underlying client.
func (s *BlobStore) Close() error {
	return s.client.Close()
}

// List returns the objects at the bucket root. Names containing a slash
// are skipped.
func (s *BlobStore) List(ctx context.Context) ([]driven.BlobObject, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Delimiter: "/"})
	var result []driven.BlobObject
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return result, nil
		}
		if err != nil {
			return nil, fmt.Errorf("listing bucket: %w", mapError(err))
		}
		if attrs.Name == "" || strings.Contains(attrs.Name, "/") {
			continue
		}
		result = append(result, driven.BlobObject{
			Name:      attrs.Name,
			Size:      attrs.Size,
			UpdatedAt: attrs.Updated.UTC(),
		})
	}
}

// Download reads the object's bytes.
func (s *BlobStore) Download(ctx context.Context, name string) ([]byte, error) {
	r, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, mapError(err))
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, mapError(err))
	}
	return data, nil
}

// Upload creates the object only if no generation of it exists.
func (s *BlobStore) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	w := s.bucket.Object(name).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "no-cache"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing %s: %w", name, mapError(err))
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("uploading %s: %w", name, mapError(err))
	}
	return nil
}

// PublicURL returns the public object URL.
func (s *BlobStore) PublicURL(name string) string {
	return s.public + "/" + url.PathEscape(name)
}

// mapError translates storage errors into domain errors. A failed
// DoesNotExist precondition is reported as 412.
func mapError(err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusPreconditionFailed, http.StatusConflict:
			return fmt.Errorf("%w: %v", domain.ErrAlreadyExists, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		}
	}
	return err
}
