package memory

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

type object struct {
	data        []byte
	contentType string
	updatedAt   time.Time
}

// BlobStore is an in-memory bucket with create-only uploads.
type BlobStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]object
}

// NewBlobStore creates an empty in-memory bucket.
func NewBlobStore(bucket string) *BlobStore {
	return &BlobStore{
		bucket:  bucket,
		objects: make(map[string]object),
	}
}

// List returns every object, sorted by name.
func (s *BlobStore) List(ctx context.Context) ([]driven.BlobObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]driven.BlobObject, 0, len(s.objects))
	for name, obj := range s.objects {
		result = append(result, driven.BlobObject{
			Name:      name,
			Size:      int64(len(obj.data)),
			UpdatedAt: obj.updatedAt,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Download returns a copy of the object's bytes.
func (s *BlobStore) Download(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	return append([]byte(nil), obj.data...), nil
}

// Upload creates the object, rejecting an existing key.
func (s *BlobStore) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[name]; exists {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, name)
	}
	s.objects[name] = object{
		data:        append([]byte(nil), data...),
		contentType: contentType,
		updatedAt:   time.Now().UTC(),
	}
	return nil
}

// PublicURL returns a memory:// reference for the key.
func (s *BlobStore) PublicURL(name string) string {
	return "memory://" + s.bucket + "/" + url.PathEscape(name)
}

// ContentType returns the content type recorded at upload.
func (s *BlobStore) ContentType(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[name].contentType
}

// Len returns the number of stored objects.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
