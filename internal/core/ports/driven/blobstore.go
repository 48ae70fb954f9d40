package driven

import (
	"context"
	"time"
)

// BlobObject describes one object in the bucket listing.
type BlobObject struct {
	Name      string
	Size      int64
	UpdatedAt time.Time
}

// BlobStore is a flat bucket of immutable objects.
//
// The store offers list-after-write consistency but no compare-and-swap.
// Uploads are create-only: implementations must reject an existing key
// rather than overwrite it.
type BlobStore interface {
	// List returns every object in the bucket. The store has no prefix
	// filter; callers decode names themselves.
	List(ctx context.Context) ([]BlobObject, error)

	// Download returns the object's bytes.
	// Returns domain.ErrNotFound if the key does not exist.
	Download(ctx context.Context, name string) ([]byte, error)

	// Upload creates a new object.
	// Returns domain.ErrAlreadyExists if the key is taken and
	// domain.ErrStoreTimeout if the outcome of the write is unknown.
	Upload(ctx context.Context, name string, data []byte, contentType string) error

	// PublicURL derives a dereferenceable URL for the key.
	PublicURL(name string) string
}
