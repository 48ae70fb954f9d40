package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
)

// timeoutStore bounds every store call and reports deadline expiry as
// domain.ErrStoreTimeout.
type timeoutStore struct {
	driven.BlobStore
	timeout time.Duration
}

// withTimeout wraps store so each call carries its own deadline.
// A non-positive timeout returns store unchanged.
func withTimeout(store driven.BlobStore, timeout time.Duration) driven.BlobStore {
	if timeout <= 0 {
		return store
	}
	return &timeoutStore{BlobStore: store, timeout: timeout}
}

func (s *timeoutStore) List(ctx context.Context) ([]driven.BlobObject, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	objects, err := s.BlobStore.List(ctx)
	return objects, markTimeout(err)
}

func (s *timeoutStore) Download(ctx context.Context, name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	data, err := s.BlobStore.Download(ctx, name)
	return data, markTimeout(err)
}

func (s *timeoutStore) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return markTimeout(s.BlobStore.Upload(ctx, name, data, contentType))
}

func markTimeout(err error) error {
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrStoreTimeout) {
		return fmt.Errorf("%w: %w", domain.ErrStoreTimeout, err)
	}
	return err
}

// isTimeout reports whether err leaves the outcome of a store call unknown.
func isTimeout(err error) bool {
	return errors.Is(err, domain.ErrStoreTimeout) || errors.Is(err, context.DeadlineExceeded)
}
