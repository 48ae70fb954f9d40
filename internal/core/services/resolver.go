package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
	"github.com/custodia-labs/od-drafter/internal/logger"
)

// Resolution is the latest revision of a base together with the listing
// it was chosen from.
type Resolution struct {
	Listing  Listing
	Revision domain.Revision
	Content  domain.DocumentContent
}

// Resolver finds and downloads the latest revision of a base.
type Resolver struct {
	dir   *Directory
	store driven.BlobStore
}

// NewResolver creates a resolver.
func NewResolver(dir *Directory, store driven.BlobStore) *Resolver {
	return &Resolver{dir: dir, store: store}
}

// ResolveLatest lists the revisions of base, selects the highest number and
// downloads it. Errors are domain.ErrDirectoryUnavailable,
// domain.ErrBaseNotFound or domain.ErrDownloadFailed.
func (r *Resolver) ResolveLatest(ctx context.Context, base string) (*Resolution, error) {
	listing, err := r.dir.ListRevisions(ctx, base)
	if err != nil {
		return nil, err
	}

	latest, ok := listing.Latest()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBaseNotFound, base)
	}

	data, err := r.store.Download(ctx, latest.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDownloadFailed, latest.Name, err)
	}

	logger.Debug("resolved %s -> %s (%d bytes)", base, latest.Name, len(data))
	return &Resolution{
		Listing:  listing,
		Revision: latest,
		Content:  domain.DocumentContent{Format: listing.Format, Data: data},
	}, nil
}
