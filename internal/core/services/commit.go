package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
	"github.com/custodia-labs/od-drafter/internal/logger"
)

// DefaultStoreTimeout bounds each store call when no timeout is configured.
const DefaultStoreTimeout = 30 * time.Second

// Committer turns one semantic edit into at most one new revision.
//
// Steps run strictly in sequence: resolve latest, gate, mutate, allocate,
// upload. The committer keeps no state between calls.
type Committer struct {
	store    driven.BlobStore
	editors  driven.EditorRegistry
	dir      *Directory
	resolver *Resolver
	gate     *Gate
}

// NewCommitter creates a committer. Every store call is bounded by timeout;
// zero selects DefaultStoreTimeout.
func NewCommitter(store driven.BlobStore, editors driven.EditorRegistry, timeout time.Duration) *Committer {
	if timeout == 0 {
		timeout = DefaultStoreTimeout
	}
	store = withTimeout(store, timeout)
	dir := NewDirectory(store, editors.Formats())

	return &Committer{
		store:    store,
		editors:  editors,
		dir:      dir,
		resolver: NewResolver(dir, store),
		gate:     NewGate(editors),
	}
}

// Directory returns the directory view the committer lists through.
func (c *Committer) Directory() *Directory {
	return c.dir
}

// Commit applies mutation to the latest revision of base.
//
// The outcome is AlreadyApplied when the edit is present (nothing is
// written), Applied when exactly one new object was uploaded, and Failed
// otherwise. A failed commit never exposes the allocated revision name.
func (c *Committer) Commit(ctx context.Context, base string, mutation domain.Mutation) domain.Outcome {
	out := c.commit(ctx, base, mutation)
	out.Base = base
	out.Marker = mutation.Marker()
	return out
}

func (c *Committer) commit(ctx context.Context, base string, mutation domain.Mutation) domain.Outcome {
	if err := domain.ValidateBase(base); err != nil {
		return domain.Failed(base, domain.ReasonInvalidInput, err)
	}
	marker := mutation.Marker()

	res, err := c.resolver.ResolveLatest(ctx, base)
	if err != nil {
		return domain.Failed(base, domain.ReasonFor(err), err)
	}

	apply, err := c.gate.ShouldApply(res.Content, marker)
	if err != nil {
		return domain.Failed(base, gateReason(err), err)
	}
	logger.Debug("gate %s on %s: apply=%t", marker, res.Revision.Name, apply)
	if !apply {
		return domain.AlreadyApplied(res.Revision)
	}

	editor, err := c.editors.Editor(res.Content.Format)
	if err != nil {
		return domain.Failed(base, domain.ReasonMutateError, err)
	}
	data, err := editor.Append(res.Content.Data, mutation)
	if err != nil {
		return domain.Failed(base, gateReason(err), fmt.Errorf("applying %s to %s: %w", marker, res.Revision.Name, err))
	}

	next := AllocateNext(res.Listing)
	logger.Debug("allocated %s (latest %s)", next.Name, res.Revision.Name)

	err = c.store.Upload(ctx, next.Name, data, next.Format.MIMEType())
	switch {
	case err == nil:
		logger.Debug("uploaded %s (%d bytes)", next.Name, len(data))
		return domain.Applied(next, c.store.PublicURL(next.Name))
	case errors.Is(err, domain.ErrAlreadyExists):
		return domain.Failed(base, domain.ReasonVersionCollision, err)
	case isTimeout(err):
		return c.reconcile(ctx, next, data, err)
	default:
		return domain.Failed(base, domain.ReasonUploadError, err)
	}
}

// reconcile settles an upload whose outcome is unknown by re-listing.
// The object counts as ours only if its bytes match what was sent.
func (c *Committer) reconcile(ctx context.Context, rev domain.Revision, data []byte, uploadErr error) domain.Outcome {
	logger.Warn("upload of %s timed out; re-listing to verify", rev.Name)
	ctx = context.WithoutCancel(ctx)

	listing, err := c.dir.ListRevisions(ctx, rev.Base)
	if err != nil {
		return domain.Failed(rev.Base, domain.ReasonUploadError,
			fmt.Errorf("%w; verification listing failed: %v", uploadErr, err))
	}
	if listing.Format != rev.Format || !listing.Contains(rev.Number) {
		return domain.Failed(rev.Base, domain.ReasonUploadError, uploadErr)
	}

	stored, err := c.store.Download(ctx, rev.Name)
	if err != nil {
		return domain.Failed(rev.Base, domain.ReasonUploadError,
			fmt.Errorf("%w; verification download failed: %v", uploadErr, err))
	}
	if !bytes.Equal(stored, data) {
		return domain.Failed(rev.Base, domain.ReasonVersionCollision,
			fmt.Errorf("%w: %s was written by another commit", domain.ErrAlreadyExists, rev.Name))
	}

	logger.Info("upload of %s landed despite timeout", rev.Name)
	return domain.Applied(rev, c.store.PublicURL(rev.Name))
}

func gateReason(err error) domain.FailureReason {
	if errors.Is(err, domain.ErrNoTable) {
		return domain.ReasonNoTableInDocument
	}
	return domain.ReasonMutateError
}
