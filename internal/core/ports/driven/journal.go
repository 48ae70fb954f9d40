package driven

import (
	"context"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
)

// CommitJournal is the audit log of commit attempts.
type CommitJournal interface {
	// Record appends one entry.
	Record(ctx context.Context, rec domain.CommitRecord) error

	// List returns the newest entries first. An empty base lists all bases.
	// A non-positive limit returns every entry.
	List(ctx context.Context, base string, limit int) ([]domain.CommitRecord, error)
}
