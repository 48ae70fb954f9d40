package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
)

// Ensure CommitJournal implements the interface.
var _ driven.CommitJournal = (*CommitJournal)(nil)

// CommitJournal is an in-memory implementation of driven.CommitJournal.
type CommitJournal struct {
	mu      sync.RWMutex
	records []domain.CommitRecord
}

// NewCommitJournal creates a new in-memory journal.
func NewCommitJournal() *CommitJournal {
	return &CommitJournal{}
}

// Record appends one entry. An empty ID is replaced with a new UUID.
func (j *CommitJournal) Record(_ context.Context, rec domain.CommitRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	return nil
}

// List returns the newest entries first.
func (j *CommitJournal) List(_ context.Context, base string, limit int) ([]domain.CommitRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var result []domain.CommitRecord
	for i := len(j.records) - 1; i >= 0; i-- {
		if base != "" && j.records[i].Base != base {
			continue
		}
		result = append(result, j.records[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}
