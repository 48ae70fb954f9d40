package driving

import (
	"context"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
)

// QuoteService performs idempotent, versioned edits to quote documents.
// Edits return typed outcomes; failures are carried in the Outcome rather
// than as Go errors.
type QuoteService interface {
	// AddClause appends the clause whose title appears in clauseQuery.
	// An unknown query fails with the available titles as alternatives.
	AddClause(ctx context.Context, base, clauseQuery string) domain.Outcome

	// AddLineItem appends a row to the first pricing table.
	AddLineItem(ctx context.Context, base string, item domain.LineItem) domain.Outcome

	// ListRevisions returns all revisions of base, oldest first.
	ListRevisions(ctx context.Context, base string) ([]domain.Revision, error)

	// Clauses returns the clause dictionary.
	Clauses(ctx context.Context) ([]domain.Clause, error)

	// History returns audit entries for base, newest first.
	History(ctx context.Context, base string, limit int) ([]domain.CommitRecord, error)
}
