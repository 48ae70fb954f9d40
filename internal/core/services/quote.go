package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driving"
	"github.com/custodia-labs/od-drafter/internal/logger"
)

// Ensure QuoteService implements the interface.
var _ driving.QuoteService = (*QuoteService)(nil)

// QuoteService implements the tool-level operations on quote documents.
//
// It is the committer's caller: a VersionCollision re-runs the whole commit
// (re-listing and re-allocating) up to the configured number of retries.
// No other failure is retried.
type QuoteService struct {
	committer *Committer
	clauses   driven.ClauseDictionary
	journal   driven.CommitJournal
	retries   int
	now       func() time.Time
}

// NewQuoteService creates a new quote service.
// The journal parameter is optional (can be nil).
func NewQuoteService(
	committer *Committer,
	clauses driven.ClauseDictionary,
	journal driven.CommitJournal,
	collisionRetries int,
) *QuoteService {
	if collisionRetries < 0 {
		collisionRetries = 0
	}
	return &QuoteService{
		committer: committer,
		clauses:   clauses,
		journal:   journal,
		retries:   collisionRetries,
		now:       time.Now,
	}
}

// AddClause appends the clause named in clauseQuery to the latest revision.
func (s *QuoteService) AddClause(ctx context.Context, base, clauseQuery string) domain.Outcome {
	logger.Section("Add Clause")
	marker := domain.Marker{Kind: domain.MarkerClause, Title: clauseQuery}

	clauses, err := s.Clauses(ctx)
	if err != nil {
		return s.reject(ctx, base, marker, domain.ReasonDictionaryUnavailable, err, nil)
	}

	clause, candidates, ok := matchClause(clauses, clauseQuery)
	if !ok {
		alternatives := candidates
		cause := fmt.Errorf("%w: clause query %q is ambiguous", domain.ErrInvalidInput, clauseQuery)
		if len(candidates) == 0 {
			alternatives = clauseTitles(clauses)
			cause = nil
		}
		return s.reject(ctx, base, marker, domain.ReasonUnknownMarker, cause, alternatives)
	}

	logger.Debug("clause query %q resolved to %q", clauseQuery, clause.Title)
	return s.commit(ctx, base, domain.ClauseMutation(clause))
}

// AddLineItem appends a row to the first table of the latest revision.
func (s *QuoteService) AddLineItem(ctx context.Context, base string, item domain.LineItem) domain.Outcome {
	logger.Section("Add Line Item")
	mutation := domain.LineItemMutation(item)

	if missing := item.Missing(); len(missing) > 0 {
		err := fmt.Errorf("%w: missing details: %v", domain.ErrInvalidInput, missing)
		return s.reject(ctx, base, mutation.Marker(), domain.ReasonInvalidInput, err, missing)
	}

	return s.commit(ctx, base, mutation)
}

// ListRevisions returns all revisions of base, oldest first.
func (s *QuoteService) ListRevisions(ctx context.Context, base string) ([]domain.Revision, error) {
	if err := domain.ValidateBase(base); err != nil {
		return nil, err
	}
	listing, err := s.committer.Directory().ListRevisions(ctx, base)
	if err != nil {
		return nil, err
	}
	return listing.Revisions(), nil
}

// Clauses returns the clause dictionary.
func (s *QuoteService) Clauses(ctx context.Context) ([]domain.Clause, error) {
	if s.clauses == nil {
		return nil, domain.ErrDictionaryUnavailable
	}
	return s.clauses.List(ctx)
}

// History returns audit entries for base, newest first.
func (s *QuoteService) History(ctx context.Context, base string, limit int) ([]domain.CommitRecord, error) {
	if s.journal == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.journal.List(ctx, base, limit)
}

// commit runs the committer, retrying on version collisions.
func (s *QuoteService) commit(ctx context.Context, base string, mutation domain.Mutation) domain.Outcome {
	var out domain.Outcome
	for attempt := 1; attempt <= s.retries+1; attempt++ {
		out = s.committer.Commit(ctx, base, mutation)
		out.Attempts = attempt
		s.record(ctx, out, attempt)

		if out.Reason != domain.ReasonVersionCollision || ctx.Err() != nil {
			break
		}
		logger.Warn("version collision on %s (attempt %d of %d)", base, attempt, s.retries+1)
	}
	return out
}

// reject records and returns a failure that never reached the committer.
func (s *QuoteService) reject(
	ctx context.Context,
	base string,
	marker domain.Marker,
	reason domain.FailureReason,
	err error,
	alternatives []string,
) domain.Outcome {
	out := domain.Failed(base, reason, err)
	out.Marker = marker
	out.Alternatives = alternatives
	s.record(ctx, out, 0)
	return out
}

func (s *QuoteService) record(ctx context.Context, out domain.Outcome, attempt int) {
	if s.journal == nil {
		return
	}
	rec := domain.NewCommitRecord("", out, attempt, s.now().UTC())
	if err := s.journal.Record(ctx, rec); err != nil {
		logger.Warn("journal record for %s failed: %v", out.Base, err)
	}
}
