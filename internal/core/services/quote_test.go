package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/od-drafter/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
)

var testClauses = staticClauses{
	{Title: "Auto Renewal", Body: "Renews yearly."},
	{Title: "Renewal", Body: "May be renewed."},
	{Title: "Warranty", Body: "Twelve months."},
}

func newTestQuoteService(store driven.BlobStore, journal driven.CommitJournal, retries int) *QuoteService {
	return NewQuoteService(newTestCommitter(store), testClauses, journal, retries)
}

func TestQuoteService_AddClause(t *testing.T) {
	store := seed(t, map[string]string{"Q1.docx": "Quote\n"})
	svc := newTestQuoteService(store, nil, 0)

	out := svc.AddClause(context.Background(), "Q1", "please add the warranty clause")

	require.Equal(t, domain.StatusApplied, out.Status, out.Err)
	assert.Equal(t, "Warranty", out.Marker.Title)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, "Added clause 'Warranty' to Q1. New version created: Q1_v1.docx", out.Message())
	assert.Contains(t, download(t, store, "Q1_v1.docx"), "## Warranty\nTwelve months.\n")
}

func TestQuoteService_AddClause_Idempotent(t *testing.T) {
	store := seed(t, map[string]string{"Q1.docx": "Quote\n"})
	svc := newTestQuoteService(store, nil, 0)
	ctx := context.Background()

	require.Equal(t, domain.StatusApplied, svc.AddClause(ctx, "Q1", "Warranty").Status)
	out := svc.AddClause(ctx, "Q1", "warranty")

	assert.Equal(t, domain.StatusAlreadyApplied, out.Status)
	assert.Equal(t, "Clause 'Warranty' already exists in Q1_v1.docx. No changes made.", out.Message())
	assert.Equal(t, 2, store.Len())
}

func TestQuoteService_AddClause_MostSpecificTitleWins(t *testing.T) {
	store := seed(t, map[string]string{"Q1.docx": "Quote\n"})
	svc := newTestQuoteService(store, nil, 0)

	out := svc.AddClause(context.Background(), "Q1", "add auto renewal please")
	require.Equal(t, domain.StatusApplied, out.Status, out.Err)
	assert.Equal(t, "Auto Renewal", out.Marker.Title)
}

func TestQuoteService_AddClause_Unknown(t *testing.T) {
	store := seed(t, map[string]string{"Q1.docx": "Quote\n"})
	svc := newTestQuoteService(store, nil, 0)

	out := svc.AddClause(context.Background(), "Q1", "Escrow")

	assert.Equal(t, domain.ReasonUnknownMarker, out.Reason)
	assert.Equal(t, []string{"Auto Renewal", "Renewal", "Warranty"}, out.Alternatives)
	assert.Equal(t, "Clause 'Escrow' not found for quote Q1. Options: Auto Renewal, Renewal, Warranty", out.Message())
	assert.Equal(t, 1, store.Len())
}

func TestQuoteService_AddClause_Ambiguous(t *testing.T) {
	store := seed(t, map[string]string{"Q1.docx": "Quote\n"})
	svc := newTestQuoteService(store, nil, 0)

	out := svc.AddClause(context.Background(), "Q1", "warranty and renewal")

	assert.Equal(t, domain.ReasonUnknownMarker, out.Reason)
	assert.ElementsMatch(t, []string{"Renewal", "Warranty"}, out.Alternatives)
	assert.ErrorIs(t, out.Err, domain.ErrInvalidInput)
}

func TestQuoteService_AddClause_DictionaryUnavailable(t *testing.T) {
	store := seed(t, map[string]string{"Q1.docx": "Quote\n"})
	svc := NewQuoteService(newTestCommitter(store), failingDictionary{}, nil, 0)

	out := svc.AddClause(context.Background(), "Q1", "Warranty")
	assert.Equal(t, domain.ReasonDictionaryUnavailable, out.Reason)

	svc = NewQuoteService(newTestCommitter(store), nil, nil, 0)
	out = svc.AddClause(context.Background(), "Q1", "Warranty")
	assert.Equal(t, domain.ReasonDictionaryUnavailable, out.Reason)
}

func TestQuoteService_AddLineItem(t *testing.T) {
	store := seed(t, map[string]string{"Q1.docx": "[table]\n"})
	svc := newTestQuoteService(store, nil, 0)
	ctx := context.Background()
	item := domain.LineItem{Name: "Widget", Description: "Blue widget", Price: "$10"}

	out := svc.AddLineItem(ctx, "Q1", item)
	require.Equal(t, domain.StatusApplied, out.Status, out.Err)
	assert.Equal(t, "Q1_v1.docx", out.Revision.Name)

	again := svc.AddLineItem(ctx, "Q1", item)
	assert.Equal(t, domain.StatusAlreadyApplied, again.Status)
	assert.Equal(t, "Row 'Widget' ($10) already exists in Q1_v1.docx. No changes made.", again.Message())
}

func TestQuoteService_AddLineItem_MissingFields(t *testing.T) {
	store := seed(t, map[string]string{"Q1.docx": "[table]\n"})
	svc := newTestQuoteService(store, nil, 0)

	out := svc.AddLineItem(context.Background(), "Q1", domain.LineItem{Name: "Widget"})

	assert.Equal(t, domain.ReasonInvalidInput, out.Reason)
	assert.Equal(t, []string{"description", "price"}, out.Alternatives)
	assert.Equal(t, 1, store.Len())
}

func TestQuoteService_AddLineItem_NoTable(t *testing.T) {
	store := seed(t, map[string]string{"Q1.docx": "prose\n"})
	svc := newTestQuoteService(store, nil, 0)

	out := svc.AddLineItem(context.Background(), "Q1", domain.LineItem{Name: "W", Description: "d", Price: "$1"})
	assert.Equal(t, domain.ReasonNoTableInDocument, out.Reason)
	assert.Contains(t, out.Message(), "No tables found")
}

// runConcurrently starts both calls after a shared listing snapshot and
// returns their outcomes.
func runConcurrently(t *testing.T, svc *QuoteService, calls ...func(*QuoteService) domain.Outcome) []domain.Outcome {
	t.Helper()
	outs := make([]domain.Outcome, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call func(*QuoteService) domain.Outcome) {
			defer wg.Done()
			outs[i] = call(svc)
		}(i, call)
	}
	wg.Wait()
	return outs
}

func TestQuoteService_ConcurrentDifferentClausesRetry(t *testing.T) {
	inner := seed(t, map[string]string{"Q1.docx": "Quote\n"})
	store := newBarrierStore(inner, 2)
	svc := newTestQuoteService(store, nil, 1)
	ctx := context.Background()

	outs := runConcurrently(t, svc,
		func(s *QuoteService) domain.Outcome { return s.AddClause(ctx, "Q1", "Warranty") },
		func(s *QuoteService) domain.Outcome { return s.AddClause(ctx, "Q1", "Auto Renewal") },
	)

	names := []string{outs[0].Revision.Name, outs[1].Revision.Name}
	sort.Strings(names)
	assert.Equal(t, []string{"Q1_v1.docx", "Q1_v2.docx"}, names)
	for _, out := range outs {
		assert.Equal(t, domain.StatusApplied, out.Status, out.Err)
	}
	assert.ElementsMatch(t, []int{1, 2}, []int{outs[0].Attempts, outs[1].Attempts})

	latest := download(t, inner, "Q1_v2.docx")
	assert.Contains(t, latest, "## Warranty")
	assert.Contains(t, latest, "## Auto Renewal")
}

func TestQuoteService_ConcurrentSameClause(t *testing.T) {
	inner := seed(t, map[string]string{"Q1.docx": "Quote\n"})
	store := newBarrierStore(inner, 2)
	svc := newTestQuoteService(store, nil, 1)
	ctx := context.Background()

	add := func(s *QuoteService) domain.Outcome { return s.AddClause(ctx, "Q1", "Warranty") }
	outs := runConcurrently(t, svc, add, add)

	statuses := []domain.OutcomeStatus{outs[0].Status, outs[1].Status}
	assert.ElementsMatch(t, []domain.OutcomeStatus{domain.StatusApplied, domain.StatusAlreadyApplied}, statuses)
	assert.Equal(t, 2, inner.Len(), "exactly one revision written")
}

func TestQuoteService_CollisionWithoutRetry(t *testing.T) {
	inner := seed(t, map[string]string{"Q1.docx": "Quote\n"})
	store := newBarrierStore(inner, 2)
	svc := newTestQuoteService(store, nil, 0)
	ctx := context.Background()

	outs := runConcurrently(t, svc,
		func(s *QuoteService) domain.Outcome { return s.AddClause(ctx, "Q1", "Warranty") },
		func(s *QuoteService) domain.Outcome { return s.AddClause(ctx, "Q1", "Auto Renewal") },
	)

	reasons := []domain.FailureReason{outs[0].Reason, outs[1].Reason}
	assert.ElementsMatch(t, []domain.FailureReason{domain.ReasonNone, domain.ReasonVersionCollision}, reasons)
	assert.Equal(t, 2, inner.Len())
}

func TestQuoteService_JournalsEveryAttempt(t *testing.T) {
	store := seed(t, map[string]string{"Q1.docx": "Quote\n"})
	journal := memory.NewCommitJournal()
	svc := newTestQuoteService(store, journal, 0)
	fixed := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	svc.AddClause(ctx, "Q1", "Warranty")
	svc.AddClause(ctx, "Q1", "Escrow")
	svc.AddClause(ctx, "Q2", "Warranty")

	history, err := svc.History(ctx, "Q1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, "failed", history[0].Status)
	assert.Equal(t, string(domain.ReasonUnknownMarker), history[0].Reason)
	assert.Equal(t, 0, history[0].Attempt)

	assert.Equal(t, "applied", history[1].Status)
	assert.Equal(t, "Q1_v1.docx", history[1].Revision)
	assert.Equal(t, "clause:Warranty", history[1].Marker)
	assert.Equal(t, 1, history[1].Attempt)
	assert.Equal(t, fixed, history[1].CreatedAt)

	all, err := svc.History(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Q2", all[0].Base)
}

func TestQuoteService_HistoryWithoutJournal(t *testing.T) {
	svc := newTestQuoteService(seed(t, nil), nil, 0)

	_, err := svc.History(context.Background(), "Q1", 0)
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}

func TestQuoteService_ListRevisions(t *testing.T) {
	store := seed(t, map[string]string{"Q1.docx": "", "Q1_v2.docx": "", "Q2.docx": ""})
	svc := newTestQuoteService(store, nil, 0)
	ctx := context.Background()

	revs, err := svc.ListRevisions(ctx, "Q1")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, "Q1.docx", revs[0].Name)
	assert.Equal(t, "Q1_v2.docx", revs[1].Name)

	_, err = svc.ListRevisions(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQuoteService_Clauses(t *testing.T) {
	svc := newTestQuoteService(seed(t, nil), nil, 0)

	clauses, err := svc.Clauses(context.Background())
	require.NoError(t, err)
	assert.Len(t, clauses, 3)
}

func TestNewQuoteService_NegativeRetries(t *testing.T) {
	svc := NewQuoteService(newTestCommitter(seed(t, nil)), testClauses, nil, -3)
	assert.Equal(t, 0, svc.retries)
}
