package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/od-drafter/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/services"
)

// mockQuoteService is a mock implementation of driving.QuoteService.
type mockQuoteService struct {
	outcome   domain.Outcome
	revisions []domain.Revision
	clauses   []domain.Clause
	history   []domain.CommitRecord
	err       error

	gotBase   string
	gotClause string
	gotItem   domain.LineItem
	gotLimit  int
}

func (m *mockQuoteService) AddClause(_ context.Context, base, clauseQuery string) domain.Outcome {
	m.gotBase, m.gotClause = base, clauseQuery
	return m.outcome
}

func (m *mockQuoteService) AddLineItem(_ context.Context, base string, item domain.LineItem) domain.Outcome {
	m.gotBase, m.gotItem = base, item
	return m.outcome
}

func (m *mockQuoteService) ListRevisions(_ context.Context, base string) ([]domain.Revision, error) {
	m.gotBase = base
	return m.revisions, m.err
}

func (m *mockQuoteService) Clauses(_ context.Context) ([]domain.Clause, error) {
	return m.clauses, m.err
}

func (m *mockQuoteService) History(_ context.Context, base string, limit int) ([]domain.CommitRecord, error) {
	m.gotBase, m.gotLimit = base, limit
	return m.history, m.err
}

// testQuote is the mock installed by setupTestServices.
var testQuote *mockQuoteService

// setupTestServices installs a mock quote service and a settings service
// over an in-memory config store. The returned function restores state.
func setupTestServices() func() {
	applied := domain.Applied(domain.NewRevision("Q1", 1, domain.FormatDOCX), "https://cdn.example/Q1_v1.docx")
	applied.Marker = domain.Marker{Kind: domain.MarkerClause, Title: "Warranty"}

	testQuote = &mockQuoteService{
		outcome: applied,
		revisions: []domain.Revision{
			domain.NewRevision("Q1", 0, domain.FormatDOCX),
			domain.NewRevision("Q1", 1, domain.FormatDOCX),
		},
		clauses: []domain.Clause{{Title: "Warranty", Body: "Twelve months."}},
		history: []domain.CommitRecord{{
			ID:        "c1",
			Base:      "Q1",
			Marker:    "clause:Warranty",
			Status:    "applied",
			Revision:  "Q1_v1.docx",
			Attempt:   1,
			CreatedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		}},
	}

	SetServices(Services{
		Quote:    testQuote,
		Settings: services.NewSettingsService(memory.NewConfigStore()),
	})

	return func() {
		SetServices(Services{})
		outputJSON = false
		historyLimit = 20
		lineItemName, lineItemDescription, lineItemPrice = "", "", ""
	}
}
