package mcp

import (
	"context"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
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
