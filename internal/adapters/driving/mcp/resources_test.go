package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
)

func TestExtractBase(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid revisions URI", uri: "od://quotes/Q-100/revisions", expected: "Q-100"},
		{name: "invalid prefix", uri: "file://quotes/Q-100/revisions", expected: ""},
		{name: "missing revisions suffix", uri: "od://quotes/Q-100", expected: ""},
		{name: "nested path", uri: "od://quotes/a/b/revisions", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractBase(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleClausesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns clauses", func(t *testing.T) {
		server := newTestServer(t, &mockQuoteService{clauses: []domain.Clause{{Title: "Warranty", Body: "Twelve months."}}})

		result, err := server.handleClausesResource(ctx, makeReadResourceRequest("od://clauses"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		var clauses []domain.Clause
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &clauses))
		assert.Equal(t, "Warranty", clauses[0].Title)
	})

	t.Run("empty dictionary is an empty list", func(t *testing.T) {
		server := newTestServer(t, &mockQuoteService{})

		result, err := server.handleClausesResource(ctx, makeReadResourceRequest("od://clauses"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("dictionary failure", func(t *testing.T) {
		server := newTestServer(t, &mockQuoteService{err: domain.ErrDictionaryUnavailable})

		_, err := server.handleClausesResource(ctx, makeReadResourceRequest("od://clauses"))
		assert.ErrorIs(t, err, domain.ErrDictionaryUnavailable)
	})
}

func TestServer_handleRevisionsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns revisions for base", func(t *testing.T) {
		quote := &mockQuoteService{revisions: []domain.Revision{domain.NewRevision("Q1", 0, domain.FormatPDF)}}
		server := newTestServer(t, quote)

		result, err := server.handleRevisionsResource(ctx, makeReadResourceRequest("od://quotes/Q1/revisions"))

		require.NoError(t, err)
		assert.Equal(t, "Q1", quote.gotBase)
		assert.Contains(t, result.Contents[0].Text, `"name": "Q1.pdf"`)
	})

	t.Run("malformed URI is not found", func(t *testing.T) {
		server := newTestServer(t, &mockQuoteService{})

		_, err := server.handleRevisionsResource(ctx, makeReadResourceRequest("od://quotes/Q1"))
		require.Error(t, err)
	})

	t.Run("listing failure", func(t *testing.T) {
		server := newTestServer(t, &mockQuoteService{err: errors.New("timeout")})

		_, err := server.handleRevisionsResource(ctx, makeReadResourceRequest("od://quotes/Q1/revisions"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing revisions")
	})
}

func TestServer_handleHistoryResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns records", func(t *testing.T) {
		quote := &mockQuoteService{history: []domain.CommitRecord{{ID: "c1", Base: "Q1", Status: "applied"}}}
		server := newTestServer(t, quote)

		result, err := server.handleHistoryResource(ctx, makeReadResourceRequest("od://history"))

		require.NoError(t, err)
		assert.Equal(t, "", quote.gotBase)
		assert.Equal(t, historyLimit, quote.gotLimit)
		assert.Contains(t, result.Contents[0].Text, `"id": "c1"`)
	})

	t.Run("no journal serves an empty list", func(t *testing.T) {
		server := newTestServer(t, &mockQuoteService{err: domain.ErrNotImplemented})

		result, err := server.handleHistoryResource(ctx, makeReadResourceRequest("od://history"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})
}
