package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for od-drafter resources.
	uriScheme = "od://"

	// historyLimit caps the entries served by the history resource.
	historyLimit = 100
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "clauses",
		Name:        "clauses",
		Description: "Clause titles and bodies available to draft_docx_od",
		MIMEType:    "application/json",
	}, s.handleClausesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "quotes/{base}/revisions",
		Name:        "quote-revisions",
		Description: "Stored versions of a quote, oldest first",
		MIMEType:    "application/json",
	}, s.handleRevisionsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Recent edit attempts across all quotes, newest first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

// handleClausesResource returns the clause dictionary.
func (s *Server) handleClausesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	clauses, err := s.ports.Quote.Clauses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing clauses: %w", err)
	}
	if clauses == nil {
		clauses = []domain.Clause{}
	}
	return jsonResult(req.Params.URI, clauses)
}

// handleRevisionsResource returns the revisions of one quote.
func (s *Server) handleRevisionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract base from URI: od://quotes/{base}/revisions
	base := extractBase(req.Params.URI)
	if base == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	revisions, err := s.ports.Quote.ListRevisions(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w", err)
	}
	if revisions == nil {
		revisions = []domain.Revision{}
	}
	return jsonResult(req.Params.URI, revisions)
}

// handleHistoryResource returns recent journal entries.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	records, err := s.ports.Quote.History(ctx, "", historyLimit)
	if errors.Is(err, domain.ErrNotImplemented) {
		records, err = nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	if records == nil {
		records = []domain.CommitRecord{}
	}
	return jsonResult(req.Params.URI, records)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractBase extracts the base from a URI like od://quotes/{base}/revisions.
func extractBase(uri string) string {
	const prefix = uriScheme + "quotes/"
	const suffix = "/revisions"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	base := strings.TrimSuffix(uri, suffix)
	if strings.Contains(base, "/") {
		return ""
	}
	return base
}
