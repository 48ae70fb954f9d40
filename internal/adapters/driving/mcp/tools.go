package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/logger"
)

// DraftClauseInput is the input schema for the draft_docx_od tool.
type DraftClauseInput struct {
	QuoteNumber string `json:"quote_number" jsonschema:"the ID of the quote"`
	ClauseName  string `json:"clause_name" jsonschema:"name of the clause to append"`
}

// LineItemInput is the input schema for the add_line_item tool.
// Fields are optional in the schema so that missing details are reported
// back by name instead of being rejected by validation.
type LineItemInput struct {
	QuoteNumber string `json:"quote_number" jsonschema:"the ID of the quote"`
	ItemName    string `json:"item_name,omitempty" jsonschema:"name of the service or product"`
	Description string `json:"description,omitempty" jsonschema:"short details"`
	Price       string `json:"price,omitempty" jsonschema:"price, e.g. $500.00"`
}

// EditOutput is the output schema for the editing tools.
type EditOutput struct {
	Status       string   `json:"status"`
	Message      string   `json:"message"`
	Revision     string   `json:"revision,omitempty"`
	PublicURL    string   `json:"public_url,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
	Attempts     int      `json:"attempts,omitempty"`
}

// ListRevisionsInput is the input schema for the list_revisions tool.
type ListRevisionsInput struct {
	QuoteNumber string `json:"quote_number" jsonschema:"the ID of the quote"`
}

// ListRevisionsOutput is the output schema for the list_revisions tool.
type ListRevisionsOutput struct {
	Revisions []RevisionOutput `json:"revisions"`
	Count     int              `json:"count"`
}

// RevisionOutput represents a single revision.
type RevisionOutput struct {
	Name   string `json:"name"`
	Number int    `json:"number"`
	Format string `json:"format"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "draft_docx_od",
		Description: "Append a legal clause to the latest version of the OD.",
	}, s.handleDraftClause)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_line_item",
		Description: "Add a row to the pricing table in the latest OD version.",
	}, s.handleAddLineItem)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_revisions",
		Description: "List every stored version of a quote, oldest first.",
	}, s.handleListRevisions)
}

// handleDraftClause handles the draft_docx_od tool invocation.
func (s *Server) handleDraftClause(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input DraftClauseInput,
) (*mcp.CallToolResult, EditOutput, error) {
	notify(ctx, req, fmt.Sprintf("Editing latest version of quote %s", input.QuoteNumber))
	out := s.ports.Quote.AddClause(ctx, input.QuoteNumber, input.ClauseName)
	return editResult(out)
}

// handleAddLineItem handles the add_line_item tool invocation.
func (s *Server) handleAddLineItem(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input LineItemInput,
) (*mcp.CallToolResult, EditOutput, error) {
	notify(ctx, req, fmt.Sprintf("Editing latest version of quote %s", input.QuoteNumber))
	out := s.ports.Quote.AddLineItem(ctx, input.QuoteNumber, domain.LineItem{
		Name:        input.ItemName,
		Description: input.Description,
		Price:       input.Price,
	})
	return editResult(out)
}

// handleListRevisions handles the list_revisions tool invocation.
func (s *Server) handleListRevisions(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRevisionsInput,
) (*mcp.CallToolResult, ListRevisionsOutput, error) {
	revisions, err := s.ports.Quote.ListRevisions(ctx, input.QuoteNumber)
	if err != nil {
		return nil, ListRevisionsOutput{}, err
	}

	output := ListRevisionsOutput{
		Revisions: make([]RevisionOutput, len(revisions)),
		Count:     len(revisions),
	}
	for i, rev := range revisions {
		output.Revisions[i] = RevisionOutput{
			Name:   rev.Name,
			Number: int(rev.Number),
			Format: string(rev.Format),
		}
	}
	return nil, output, nil
}

// editResult renders an outcome. Failures are tool errors, not protocol errors.
func editResult(out domain.Outcome) (*mcp.CallToolResult, EditOutput, error) {
	output := EditOutput{
		Status:       out.Status.String(),
		Message:      out.Message(),
		PublicURL:    out.PublicURL,
		Reason:       string(out.Reason),
		Alternatives: out.Alternatives,
		Attempts:     out.Attempts,
	}
	if out.OK() {
		output.Revision = out.Revision.Name
	}

	content := []mcp.Content{&mcp.TextContent{Text: output.Message}}
	if out.PublicURL != "" {
		content = append(content, &mcp.TextContent{Text: "View: " + out.PublicURL})
	}

	if !out.OK() {
		logger.Warn("%s", output.Message)
	}

	return &mcp.CallToolResult{
		Content: content,
		IsError: !out.OK(),
	}, output, nil
}

// notify sends a progress line to the client when a session is attached.
func notify(ctx context.Context, req *mcp.CallToolRequest, msg string) {
	logger.Debug("%s", msg)
	if req == nil || req.Session == nil {
		return
	}
	err := req.Session.Log(ctx, &mcp.LoggingMessageParams{
		Level:  "info",
		Logger: "od-drafter",
		Data:   msg,
	})
	if err != nil {
		logger.Debug("session log failed: %v", err)
	}
}
