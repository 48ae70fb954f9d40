// Package mcp provides an MCP (Model Context Protocol) server adapter for od-drafter.
// It lets AI assistants append clauses and pricing rows to quote documents.
package mcp

import "errors"

// ErrMissingQuoteService is returned when the quote service is not provided.
var ErrMissingQuoteService = errors.New("mcp: quote service is required")
