package mcp

import (
	"net/http"

	"github.com/custodia-labs/od-drafter/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Quote edits and lists quote documents.
	Quote driving.QuoteService

	// Metrics is served on /metrics in HTTP mode. Optional.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Quote == nil {
		return ErrMissingQuoteService
	}
	return nil
}
