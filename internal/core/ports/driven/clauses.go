package driven

import (
	"context"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
)

// ClauseDictionary provides the known clause titles and bodies.
type ClauseDictionary interface {
	// List returns all clauses sorted by title.
	// Returns domain.ErrDictionaryUnavailable if the source cannot be read.
	List(ctx context.Context) ([]domain.Clause, error)
}
