package clauses

import (
	"context"
	"sort"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
)

// Ensure StaticDictionary implements the interface.
var _ driven.ClauseDictionary = (*StaticDictionary)(nil)

// StaticDictionary serves a fixed set of clauses.
type StaticDictionary struct {
	clauses []domain.Clause
}

// NewStaticDictionary creates a dictionary from a title to body map.
func NewStaticDictionary(m map[string]string) *StaticDictionary {
	clauses := make([]domain.Clause, 0, len(m))
	for title, body := range m {
		clauses = append(clauses, domain.Clause{Title: title, Body: body})
	}
	sort.Slice(clauses, func(i, j int) bool { return clauses[i].Title < clauses[j].Title })
	return &StaticDictionary{clauses: clauses}
}

// List returns all clauses sorted by title.
func (d *StaticDictionary) List(_ context.Context) ([]domain.Clause, error) {
	return append([]domain.Clause(nil), d.clauses...), nil
}
