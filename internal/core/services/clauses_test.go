package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
)

func TestMatchClause(t *testing.T) {
	clauses := []domain.Clause{
		{Title: "Renewal"},
		{Title: "Auto Renewal"},
		{Title: "Warranty"},
		{Title: "Extended Warranty"},
	}

	tests := []struct {
		name       string
		query      string
		want       string
		candidates []string
		ok         bool
	}{
		{"exact", "Warranty", "Warranty", nil, true},
		{"case insensitive", "WARRANTY", "Warranty", nil, true},
		{"title inside sentence", "please include auto renewal terms", "Auto Renewal", nil, true},
		{"most specific", "extended warranty", "Extended Warranty", nil, true},
		{"unrelated", "escrow", "", nil, false},
		{"blank", "   ", "", nil, false},
		{"ambiguous", "renewal and warranty", "", []string{"Renewal", "Warranty"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, candidates, ok := matchClause(clauses, tt.query)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.Title)
			assert.ElementsMatch(t, tt.candidates, candidates)
		})
	}
}
