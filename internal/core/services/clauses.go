package services

import (
	"strings"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
)

// matchClause finds the clause whose title occurs inside query,
// case-insensitively. When several titles match, an exact title wins,
// then a title that contains every other matching title. Otherwise the
// query is ambiguous and the matching titles are returned as candidates.
func matchClause(clauses []domain.Clause, query string) (domain.Clause, []string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return domain.Clause{}, nil, false
	}

	var matches []domain.Clause
	for _, c := range clauses {
		title := strings.ToLower(strings.TrimSpace(c.Title))
		if title != "" && strings.Contains(q, title) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return domain.Clause{}, nil, false
	case 1:
		return matches[0], nil, true
	}

	for _, m := range matches {
		if strings.EqualFold(strings.TrimSpace(m.Title), strings.TrimSpace(query)) {
			return m, nil, true
		}
	}

	for _, m := range matches {
		if containsAll(m, matches) {
			return m, nil, true
		}
	}

	return domain.Clause{}, clauseTitles(matches), false
}

func containsAll(candidate domain.Clause, matches []domain.Clause) bool {
	title := strings.ToLower(candidate.Title)
	for _, other := range matches {
		if !strings.Contains(title, strings.ToLower(other.Title)) {
			return false
		}
	}
	return true
}

func clauseTitles(clauses []domain.Clause) []string {
	titles := make([]string, len(clauses))
	for i, c := range clauses {
		titles[i] = c.Title
	}
	return titles
}
