package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
)

// Ensure Editor implements the interface.
var _ driven.DocumentEditor = (*Editor)(nil)

// Editor detects clauses in PDF text and appends them as addendum pages.
//
// PDFs carry no structured tables, so line-item markers always report
// domain.ErrNoTable.
type Editor struct{}

// New creates a new PDF editor.
func New() *Editor {
	return &Editor{}
}

// Format returns the document family this editor handles.
func (e *Editor) Format() domain.Format {
	return domain.FormatPDF
}

// Detect reports whether the clause title appears in the page text.
// Case and whitespace are ignored when comparing.
func (e *Editor) Detect(content []byte, marker domain.Marker) (bool, error) {
	if !isPDF(content) {
		return false, fmt.Errorf("%w: missing %%PDF header", domain.ErrMalformedDocument)
	}

	switch marker.Kind {
	case domain.MarkerClause:
		if strings.TrimSpace(marker.Title) == "" {
			return false, fmt.Errorf("%w: empty clause title", domain.ErrInvalidInput)
		}
		text, err := extractText(content)
		if err != nil {
			return false, err
		}
		return strings.Contains(normalise(text), normalise(marker.Title)), nil
	case domain.MarkerLineItem:
		return false, domain.ErrNoTable
	default:
		return false, fmt.Errorf("%w: marker kind %s", domain.ErrUnsupportedType, marker.Kind)
	}
}

// Append writes the clause as one or more addendum pages at the end of
// the page tree and re-serialises the document.
func (e *Editor) Append(content []byte, mutation domain.Mutation) ([]byte, error) {
	if !isPDF(content) {
		return nil, fmt.Errorf("%w: missing %%PDF header", domain.ErrMalformedDocument)
	}

	switch mutation.Kind {
	case domain.MarkerClause:
		return appendPages(content, layoutClause(mutation.Clause))
	case domain.MarkerLineItem:
		return nil, domain.ErrNoTable
	default:
		return nil, fmt.Errorf("%w: mutation kind %s", domain.ErrUnsupportedType, mutation.Kind)
	}
}

func isPDF(content []byte) bool {
	head := content
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("%PDF-"))
}

