package driven

import "github.com/custodia-labs/od-drafter/internal/core/domain"

// DocumentEditor opens, inspects and extends one document format.
// Implementations never modify the input slice.
type DocumentEditor interface {
	// Format returns the document family this editor handles.
	Format() domain.Format

	// Detect reports whether the marker is already present in content.
	// Returns domain.ErrNoTable for line-item markers on documents
	// without a table.
	Detect(content []byte, marker domain.Marker) (bool, error)

	// Append applies the mutation and re-serialises the document.
	Append(content []byte, mutation domain.Mutation) ([]byte, error)
}

// EditorRegistry selects an editor by document format.
type EditorRegistry interface {
	// Editor returns the editor for format.
	// Returns domain.ErrUnsupportedType if none is registered.
	Editor(format domain.Format) (DocumentEditor, error)

	// Formats returns the registered formats in preference order.
	Formats() []domain.Format
}
