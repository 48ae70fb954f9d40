package editors

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
	"github.com/custodia-labs/od-drafter/internal/editors/docx"
	"github.com/custodia-labs/od-drafter/internal/editors/pdf"
)

// Ensure Registry implements the interface.
var _ driven.EditorRegistry = (*Registry)(nil)

// Registry maps document formats to editors.
// Formats are reported in registration order.
type Registry struct {
	mu      sync.RWMutex
	editors map[domain.Format]driven.DocumentEditor
	order   []domain.Format
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{editors: make(map[domain.Format]driven.DocumentEditor)}
}

// Default returns a registry with the built-in editors. When preferred is
// a known format it is listed first.
func Default(preferred domain.Format) *Registry {
	r := NewRegistry()
	builtin := []driven.DocumentEditor{docx.New(), pdf.New()}
	for _, e := range builtin {
		if e.Format() == preferred {
			r.Register(e)
		}
	}
	for _, e := range builtin {
		r.Register(e)
	}
	return r
}

// Register adds an editor. A second editor for the same format replaces
// the first and keeps its position.
func (r *Registry) Register(e driven.DocumentEditor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.editors[e.Format()]; !ok {
		r.order = append(r.order, e.Format())
	}
	r.editors[e.Format()] = e
}

// Editor returns the editor for format.
func (r *Registry) Editor(format domain.Format) (driven.DocumentEditor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.editors[format]
	if !ok {
		return nil, fmt.Errorf("%w: no editor for %q", domain.ErrUnsupportedType, format)
	}
	return e, nil
}

// Formats returns the registered formats in preference order.
func (r *Registry) Formats() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Format, len(r.order))
	copy(out, r.order)
	return out
}
