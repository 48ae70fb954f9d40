package services

import (
	"fmt"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
)

// Gate decides whether a semantic edit still needs applying.
type Gate struct {
	editors driven.EditorRegistry
}

// NewGate creates a gate that delegates detection to the format's editor.
func NewGate(editors driven.EditorRegistry) *Gate {
	return &Gate{editors: editors}
}

// ShouldApply reports true when marker is absent from content.
// Detection failures, including domain.ErrNoTable, are returned unchanged.
func (g *Gate) ShouldApply(content domain.DocumentContent, marker domain.Marker) (bool, error) {
	editor, err := g.editors.Editor(content.Format)
	if err != nil {
		return false, err
	}

	present, err := editor.Detect(content.Data, marker)
	if err != nil {
		return false, fmt.Errorf("detecting %s: %w", marker, err)
	}
	return !present, nil
}
