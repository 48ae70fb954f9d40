package domain

import (
	"fmt"
	"strings"
)

// MarkerKind distinguishes the two kinds of semantic edit.
type MarkerKind int

const (
	// MarkerClause keys an edit by clause title.
	MarkerClause MarkerKind = iota

	// MarkerLineItem keys an edit by item name and price.
	MarkerLineItem
)

// String returns the marker kind name.
func (k MarkerKind) String() string {
	switch k {
	case MarkerClause:
		return "clause"
	case MarkerLineItem:
		return "line_item"
	default:
		return "unknown"
	}
}

// Marker is the key used to decide whether an edit already happened.
// Matching is a case-insensitive substring check, not equality.
type Marker struct {
	Kind     MarkerKind
	Title    string
	ItemName string
	Price    string
}

// String renders the marker for logs and audit records.
func (m Marker) String() string {
	if m.Kind == MarkerLineItem {
		return fmt.Sprintf("line_item:%s@%s", m.ItemName, m.Price)
	}
	return "clause:" + m.Title
}

// Clause is a named block of contract text.
type Clause struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// LineItem is one row of a pricing table.
type LineItem struct {
	Name        string `json:"item_name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// Missing returns the names of empty fields.
func (li LineItem) Missing() []string {
	var missing []string
	if strings.TrimSpace(li.Name) == "" {
		missing = append(missing, "item_name")
	}
	if strings.TrimSpace(li.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(li.Price) == "" {
		missing = append(missing, "price")
	}
	return missing
}

// Mutation is the payload of one semantic edit.
// Exactly one of Clause or LineItem is meaningful, selected by Kind.
type Mutation struct {
	Kind     MarkerKind
	Clause   Clause
	LineItem LineItem
}

// ClauseMutation appends a clause heading and body.
func ClauseMutation(c Clause) Mutation {
	return Mutation{Kind: MarkerClause, Clause: c}
}

// LineItemMutation appends a pricing table row.
func LineItemMutation(li LineItem) Mutation {
	return Mutation{Kind: MarkerLineItem, LineItem: li}
}

// Marker returns the idempotency key for this mutation.
func (m Mutation) Marker() Marker {
	if m.Kind == MarkerLineItem {
		return Marker{Kind: MarkerLineItem, ItemName: m.LineItem.Name, Price: m.LineItem.Price}
	}
	return Marker{Kind: MarkerClause, Title: m.Clause.Title}
}
