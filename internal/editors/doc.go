// Package editors provides the DocumentEditor implementations for each
// stored document format. Each editor knows how to detect a marker and
// append a mutation for one format.
//
// Editors are registered with the Registry at startup.
package editors
