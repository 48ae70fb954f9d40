package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// Blob stores return it when a create-only upload finds the key taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown document format or store backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// Store Errors.

	// ErrStoreTimeout indicates a blob store call hit its deadline.
	// For uploads the write may or may not have landed.
	ErrStoreTimeout = errors.New("store timeout")

	// ErrDirectoryUnavailable indicates the bucket listing failed.
	// It must never be read as "no revisions".
	ErrDirectoryUnavailable = errors.New("directory unavailable")

	// ErrDownloadFailed indicates a listed revision could not be fetched.
	ErrDownloadFailed = errors.New("download failed")

	// ErrBaseNotFound indicates no revision exists for a base identifier.
	ErrBaseNotFound = errors.New("base document not found")

	// Document Errors.

	// ErrNoTable indicates a line item was requested on a document without a table.
	ErrNoTable = errors.New("no table in document")

	// ErrMalformedDocument indicates the editor could not parse the document bytes.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrDictionaryUnavailable indicates the clause dictionary could not be loaded.
	ErrDictionaryUnavailable = errors.New("clause dictionary unavailable")
)
