package domain

import (
	"fmt"
	"strings"
)

// Format identifies a document family. The format fixes the file extension
// used for every revision of a base identifier.
type Format string

const (
	// FormatDOCX is the word-processing format.
	FormatDOCX Format = "docx"

	// FormatPDF is the page-description format.
	FormatPDF Format = "pdf"
)

// Formats lists every supported format in preference order.
var Formats = []Format{FormatDOCX, FormatPDF}

// ParseFormat converts a config or CLI value into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case FormatDOCX:
		return FormatDOCX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: format %q", ErrUnsupportedType, s)
	}
}

// Extension returns the filename extension without the leading dot.
func (f Format) Extension() string {
	return string(f)
}

// MIMEType returns the content type used when uploading revisions.
func (f Format) MIMEType() string {
	switch f {
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// RevisionNumber orders revisions of one base identifier.
// Zero is the unsuffixed original; 1..N are suffixed revisions.
type RevisionNumber int

// Revision is one immutable, uniquely named snapshot of a document.
type Revision struct {
	// Base is the logical document name (a quote number).
	Base string `json:"base"`

	// Number is the revision number.
	Number RevisionNumber `json:"number"`

	// Format is the document family.
	Format Format `json:"format"`

	// Name is the object key in the bucket.
	Name string `json:"name"`
}

// NewRevision builds a Revision with its derived name.
func NewRevision(base string, n RevisionNumber, format Format) Revision {
	return Revision{
		Base:   base,
		Number: n,
		Format: format,
		Name:   EncodeRevisionName(base, n, format),
	}
}

// IsOriginal reports whether this is revision 0.
func (r Revision) IsOriginal() bool {
	return r.Number == 0
}

// DocumentContent is an opaque document payload tagged with its format.
// It is owned by the call that downloaded or produced it.
type DocumentContent struct {
	Format Format
	Data   []byte
}
