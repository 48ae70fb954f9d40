package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
)

// Ensure Editor implements the interface.
var _ driven.DocumentEditor = (*Editor)(nil)

// documentPart is the main story of a DOCX package.
const documentPart = "word/document.xml"

// pricingColumns is the number of cells a line-item row fills:
// name, description and price.
const pricingColumns = 3

// ErrNarrowTable is returned when the first table has fewer columns than
// a line-item row needs.
var ErrNarrowTable = errors.New("pricing table has fewer than 3 columns")

// Editor detects and appends clauses and pricing rows in DOCX documents.
type Editor struct{}

// New creates a new DOCX editor.
func New() *Editor {
	return &Editor{}
}

// Format returns the document family this editor handles.
func (e *Editor) Format() domain.Format {
	return domain.FormatDOCX
}

// Detect reports whether the marker already appears in the document.
//
// A clause is present when any body paragraph contains its title. A line
// item is present when a row of the first table has the item name in its
// first cell and the price in its third cell. Both checks ignore case.
func (e *Editor) Detect(content []byte, marker domain.Marker) (bool, error) {
	docXML, err := readPart(content, documentPart)
	if err != nil {
		return false, err
	}
	l, err := scan(docXML)
	if err != nil {
		return false, err
	}

	switch marker.Kind {
	case domain.MarkerClause:
		if strings.TrimSpace(marker.Title) == "" {
			return false, fmt.Errorf("%w: empty clause title", domain.ErrInvalidInput)
		}
		return l.hasParagraph(marker.Title), nil
	case domain.MarkerLineItem:
		if l.table == nil {
			return false, domain.ErrNoTable
		}
		return l.table.hasRow(marker.ItemName, marker.Price), nil
	default:
		return false, fmt.Errorf("%w: marker kind %s", domain.ErrUnsupportedType, marker.Kind)
	}
}

// Append adds the mutation to the document and re-serialises the package.
// Clauses become a level-2 heading followed by the body paragraph; line
// items become a new last row of the first table.
func (e *Editor) Append(content []byte, mutation domain.Mutation) ([]byte, error) {
	docXML, err := readPart(content, documentPart)
	if err != nil {
		return nil, err
	}
	l, err := scan(docXML)
	if err != nil {
		return nil, err
	}

	var at int
	var fragment string
	switch mutation.Kind {
	case domain.MarkerClause:
		at = l.insertAt
		fragment = clauseXML(l.prefix, mutation.Clause)
	case domain.MarkerLineItem:
		if l.table == nil {
			return nil, domain.ErrNoTable
		}
		cols := l.table.columns()
		if cols < pricingColumns {
			return nil, fmt.Errorf("%w: found %d", ErrNarrowTable, cols)
		}
		at = l.table.rowInsertAt
		fragment = rowXML(l.prefix, mutation.LineItem, cols)
	default:
		return nil, fmt.Errorf("%w: mutation kind %s", domain.ErrUnsupportedType, mutation.Kind)
	}

	updated := make([]byte, 0, len(docXML)+len(fragment))
	updated = append(updated, docXML[:at]...)
	updated = append(updated, fragment...)
	updated = append(updated, docXML[at:]...)

	return rewritePart(content, documentPart, updated)
}

// readPart extracts one file from the DOCX zip package.
func readPart(content []byte, name string) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}

	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: missing %s", domain.ErrMalformedDocument, name)
}

// rewritePart copies the package, replacing one file's contents.
// Every other entry is copied without recompression.
func rewritePart(content []byte, name string, data []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for _, file := range reader.File {
		if file.Name != name {
			if err := w.Copy(file); err != nil {
				return nil, fmt.Errorf("copying %s: %w", file.Name, err)
			}
			continue
		}

		part, err := w.CreateHeader(&zip.FileHeader{
			Name:     file.Name,
			Method:   zip.Deflate,
			Modified: file.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
		if _, err := part.Write(data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing package: %w", err)
	}
	return buf.Bytes(), nil
}

// layout is what the editor needs to know about word/document.xml.
type layout struct {
	// prefix is the namespace prefix used for WordprocessingML elements.
	prefix string

	// paragraphs holds the text of each body-level paragraph.
	paragraphs []string

	// insertAt is where new body content goes: before the body-level
	// section properties, or before </w:body>.
	insertAt int

	// table describes the first body-level table, if any.
	table *tableLayout
}

type tableLayout struct {
	rows         [][]string
	rowInsertAt  int
	lastRowCells int
	gridCols     int
}

// columns prefers the declared grid over the cell count of the last row.
func (t *tableLayout) columns() int {
	if t.gridCols > 0 {
		return t.gridCols
	}
	return t.lastRowCells
}

func (l *layout) hasParagraph(title string) bool {
	needle := strings.ToLower(title)
	for _, p := range l.paragraphs {
		if strings.Contains(strings.ToLower(p), needle) {
			return true
		}
	}
	return false
}

func (t *tableLayout) hasRow(name, price string) bool {
	name, price = strings.ToLower(name), strings.ToLower(price)
	for _, cells := range t.rows {
		if len(cells) < 3 {
			continue
		}
		if strings.Contains(strings.ToLower(cells[0]), name) && strings.Contains(strings.ToLower(cells[2]), price) {
			return true
		}
	}
	return false
}

// scan walks document.xml once, collecting body paragraph text, the first
// table's rows and the byte offsets where new content can be spliced in.
func scan(docXML []byte) (*layout, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))

	var (
		l         = &layout{insertAt: -1}
		stack     []string
		bodyDepth = -1
		sectPrAt  = -1
		texts     []*strings.Builder
		cellParas []string
		row       []string
		inTable   bool
		tableDone bool
	)

	for {
		pos := int(dec.InputOffset())
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			depth := len(stack)
			stack = append(stack, t.Name.Local)

			switch {
			case t.Name.Local == "body" && bodyDepth < 0:
				bodyDepth = depth
				l.prefix = t.Name.Space
			case bodyDepth < 0:
			case t.Name.Local == "sectPr" && depth == bodyDepth+1:
				sectPrAt = pos
			case t.Name.Local == "tbl" && depth == bodyDepth+1 && !tableDone:
				inTable = true
				l.table = &tableLayout{}
			case t.Name.Local == "tr" && inTable && depth == bodyDepth+2:
				row = nil
			case t.Name.Local == "gridCol" && inTable && parent == "tblGrid" && depth == bodyDepth+3:
				l.table.gridCols++
			case t.Name.Local == "tc" && inTable && depth == bodyDepth+3:
				cellParas = nil
			case t.Name.Local == "p":
				texts = append(texts, new(strings.Builder))
			case t.Name.Local == "tab" && parent == "r" && len(texts) > 0:
				texts[len(texts)-1].WriteByte('\t')
			case (t.Name.Local == "br" || t.Name.Local == "cr") && parent == "r" && len(texts) > 0:
				texts[len(texts)-1].WriteByte('\n')
			}

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unbalanced %s", domain.ErrMalformedDocument, t.Name.Local)
			}
			stack = stack[:len(stack)-1]
			depth := len(stack)
			if bodyDepth < 0 {
				continue
			}

			// Nested paragraphs, as in text boxes, keep their own text.
			var text string
			if t.Name.Local == "p" && len(texts) > 0 {
				text = texts[len(texts)-1].String()
				texts = texts[:len(texts)-1]
			}

			switch {
			case t.Name.Local == "body" && depth == bodyDepth:
				if sectPrAt >= 0 {
					l.insertAt = sectPrAt
				} else {
					l.insertAt = pos
				}
				bodyDepth = -1
			case t.Name.Local == "p" && depth == bodyDepth+1:
				l.paragraphs = append(l.paragraphs, text)
			case t.Name.Local == "p" && inTable && stack[depth-1] == "tc":
				cellParas = append(cellParas, text)
			case t.Name.Local == "tc" && inTable && depth == bodyDepth+3:
				row = append(row, strings.Join(cellParas, "\n"))
			case t.Name.Local == "tr" && inTable && depth == bodyDepth+2:
				l.table.rows = append(l.table.rows, row)
				l.table.lastRowCells = len(row)
				l.table.rowInsertAt = int(dec.InputOffset())
			case t.Name.Local == "tbl" && inTable && depth == bodyDepth+1:
				if len(l.table.rows) == 0 {
					l.table.rowInsertAt = pos
				}
				inTable = false
				tableDone = true
			}

		case xml.CharData:
			if len(stack) > 0 && stack[len(stack)-1] == "t" && len(texts) > 0 {
				texts[len(texts)-1].Write(t)
			}
		}
	}

	if l.insertAt < 0 {
		return nil, fmt.Errorf("%w: document has no body", domain.ErrMalformedDocument)
	}
	return l, nil
}

// clauseXML renders a Heading2 paragraph followed by the clause body.
func clauseXML(prefix string, c domain.Clause) string {
	var b strings.Builder
	b.WriteString(open(prefix, "p"))
	b.WriteString(open(prefix, "pPr"))
	fmt.Fprintf(&b, `<%s %s="Heading2"/>`, qname(prefix, "pStyle"), qname(prefix, "val"))
	b.WriteString(closeTag(prefix, "pPr"))
	writeRun(&b, prefix, c.Title)
	b.WriteString(closeTag(prefix, "p"))

	b.WriteString(open(prefix, "p"))
	writeRun(&b, prefix, c.Body)
	b.WriteString(closeTag(prefix, "p"))
	return b.String()
}

// rowXML renders a row of the given width: name, description and price,
// then empty cells for any further columns.
func rowXML(prefix string, li domain.LineItem, cells int) string {
	values := []string{li.Name, li.Description, li.Price}
	for len(values) < cells {
		values = append(values, "")
	}

	var b strings.Builder
	b.WriteString(open(prefix, "tr"))
	for _, v := range values {
		b.WriteString(open(prefix, "tc"))
		if v == "" {
			fmt.Fprintf(&b, "<%s/>", qname(prefix, "p"))
		} else {
			b.WriteString(open(prefix, "p"))
			writeRun(&b, prefix, v)
			b.WriteString(closeTag(prefix, "p"))
		}
		b.WriteString(closeTag(prefix, "tc"))
	}
	b.WriteString(closeTag(prefix, "tr"))
	return b.String()
}

// writeRun writes one run; newlines in s become line breaks.
func writeRun(b *strings.Builder, prefix, s string) {
	b.WriteString(open(prefix, "r"))
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			fmt.Fprintf(b, "<%s/>", qname(prefix, "br"))
		}
		fmt.Fprintf(b, `<%s xml:space="preserve">`, qname(prefix, "t"))
		_ = xml.EscapeText(b, []byte(line))
		b.WriteString(closeTag(prefix, "t"))
	}
	b.WriteString(closeTag(prefix, "r"))
}

func qname(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

func open(prefix, local string) string {
	return "<" + qname(prefix, local) + ">"
}

func closeTag(prefix, local string) string {
	return "</" + qname(prefix, local) + ">"
}
