package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
)

// Letter page geometry in points.
const (
	pageWidth    = 612
	pageHeight   = 792
	margin       = 72
	headingSize  = 14
	bodySize     = 11
	headingLead  = 20
	bodyLead     = 14
	wrapColumns  = 90
	linesPerPage = (pageHeight - 2*margin - headingLead) / bodyLead
)

func init() {
	// pdfcpu would otherwise create a config directory in the user's home.
	model.ConfigPath = "disable"
}

// page is one addendum page worth of text.
type page struct {
	heading string
	lines   []string
}

// layoutClause wraps the clause body and splits it into pages. The
// heading is drawn on the first page only.
func layoutClause(c domain.Clause) []page {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(c.Body, "\r\n", "\n"), "\n") {
		lines = append(lines, wrap(para, wrapColumns)...)
	}

	pages := []page{{heading: c.Title}}
	for _, line := range lines {
		last := &pages[len(pages)-1]
		if len(last.lines) == linesPerPage {
			pages = append(pages, page{})
			last = &pages[len(pages)-1]
		}
		last.lines = append(last.lines, line)
	}
	return pages
}

func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}

// appendPages reads the document with pdfcpu, hangs the pages off the
// root page tree and writes the whole document back out.
func appendPages(content []byte, pages []page) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(content), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}
	if ctx.Encrypt != nil {
		return nil, fmt.Errorf("%w: encrypted PDF", domain.ErrUnsupportedType)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}

	catalog, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("%w: catalog: %v", domain.ErrMalformedDocument, err)
	}
	treeRef := catalog.IndirectRefEntry("Pages")
	if treeRef == nil {
		return nil, fmt.Errorf("%w: catalog has no /Pages", domain.ErrMalformedDocument)
	}
	tree, err := ctx.DereferenceDict(*treeRef)
	if err != nil || tree == nil {
		return nil, fmt.Errorf("%w: page tree: %v", domain.ErrMalformedDocument, err)
	}
	kids, ok := tree["Kids"].(types.Array)
	if !ok {
		return nil, fmt.Errorf("%w: page tree has no /Kids array", domain.ErrMalformedDocument)
	}
	count, _ := tree["Count"].(types.Integer)

	font, err := ctx.IndRefForNewObject(types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Helvetica"),
		"Encoding": types.Name("WinAnsiEncoding"),
	})
	if err != nil {
		return nil, fmt.Errorf("adding font: %w", err)
	}

	for _, p := range pages {
		ref, err := addPage(ctx, *treeRef, *font, p)
		if err != nil {
			return nil, fmt.Errorf("adding page: %w", err)
		}
		kids = append(kids, *ref)
	}
	tree["Kids"] = kids
	tree["Count"] = count + types.Integer(len(pages))
	ctx.PageCount += len(pages)

	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return out.Bytes(), nil
}

func addPage(ctx *model.Context, parent, font types.IndirectRef, p page) (*types.IndirectRef, error) {
	sd, err := ctx.NewStreamDictForBuf(contentStream(p))
	if err != nil {
		return nil, err
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	contents, err := ctx.IndRefForNewObject(*sd)
	if err != nil {
		return nil, err
	}

	return ctx.IndRefForNewObject(types.Dict{
		"Type":   types.Name("Page"),
		"Parent": parent,
		"MediaBox": types.Array{
			types.Integer(0), types.Integer(0), types.Integer(pageWidth), types.Integer(pageHeight),
		},
		"Resources": types.Dict{
			"Font": types.Dict{"F1": font},
		},
		"Contents": *contents,
	})
}

// contentStream draws the page text in Helvetica with WinAnsi encoding.
func contentStream(p page) []byte {
	var b bytes.Buffer
	b.WriteString("BT\n")
	fmt.Fprintf(&b, "%d %d Td\n", margin, pageHeight-margin)
	if p.heading != "" {
		fmt.Fprintf(&b, "/F1 %d Tf\n%d TL\n(%s) Tj\nT*\n", headingSize, headingLead, literal(p.heading))
	}
	fmt.Fprintf(&b, "/F1 %d Tf\n%d TL\n", bodySize, bodyLead)
	for _, line := range p.lines {
		fmt.Fprintf(&b, "(%s) Tj\nT*\n", literal(line))
	}
	b.WriteString("ET")
	return b.Bytes()
}

// literal encodes s as Windows-1252 and escapes it for a PDF literal
// string. Characters outside the code page are replaced.
func literal(s string) string {
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	encoded, err := enc.String(strings.NewReplacer("\r", "", "\t", " ").Replace(s))
	if err != nil {
		encoded = s
	}
	return strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(encoded)
}
