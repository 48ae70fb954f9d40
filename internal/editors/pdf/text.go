package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	pdfread "github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
)

// maxFormDepth bounds recursion into nested form XObjects.
const maxFormDepth = 8

// extractText returns the text shown on every page, including text drawn
// by form XObjects. Strings are decoded through each font's encoding or
// ToUnicode CMap, so glyph-indexed fonts read back as Unicode.
func extractText(content []byte) (text string, err error) {
	r, err := pdfread.NewReader(bytes.NewReader(content), int64(len(content)))
	if errors.Is(err, pdfread.ErrInvalidPassword) {
		return "", fmt.Errorf("%w: encrypted PDF", domain.ErrUnsupportedType)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}

	// The reader panics on broken object graphs.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("%w: %v", domain.ErrMalformedDocument, rec)
		}
	}()

	var w textWriter
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		w.walk(p.V.Key("Contents"), p.Resources(), 0)
		w.gap()
	}
	return w.String(), nil
}

// textWriter accumulates decoded text from content streams.
type textWriter struct {
	strings.Builder
}

func (w *textWriter) gap() {
	w.WriteByte(' ')
}

// walk interprets one content stream, or an array of them, against
// resources.
func (w *textWriter) walk(contents, resources pdfread.Value, depth int) {
	if contents.Kind() == pdfread.Array {
		for i := 0; i < contents.Len(); i++ {
			w.walk(contents.Index(i), resources, depth)
		}
		return
	}
	if contents.Kind() != pdfread.Stream {
		return
	}

	var enc pdfread.TextEncoding
	show := func(s pdfread.Value) {
		if enc == nil {
			w.WriteString(s.RawString())
			return
		}
		w.WriteString(enc.Decode(s.RawString()))
	}

	pdfread.Interpret(contents, func(stk *pdfread.Stack, op string) {
		n := stk.Len()
		args := make([]pdfread.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "Tf":
			if n >= 2 {
				font := pdfread.Font{V: resources.Key("Font").Key(args[0].Name())}
				enc = font.Encoder()
			}
		case "Tj":
			if n >= 1 {
				show(args[n-1])
			}
		case "'", `"`:
			w.gap()
			if n >= 1 {
				show(args[n-1])
			}
		case "TJ":
			if n >= 1 {
				arr := args[n-1]
				for i := 0; i < arr.Len(); i++ {
					if v := arr.Index(i); v.Kind() == pdfread.String {
						show(v)
					}
				}
			}
		case "Td", "TD", "T*", "Tm", "ET":
			w.gap()
		case "Do":
			if n < 1 || depth >= maxFormDepth {
				return
			}
			xobj := resources.Key("XObject").Key(args[0].Name())
			if xobj.Key("Subtype").Name() != "Form" {
				return
			}
			formResources := xobj.Key("Resources")
			if formResources.IsNull() {
				formResources = resources
			}
			w.walk(xobj, formResources, depth+1)
		}
	})
}

// normalise folds compatibility characters such as ligatures, lowercases,
// and drops whitespace. Producers position words individually, so spaces
// in extracted text are unreliable.
func normalise(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(norm.NFKC.String(s)), ""))
}
