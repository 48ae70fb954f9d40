package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/od-drafter/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
)

// textEditor is a DocumentEditor over plain text. Clauses are "## title"
// lines, rows are "row:name:price" lines and a table exists when the text
// contains "[table]".
type textEditor struct {
	format    domain.Format
	appendErr error
}

func (e *textEditor) Format() domain.Format { return e.format }

func (e *textEditor) Detect(content []byte, m domain.Marker) (bool, error) {
	text := string(content)
	switch m.Kind {
	case domain.MarkerClause:
		return strings.Contains(text, "## "+m.Title+"\n"), nil
	case domain.MarkerLineItem:
		if !strings.Contains(text, "[table]") {
			return false, domain.ErrNoTable
		}
		return strings.Contains(text, fmt.Sprintf("row:%s:%s\n", m.ItemName, m.Price)), nil
	}
	return false, domain.ErrUnsupportedType
}

func (e *textEditor) Append(content []byte, mu domain.Mutation) ([]byte, error) {
	if e.appendErr != nil {
		return nil, e.appendErr
	}
	text := string(content)
	switch mu.Kind {
	case domain.MarkerClause:
		return []byte(text + "## " + mu.Clause.Title + "\n" + mu.Clause.Body + "\n"), nil
	case domain.MarkerLineItem:
		if !strings.Contains(text, "[table]") {
			return nil, domain.ErrNoTable
		}
		return []byte(text + fmt.Sprintf("row:%s:%s\n", mu.LineItem.Name, mu.LineItem.Price)), nil
	}
	return nil, domain.ErrUnsupportedType
}

// textRegistry serves text editors for docx and pdf.
type textRegistry struct {
	editors map[domain.Format]*textEditor
}

func newTextRegistry() *textRegistry {
	return &textRegistry{editors: map[domain.Format]*textEditor{
		domain.FormatDOCX: {format: domain.FormatDOCX},
		domain.FormatPDF:  {format: domain.FormatPDF},
	}}
}

func (r *textRegistry) Editor(f domain.Format) (driven.DocumentEditor, error) {
	e, ok := r.editors[f]
	if !ok {
		return nil, domain.ErrUnsupportedType
	}
	return e, nil
}

func (r *textRegistry) Formats() []domain.Format {
	return []domain.Format{domain.FormatDOCX, domain.FormatPDF}
}

// seed uploads objects into a fresh memory bucket.
func seed(t *testing.T, objects map[string]string) *memory.BlobStore {
	t.Helper()
	store := memory.NewBlobStore("od-files")
	for name, content := range objects {
		require.NoError(t, store.Upload(context.Background(), name, []byte(content), ""))
	}
	return store
}

func download(t *testing.T, store driven.BlobStore, name string) string {
	t.Helper()
	data, err := store.Download(context.Background(), name)
	require.NoError(t, err)
	return string(data)
}

// failingStore fails the configured operations.
type failingStore struct {
	driven.BlobStore
	listErr     error
	downloadErr error
	uploadErr   error
}

func (s *failingStore) List(ctx context.Context) ([]driven.BlobObject, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.BlobStore.List(ctx)
}

func (s *failingStore) Download(ctx context.Context, name string) ([]byte, error) {
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	return s.BlobStore.Download(ctx, name)
}

func (s *failingStore) Upload(ctx context.Context, name string, data []byte, ct string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	return s.BlobStore.Upload(ctx, name, data, ct)
}

// hidingStore omits names from listings, simulating a stale listing.
type hidingStore struct {
	driven.BlobStore
	hidden map[string]bool
}

func (s *hidingStore) List(ctx context.Context) ([]driven.BlobObject, error) {
	objs, err := s.BlobStore.List(ctx)
	if err != nil {
		return nil, err
	}
	out := objs[:0]
	for _, o := range objs {
		if !s.hidden[o.Name] {
			out = append(out, o)
		}
	}
	return out, nil
}

// lostAckStore performs uploads (optionally with substituted bytes) and
// then reports a deadline, as if the response was lost.
type lostAckStore struct {
	driven.BlobStore
	write   bool
	replace []byte
}

func (s *lostAckStore) Upload(ctx context.Context, name string, data []byte, ct string) error {
	if s.write {
		if s.replace != nil {
			data = s.replace
		}
		if err := s.BlobStore.Upload(ctx, name, data, ct); err != nil {
			return err
		}
	}
	return context.DeadlineExceeded
}

// barrierStore holds the first n List calls until all n have arrived, so
// concurrent commits observe the same snapshot.
type barrierStore struct {
	driven.BlobStore
	mu        sync.Mutex
	remaining int
	release   chan struct{}
}

func newBarrierStore(inner driven.BlobStore, parties int) *barrierStore {
	return &barrierStore{BlobStore: inner, remaining: parties, release: make(chan struct{})}
}

func (s *barrierStore) List(ctx context.Context) ([]driven.BlobObject, error) {
	s.mu.Lock()
	gated := s.remaining > 0
	if gated {
		s.remaining--
		if s.remaining == 0 {
			close(s.release)
		}
	}
	s.mu.Unlock()

	if gated {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.BlobStore.List(ctx)
}

// failingDictionary always fails.
type failingDictionary struct{}

func (failingDictionary) List(context.Context) ([]domain.Clause, error) {
	return nil, fmt.Errorf("%w: disk gone", domain.ErrDictionaryUnavailable)
}

// staticClauses is a ClauseDictionary over a fixed slice.
type staticClauses []domain.Clause

func (c staticClauses) List(context.Context) ([]domain.Clause, error) {
	return append([]domain.Clause(nil), c...), nil
}

var errBoom = errors.New("boom")
