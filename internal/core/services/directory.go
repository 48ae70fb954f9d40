package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
	"github.com/custodia-labs/od-drafter/internal/logger"
)

// Listing is the set of revisions of one base observed in a single bucket
// listing. It is a snapshot: it is never refreshed or shared across commits.
type Listing struct {
	Base   string
	Format domain.Format

	// Numbers holds the present revision numbers in ascending order.
	Numbers []domain.RevisionNumber
}

// Empty reports whether no revision of the base was listed.
func (l Listing) Empty() bool {
	return len(l.Numbers) == 0
}

// Latest returns the highest listed revision.
func (l Listing) Latest() (domain.Revision, bool) {
	if l.Empty() {
		return domain.Revision{}, false
	}
	return domain.NewRevision(l.Base, l.Numbers[len(l.Numbers)-1], l.Format), true
}

// Contains reports whether n was listed.
func (l Listing) Contains(n domain.RevisionNumber) bool {
	i := sort.Search(len(l.Numbers), func(i int) bool { return l.Numbers[i] >= n })
	return i < len(l.Numbers) && l.Numbers[i] == n
}

// Revisions expands the listing into named revisions, oldest first.
func (l Listing) Revisions() []domain.Revision {
	revs := make([]domain.Revision, len(l.Numbers))
	for i, n := range l.Numbers {
		revs[i] = domain.NewRevision(l.Base, n, l.Format)
	}
	return revs
}

// Directory turns the store's flat listing into per-base revision sets.
type Directory struct {
	store   driven.BlobStore
	formats []domain.Format
}

// NewDirectory creates a directory view over store. Names are decoded
// against each format in order; the first format with matches wins.
func NewDirectory(store driven.BlobStore, formats []domain.Format) *Directory {
	if len(formats) == 0 {
		formats = domain.Formats
	}
	return &Directory{store: store, formats: formats}
}

// ListRevisions lists the whole bucket and keeps the names that decode
// against base. Unrelated names are discarded silently. A failed listing is
// reported as domain.ErrDirectoryUnavailable, never as an empty listing.
func (d *Directory) ListRevisions(ctx context.Context, base string) (Listing, error) {
	objects, err := d.store.List(ctx)
	if err != nil {
		return Listing{}, fmt.Errorf("%w: listing bucket for %s: %v", domain.ErrDirectoryUnavailable, base, err)
	}

	byFormat := make(map[domain.Format][]domain.RevisionNumber, len(d.formats))
	for _, obj := range objects {
		for _, format := range d.formats {
			if n, ok := domain.DecodeRevisionName(obj.Name, base, format); ok {
				byFormat[format] = append(byFormat[format], n)
				break
			}
		}
	}

	listing := Listing{Base: base, Format: d.formats[0]}
	found := 0
	for _, format := range d.formats {
		numbers := byFormat[format]
		if len(numbers) == 0 {
			continue
		}
		found++
		if found == 1 {
			listing.Format = format
			listing.Numbers = numbers
		}
	}
	if found > 1 {
		logger.Warn("base %s has revisions in more than one format; using %s", base, listing.Format)
	}

	sort.Slice(listing.Numbers, func(i, j int) bool { return listing.Numbers[i] < listing.Numbers[j] })
	logger.Debug("listing %s: %d of %d objects matched", base, len(listing.Numbers), len(objects))
	return listing, nil
}
