package services

import "github.com/custodia-labs/od-drafter/internal/core/domain"

// AllocateNext returns the revision after the highest listed one.
// Gaps are never filled: {0,1,3} allocates 4. An empty listing allocates 1;
// the commit flow only allocates after a revision was resolved.
//
// The listing must be the snapshot the resolver used for the same commit.
func AllocateNext(listing Listing) domain.Revision {
	next := domain.RevisionNumber(1)
	if latest, ok := listing.Latest(); ok {
		next = latest.Number + 1
	}
	return domain.NewRevision(listing.Base, next, listing.Format)
}
