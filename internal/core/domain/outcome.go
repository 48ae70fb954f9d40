package domain

import (
	"errors"
	"fmt"
	"strings"
)

// OutcomeStatus is the terminal state of a commit.
type OutcomeStatus int

const (
	// StatusFailed means no revision was written.
	StatusFailed OutcomeStatus = iota

	// StatusApplied means exactly one new revision was written.
	StatusApplied

	// StatusAlreadyApplied means the edit was already present; nothing was written.
	StatusAlreadyApplied
)

// String returns the status name.
func (s OutcomeStatus) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusAlreadyApplied:
		return "already_applied"
	default:
		return "failed"
	}
}

// FailureReason is the closed set of commit failure kinds.
type FailureReason string

const (
	ReasonNone                  FailureReason = ""
	ReasonBaseNotFound          FailureReason = "base_not_found"
	ReasonDirectoryUnavailable  FailureReason = "directory_unavailable"
	ReasonDownloadFailed        FailureReason = "download_failed"
	ReasonUnknownMarker         FailureReason = "ambiguous_or_unknown_marker"
	ReasonNoTableInDocument     FailureReason = "no_table_in_document"
	ReasonMutateError           FailureReason = "mutate_error"
	ReasonVersionCollision      FailureReason = "version_collision"
	ReasonUploadError           FailureReason = "upload_error"
	ReasonInvalidInput          FailureReason = "invalid_input"
	ReasonDictionaryUnavailable FailureReason = "dictionary_unavailable"
)

// Retryable reports whether re-running the whole commit may succeed.
func (r FailureReason) Retryable() bool {
	switch r {
	case ReasonVersionCollision, ReasonDirectoryUnavailable, ReasonDownloadFailed:
		return true
	default:
		return false
	}
}

// ReasonFor classifies an error returned by the commit pipeline.
func ReasonFor(err error) FailureReason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrInvalidInput):
		return ReasonInvalidInput
	case errors.Is(err, ErrBaseNotFound):
		return ReasonBaseNotFound
	case errors.Is(err, ErrDirectoryUnavailable):
		return ReasonDirectoryUnavailable
	case errors.Is(err, ErrDownloadFailed):
		return ReasonDownloadFailed
	case errors.Is(err, ErrNoTable):
		return ReasonNoTableInDocument
	case errors.Is(err, ErrAlreadyExists):
		return ReasonVersionCollision
	case errors.Is(err, ErrDictionaryUnavailable):
		return ReasonDictionaryUnavailable
	default:
		return ReasonMutateError
	}
}

// Outcome is the typed result of a commit. Failures are values, not errors.
type Outcome struct {
	Status OutcomeStatus

	// Base is the base identifier the commit targeted.
	Base string

	// Revision is the new revision on StatusApplied, or the latest
	// revision already carrying the edit on StatusAlreadyApplied.
	Revision Revision

	// PublicURL dereferences the new revision on StatusApplied.
	PublicURL string

	// Reason categorises a failure.
	Reason FailureReason

	// Alternatives lists valid choices for the caller, such as clause titles.
	Alternatives []string

	// Marker describes the edit that was requested.
	Marker Marker

	// Attempts counts commit runs, including collision retries.
	Attempts int

	// Err is the underlying cause of a failure.
	Err error
}

// Applied builds a successful outcome for a newly written revision.
func Applied(rev Revision, publicURL string) Outcome {
	return Outcome{Status: StatusApplied, Base: rev.Base, Revision: rev, PublicURL: publicURL}
}

// AlreadyApplied builds the idempotent no-op outcome.
func AlreadyApplied(latest Revision) Outcome {
	return Outcome{Status: StatusAlreadyApplied, Base: latest.Base, Revision: latest}
}

// Failed builds a failure outcome.
func Failed(base string, reason FailureReason, err error) Outcome {
	return Outcome{Status: StatusFailed, Base: base, Reason: reason, Err: err}
}

// OK reports whether the outcome is a success (including the no-op).
func (o Outcome) OK() bool {
	return o.Status != StatusFailed
}

// Message renders the user-visible summary. Failures always name the base.
func (o Outcome) Message() string {
	switch o.Status {
	case StatusApplied:
		return fmt.Sprintf("Added %s to %s. New version created: %s", describe(o.Marker), o.Base, o.Revision.Name)
	case StatusAlreadyApplied:
		return fmt.Sprintf("%s already exists in %s. No changes made.", capitalise(describe(o.Marker)), o.Revision.Name)
	}

	var b strings.Builder
	switch o.Reason {
	case ReasonBaseNotFound:
		fmt.Fprintf(&b, "No files found for quote %s", o.Base)
	case ReasonUnknownMarker:
		fmt.Fprintf(&b, "%s not found for quote %s", capitalise(describe(o.Marker)), o.Base)
	case ReasonNoTableInDocument:
		fmt.Fprintf(&b, "No tables found in the latest version of quote %s", o.Base)
	case ReasonVersionCollision:
		fmt.Fprintf(&b, "Another edit created the next version of quote %s first; retry", o.Base)
	default:
		fmt.Fprintf(&b, "Editing quote %s failed (%s)", o.Base, o.Reason)
	}
	if o.Err != nil {
		fmt.Fprintf(&b, ": %v", o.Err)
	}
	if len(o.Alternatives) > 0 {
		fmt.Fprintf(&b, ". Options: %s", strings.Join(o.Alternatives, ", "))
	}
	return b.String()
}

func describe(m Marker) string {
	switch {
	case m.Kind == MarkerLineItem && m.ItemName != "":
		return fmt.Sprintf("row '%s' (%s)", m.ItemName, m.Price)
	case m.Kind == MarkerClause && m.Title != "":
		return fmt.Sprintf("clause '%s'", m.Title)
	case m.Kind == MarkerLineItem:
		return "row"
	default:
		return "clause"
	}
}

func capitalise(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
