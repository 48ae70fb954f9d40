package domain

import "time"

// CommitRecord is one audit entry describing a commit attempt.
type CommitRecord struct {
	ID        string    `json:"id"`
	Base      string    `json:"base"`
	Marker    string    `json:"marker"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Revision  string    `json:"revision,omitempty"`
	PublicURL string    `json:"public_url,omitempty"`
	Attempt   int       `json:"attempt"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommitRecord summarises an outcome for the audit journal.
func NewCommitRecord(id string, o Outcome, attempt int, at time.Time) CommitRecord {
	rec := CommitRecord{
		ID:        id,
		Base:      o.Base,
		Marker:    o.Marker.String(),
		Status:    o.Status.String(),
		Reason:    string(o.Reason),
		Revision:  o.Revision.Name,
		PublicURL: o.PublicURL,
		Attempt:   attempt,
		CreatedAt: at,
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	return rec
}
