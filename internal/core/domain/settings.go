package domain

import (
	"fmt"
	"strings"
	"time"
)

// StoreBackend selects the BlobStore implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendMemory keeps revisions in process memory. Used for testing.
	StoreBackendMemory StoreBackend = "memory"

	// StoreBackendFilesystem stores revisions as files in one directory.
	StoreBackendFilesystem StoreBackend = "filesystem"

	// StoreBackendSupabase uses Supabase Storage over its REST API.
	StoreBackendSupabase StoreBackend = "supabase"

	// StoreBackendGCS uses a Google Cloud Storage bucket.
	StoreBackendGCS StoreBackend = "gcs"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendMemory, StoreBackendFilesystem, StoreBackendSupabase, StoreBackendGCS:
		return true
	default:
		return false
	}
}

// JournalBackend selects the CommitJournal implementation.
type JournalBackend string

// Available journal backends.
const (
	JournalBackendSQLite JournalBackend = "sqlite"
	JournalBackendMemory JournalBackend = "memory"
	JournalBackendNone   JournalBackend = "none"
)

// IsValid returns true if the backend is recognised.
func (b JournalBackend) IsValid() bool {
	switch b {
	case JournalBackendSQLite, JournalBackendMemory, JournalBackendNone:
		return true
	default:
		return false
	}
}

// StoreSettings configures the blob store.
type StoreSettings struct {
	Backend StoreBackend

	// Bucket is the bucket name (supabase, gcs).
	Bucket string

	// Path is the directory holding revisions (filesystem).
	Path string

	// URL and Key authenticate against Supabase.
	URL string
	Key string

	// PublicBaseURL overrides public URL derivation (filesystem, gcs).
	PublicBaseURL string

	// CredentialsFile is a service account key file (gcs).
	CredentialsFile string

	// RateLimit caps requests per second (supabase).
	RateLimit int

	// Timeout bounds each store call.
	Timeout time.Duration
}

// DocumentSettings configures the document family.
type DocumentSettings struct {
	Format Format
}

// ClauseSettings configures the clause dictionary.
type ClauseSettings struct {
	File  string
	Watch bool
}

// CommitSettings configures the caller-side commit policy.
type CommitSettings struct {
	// CollisionRetries is how many times a VersionCollision re-runs the commit.
	CollisionRetries int
}

// JournalSettings configures the audit journal.
type JournalSettings struct {
	Backend JournalBackend
	Path    string
}

// AppSettings holds all application configuration.
type AppSettings struct {
	Store     StoreSettings
	Documents DocumentSettings
	Clauses   ClauseSettings
	Commit    CommitSettings
	Journal   JournalSettings
}

// DefaultAppSettings returns settings used when nothing is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Store: StoreSettings{
			Backend:   StoreBackendFilesystem,
			Bucket:    "od-files",
			RateLimit: 8,
			Timeout:   30 * time.Second,
		},
		Documents: DocumentSettings{Format: FormatDOCX},
		Commit:    CommitSettings{CollisionRetries: 2},
		Journal:   JournalSettings{Backend: JournalBackendSQLite},
	}
}

// Validate checks that the settings can be wired.
func (s *AppSettings) Validate() error {
	if !s.Store.Backend.IsValid() {
		return fmt.Errorf("%w: store backend %q", ErrUnsupportedType, s.Store.Backend)
	}
	if !s.Journal.Backend.IsValid() {
		return fmt.Errorf("%w: journal backend %q", ErrUnsupportedType, s.Journal.Backend)
	}
	if s.Store.Backend == StoreBackendSupabase {
		if strings.TrimSpace(s.Store.URL) == "" || strings.TrimSpace(s.Store.Key) == "" {
			return fmt.Errorf("%w: supabase store requires store.url and store.key", ErrInvalidInput)
		}
	}
	if (s.Store.Backend == StoreBackendSupabase || s.Store.Backend == StoreBackendGCS) && s.Store.Bucket == "" {
		return fmt.Errorf("%w: store.bucket is required", ErrInvalidInput)
	}
	if s.Commit.CollisionRetries < 0 {
		return fmt.Errorf("%w: commit.collision_retries must not be negative", ErrInvalidInput)
	}
	return nil
}
