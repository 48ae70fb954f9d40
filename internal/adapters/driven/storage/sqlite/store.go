package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/od-drafter/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
)

// dbFile is the database file name inside the data directory.
const dbFile = "journal.db"

// Store is a SQLite database holding the commit journal.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.od-drafter/data/journal.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".od-drafter", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CommitJournal returns a CommitJournal interface backed by this store.
func (s *Store) CommitJournal() driven.CommitJournal {
	return &commitJournal{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_commits.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Commit Journal ====================

// commitJournal implements driven.CommitJournal.
type commitJournal struct {
	store *Store
}

var _ driven.CommitJournal = (*commitJournal)(nil)

// Record appends one entry. An empty ID is replaced with a new UUID.
func (j *commitJournal) Record(ctx context.Context, rec domain.CommitRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := j.store.db.ExecContext(ctx, `
		INSERT INTO commits (id, base, marker, status, reason, revision, public_url, attempt, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Base, rec.Marker, rec.Status, rec.Reason, rec.Revision, rec.PublicURL,
		rec.Attempt, rec.Error, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting commit record: %w", err)
	}
	return nil
}

// List returns the newest entries first.
func (j *commitJournal) List(ctx context.Context, base string, limit int) ([]domain.CommitRecord, error) {
	query := `
		SELECT id, base, marker, status, reason, revision, public_url, attempt, error, created_at
		FROM commits`
	var args []any
	if base != "" {
		query += " WHERE base = ?"
		args = append(args, base)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying commits: %w", err)
	}
	defer rows.Close()

	var result []domain.CommitRecord
	for rows.Next() {
		var rec domain.CommitRecord
		var createdAt time.Time
		if err := rows.Scan(&rec.ID, &rec.Base, &rec.Marker, &rec.Status, &rec.Reason,
			&rec.Revision, &rec.PublicURL, &rec.Attempt, &rec.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning commit record: %w", err)
		}
		rec.CreatedAt = createdAt.UTC()
		result = append(result, rec)
	}
	return result, rows.Err()
}
