package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/od-drafter/internal/adapters/driven/clauses"
	"github.com/custodia-labs/od-drafter/internal/adapters/driven/config/file"
	"github.com/custodia-labs/od-drafter/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/od-drafter/internal/adapters/driven/storage/gcs"
	"github.com/custodia-labs/od-drafter/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/od-drafter/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/od-drafter/internal/adapters/driven/storage/supabase"
	"github.com/custodia-labs/od-drafter/internal/adapters/driving/cli"
	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
	"github.com/custodia-labs/od-drafter/internal/core/services"
	"github.com/custodia-labs/od-drafter/internal/editors"
	"github.com/custodia-labs/od-drafter/internal/logger"
	"github.com/custodia-labs/od-drafter/internal/metrics"
)

// app holds the wired services and the resources to release on exit.
type app struct {
	services cli.Services
	closers  []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("close: %v", err)
		}
	}
}

// wire builds the services from the settings in home. A store or journal
// that cannot be opened leaves the quote service unset so that the
// settings commands can still repair the configuration.
func wire(ctx context.Context, home string) (*app, error) {
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		home = filepath.Join(userHome, ".od-drafter")
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	a := &app{services: cli.Services{Settings: settingsService}}

	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("settings are invalid, editing is disabled: %v", err)
		return a, nil
	}

	quote, err := a.wireQuote(ctx, home, settings)
	if err != nil {
		logger.Warn("editing is disabled: %v", err)
		a.close()
		a.closers = nil
		return a, nil
	}
	a.services.Quote = quote
	return a, nil
}

func (a *app) wireQuote(ctx context.Context, home string, settings *domain.AppSettings) (*services.QuoteService, error) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	a.services.Metrics = m.Handler()

	store, err := a.openStore(ctx, home, settings.Store)
	if err != nil {
		return nil, err
	}

	journal, err := a.openJournal(home, settings.Journal)
	if err != nil {
		return nil, err
	}

	dictionary := clauses.NewFileDictionary(clauseFile(home, settings.Clauses))
	if settings.Clauses.Watch {
		go func() {
			if err := dictionary.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("clause watcher stopped: %v", err)
			}
		}()
	}

	committer := services.NewCommitter(
		metrics.InstrumentStore(store, m),
		editors.Default(settings.Documents.Format),
		settings.Store.Timeout,
	)

	return services.NewQuoteService(
		committer,
		dictionary,
		metrics.InstrumentJournal(journal, m),
		settings.Commit.CollisionRetries,
	), nil
}

func (a *app) openStore(ctx context.Context, home string, cfg domain.StoreSettings) (driven.BlobStore, error) {
	switch cfg.Backend {
	case domain.StoreBackendMemory:
		return memory.NewBlobStore(cfg.Bucket), nil

	case domain.StoreBackendFilesystem:
		root := cfg.Path
		if root == "" {
			root = filepath.Join(home, "files")
		}
		return filesystem.NewBlobStore(root, cfg.PublicBaseURL)

	case domain.StoreBackendSupabase:
		return supabase.NewBlobStore(supabase.Config{
			URL:               cfg.URL,
			Key:               cfg.Key,
			Bucket:            cfg.Bucket,
			PublicBaseURL:     cfg.PublicBaseURL,
			RequestsPerSecond: float64(cfg.RateLimit),
		})

	case domain.StoreBackendGCS:
		store, err := gcs.NewBlobStore(ctx, gcs.Config{
			Bucket:          cfg.Bucket,
			CredentialsFile: cfg.CredentialsFile,
			PublicBaseURL:   cfg.PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	}
	return nil, fmt.Errorf("%w: store backend %q", domain.ErrUnsupportedType, cfg.Backend)
}

// openJournal returns nil for the "none" backend.
func (a *app) openJournal(home string, cfg domain.JournalSettings) (driven.CommitJournal, error) {
	switch cfg.Backend {
	case domain.JournalBackendNone:
		return nil, nil

	case domain.JournalBackendMemory:
		return memory.NewCommitJournal(), nil

	case domain.JournalBackendSQLite:
		dir := cfg.Path
		if dir == "" {
			dir = filepath.Join(home, "data")
		}
		store, err := sqlite.NewStore(dir)
		if err != nil {
			return nil, fmt.Errorf("opening journal: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store.CommitJournal(), nil
	}
	return nil, fmt.Errorf("%w: journal backend %q", domain.ErrUnsupportedType, cfg.Backend)
}

func clauseFile(home string, cfg domain.ClauseSettings) string {
	if cfg.File != "" {
		return cfg.File
	}
	return filepath.Join(home, "clauses.json")
}
