package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStoreBackend     = "store.backend"
	keyStoreBucket      = "store.bucket"
	keyStorePath        = "store.path"
	keyStoreURL         = "store.url"
	keyStoreKey         = "store.key"
	keyStorePublicURL   = "store.public_base_url"
	keyStoreCredentials = "store.credentials_file"
	keyStoreRateLimit   = "store.rate_limit"
	keyStoreTimeout     = "store.timeout_seconds"
	keyDocumentsFormat  = "documents.format"
	keyClausesFile      = "clauses.file"
	keyClausesWatch     = "clauses.watch"
	keyCommitRetries    = "commit.collision_retries"
	keyJournalBackend   = "journal.backend"
	keyJournalPath      = "journal.path"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
)

var settingKeys = map[string]keyKind{
	keyStoreBackend:     kindString,
	keyStoreBucket:      kindString,
	keyStorePath:        kindString,
	keyStoreURL:         kindString,
	keyStoreKey:         kindString,
	keyStorePublicURL:   kindString,
	keyStoreCredentials: kindString,
	keyStoreRateLimit:   kindInt,
	keyStoreTimeout:     kindInt,
	keyDocumentsFormat:  kindString,
	keyClausesFile:      kindString,
	keyClausesWatch:     kindBool,
	keyCommitRetries:    kindInt,
	keyJournalBackend:   kindString,
	keyJournalPath:      kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// SUPABASE_URL and SUPABASE_KEY override the stored Supabase credentials.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	format := defaults.Documents.Format
	if raw := s.configStore.GetString(keyDocumentsFormat); raw != "" {
		f, err := domain.ParseFormat(raw)
		if err != nil {
			return nil, err
		}
		format = f
	}

	settings := &domain.AppSettings{
		Store: domain.StoreSettings{
			Backend:         domain.StoreBackend(s.getString(keyStoreBackend, string(defaults.Store.Backend))),
			Bucket:          s.getString(keyStoreBucket, defaults.Store.Bucket),
			Path:            s.configStore.GetString(keyStorePath),
			URL:             s.getEnvOr("SUPABASE_URL", keyStoreURL),
			Key:             s.getEnvOr("SUPABASE_KEY", keyStoreKey),
			PublicBaseURL:   s.configStore.GetString(keyStorePublicURL),
			CredentialsFile: s.configStore.GetString(keyStoreCredentials),
			RateLimit:       s.getInt(keyStoreRateLimit, defaults.Store.RateLimit),
			Timeout:         time.Duration(s.getInt(keyStoreTimeout, int(defaults.Store.Timeout/time.Second))) * time.Second,
		},
		Documents: domain.DocumentSettings{Format: format},
		Clauses: domain.ClauseSettings{
			File:  s.configStore.GetString(keyClausesFile),
			Watch: s.getBool(keyClausesWatch, defaults.Clauses.Watch),
		},
		Commit: domain.CommitSettings{
			CollisionRetries: s.getInt(keyCommitRetries, defaults.Commit.CollisionRetries),
		},
		Journal: domain.JournalSettings{
			Backend: domain.JournalBackend(s.getString(keyJournalBackend, string(defaults.Journal.Backend))),
			Path:    s.configStore.GetString(keyJournalPath),
		},
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Set validates and persists a single key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	switch key {
	case keyStoreBackend:
		if !domain.StoreBackend(value).IsValid() {
			return fmt.Errorf("%w: store backend %q", domain.ErrUnsupportedType, value)
		}
	case keyJournalBackend:
		if !domain.JournalBackend(value).IsValid() {
			return fmt.Errorf("%w: journal backend %q", domain.ErrUnsupportedType, value)
		}
	case keyDocumentsFormat:
		if _, err := domain.ParseFormat(value); err != nil {
			return err
		}
	}

	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer", domain.ErrInvalidInput, key)
		}
		if n < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, int64(n))
	case kindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, b)
	default:
		return s.configStore.Set(key, value)
	}
}

// Keys returns every recognised key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getEnvOr(env, key string) string {
	if v := s.getenv(env); v != "" {
		return v
	}
	return s.configStore.GetString(key)
}
