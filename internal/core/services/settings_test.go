package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/od-drafter/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/od-drafter/internal/core/domain"
)

func newSettingsService(store *memory.ConfigStore, env map[string]string) *SettingsService {
	service := NewSettingsService(store)
	service.getenv = func(key string) string { return env[key] }
	return service
}

func TestNewSettingsService(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := newSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults, *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("store.backend", "gcs")
	_ = store.Set("store.bucket", "quotes")
	_ = store.Set("store.timeout_seconds", int64(5))
	_ = store.Set("documents.format", "PDF")
	_ = store.Set("clauses.file", "/etc/od/clauses.yaml")
	_ = store.Set("clauses.watch", true)
	_ = store.Set("commit.collision_retries", int64(0))
	_ = store.Set("journal.backend", "none")

	settings, err := newSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.StoreBackendGCS, settings.Store.Backend)
	assert.Equal(t, "quotes", settings.Store.Bucket)
	assert.Equal(t, 5*time.Second, settings.Store.Timeout)
	assert.Equal(t, domain.FormatPDF, settings.Documents.Format)
	assert.Equal(t, "/etc/od/clauses.yaml", settings.Clauses.File)
	assert.True(t, settings.Clauses.Watch)
	assert.Equal(t, 0, settings.Commit.CollisionRetries)
	assert.Equal(t, domain.JournalBackendNone, settings.Journal.Backend)
}

func TestSettingsService_Get_EnvironmentOverridesSupabase(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("store.backend", "supabase")
	_ = store.Set("store.url", "https://stored.supabase.co")

	service := newSettingsService(store, map[string]string{
		"SUPABASE_URL": "https://env.supabase.co",
		"SUPABASE_KEY": "service-key",
	})

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "https://env.supabase.co", settings.Store.URL)
	assert.Equal(t, "service-key", settings.Store.Key)
}

func TestSettingsService_Get_SupabaseWithoutKey(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("store.backend", "supabase")
	_ = store.Set("store.url", "https://stored.supabase.co")

	_, err := newSettingsService(store, nil).Get()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Get_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{"store.backend", "s3"},
		{"journal.backend", "postgres"},
		{"documents.format", "odt"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			store := memory.NewConfigStore()
			_ = store.Set(tt.key, tt.value)

			_, err := newSettingsService(store, nil).Get()
			assert.ErrorIs(t, err, domain.ErrUnsupportedType)
		})
	}
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := newSettingsService(store, nil)

	require.NoError(t, service.Set("store.backend", "memory"))
	require.NoError(t, service.Set("commit.collision_retries", " 4 "))
	require.NoError(t, service.Set("clauses.watch", "true"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.StoreBackendMemory, settings.Store.Backend)
	assert.Equal(t, 4, settings.Commit.CollisionRetries)
	assert.True(t, settings.Clauses.Watch)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	service := newSettingsService(memory.NewConfigStore(), nil)

	tests := []struct {
		name  string
		key   string
		value string
		err   error
	}{
		{"unknown key", "search.mode", "hybrid", domain.ErrInvalidInput},
		{"bad backend", "store.backend", "s3", domain.ErrUnsupportedType},
		{"bad journal", "journal.backend", "mysql", domain.ErrUnsupportedType},
		{"bad format", "documents.format", "odt", domain.ErrUnsupportedType},
		{"not an integer", "store.rate_limit", "fast", domain.ErrInvalidInput},
		{"negative", "commit.collision_retries", "-1", domain.ErrInvalidInput},
		{"not a bool", "clauses.watch", "maybe", domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, service.Set(tt.key, tt.value), tt.err)
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	keys := newSettingsService(memory.NewConfigStore(), nil).Keys()

	assert.Len(t, keys, len(settingKeys))
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "store.backend")
}

func TestSettingsService_Path(t *testing.T) {
	service := newSettingsService(memory.NewConfigStore(), nil)
	assert.Equal(t, ":memory:", service.Path())
}
