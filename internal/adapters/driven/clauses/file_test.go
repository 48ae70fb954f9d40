package clauses

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestParse_Formats(t *testing.T) {
	want := []domain.Clause{
		{Title: "Auto Renewal", Body: "Renews yearly."},
		{Title: "Warranty", Body: "One year."},
	}

	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"json map", ".json", `{"Warranty": "One year.", "Auto Renewal": "Renews yearly."}`},
		{"json list", ".json", `[{"title": "Warranty", "body": "One year."}, {"title": "Auto Renewal", "body": "Renews yearly."}]`},
		{"yaml map", ".yaml", "Warranty: One year.\nAuto Renewal: Renews yearly.\n"},
		{"yml list", ".yml", "- title: Warranty\n  body: One year.\n- title: Auto Renewal\n  body: Renews yearly.\n"},
		{"toml map", ".toml", "Warranty = \"One year.\"\n\"Auto Renewal\" = \"Renews yearly.\"\n"},
		{"toml list", ".toml", "[[clauses]]\ntitle = \"Warranty\"\nbody = \"One year.\"\n\n[[clauses]]\ntitle = \"Auto Renewal\"\nbody = \"Renews yearly.\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.ext, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParse_DropsBlankAndDuplicateTitles(t *testing.T) {
	got, err := Parse(".json", []byte(`[{"title": " ", "body": "x"}, {"title": "Escrow", "body": "a"}, {"title": "escrow", "body": "b"}]`))
	require.NoError(t, err)
	assert.Equal(t, []domain.Clause{{Title: "Escrow", Body: "a"}}, got)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(".json", []byte(`{not json`))
	assert.Error(t, err)

	_, err = Parse(".ini", []byte("a=b"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	got, err := Parse(".json", []byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileDictionary_MissingFileIsEmpty(t *testing.T) {
	d := NewFileDictionary(filepath.Join(t.TempDir(), "clauses.json"))

	got, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileDictionary_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clauses.json")
	writeFile(t, path, "{")

	_, err := NewFileDictionary(path).List(context.Background())
	assert.ErrorIs(t, err, domain.ErrDictionaryUnavailable)
}

func TestFileDictionary_ReloadsChangedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clauses.json")
	d := NewFileDictionary(path)
	ctx := context.Background()

	got, err := d.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	writeFile(t, path, `{"Auto Renewal": "Renews."}`)
	got, err = d.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Clause{{Title: "Auto Renewal", Body: "Renews."}}, got)

	writeFile(t, path, `{"Auto Renewal": "Renews.", "Escrow": "Held."}`)
	got, err = d.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, os.Remove(path))
	got, err = d.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileDictionary_CachesUnchangedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clauses.json")
	writeFile(t, path, `{"Warranty": "One year."}`)
	d := NewFileDictionary(path)
	ctx := context.Background()

	got, err := d.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "One year.", got[0].Body)

	info, err := os.Stat(path)
	require.NoError(t, err)
	writeFile(t, path, `{"Warranty": "Two year."}`)
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))

	got, err = d.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "One year.", got[0].Body, "same size and mtime serves the cache")

	d.Invalidate()
	got, err = d.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Two year.", got[0].Body)
}

func TestFileDictionary_InvalidateDiscardsInflightLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clauses.json")
	writeFile(t, path, `{"Warranty": "One year."}`)
	d := NewFileDictionary(path)

	d.mu.RLock()
	gen := d.gen
	d.mu.RUnlock()
	stamp, err := statFile(path)
	require.NoError(t, err)

	d.Invalidate()
	assert.False(t, d.store(gen, stamp, []domain.Clause{{Title: "Stale"}}))

	got, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Clause{{Title: "Warranty", Body: "One year."}}, got)
}

func TestFileDictionary_ListReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clauses.json")
	writeFile(t, path, `{"Warranty": "One year."}`)
	d := NewFileDictionary(path)

	got, err := d.List(context.Background())
	require.NoError(t, err)
	got[0].Title = "changed"

	again, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Warranty", again[0].Title)
}

func TestFileDictionary_WatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clauses.yaml")
	writeFile(t, path, "Warranty: One year.\n")
	d := NewFileDictionary(path)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	got, err := d.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Rewrite until the watcher is registered and has invalidated the cache.
	assert.Eventually(t, func() bool {
		if err := os.WriteFile(path, []byte("Warranty: One year.\nEscrow: Held.\n"), 0o600); err != nil {
			return false
		}
		got, err := d.List(context.Background())
		return err == nil && len(got) == 2
	}, 5*time.Second, 50*time.Millisecond)
}

func TestStaticDictionary(t *testing.T) {
	d := NewStaticDictionary(map[string]string{"Warranty": "One year.", "Escrow": "Held."})

	got, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Clause{{Title: "Escrow", Body: "Held."}, {Title: "Warranty", Body: "One year."}}, got)
}
