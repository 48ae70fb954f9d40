package clauses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
	"github.com/custodia-labs/od-drafter/internal/logger"
)

// Ensure FileDictionary implements the interface.
var _ driven.ClauseDictionary = (*FileDictionary)(nil)

// entry is one clause in list form.
type entry struct {
	Title string `json:"title" yaml:"title" toml:"title"`
	Body  string `json:"body" yaml:"body" toml:"body"`
}

// tomlList is the TOML list form: [[clauses]] tables.
type tomlList struct {
	Clauses []entry `toml:"clauses"`
}

// FileDictionary loads clauses from a file and caches them while the
// file's size and modification time are unchanged.
type FileDictionary struct {
	path string

	mu      sync.RWMutex
	clauses []domain.Clause
	stamp   fileStamp
	loaded  bool
	gen     uint64
}

// fileStamp identifies one version of the backing file.
type fileStamp struct {
	exists  bool
	size    int64
	modTime time.Time
}

// NewFileDictionary creates a dictionary backed by path. The file is
// read on first use.
func NewFileDictionary(path string) *FileDictionary {
	return &FileDictionary{path: path}
}

// Path returns the backing file path.
func (d *FileDictionary) Path() string {
	return d.path
}

// List returns all clauses sorted by title. The file is re-read when it
// was created, removed or changed since the last load.
func (d *FileDictionary) List(_ context.Context) ([]domain.Clause, error) {
	stamp, statErr := statFile(d.path)

	d.mu.RLock()
	if d.loaded && statErr == nil && d.stamp.equal(stamp) {
		out := append([]domain.Clause(nil), d.clauses...)
		d.mu.RUnlock()
		return out, nil
	}
	gen := d.gen
	d.mu.RUnlock()

	clauses, err := load(d.path)
	if err != nil {
		return nil, err
	}
	if statErr == nil {
		d.store(gen, stamp, clauses)
	}
	return append([]domain.Clause(nil), clauses...), nil
}

// store caches clauses unless the cache was invalidated after gen was
// read.
func (d *FileDictionary) store(gen uint64, stamp fileStamp, clauses []domain.Clause) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen != gen {
		return false
	}
	d.clauses = clauses
	d.stamp = stamp
	d.loaded = true
	return true
}

// Invalidate drops the cache so the next List re-reads the file.
func (d *FileDictionary) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.loaded = false
	d.clauses = nil
}

func statFile(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileStamp{}, nil
	}
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{exists: true, size: info.Size(), modTime: info.ModTime()}, nil
}

func (s fileStamp) equal(o fileStamp) bool {
	return s.exists == o.exists && s.size == o.size && s.modTime.Equal(o.modTime)
}

// Watch invalidates the cache whenever the file is written, created,
// renamed or removed. It watches the parent directory so editors that
// replace the file are seen. Watch blocks until ctx is done.
func (d *FileDictionary) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(d.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Debug("watching clause dictionary %s", d.path)

	target := filepath.Clean(d.path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op == fsnotify.Chmod {
				continue
			}
			logger.Info("clause dictionary changed (%s), reloading", event.Op)
			d.Invalidate()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("clause dictionary watcher error: %v", err)
		case <-ctx.Done():
			return nil
		}
	}
}

func load(path string) ([]domain.Clause, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("clause dictionary %s not found, using empty dictionary", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrDictionaryUnavailable, path, err)
	}

	clauses, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDictionaryUnavailable, path, err)
	}
	return clauses, nil
}

// Parse decodes clause data in the format named by ext (".json",
// ".yaml", ".yml" or ".toml"). Entries with an empty title are dropped.
func Parse(ext string, data []byte) ([]domain.Clause, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var (
		asMap  map[string]string
		asList []entry
		err    error
	)
	switch strings.ToLower(ext) {
	case ".json":
		if err = json.Unmarshal(data, &asMap); err != nil {
			asMap = nil
			err = json.Unmarshal(data, &asList)
		}
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, &asMap); err != nil {
			asMap = nil
			err = yaml.Unmarshal(data, &asList)
		}
	case ".toml":
		var list tomlList
		if err = toml.Unmarshal(data, &list); err == nil && len(list.Clauses) > 0 {
			asList = list.Clauses
		} else {
			err = toml.Unmarshal(data, &asMap)
		}
	default:
		return nil, fmt.Errorf("%w: clause file extension %q", domain.ErrUnsupportedType, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing clauses: %w", err)
	}

	for title, body := range asMap {
		asList = append(asList, entry{Title: title, Body: body})
	}
	return normaliseEntries(asList), nil
}

func normaliseEntries(entries []entry) []domain.Clause {
	seen := make(map[string]bool, len(entries))
	out := make([]domain.Clause, 0, len(entries))
	for _, e := range entries {
		title := strings.TrimSpace(e.Title)
		if title == "" || seen[strings.ToLower(title)] {
			continue
		}
		seen[strings.ToLower(title)] = true
		out = append(out, domain.Clause{Title: title, Body: e.Body})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}
