package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
	"github.com/custodia-labs/od-drafter/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore keeps objects as files under root.
type BlobStore struct {
	root    string
	baseURL string
}

// NewBlobStore creates the root directory if needed. When publicBaseURL
// is empty, PublicURL returns file:// URLs.
func NewBlobStore(root, publicBaseURL string) (*BlobStore, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: store path is empty", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving store path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &BlobStore{root: abs, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Root returns the absolute directory backing the store.
func (s *BlobStore) Root() string {
	return s.root
}

// List returns the regular files in root, sorted by name.
func (s *BlobStore) List(ctx context.Context) ([]driven.BlobObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading store directory: %w", err)
	}

	result := make([]driven.BlobObject, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		result = append(result, driven.BlobObject{
			Name:      entry.Name(),
			Size:      info.Size(),
			UpdatedAt: info.ModTime().UTC(),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Download reads the named file.
func (s *BlobStore) Download(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// Upload writes a temp file and hard-links it into place. The link fails
// if the name exists, so a concurrent writer can never be overwritten and
// readers never observe a partial file.
func (s *BlobStore) Upload(ctx context.Context, name string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}

	if err := os.Link(tmpName, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, name)
		}
		return fmt.Errorf("linking %s: %w", name, err)
	}
	return nil
}

// PublicURL joins the name onto the public base URL, or returns a file URL.
func (s *BlobStore) PublicURL(name string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + url.PathEscape(name)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(s.root, name))}
	return u.String()
}

func (s *BlobStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: invalid object name %q", domain.ErrInvalidInput, name)
	}
	return filepath.Join(s.root, name), nil
}
