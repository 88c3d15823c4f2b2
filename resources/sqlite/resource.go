package sqlite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/mwantia/resource"
)

// SQLiteResource is a descriptor for a single stored blob.
type SQLiteResource struct {
	resource.Base
	store *SQLiteStore
	key   string
}

// Open fetches the blob and returns a reader over it. Each call fetches
// independently, so the content can be read any number of times.
func (r *SQLiteResource) Open(ctx context.Context) (io.ReadCloser, error) {
	content, err := r.store.read(ctx, r.key)
	if err != nil {
		if errors.Is(err, resource.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
		}
		return nil, fmt.Errorf("resource: opening %s: %w", r.Description(), err)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// Exists checks the in-memory key index.
func (r *SQLiteResource) Exists(ctx context.Context) bool {
	return r.store.contains(r.key)
}

// IsReadable delegates to Exists.
func (r *SQLiteResource) IsReadable(ctx context.Context) bool {
	return r.Exists(ctx)
}

// URL returns the sqlite: location of the blob.
func (r *SQLiteResource) URL() (string, error) {
	return "sqlite:" + r.key, nil
}

// URI returns the parsed form of URL.
func (r *SQLiteResource) URI() (*url.URL, error) {
	return resource.ParseURI(r)
}

// Path derives from File, which fails for stored blobs.
func (r *SQLiteResource) Path() (string, error) {
	return resource.SlashPath(r)
}

// ContentLength reads the size column without fetching the content.
func (r *SQLiteResource) ContentLength(ctx context.Context) (int64, error) {
	size, _, err := r.store.stat(ctx, r.key)
	if err != nil {
		if errors.Is(err, resource.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
		}
		return 0, fmt.Errorf("resource: stat %s: %w", r.Description(), err)
	}
	return size, nil
}

// LastModified reads the modification time column.
func (r *SQLiteResource) LastModified(ctx context.Context) (time.Time, error) {
	_, modify, err := r.store.stat(ctx, r.key)
	if err != nil {
		if errors.Is(err, resource.ErrNotExist) {
			return time.Time{}, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
		}
		return time.Time{}, fmt.Errorf("resource: stat %s: %w", r.Description(), err)
	}
	return modify, nil
}

// CreateRelative resolves the given path against this blob's key.
func (r *SQLiteResource) CreateRelative(rel string) (resource.Resource, error) {
	next := r.store.Resource(path.Join(path.Dir(r.key), rel))
	next.SetLogger(r.Logger())
	return next, nil
}

// Filename returns the last segment of the key.
func (r *SQLiteResource) Filename() string {
	return path.Base(r.key)
}
