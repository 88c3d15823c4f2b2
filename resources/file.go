package resources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/mwantia/resource"
)

// FileResource is a descriptor backed by the local filesystem. Metadata
// queries use filesystem metadata instead of the drain fallback, and relative
// addressing resolves against the parent directory.
type FileResource struct {
	resource.Base
	path string
}

// NewFile creates a descriptor for the given filesystem path. The path is
// cleaned but not required to exist.
func NewFile(path string) *FileResource {
	path = filepath.Clean(path)
	return &FileResource{
		Base: resource.NewBase(fmt.Sprintf("file [%s]", path)),
		path: path,
	}
}

// Open returns a fresh read stream over the file. The returned stream also
// satisfies io.ReadSeekCloser.
func (r *FileResource) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
		}
		return nil, fmt.Errorf("resource: opening %s: %w", r.Description(), err)
	}
	return f, nil
}

// Exists checks the file on disk.
func (r *FileResource) Exists(ctx context.Context) bool {
	_, err := os.Stat(r.path)
	return err == nil
}

// IsReadable reports whether the path names a regular file that can be opened.
func (r *FileResource) IsReadable(ctx context.Context) bool {
	info, err := os.Stat(r.path)
	if err != nil || info.IsDir() {
		return false
	}

	f, err := os.Open(r.path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// IsFile always returns true.
func (r *FileResource) IsFile() bool {
	return true
}

// URL returns a file:// URL for the absolute path.
func (r *FileResource) URL() (string, error) {
	abs, err := r.File()
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// URI returns the parsed form of URL.
func (r *FileResource) URI() (*url.URL, error) {
	return resource.ParseURI(r)
}

// File returns the absolute path of the file.
func (r *FileResource) File() (string, error) {
	abs, err := filepath.Abs(r.path)
	if err != nil {
		return "", fmt.Errorf("resource: resolving %s: %w", r.Description(), err)
	}
	return abs, nil
}

// Path returns the slash-separated form of File.
func (r *FileResource) Path() (string, error) {
	return resource.SlashPath(r)
}

// ContentLength reads the size from filesystem metadata.
func (r *FileResource) ContentLength(ctx context.Context) (int64, error) {
	info, err := os.Stat(r.path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s is a directory", resource.ErrInvalid, r.Description())
	}
	return info.Size(), nil
}

// LastModified reads the timestamp from filesystem metadata.
func (r *FileResource) LastModified(ctx context.Context) (time.Time, error) {
	info, err := os.Stat(r.path)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s cannot be resolved in the file system for timestamp check",
			resource.ErrNotExist, r.Description())
	}
	return info.ModTime(), nil
}

// CreateRelative resolves the given path against this file's directory.
func (r *FileResource) CreateRelative(rel string) (resource.Resource, error) {
	next := NewFile(filepath.Join(filepath.Dir(r.path), filepath.FromSlash(rel)))
	next.SetLogger(r.Logger())
	return next, nil
}

// Filename returns the last path segment.
func (r *FileResource) Filename() string {
	return filepath.Base(r.path)
}
