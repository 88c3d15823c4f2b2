package resources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"path"
	"time"

	"github.com/mwantia/resource"
)

// FSResource is a descriptor into an fs.FS tree, typically an embed.FS
// carrying assets compiled into the binary. It is the closest analog to a
// classpath resource: content addressed by a slash-separated name, readable
// but never file-backed.
type FSResource struct {
	resource.Base
	fsys fs.FS
	name string
}

// NewFS creates a descriptor for name inside fsys. The name must be a valid
// io/fs path; it is cleaned but not required to exist.
func NewFS(fsys fs.FS, name string) *FSResource {
	name = path.Clean(name)
	return &FSResource{
		Base: resource.NewBase(fmt.Sprintf("fs resource [%s]", name)),
		fsys: fsys,
		name: name,
	}
}

// Open returns a fresh read stream over the entry.
func (r *FSResource) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := r.fsys.Open(r.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
		}
		return nil, fmt.Errorf("resource: opening %s: %w", r.Description(), err)
	}
	return f, nil
}

// Exists stats the entry inside the fs.FS.
func (r *FSResource) Exists(ctx context.Context) bool {
	_, err := fs.Stat(r.fsys, r.name)
	return err == nil
}

// IsReadable reports whether the name stats to a non-directory entry.
func (r *FSResource) IsReadable(ctx context.Context) bool {
	info, err := fs.Stat(r.fsys, r.name)
	return err == nil && !info.IsDir()
}

// URL returns an fs: pseudo URL for the entry name. The loader understands
// the same form when an fs.FS is bound.
func (r *FSResource) URL() (string, error) {
	return "fs:" + r.name, nil
}

// URI returns the parsed form of URL.
func (r *FSResource) URI() (*url.URL, error) {
	return resource.ParseURI(r)
}

// File fails with ErrUnsupported: fs entries have no filesystem path and are
// addressed through Path instead.
func (r *FSResource) File() (string, error) {
	return "", fmt.Errorf("%w: %s is not backed by a filesystem path, use Path",
		resource.ErrUnsupported, r.Description())
}

// Path returns the entry name, already an io/fs path.
func (r *FSResource) Path() (string, error) {
	return r.name, nil
}

// ContentLength reads the size from fs metadata.
func (r *FSResource) ContentLength(ctx context.Context) (int64, error) {
	info, err := fs.Stat(r.fsys, r.name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s is a directory", resource.ErrInvalid, r.Description())
	}
	return info.Size(), nil
}

// LastModified reads the timestamp from fs metadata. Embedded filesystems
// report a zero time; that is returned as-is since the entry does exist.
func (r *FSResource) LastModified(ctx context.Context) (time.Time, error) {
	info, err := fs.Stat(r.fsys, r.name)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s cannot be resolved for timestamp check",
			resource.ErrNotExist, r.Description())
	}
	return info.ModTime(), nil
}

// CreateRelative resolves the given path against this entry's directory.
func (r *FSResource) CreateRelative(rel string) (resource.Resource, error) {
	next := NewFS(r.fsys, path.Join(path.Dir(r.name), rel))
	next.SetLogger(r.Logger())
	return next, nil
}

// Filename returns the last segment of the entry name.
func (r *FSResource) Filename() string {
	return path.Base(r.name)
}
