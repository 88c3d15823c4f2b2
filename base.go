package resource

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/mwantia/resource/log"
)

// Base provides the conservative defaults shared by all descriptor kinds:
// no open handle, not file-backed, no URL or filesystem representation, no
// relative addressing, no filename, identity over the description string.
// Concrete kinds embed Base and override only what their storage makes
// meaningful.
type Base struct {
	desc string
	log  *log.Logger
}

// NewBase creates the shared descriptor state for the given description.
func NewBase(desc string) Base {
	return Base{desc: desc}
}

// SetLogger attaches a diagnostic logger. Loggers are only consulted on
// rarely-taken soft-failure paths and may be left nil.
func (b *Base) SetLogger(logger *log.Logger) {
	b.log = logger
}

// Logger returns the attached diagnostic logger, which may be nil.
func (b *Base) Logger() *log.Logger {
	return b.log
}

// IsOpen always returns false. Only single-use stream descriptors override it.
func (b *Base) IsOpen() bool {
	return false
}

// IsFile always returns false. Only filesystem-backed descriptors override it.
func (b *Base) IsFile() bool {
	return false
}

// URL fails, assuming the resource has no URL representation.
func (b *Base) URL() (string, error) {
	return "", fmt.Errorf("%w: %s cannot be resolved to a URL", ErrNotExist, b.desc)
}

// File fails, assuming the resource is not on the local filesystem.
func (b *Base) File() (string, error) {
	return "", fmt.Errorf("%w: %s cannot be resolved to an absolute file path", ErrNotExist, b.desc)
}

// CreateRelative fails, assuming no addressing scheme for derived locations.
func (b *Base) CreateRelative(rel string) (Resource, error) {
	return nil, fmt.Errorf("%w: cannot create a relative resource for %s", ErrNotExist, b.desc)
}

// Filename returns "", assuming this kind of resource has no filename.
func (b *Base) Filename() string {
	return ""
}

// Description returns the description this descriptor was created with.
func (b *Base) Description() string {
	return b.desc
}

// String returns the description.
func (b *Base) String() string {
	return b.desc
}

// ProbeExists is the fallback existence check: when the resource claims to be
// file-backed, stat the resolved path first; on failure (logged as a soft
// signal, never propagated) or for non-file kinds, fall back to opening and
// immediately closing a stream. A successful open means the content exists.
func ProbeExists(ctx context.Context, r Resource) bool {
	if r.IsFile() {
		path, err := r.File()
		if err == nil {
			_, err = os.Stat(path)
			return err == nil
		}
		debugTo(r, "could not resolve %s to a file for existence check: %v", r.Description(), err)
	}

	rc, err := r.Open(ctx)
	if err != nil {
		debugTo(r, "could not open %s for existence check: %v", r.Description(), err)
		return false
	}
	rc.Close()
	return true
}

// DrainLength is the fallback content length: fully drain a fresh stream in
// fixed-size chunks, summing the bytes read, and close it on every path.
// Correctness over performance; kinds with cheap length metadata override it.
func DrainLength(ctx context.Context, r Resource) (size int64, err error) {
	rc, err := r.Open(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			debugTo(r, "could not close stream of %s after length check: %v", r.Description(), cerr)
		}
	}()

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return size, ctx.Err()
		default:
		}

		n, rerr := rc.Read(buf)
		size += int64(n)
		if rerr != nil {
			if rerr == io.EOF {
				return size, nil
			}
			return size, fmt.Errorf("resource: reading %s for length check: %w", r.Description(), rerr)
		}
	}
}

// ParseURI derives the parsed URI form from the URL representation.
// A malformed URL is reported as a generic error wrapping the syntax error.
func ParseURI(r Resource) (*url.URL, error) {
	raw, err := r.URL()
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("resource: invalid URI [%s]: %w", raw, err)
	}
	return u, nil
}

// SlashPath derives the io/fs path form from the filesystem path.
func SlashPath(r Resource) (string, error) {
	path, err := r.File()
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(path), nil
}

// FileLastModified is the fallback timestamp lookup: stat the resolved file.
// A zero timestamp on a missing file fails with ErrNotExist, so callers can
// distinguish "never modified" from "not resolvable".
func FileLastModified(r Resource) (time.Time, error) {
	path, err := r.File()
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s cannot be resolved in the file system for timestamp check",
			ErrNotExist, r.Description())
	}
	return info.ModTime(), nil
}

func debugTo(r Resource, msg string, args ...any) {
	type logged interface{ Logger() *log.Logger }
	if lr, ok := r.(logged); ok {
		if logger := lr.Logger(); logger != nil {
			logger.Debug(msg, args...)
		}
	}
}
