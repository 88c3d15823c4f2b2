package resource

import (
	"context"
	"hash/fnv"
	"io"
	"net/url"
	"time"
)

// StreamSource is the minimal capability for anything that can produce a
// readable byte stream. Every call to Open must return a fresh, independent
// stream positioned at the start, so callers needing to read the content more
// than once call Open again instead of rewinding. Implementations must never
// hand out a previously exhausted stream; single-use kinds fail the second
// call with ErrStreamConsumed instead.
type StreamSource interface {
	// Open returns a new stream over the underlying content.
	// The caller is responsible for closing it on every exit path.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Resource is a descriptor for content at a named location, independent of
// whether that content currently exists. A Resource handle may be constructed
// and compared freely; existence is always an explicit check via Exists.
//
// Identity is defined purely over the description string: use Equal and Hash
// rather than comparing handles directly.
type Resource interface {
	StreamSource

	// Exists reports whether the underlying content actually exists.
	Exists(ctx context.Context) bool

	// IsReadable reports whether non-empty content can be read via Open.
	// A false value definitely means the content cannot be read; a true
	// value means a read attempt is expected (but not guaranteed) to work.
	IsReadable(ctx context.Context) bool

	// IsOpen reports whether this descriptor wraps an already-open stream.
	// If true, the stream can only be consumed once and must be closed to
	// avoid a leak. Typical descriptors return false.
	IsOpen() bool

	// IsFile reports whether this descriptor is backed by the local
	// filesystem, suggesting (but not guaranteeing) that File will succeed.
	IsFile() bool

	// URL returns the location of this resource in URL form.
	// Fails with ErrNotExist if the resource has no URL representation.
	URL() (string, error)

	// URI returns the parsed form of URL. Parse failures are reported as a
	// generic error wrapping the underlying syntax error.
	URI() (*url.URL, error)

	// File returns the absolute filesystem path backing this resource.
	// Fails with ErrNotExist (or ErrUnsupported where a path-based
	// alternative applies) for resources not on the local filesystem.
	File() (string, error)

	// Path returns a slash-separated path usable with io/fs.
	Path() (string, error)

	// ContentLength determines the length of the content in bytes.
	ContentLength(ctx context.Context) (int64, error)

	// LastModified determines the timestamp of the last content change.
	LastModified(ctx context.Context) (time.Time, error)

	// CreateRelative creates a descriptor for a location relative to this
	// one. Kinds without an addressing scheme fail with ErrNotExist.
	CreateRelative(rel string) (Resource, error)

	// Filename returns the last path segment of the location, usually
	// something like "config.yaml", or "" if this kind has no filename.
	Filename() string

	// Description returns a human-readable description of the location,
	// used in error output and as the identity of the descriptor.
	Description() string
}

// Equal reports whether two descriptors refer to the same location.
// Equality is defined entirely over the description string, regardless of the
// backing kind.
func Equal(a, b Resource) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Description() == b.Description()
}

// Hash returns a hash of the descriptor identity, consistent with Equal.
func Hash(r Resource) uint32 {
	h := fnv.New32a()
	h.Write([]byte(r.Description()))
	return h.Sum32()
}
