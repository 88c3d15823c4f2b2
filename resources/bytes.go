package resources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/resource"
)

// BytesResource is an in-memory descriptor. Every Open returns a fresh
// reader over the same backing slice, so the content can be read any number
// of times.
type BytesResource struct {
	resource.Base
	data   []byte
	absent bool
}

// NewBytes creates a descriptor over the given slice. Anonymous buffers get
// a uuid-tagged description so two distinct buffers never compare equal.
func NewBytes(data []byte) *BytesResource {
	return NewNamedBytes(uuid.Must(uuid.NewV7()).String(), data)
}

// NewNamedBytes creates a descriptor over the given slice with a stable name.
func NewNamedBytes(name string, data []byte) *BytesResource {
	return &BytesResource{
		Base: resource.NewBase(fmt.Sprintf("byte resource [%s]", name)),
		data: data,
	}
}

// NewAbsentBytes creates a descriptor whose backing content does not exist.
// Useful for locations that name a buffer nobody has registered.
func NewAbsentBytes(name string) *BytesResource {
	return &BytesResource{
		Base:   resource.NewBase(fmt.Sprintf("byte resource [%s]", name)),
		absent: true,
	}
}

// Open returns a fresh reader over the buffer. The returned stream also
// satisfies io.ReadSeekCloser.
func (r *BytesResource) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if r.absent {
		return nil, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
	}
	return &byteStream{Reader: bytes.NewReader(r.data)}, nil
}

// Exists reports whether the descriptor carries content.
func (r *BytesResource) Exists(ctx context.Context) bool {
	return !r.absent
}

// IsReadable delegates to Exists.
func (r *BytesResource) IsReadable(ctx context.Context) bool {
	return r.Exists(ctx)
}

// URI derives from URL, which fails for in-memory content.
func (r *BytesResource) URI() (*url.URL, error) {
	return resource.ParseURI(r)
}

// Path derives from File, which fails for in-memory content.
func (r *BytesResource) Path() (string, error) {
	return resource.SlashPath(r)
}

// ContentLength returns the buffer size without touching a stream.
func (r *BytesResource) ContentLength(ctx context.Context) (int64, error) {
	if r.absent {
		return 0, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
	}
	return int64(len(r.data)), nil
}

// LastModified falls back to the file timestamp lookup, which fails for
// in-memory content.
func (r *BytesResource) LastModified(ctx context.Context) (time.Time, error) {
	return resource.FileLastModified(r)
}

// byteStream adapts a bytes.Reader into an io.ReadSeekCloser.
type byteStream struct {
	*bytes.Reader
	closed bool
}

func (bs *byteStream) Close() error {
	if bs.closed {
		return resource.ErrClosed
	}
	bs.closed = true
	return nil
}
