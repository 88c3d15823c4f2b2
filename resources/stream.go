package resources

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/mwantia/resource"
)

// StreamResource wraps a stream that is already open. It exists for callers
// that receive an io.ReadCloser from elsewhere and need to hand it through a
// Resource-shaped API: the stream can be obtained exactly once, and Exists
// is true by definition.
//
// Prefer BytesResource or FileResource wherever the content can be
// re-opened; this kind gives up every multi-read guarantee.
type StreamResource struct {
	resource.Base

	mu       sync.Mutex
	rc       io.ReadCloser
	consumed bool
}

// NewStream wraps the given open stream. The desc is used verbatim in the
// descriptor description.
func NewStream(rc io.ReadCloser, desc string) *StreamResource {
	return &StreamResource{
		Base: resource.NewBase(fmt.Sprintf("stream resource [%s]", desc)),
		rc:   rc,
	}
}

// Open returns the wrapped stream. A second call fails with
// ErrStreamConsumed since the stream cannot be reset.
func (r *StreamResource) Open(ctx context.Context) (io.ReadCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if r.consumed {
		return nil, fmt.Errorf("%w: %s", resource.ErrStreamConsumed, r.Description())
	}
	r.consumed = true
	return r.rc, nil
}

// Exists always returns true; the stream was open when the descriptor was
// created.
func (r *StreamResource) Exists(ctx context.Context) bool {
	return true
}

// IsReadable reports whether the stream is still unconsumed.
func (r *StreamResource) IsReadable(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.consumed
}

// IsOpen always returns true: the wrapped stream must be read and closed
// exactly once.
func (r *StreamResource) IsOpen() bool {
	return true
}

// URI derives from URL, which fails for wrapped streams.
func (r *StreamResource) URI() (*url.URL, error) {
	return resource.ParseURI(r)
}

// Path derives from File, which fails for wrapped streams.
func (r *StreamResource) Path() (string, error) {
	return resource.SlashPath(r)
}

// ContentLength drains the wrapped stream to count its bytes. This consumes
// the single stream: afterwards Open fails with ErrStreamConsumed.
func (r *StreamResource) ContentLength(ctx context.Context) (int64, error) {
	return resource.DrainLength(ctx, r)
}

// LastModified falls back to the file timestamp lookup, which fails for
// wrapped streams.
func (r *StreamResource) LastModified(ctx context.Context) (time.Time, error) {
	return resource.FileLastModified(r)
}
