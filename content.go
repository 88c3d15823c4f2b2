package resource

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
)

// ReadAll reads the complete content of the resource into memory.
func ReadAll(ctx context.Context, r Resource) ([]byte, error) {
	rc, err := r.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("resource: reading %s: %w", r.Description(), err)
	}
	return data, nil
}

// Text reads the complete content of the resource as a string, decoded with
// the given encoding. A nil encoding means the content is already UTF-8.
func Text(ctx context.Context, r Resource, enc encoding.Encoding) (string, error) {
	data, err := ReadAll(ctx, r)
	if err != nil {
		return "", err
	}
	if enc == nil {
		return string(data), nil
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("resource: decoding %s: %w", r.Description(), err)
	}
	return string(decoded), nil
}

// OpenSeeker opens the resource for seekable reading. Streams that already
// support seeking (file-backed kinds) are returned as-is; everything else is
// drained into an in-memory buffer that satisfies io.ReadSeekCloser.
func OpenSeeker(ctx context.Context, r Resource) (io.ReadSeekCloser, error) {
	rc, err := r.Open(ctx)
	if err != nil {
		return nil, err
	}

	if rsc, ok := rc.(io.ReadSeekCloser); ok {
		return rsc, nil
	}

	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("resource: buffering %s: %w", r.Description(), err)
	}
	return &bufferedStream{Reader: bytes.NewReader(data)}, nil
}

// bufferedStream adapts a bytes.Reader into an io.ReadSeekCloser for
// resources whose native streams cannot seek.
type bufferedStream struct {
	*bytes.Reader
	closed bool
}

func (bs *bufferedStream) Close() error {
	if bs.closed {
		return ErrClosed
	}
	bs.closed = true
	return nil
}
