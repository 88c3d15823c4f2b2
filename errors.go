package resource

import "errors"

// Standard errors surfaced by descriptors and the loader. Concrete kinds wrap
// these with location detail via fmt.Errorf and %w so callers can match with
// errors.Is.
var (
	// Resolution and existence errors
	ErrNotExist    = errors.New("resource: does not exist")
	ErrUnsupported = errors.New("resource: operation not supported")

	// Loader errors
	ErrUnknownScheme = errors.New("resource: unknown location scheme")
	ErrInvalid       = errors.New("resource: invalid argument")

	// Stream errors
	ErrStreamConsumed = errors.New("resource: stream already consumed")
	ErrClosed         = errors.New("resource: stream already closed")
)
