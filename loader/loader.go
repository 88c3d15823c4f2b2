// Package loader resolves string locations into resource descriptors.
//
// Locations are dispatched on their scheme prefix: "file:" and scheme-less
// locations resolve to filesystem descriptors, "fs:" resolves against a
// bound fs.FS, "http:"/"https:" resolve to URL descriptors, "mem:" resolves
// against registered named buffers, and any other scheme is delegated to a
// registered Scheme implementation (the s3, consul, sqlite and postgres
// stores all implement Scheme).
//
// A descriptor returned by Get never implies that the content exists;
// existence is always an explicit check on the descriptor.
package loader

import (
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"

	"github.com/mwantia/resource"
	"github.com/mwantia/resource/log"
	"github.com/mwantia/resource/resources"
	"github.com/tidwall/btree"
)

// Loader is the strategy interface for turning a location into a descriptor.
type Loader interface {
	// Get returns a descriptor for the given location. The descriptor must
	// be reusable: repeated Open calls yield independent streams. Get fails
	// only when the location itself is unusable (empty, malformed, unknown
	// scheme), never because the content is absent.
	Get(location string) (resource.Resource, error)
}

// Scheme resolves locations for a single location scheme, such as "s3" for
// "s3://bucket/key". Implementations receive the full location string.
type Scheme interface {
	Name() string
	Resolve(location string) (resource.Resource, error)
}

// DefaultLoader is a standalone Loader with a sorted scheme registry and a
// descriptor cache. Descriptors are immutable value-like handles, so caching
// them per location is safe.
type DefaultLoader struct {
	mu      sync.RWMutex
	schemes *btree.Map[string, Scheme]
	cache   *btree.Map[string, resource.Resource]
	buffers map[string][]byte
	fsys    fs.FS
	client  *http.Client
	log     *log.Logger
}

// New creates a DefaultLoader configured by the given options.
func New(opts ...Option) (*DefaultLoader, error) {
	options := newDefaultOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	l := &DefaultLoader{
		schemes: btree.NewMap[string, Scheme](0),
		cache:   btree.NewMap[string, resource.Resource](0),
		buffers: options.Buffers,
		fsys:    options.FS,
		client:  options.HTTPClient,
		log:     log.NewLogger("loader", options.LogLevel, options.LogFile, options.NoTerminalLog),
	}

	for _, scheme := range options.Schemes {
		if err := l.Register(scheme); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Register adds a scheme to the loader. Registering a name twice fails.
func (l *DefaultLoader) Register(scheme Scheme) error {
	name := strings.ToLower(scheme.Name())
	if name == "" {
		return fmt.Errorf("%w: scheme with empty name", resource.ErrInvalid)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.schemes.Get(name); exists {
		return fmt.Errorf("%w: scheme %q already registered", resource.ErrInvalid, name)
	}
	l.schemes.Set(name, scheme)
	return nil
}

// Get returns a descriptor for the given location, creating and caching it
// on first use.
func (l *DefaultLoader) Get(location string) (resource.Resource, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", resource.ErrInvalid)
	}

	l.mu.RLock()
	cached, ok := l.cache.Get(location)
	l.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r, err := l.resolve(location)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache.Set(location, r)
	l.mu.Unlock()

	return r, nil
}

func (l *DefaultLoader) resolve(location string) (resource.Resource, error) {
	switch scheme := schemeOf(location); scheme {
	case "":
		return l.named(resources.NewFile(location), "file"), nil

	case "file":
		path := strings.TrimPrefix(location, "file:")
		path = strings.TrimPrefix(path, "//")
		return l.named(resources.NewFile(path), "file"), nil

	case "fs":
		if l.fsys == nil {
			return nil, fmt.Errorf("%w: %q, no filesystem bound to this loader",
				resource.ErrUnknownScheme, location)
		}
		return l.named(resources.NewFS(l.fsys, strings.TrimPrefix(location, "fs:")), "fs"), nil

	case "http", "https":
		r, err := resources.NewURL(location, l.client)
		if err != nil {
			return nil, err
		}
		return l.named(r, "url"), nil

	case "mem":
		name := strings.TrimPrefix(location, "mem:")
		if data, ok := l.buffers[name]; ok {
			return l.named(resources.NewNamedBytes(name, data), "mem"), nil
		}
		return l.named(resources.NewAbsentBytes(name), "mem"), nil

	default:
		l.mu.RLock()
		s, ok := l.schemes.Get(scheme)
		l.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: %q", resource.ErrUnknownScheme, scheme)
		}
		return s.Resolve(location)
	}
}

type loggable interface {
	SetLogger(*log.Logger)
}

func (l *DefaultLoader) named(r resource.Resource, kind string) resource.Resource {
	if lr, ok := r.(loggable); ok {
		lr.SetLogger(l.log.Named(kind))
	}
	return r
}

// schemeOf extracts the location scheme, or "" for plain paths. Single-letter
// prefixes are treated as paths so Windows drive letters keep working.
func schemeOf(location string) string {
	idx := strings.Index(location, ":")
	if idx < 2 {
		return ""
	}

	scheme := location[:idx]
	for i, c := range scheme {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return ""
		}
	}
	return strings.ToLower(scheme)
}
