package loader

import (
	"io/fs"
	"net/http"

	"github.com/mwantia/resource/log"
)

type Options struct {
	LogLevel      log.LogLevel
	LogFile       string
	NoTerminalLog bool

	FS         fs.FS
	HTTPClient *http.Client
	Schemes    []Scheme
	Buffers    map[string][]byte
}

type Option func(*Options) error

func newDefaultOptions() *Options {
	return &Options{
		LogLevel:   log.Warn,
		HTTPClient: http.DefaultClient,
		Buffers:    make(map[string][]byte),
	}
}

// WithLogLevel sets the diagnostic log level. The default is Warn, so the
// Debug-level soft-failure diagnostics stay quiet unless asked for.
func WithLogLevel(level log.LogLevel) Option {
	return func(opts *Options) error {
		opts.LogLevel = level
		return nil
	}
}

// WithLogFile additionally writes diagnostics to a rotated log file.
func WithLogFile(file string) Option {
	return func(opts *Options) error {
		opts.LogFile = file
		return nil
	}
}

// WithoutTerminalLog disables terminal output for diagnostics.
func WithoutTerminalLog() Option {
	return func(opts *Options) error {
		opts.NoTerminalLog = true
		return nil
	}
}

// WithFS binds a filesystem for "fs:" locations, typically an embed.FS.
func WithFS(fsys fs.FS) Option {
	return func(opts *Options) error {
		opts.FS = fsys
		return nil
	}
}

// WithHTTPClient sets the client used for "http:" and "https:" locations.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) error {
		opts.HTTPClient = client
		return nil
	}
}

// WithScheme registers an additional location scheme.
func WithScheme(scheme Scheme) Option {
	return func(opts *Options) error {
		opts.Schemes = append(opts.Schemes, scheme)
		return nil
	}
}

// WithBuffer registers a named in-memory buffer for "mem:" locations.
func WithBuffer(name string, data []byte) Option {
	return func(opts *Options) error {
		opts.Buffers[name] = data
		return nil
	}
}
