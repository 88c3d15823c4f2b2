package resources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/mwantia/resource"
)

// URLResource is a descriptor for content behind an HTTP or HTTPS URL.
// Existence and metadata are probed with HEAD requests where the server
// cooperates; otherwise the conservative stream-probe fallbacks apply.
type URLResource struct {
	resource.Base
	u      *url.URL
	client *http.Client
}

// NewURL creates a descriptor for the given URL. The URL is parsed eagerly;
// a malformed location cannot produce a usable descriptor. A nil client
// falls back to http.DefaultClient.
func NewURL(raw string, client *http.Client) (*URLResource, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", resource.ErrInvalid, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q is not an http(s) URL", resource.ErrInvalid, raw)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &URLResource{
		Base:   resource.NewBase(fmt.Sprintf("URL [%s]", u.String())),
		u:      u,
		client: client,
	}, nil
}

// Open issues a GET request and returns the response body.
func (r *URLResource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("resource: opening %s: %w", r.Description(), err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resource: opening %s: %w", r.Description(), err)
	}
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("resource: opening %s: unexpected status %s", r.Description(), resp.Status)
	}
	return resp.Body, nil
}

// Exists probes the URL with a HEAD request, falling back to the open-probe
// when the server rejects HEAD.
func (r *URLResource) Exists(ctx context.Context) bool {
	resp, err := r.head(ctx)
	if err != nil {
		return resource.ProbeExists(ctx, r)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusMethodNotAllowed {
		return resource.ProbeExists(ctx, r)
	}
	return resp.StatusCode < 300
}

// IsReadable delegates to Exists.
func (r *URLResource) IsReadable(ctx context.Context) bool {
	return r.Exists(ctx)
}

// URL returns the string form of the URL.
func (r *URLResource) URL() (string, error) {
	return r.u.String(), nil
}

// URI returns a copy of the parsed URL.
func (r *URLResource) URI() (*url.URL, error) {
	u := *r.u
	return &u, nil
}

// Path derives an io/fs style path, which fails since URL resources are not
// filesystem-backed.
func (r *URLResource) Path() (string, error) {
	return resource.SlashPath(r)
}

// ContentLength uses the Content-Length response header when the server
// reports one, draining the stream otherwise.
func (r *URLResource) ContentLength(ctx context.Context) (int64, error) {
	resp, err := r.head(ctx)
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			return 0, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
		}
		if resp.StatusCode < 300 && resp.ContentLength >= 0 {
			return resp.ContentLength, nil
		}
	}
	return resource.DrainLength(ctx, r)
}

// LastModified reads the Last-Modified response header, probing with HEAD
// first and falling back to a GET when the server rejects HEAD.
func (r *URLResource) LastModified(ctx context.Context) (time.Time, error) {
	resp, err := r.head(ctx)
	if err == nil {
		if resp.StatusCode != http.StatusMethodNotAllowed {
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return time.Time{}, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
			}
			return r.modTime(resp.Header)
		}
		resp.Body.Close()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.u.String(), nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("resource: probing %s: %w", r.Description(), err)
	}
	get, err := r.client.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("resource: probing %s: %w", r.Description(), err)
	}
	defer get.Body.Close()

	if get.StatusCode >= 400 {
		return time.Time{}, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
	}
	return r.modTime(get.Header)
}

func (r *URLResource) modTime(header http.Header) (time.Time, error) {
	if value := header.Get("Last-Modified"); value != "" {
		if t, err := http.ParseTime(value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s reports no modification timestamp",
		resource.ErrNotExist, r.Description())
}

// CreateRelative resolves the given reference against this URL.
func (r *URLResource) CreateRelative(rel string) (resource.Resource, error) {
	ref, err := url.Parse(rel)
	if err != nil {
		return nil, fmt.Errorf("%w: relative path %q: %v", resource.ErrInvalid, rel, err)
	}

	next, err := NewURL(r.u.ResolveReference(ref).String(), r.client)
	if err != nil {
		return nil, err
	}
	next.SetLogger(r.Logger())
	return next, nil
}

// Filename returns the last segment of the URL path.
func (r *URLResource) Filename() string {
	name := path.Base(r.u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func (r *URLResource) head(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.u.String(), nil)
	if err != nil {
		return nil, err
	}
	return r.client.Do(req)
}
