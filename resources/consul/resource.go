package consul

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/resource"
)

// ConsulResource is a descriptor for a single KV entry.
type ConsulResource struct {
	resource.Base
	kv  *api.KV
	key string
}

// Open fetches the value and returns a reader over it. Each call fetches
// independently, so the content can be read any number of times.
func (r *ConsulResource) Open(ctx context.Context) (io.ReadCloser, error) {
	pair, err := r.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("resource: opening %s: %w", r.Description(), err)
	}
	if pair == nil {
		return nil, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
	}
	return io.NopCloser(bytes.NewReader(pair.Value)), nil
}

// Exists checks whether the key is present in the KV store.
func (r *ConsulResource) Exists(ctx context.Context) bool {
	pair, err := r.get(ctx)
	return err == nil && pair != nil
}

// IsReadable delegates to Exists.
func (r *ConsulResource) IsReadable(ctx context.Context) bool {
	return r.Exists(ctx)
}

// URL returns the consul: location of the entry.
func (r *ConsulResource) URL() (string, error) {
	return "consul:" + r.key, nil
}

// URI returns the parsed form of URL.
func (r *ConsulResource) URI() (*url.URL, error) {
	return resource.ParseURI(r)
}

// Path derives from File, which fails for KV entries.
func (r *ConsulResource) Path() (string, error) {
	return resource.SlashPath(r)
}

// ContentLength reads the value size without draining a stream.
func (r *ConsulResource) ContentLength(ctx context.Context) (int64, error) {
	pair, err := r.get(ctx)
	if err != nil {
		return 0, fmt.Errorf("resource: stat %s: %w", r.Description(), err)
	}
	if pair == nil {
		return 0, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
	}
	return int64(len(pair.Value)), nil
}

// LastModified falls back to the file timestamp lookup, which fails: Consul
// KV keeps no modification timestamp.
func (r *ConsulResource) LastModified(ctx context.Context) (time.Time, error) {
	return resource.FileLastModified(r)
}

// CreateRelative resolves the given path against this entry's key.
func (r *ConsulResource) CreateRelative(rel string) (resource.Resource, error) {
	key := path.Join(path.Dir(r.key), rel)
	next := &ConsulResource{
		Base: resource.NewBase(fmt.Sprintf("consul key [%s]", key)),
		kv:   r.kv,
		key:  key,
	}
	next.SetLogger(r.Logger())
	return next, nil
}

// Filename returns the last segment of the key.
func (r *ConsulResource) Filename() string {
	return path.Base(r.key)
}

func (r *ConsulResource) get(ctx context.Context) (*api.KVPair, error) {
	opts := (&api.QueryOptions{}).WithContext(ctx)
	pair, _, err := r.kv.Get(r.key, opts)
	return pair, err
}
