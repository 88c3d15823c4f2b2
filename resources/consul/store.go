// Package consul provides resource descriptors for values in the HashiCorp
// Consul KV store.
//
// Consul KV limits values to 512KB, so this kind suits configuration files,
// small assets and metadata rather than bulk content. Consul keeps no
// modification timestamp, so LastModified retains the conservative fallback
// and fails.
package consul

import (
	"fmt"
	"strings"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/resource"
)

// ConsulStoreConfig contains configuration options for the Consul store.
type ConsulStoreConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Namespace for Consul Enterprise (optional)
	Namespace string

	// Prefix prepended to all keys (default: "/")
	Prefix string
}

// ConsulStore hands out descriptors for KV entries and acts as the loader
// scheme for "consul:key" locations.
type ConsulStore struct {
	client *api.Client
	kv     *api.KV
	config *ConsulStoreConfig
}

// NewConsulStore creates a store from configuration, applying defaults for
// missing fields.
func NewConsulStore(config *ConsulStoreConfig) (*ConsulStore, error) {
	if config == nil {
		config = &ConsulStoreConfig{}
	}
	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	if config.Prefix == "" {
		config.Prefix = "/"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}
	if config.Namespace != "" {
		clientConfig.Namespace = config.Namespace
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("resource: creating consul client: %w", err)
	}

	return &ConsulStore{
		client: client,
		kv:     client.KV(),
		config: config,
	}, nil
}

// Name returns the location scheme handled by this store.
func (*ConsulStore) Name() string {
	return "consul"
}

// Resolve turns a "consul:path/to/key" location into a descriptor.
func (s *ConsulStore) Resolve(location string) (resource.Resource, error) {
	key := strings.TrimPrefix(location, "consul:")
	key = strings.TrimPrefix(key, "//")
	if key == "" {
		return nil, fmt.Errorf("%w: %q names no key", resource.ErrInvalid, location)
	}
	return s.Resource(key), nil
}

// Resource returns a descriptor for the given KV key. The description uses
// the full prefixed key, matching what CreateRelative produces, so two
// handles for the same entry always compare equal.
func (s *ConsulStore) Resource(key string) *ConsulResource {
	full := s.buildKey(key)
	return &ConsulResource{
		Base: resource.NewBase(fmt.Sprintf("consul key [%s]", full)),
		kv:   s.kv,
		key:  full,
	}
}

// buildKey constructs the full Consul KV key from the descriptor key.
func (s *ConsulStore) buildKey(key string) string {
	key = strings.TrimPrefix(key, "/")

	// A "/" prefix means no prefix at all
	if s.config.Prefix == "/" {
		return key
	}

	prefix := s.config.Prefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + key
}
