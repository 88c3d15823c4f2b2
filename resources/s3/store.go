// Package s3 provides resource descriptors for objects in S3-compatible
// storage, backed by the minio client.
package s3

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mwantia/resource"
)

// S3StoreConfig contains configuration options for the S3 store.
type S3StoreConfig struct {
	// Endpoint of the S3-compatible server, host:port without scheme
	Endpoint string

	// AccessKey and SecretKey for authentication
	AccessKey string
	SecretKey string

	// Bucket used when a location does not carry one
	Bucket string

	// Region (optional)
	Region string

	// UseSSL enables TLS for the endpoint
	UseSSL bool
}

// S3Store hands out descriptors for objects in a bucket and acts as the
// loader scheme for "s3://bucket/key" locations.
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store creates a store from configuration.
func NewS3Store(config *S3StoreConfig) (*S3Store, error) {
	if config == nil || config.Endpoint == "" {
		return nil, fmt.Errorf("%w: s3 store requires an endpoint", resource.ErrInvalid)
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("resource: creating s3 client: %w", err)
	}

	return &S3Store{
		client: client,
		bucket: config.Bucket,
	}, nil
}

// NewS3StoreWithClient wraps an existing minio client.
func NewS3StoreWithClient(client *minio.Client, bucket string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
	}
}

// Name returns the location scheme handled by this store.
func (*S3Store) Name() string {
	return "s3"
}

// Resolve turns an "s3://bucket/key" location into a descriptor. A location
// without a bucket host falls back to the store's default bucket.
func (s *S3Store) Resolve(location string) (resource.Resource, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", resource.ErrInvalid, location, err)
	}

	bucket := u.Host
	if bucket == "" {
		bucket = s.bucket
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Opaque != "" {
		key = u.Opaque
	}

	if bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: %q names no bucket or key", resource.ErrInvalid, location)
	}

	return s.ResourceIn(bucket, key), nil
}

// Resource returns a descriptor for a key in the store's default bucket.
func (s *S3Store) Resource(key string) *S3Resource {
	return s.ResourceIn(s.bucket, key)
}

// ResourceIn returns a descriptor for a key in the given bucket.
func (s *S3Store) ResourceIn(bucket, key string) *S3Resource {
	return &S3Resource{
		Base:   resource.NewBase(fmt.Sprintf("s3 object [%s/%s]", bucket, key)),
		client: s.client,
		bucket: bucket,
		key:    key,
	}
}

// notFound reports whether the given error is the S3 "no such key" response.
func notFound(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
