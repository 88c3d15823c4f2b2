package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/mwantia/resource"
)

// S3Resource is a descriptor for a single object. Metadata queries use
// StatObject instead of the drain fallback.
type S3Resource struct {
	resource.Base
	client *minio.Client
	bucket string
	key    string
}

// Open stats the object and returns a fresh read stream over it.
func (r *S3Resource) Open(ctx context.Context) (io.ReadCloser, error) {
	// GetObject is lazy and would only surface a missing key on first Read;
	// stat first so absence is reported at open time.
	if _, err := r.client.StatObject(ctx, r.bucket, r.key, minio.StatObjectOptions{}); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
		}
		return nil, fmt.Errorf("resource: opening %s: %w", r.Description(), err)
	}

	object, err := r.client.GetObject(ctx, r.bucket, r.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("resource: opening %s: %w", r.Description(), err)
	}
	return object, nil
}

// Exists stats the object.
func (r *S3Resource) Exists(ctx context.Context) bool {
	_, err := r.client.StatObject(ctx, r.bucket, r.key, minio.StatObjectOptions{})
	return err == nil
}

// IsReadable delegates to Exists.
func (r *S3Resource) IsReadable(ctx context.Context) bool {
	return r.Exists(ctx)
}

// URL returns the s3:// location of the object.
func (r *S3Resource) URL() (string, error) {
	return fmt.Sprintf("s3://%s/%s", r.bucket, r.key), nil
}

// URI returns the parsed form of URL.
func (r *S3Resource) URI() (*url.URL, error) {
	return resource.ParseURI(r)
}

// Path derives from File, which fails for remote objects.
func (r *S3Resource) Path() (string, error) {
	return resource.SlashPath(r)
}

// ContentLength reads the size from object metadata.
func (r *S3Resource) ContentLength(ctx context.Context) (int64, error) {
	info, err := r.client.StatObject(ctx, r.bucket, r.key, minio.StatObjectOptions{})
	if err != nil {
		if notFound(err) {
			return 0, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
		}
		return 0, fmt.Errorf("resource: stat %s: %w", r.Description(), err)
	}
	return info.Size, nil
}

// LastModified reads the timestamp from object metadata.
func (r *S3Resource) LastModified(ctx context.Context) (time.Time, error) {
	info, err := r.client.StatObject(ctx, r.bucket, r.key, minio.StatObjectOptions{})
	if err != nil {
		if notFound(err) {
			return time.Time{}, fmt.Errorf("%w: %s", resource.ErrNotExist, r.Description())
		}
		return time.Time{}, fmt.Errorf("resource: stat %s: %w", r.Description(), err)
	}
	return info.LastModified, nil
}

// CreateRelative resolves the given path against this object's key.
func (r *S3Resource) CreateRelative(rel string) (resource.Resource, error) {
	next := &S3Resource{
		client: r.client,
		bucket: r.bucket,
		key:    path.Join(path.Dir(r.key), rel),
	}
	next.Base = resource.NewBase(fmt.Sprintf("s3 object [%s/%s]", next.bucket, next.key))
	next.SetLogger(r.Logger())
	return next, nil
}

// Filename returns the last segment of the object key.
func (r *S3Resource) Filename() string {
	return path.Base(r.key)
}
