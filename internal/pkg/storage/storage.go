package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrBucketRequired is returned when a driver is configured without a bucket.
	ErrBucketRequired = errors.New("storage: bucket is required")
	// ErrObjectNotFound is returned when the key does not exist.
	ErrObjectNotFound = errors.New("storage: object not found")
)

// Storage stores public assets (covers, photos, logos) in a single bucket.
type Storage interface {
	io.Closer

	// Put uploads r under key, replacing any existing object.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Object, error)
	// Stat returns object metadata or ErrObjectNotFound.
	Stat(ctx context.Context, key string) (Object, error)
	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns a link clients can fetch the object from. Drivers with a
	// public base URL return it directly, others presign for expiry.
	URL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// PutOptions configures upload behavior.
type PutOptions struct {
	// Size is the content length, -1 when unknown.
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// Object describes a stored object.
type Object struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
	UpdatedAt   time.Time
}

func joinURL(base, key string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/" + key
}
