package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes one stored object, as returned by List.
type ObjectInfo struct {
	Path         string
	SizeBytes    int64
	LastModified time.Time
}

// Storage defines the object-store contract the namespace is layered over.
// Works with AWS S3, MinIO, DigitalOcean Spaces, Cloudflare R2, etc.
type Storage interface {
	// Put stores an object at the given path.
	Put(ctx context.Context, path string, r io.Reader) error

	// Get opens the object at the given path for reading.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Copy duplicates the object at src to dst. The source is left intact.
	Copy(ctx context.Context, src, dst string) error

	// Remove deletes the given objects. Missing objects are not an error.
	Remove(ctx context.Context, paths []string) error

	// PresignedURL returns a signed URL granting temporary read access.
	PresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)

	// List returns objects under the given key prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
