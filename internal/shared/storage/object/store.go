package object

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a storage key does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore saves and retrieves uploaded resume files and their thumbnails.
type ObjectStore interface {
	// Save stores r under the user's namespace and returns the generated key.
	Save(ctx context.Context, userID, fileName, contentType string, r io.Reader) (storageKey string, sizeBytes int64, err error)
	SaveWithKey(ctx context.Context, storageKey, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
	// Bucket names the container holding objects ("" for the filesystem).
	Bucket() string
}

// Presigner is implemented by stores that can hand out time-limited download URLs.
type Presigner interface {
	PresignGet(ctx context.Context, storageKey string, ttl time.Duration) (string, error)
}
