package ports

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned by Get when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectMetadata represents metadata associated with stored objects
type ObjectMetadata struct {
	ContentType  string
	UserMetadata map[string]string
}

// ObjectInfo represents information about a stored object
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage abstracts the durable store that mirrors completed video
// artifacts and their sidecars. The bucket or base path is bound at
// construction time; callers address objects by key only.
type ObjectStorage interface {
	// Put stores an object under the given key
	Put(ctx context.Context, key string, reader io.Reader, metadata ObjectMetadata) error

	// Get retrieves an object by key
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object by key
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)

	// List returns objects whose keys start with prefix
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
