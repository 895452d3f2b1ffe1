package ports

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by BlobStore.Get when the key has never been written.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore defines the key/value storage behind the persistence gateway.
// Put overwrites; the last write wins.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Ping(ctx context.Context) error
	Driver() string
	Close() error
}

// StatsReporter is implemented by stores that expose connection statistics.
type StatsReporter interface {
	Stats() map[string]interface{}
}

// RemoteSource fetches the raw body behind a remote document locator.
type RemoteSource interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}
