package storage

import (
	"context"
	"time"
)

// BlobStore is the gateway to final media bytes. Keys are generated by the
// caller and never reused; SignedURL mints a time-limited read URL.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Ping(ctx context.Context) error
}
