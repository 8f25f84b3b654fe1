package domain

import (
	"context"
	"time"
)

// Cache is a small byte-oriented key/value cache. A miss is reported as
// ErrNotFound.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
