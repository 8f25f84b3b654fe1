package domain

import (
	"context"
	"time"
)

// Photo holds metadata about an uploaded image. The bytes live in a FileStore
// under the same key.
type Photo struct {
	Key         string
	OwnerID     int64
	Filename    string
	ContentType string
	Size        int64
	CreatedAt   time.Time
}

// PhotoRepository handles photo metadata persistence.
type PhotoRepository interface {
	Create(ctx context.Context, photo *Photo) error
	GetByKey(ctx context.Context, key string) (*Photo, error)
	Delete(ctx context.Context, key string) error
	// ListOrphans returns keys older than the cutoff that no user, post or
	// recipe references.
	ListOrphans(ctx context.Context, olderThan time.Time) ([]string, error)
}

// FileStore abstracts raw file byte storage.
type FileStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
