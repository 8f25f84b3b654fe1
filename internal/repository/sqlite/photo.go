package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/msomdec/recipe-community/internal/domain"
)

// photoRepo implements domain.PhotoRepository using SQLite.
type photoRepo struct {
	db *sql.DB
}

func (r *photoRepo) Create(ctx context.Context, photo *domain.Photo) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO photos (storage_key, owner_id, filename, content_type, size, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		photo.Key, photo.OwnerID, photo.Filename, photo.ContentType, photo.Size, now,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert photo: %w", err)
	}
	photo.CreatedAt = now
	return nil
}

func (r *photoRepo) GetByKey(ctx context.Context, key string) (*domain.Photo, error) {
	p := &domain.Photo{}
	err := r.db.QueryRowContext(ctx,
		`SELECT storage_key, owner_id, filename, content_type, size, created_at
		 FROM photos WHERE storage_key = ?`, key,
	).Scan(&p.Key, &p.OwnerID, &p.Filename, &p.ContentType, &p.Size, &p.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "get photo")
	}
	return p, nil
}

func (r *photoRepo) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM photos WHERE storage_key = ?", key)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return requireRow(result)
}

func (r *photoRepo) ListOrphans(ctx context.Context, olderThan time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.storage_key FROM photos p
		 WHERE p.created_at < ?
		   AND NOT EXISTS (SELECT 1 FROM users u WHERE u.photo_key = p.storage_key)
		   AND NOT EXISTS (SELECT 1 FROM posts po WHERE po.photo_key = p.storage_key)
		   AND NOT EXISTS (SELECT 1 FROM recipes r WHERE r.photo_key = p.storage_key)
		 ORDER BY p.created_at`, olderThan.UTC())
	if err != nil {
		return nil, fmt.Errorf("list orphan photos: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan photo key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
