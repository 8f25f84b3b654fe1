package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// fileStore keeps photo bytes as BLOBs next to the metadata so a single
// database file holds the whole community.
type fileStore struct {
	db *sql.DB
}

// Save writes data under key, replacing any previous bytes.
func (s *fileStore) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("save file blob: empty key")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO file_blobs (storage_key, data) VALUES (?, ?)
		 ON CONFLICT (storage_key) DO UPDATE SET data = excluded.data`,
		key, data,
	)
	if err != nil {
		return fmt.Errorf("save file blob: %w", err)
	}
	return nil
}

func (s *fileStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	if err := s.db.QueryRowContext(ctx,
		"SELECT data FROM file_blobs WHERE storage_key = ?", key,
	).Scan(&data); err != nil {
		return nil, notFoundOr(err, "get file blob")
	}
	return data, nil
}

// Delete is idempotent; removing a missing key is not an error.
func (s *fileStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM file_blobs WHERE storage_key = ?", key); err != nil {
		return fmt.Errorf("delete file blob: %w", err)
	}
	return nil
}
