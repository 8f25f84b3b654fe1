package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/recipe-community/internal/domain"
)

const maxPhotoSize = 10 * 1024 * 1024 // 10MB

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// PhotoUpload is a photo received from a client, before it is stored.
type PhotoUpload struct {
	Filename string
	Data     []byte
}

// PhotoService stores, serves and deletes uploaded photos.
type PhotoService struct {
	photos     domain.PhotoRepository
	files      domain.FileStore
	defaultURL string
}

// NewPhotoService creates a new PhotoService. defaultURL is returned by URL
// for an empty key.
func NewPhotoService(photos domain.PhotoRepository, files domain.FileStore, defaultURL string) *PhotoService {
	return &PhotoService{photos: photos, files: files, defaultURL: defaultURL}
}

// Upload validates the bytes and stores them under a fresh key.
func (s *PhotoService) Upload(ctx context.Context, ownerID int64, upload PhotoUpload) (*domain.Photo, error) {
	if len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: photo is empty", domain.ErrInvalidInput)
	}
	if len(upload.Data) > maxPhotoSize {
		return nil, fmt.Errorf("%w: photo exceeds 10MB limit", domain.ErrInvalidInput)
	}

	contentType := http.DetectContentType(upload.Data)
	if !allowedPhotoTypes[contentType] {
		return nil, fmt.Errorf("%w: only JPEG, PNG, GIF and WebP images are accepted", domain.ErrInvalidInput)
	}

	photo := &domain.Photo{
		Key:         uuid.NewString(),
		OwnerID:     ownerID,
		Filename:    path.Base(strings.ReplaceAll(upload.Filename, `\`, "/")),
		ContentType: contentType,
		Size:        int64(len(upload.Data)),
	}
	if photo.Filename == "." || photo.Filename == "/" {
		photo.Filename = ""
	}

	if err := s.files.Save(ctx, photo.Key, upload.Data); err != nil {
		return nil, fmt.Errorf("save file: %w", err)
	}
	if err := s.photos.Create(ctx, photo); err != nil {
		s.discardBlob(ctx, photo.Key)
		return nil, fmt.Errorf("create photo record: %w", err)
	}
	return photo, nil
}

// Get returns the photo bytes and content type. Photos are public.
func (s *PhotoService) Get(ctx context.Context, key string) ([]byte, string, error) {
	photo, err := s.photos.GetByKey(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("get photo: %w", err)
	}
	data, err := s.files.Get(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("get file: %w", err)
	}
	return data, photo.ContentType, nil
}

// Delete removes the bytes and the metadata. A missing photo is not an error.
func (s *PhotoService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.files.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if err := s.photos.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete photo record: %w", err)
	}
	return nil
}

// URL returns the public URL of a stored photo, or the default photo URL
// when key is empty.
func (s *PhotoService) URL(key string) string {
	return PhotoURL(key, s.defaultURL)
}

// SweepOrphans deletes photos older than the cutoff that nothing references
// and returns how many were removed.
func (s *PhotoService) SweepOrphans(ctx context.Context, olderThan time.Time) (int, error) {
	keys, err := s.photos.ListOrphans(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("list orphans: %w", err)
	}
	removed := 0
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			return removed, fmt.Errorf("delete orphan %s: %w", key, err)
		}
		removed++
	}
	return removed, nil
}

// replaced cleans up a photo that an entity no longer points at. Failures
// are left for the orphan sweep.
func (s *PhotoService) replaced(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.Delete(ctx, key); err != nil {
		slog.Warn("delete replaced photo", "key", key, "error", err)
	}
}

func (s *PhotoService) discardBlob(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		slog.Warn("discard photo blob", "key", key, "error", err)
	}
}

// PhotoURL maps a storage key to its public path.
func PhotoURL(key, defaultURL string) string {
	if key == "" {
		return defaultURL
	}
	return "/photos/" + key
}
