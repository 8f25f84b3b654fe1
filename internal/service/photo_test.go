package service_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/msomdec/recipe-community/internal/domain"
	"github.com/msomdec/recipe-community/internal/repository/sqlite"
	"github.com/msomdec/recipe-community/internal/service"
)

const defaultPhotoURL = "/static/default-avatar.png"

// pngBytes is enough of a PNG for content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

func seedUser(t *testing.T, db *sqlite.DB, email, name string) int64 {
	t.Helper()
	u := &domain.User{Email: email, DisplayName: name, PasswordHash: "hash"}
	if err := db.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u.ID
}

func newTestPhotoService(t *testing.T) (*service.PhotoService, *sqlite.DB) {
	t.Helper()
	_, db := newTestAuthService(t)
	return service.NewPhotoService(db.Photos(), db.FileStore(), defaultPhotoURL), db
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) Publish(_ context.Context, e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func TestPhotoService_UploadAndGet(t *testing.T) {
	photos, db := newTestPhotoService(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com", "Owner")

	photo, err := photos.Upload(ctx, owner, service.PhotoUpload{Filename: `C:\pics\pie.png`, Data: pngBytes})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if photo.Key == "" {
		t.Fatal("expected a storage key")
	}
	if photo.ContentType != "image/png" {
		t.Fatalf("expected image/png, got %s", photo.ContentType)
	}
	if photo.Filename != "pie.png" {
		t.Fatalf("expected base filename pie.png, got %q", photo.Filename)
	}

	data, contentType, err := photos.Get(ctx, photo.Key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if contentType != "image/png" || !bytes.Equal(data, pngBytes) {
		t.Fatalf("unexpected photo back: %s, %d bytes", contentType, len(data))
	}

	if got := photos.URL(photo.Key); got != "/photos/"+photo.Key {
		t.Fatalf("unexpected URL %q", got)
	}
	if got := photos.URL(""); got != defaultPhotoURL {
		t.Fatalf("expected default URL for empty key, got %q", got)
	}
}

func TestPhotoService_Upload_Rejects(t *testing.T) {
	photos, db := newTestPhotoService(t)
	owner := seedUser(t, db, "owner@example.com", "Owner")

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not an image", []byte("just some text, no picture here")},
		{"too large", append(append([]byte{}, pngBytes...), make([]byte, 10*1024*1024)...)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := photos.Upload(context.Background(), owner, service.PhotoUpload{Data: tc.data})
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPhotoService_Delete(t *testing.T) {
	photos, db := newTestPhotoService(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com", "Owner")

	photo, err := photos.Upload(ctx, owner, service.PhotoUpload{Data: pngBytes})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := photos.Delete(ctx, photo.Key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := photos.Get(ctx, photo.Key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := photos.Delete(ctx, photo.Key); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}
}

func TestPhotoService_SweepOrphans(t *testing.T) {
	photos, db := newTestPhotoService(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com", "Owner")

	kept, err := photos.Upload(ctx, owner, service.PhotoUpload{Data: pngBytes})
	if err != nil {
		t.Fatalf("Upload kept: %v", err)
	}
	if _, err := db.Users().SetPhotoKey(ctx, owner, kept.Key); err != nil {
		t.Fatalf("SetPhotoKey: %v", err)
	}
	orphan, err := photos.Upload(ctx, owner, service.PhotoUpload{Data: pngBytes})
	if err != nil {
		t.Fatalf("Upload orphan: %v", err)
	}

	removed, err := photos.SweepOrphans(ctx, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("SweepOrphans: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 orphan removed, got %d", removed)
	}
	if _, _, err := photos.Get(ctx, orphan.Key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected orphan gone, got %v", err)
	}
	if _, _, err := photos.Get(ctx, kept.Key); err != nil {
		t.Fatalf("referenced photo should survive: %v", err)
	}
}
