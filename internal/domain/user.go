package domain

import (
	"context"
	"time"
)

// User represents a registered member of the community.
type User struct {
	ID           int64
	Email        string
	DisplayName  string
	Bio          string
	PasswordHash string
	PhotoKey     string // Storage key of the profile photo, empty for the default photo
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id int64, displayName, bio string) error
	// SetPhotoKey replaces the profile photo key and returns the previous one.
	SetPhotoKey(ctx context.Context, id int64, key string) (string, error)
}
