package domain

import (
	"context"
	"time"
)

// Recipe is a dish published by a user. The feed and profile only read
// recipes; full recipe authoring lives elsewhere in the application.
type Recipe struct {
	ID          int64
	UserID      int64
	Name        string
	Description string
	PhotoKey    string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	FavoriteCount int
}

type RecipeRepository interface {
	Create(ctx context.Context, recipe *Recipe) error
	GetByID(ctx context.Context, id int64) (*Recipe, error)
	ListByUser(ctx context.Context, userID int64) ([]Recipe, error)
	Update(ctx context.Context, recipe *Recipe) error
	SetPhotoKey(ctx context.Context, id int64, key string) (string, error)
	Delete(ctx context.Context, id int64) error
	CountByUser(ctx context.Context, userID int64) (int, error)

	ToggleFavorite(ctx context.Context, recipeID, userID int64) (favorited bool, err error)
	ListFavorites(ctx context.Context, userID int64) ([]Recipe, error)
}
