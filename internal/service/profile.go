package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/msomdec/recipe-community/internal/domain"
)

const (
	maxDisplayNameLen = 50
	maxBioLen         = 500
)

// Profile is a user as shown on their profile page.
type Profile struct {
	User          domain.User
	Stats         domain.FollowStats
	RecipeCount   int
	PostCount     int
	ViewerFollows bool
	IsSelf        bool
}

// ProfileService reads and edits user profiles.
type ProfileService struct {
	users   domain.UserRepository
	follows domain.FollowRepository
	recipes domain.RecipeRepository
	posts   domain.PostRepository
	photos  *PhotoService
}

// NewProfileService creates a new ProfileService.
func NewProfileService(users domain.UserRepository, follows domain.FollowRepository, recipes domain.RecipeRepository, posts domain.PostRepository, photos *PhotoService) *ProfileService {
	return &ProfileService{users: users, follows: follows, recipes: recipes, posts: posts, photos: photos}
}

// GetProfile loads userID's profile with counts, as seen by viewerID (0 for
// an anonymous viewer).
func (s *ProfileService) GetProfile(ctx context.Context, viewerID, userID int64) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	p := &Profile{User: *user, IsSelf: viewerID == userID}
	if p.Stats, err = s.follows.Stats(ctx, userID); err != nil {
		return nil, fmt.Errorf("follow stats: %w", err)
	}
	if p.RecipeCount, err = s.recipes.CountByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("count recipes: %w", err)
	}
	if p.PostCount, err = s.posts.CountByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if viewerID != 0 && !p.IsSelf {
		if p.ViewerFollows, err = s.follows.IsFollowing(ctx, viewerID, userID); err != nil {
			return nil, fmt.Errorf("check follow: %w", err)
		}
	}
	return p, nil
}

// UpdateProfile changes the display name and bio.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, displayName, bio string) (*domain.User, error) {
	displayName = strings.TrimSpace(displayName)
	bio = strings.TrimSpace(bio)

	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		return nil, fmt.Errorf("%w: display name must be %d characters or fewer", domain.ErrInvalidInput, maxDisplayNameLen)
	}
	if utf8.RuneCountInString(bio) > maxBioLen {
		return nil, fmt.Errorf("%w: bio must be %d characters or fewer", domain.ErrInvalidInput, maxBioLen)
	}

	if err := s.users.UpdateProfile(ctx, userID, displayName, bio); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.users.GetByID(ctx, userID)
}

// UploadProfilePhoto stores a new profile photo and removes the previous one.
func (s *ProfileService) UploadProfilePhoto(ctx context.Context, userID int64, upload PhotoUpload) (*domain.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user profile does not exist", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	photo, err := s.photos.Upload(ctx, userID, upload)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	old, err := s.users.SetPhotoKey(ctx, userID, photo.Key)
	if err != nil {
		s.photos.replaced(ctx, photo.Key)
		return nil, fmt.Errorf("set profile photo: %w", err)
	}
	s.photos.replaced(ctx, old)

	return s.users.GetByID(ctx, userID)
}

// ListRecipes returns the recipes userID has published.
func (s *ProfileService) ListRecipes(ctx context.Context, userID int64) ([]domain.Recipe, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.recipes.ListByUser(ctx, userID)
}

// ListFavorites returns the recipes userID has favorited.
func (s *ProfileService) ListFavorites(ctx context.Context, userID int64) ([]domain.Recipe, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.recipes.ListFavorites(ctx, userID)
}
