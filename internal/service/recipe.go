package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/msomdec/recipe-community/internal/domain"
)

const (
	maxRecipeNameLen        = 120
	maxRecipeDescriptionLen = 5000
)

// RecipeService manages recipes and favorites.
type RecipeService struct {
	recipes domain.RecipeRepository
	photos  *PhotoService
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(recipes domain.RecipeRepository, photos *PhotoService) *RecipeService {
	return &RecipeService{recipes: recipes, photos: photos}
}

// Create publishes a recipe owned by userID.
func (s *RecipeService) Create(ctx context.Context, userID int64, name, description string) (*domain.Recipe, error) {
	recipe := &domain.Recipe{UserID: userID}
	if err := applyRecipeFields(recipe, name, description); err != nil {
		return nil, err
	}
	if err := s.recipes.Create(ctx, recipe); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	return recipe, nil
}

func (s *RecipeService) Get(ctx context.Context, id int64) (*domain.Recipe, error) {
	return s.recipes.GetByID(ctx, id)
}

func (s *RecipeService) ListByUser(ctx context.Context, userID int64) ([]domain.Recipe, error) {
	return s.recipes.ListByUser(ctx, userID)
}

// Update edits a recipe. Only the owner may edit.
func (s *RecipeService) Update(ctx context.Context, userID, id int64, name, description string) (*domain.Recipe, error) {
	recipe, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := applyRecipeFields(recipe, name, description); err != nil {
		return nil, err
	}
	if err := s.recipes.Update(ctx, recipe); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	return recipe, nil
}

// Delete removes a recipe, its favorites and its photo.
func (s *RecipeService) Delete(ctx context.Context, userID, id int64) error {
	recipe, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	s.photos.replaced(ctx, recipe.PhotoKey)
	return nil
}

// AttachPhoto sets the recipe photo, replacing any previous one.
func (s *RecipeService) AttachPhoto(ctx context.Context, userID, id int64, upload PhotoUpload) (*domain.Recipe, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}

	photo, err := s.photos.Upload(ctx, userID, upload)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	old, err := s.recipes.SetPhotoKey(ctx, id, photo.Key)
	if err != nil {
		s.photos.replaced(ctx, photo.Key)
		return nil, fmt.Errorf("set recipe photo: %w", err)
	}
	s.photos.replaced(ctx, old)

	return s.recipes.GetByID(ctx, id)
}

// ToggleFavorite adds or removes the recipe from userID's favorites.
func (s *RecipeService) ToggleFavorite(ctx context.Context, userID, recipeID int64) (bool, error) {
	favorited, err := s.recipes.ToggleFavorite(ctx, recipeID, userID)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return favorited, nil
}

func (s *RecipeService) ListFavorites(ctx context.Context, userID int64) ([]domain.Recipe, error) {
	return s.recipes.ListFavorites(ctx, userID)
}

func (s *RecipeService) owned(ctx context.Context, userID, id int64) (*domain.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	if recipe.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return recipe, nil
}

func applyRecipeFields(recipe *domain.Recipe, name, description string) error {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return fmt.Errorf("%w: recipe name is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxRecipeNameLen {
		return fmt.Errorf("%w: recipe name must be %d characters or fewer", domain.ErrInvalidInput, maxRecipeNameLen)
	}
	if utf8.RuneCountInString(description) > maxRecipeDescriptionLen {
		return fmt.Errorf("%w: description must be %d characters or fewer", domain.ErrInvalidInput, maxRecipeDescriptionLen)
	}
	recipe.Name = name
	recipe.Description = description
	return nil
}
