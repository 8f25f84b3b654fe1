package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/msomdec/recipe-community/internal/domain"
)

// recipeRepo implements domain.RecipeRepository using SQLite.
type recipeRepo struct {
	db *sql.DB
}

const recipeSelect = `SELECT r.id, r.user_id, r.name, r.description, r.photo_key, r.created_at, r.updated_at,
	(SELECT COUNT(*) FROM recipe_favorites f WHERE f.recipe_id = r.id)
	FROM recipes r`

func scanRecipe(row rowScanner, rc *domain.Recipe) error {
	return row.Scan(&rc.ID, &rc.UserID, &rc.Name, &rc.Description, &rc.PhotoKey, &rc.CreatedAt, &rc.UpdatedAt, &rc.FavoriteCount)
}

func (r *recipeRepo) Create(ctx context.Context, recipe *domain.Recipe) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO recipes (user_id, name, description, photo_key, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		recipe.UserID, recipe.Name, recipe.Description, recipe.PhotoKey, now, now,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert recipe: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get recipe id: %w", err)
	}
	recipe.ID = id
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	return nil
}

func (r *recipeRepo) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	rc := &domain.Recipe{}
	if err := scanRecipe(r.db.QueryRowContext(ctx, recipeSelect+` WHERE r.id = ?`, id), rc); err != nil {
		return nil, notFoundOr(err, "get recipe")
	}
	return rc, nil
}

func (r *recipeRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, recipeSelect+` WHERE r.user_id = ? ORDER BY r.updated_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()
	return collectRecipes(rows)
}

func (r *recipeRepo) Update(ctx context.Context, recipe *domain.Recipe) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE recipes SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		recipe.Name, recipe.Description, now, recipe.ID,
	)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	if err := requireRow(result); err != nil {
		return err
	}
	recipe.UpdatedAt = now
	return nil
}

func (r *recipeRepo) SetPhotoKey(ctx context.Context, id int64, key string) (string, error) {
	return swapPhotoKey(ctx, r.db, "recipes", id, key)
}

func (r *recipeRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return requireRow(result)
}

func (r *recipeRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipes WHERE user_id = ?", userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	return count, nil
}

func (r *recipeRepo) ToggleFavorite(ctx context.Context, recipeID, userID int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM recipes WHERE id = ?", recipeID).Scan(&exists); err != nil {
		return false, notFoundOr(err, "check recipe")
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM recipe_favorites WHERE recipe_id = ? AND user_id = ?", recipeID, userID)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	favorited := removed == 0
	if favorited {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO recipe_favorites (recipe_id, user_id, created_at) VALUES (?, ?, ?)",
			recipeID, userID, time.Now().UTC(),
		); err != nil {
			return false, fmt.Errorf("insert favorite: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return favorited, nil
}

func (r *recipeRepo) ListFavorites(ctx context.Context, userID int64) ([]domain.Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		recipeSelect+` JOIN recipe_favorites fav ON fav.recipe_id = r.id
		 WHERE fav.user_id = ? ORDER BY fav.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()
	return collectRecipes(rows)
}

func collectRecipes(rows *sql.Rows) ([]domain.Recipe, error) {
	var recipes []domain.Recipe
	for rows.Next() {
		var rc domain.Recipe
		if err := scanRecipe(rows, &rc); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, rc)
	}
	return recipes, rows.Err()
}
