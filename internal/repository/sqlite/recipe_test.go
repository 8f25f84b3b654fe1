package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/recipe-community/internal/domain"
)

func TestRecipeRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	repo := db.Recipes()
	ctx := context.Background()
	cook := seedUser(t, db, "cook@example.com", "Cook")

	rc := &domain.Recipe{UserID: cook, Name: "Ratatouille", Description: "Summer vegetables"}
	if err := repo.Create(ctx, rc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rc.ID == 0 {
		t.Fatal("expected recipe ID to be set")
	}

	rc.Name = "Ratatouille Niçoise"
	if err := repo.Update(ctx, rc); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, err := repo.GetByID(ctx, rc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Name != "Ratatouille Niçoise" {
		t.Fatalf("expected updated name, got %q", found.Name)
	}

	list, err := repo.ListByUser(ctx, cook)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(list))
	}

	count, err := repo.CountByUser(ctx, cook)
	if err != nil {
		t.Fatalf("CountByUser: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	if err := repo.Delete(ctx, rc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, rc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecipeRepository_ToggleFavorite(t *testing.T) {
	db := newTestDB(t)
	repo := db.Recipes()
	ctx := context.Background()
	cook := seedUser(t, db, "cook2@example.com", "Cook")
	fan := seedUser(t, db, "fan2@example.com", "Fan")

	rc := &domain.Recipe{UserID: cook, Name: "Flan"}
	if err := repo.Create(ctx, rc); err != nil {
		t.Fatalf("Create: %v", err)
	}

	fav, err := repo.ToggleFavorite(ctx, rc.ID, fan)
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if !fav {
		t.Fatal("expected favorited=true")
	}

	favorites, err := repo.ListFavorites(ctx, fan)
	if err != nil {
		t.Fatalf("ListFavorites: %v", err)
	}
	if len(favorites) != 1 || favorites[0].ID != rc.ID {
		t.Fatalf("expected [flan], got %+v", favorites)
	}
	if favorites[0].FavoriteCount != 1 {
		t.Fatalf("expected favorite count 1, got %d", favorites[0].FavoriteCount)
	}

	fav, err = repo.ToggleFavorite(ctx, rc.ID, fan)
	if err != nil {
		t.Fatalf("ToggleFavorite (off): %v", err)
	}
	if fav {
		t.Fatal("expected favorited=false")
	}

	if _, err := repo.ToggleFavorite(ctx, 999, fan); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
