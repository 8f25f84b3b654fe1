package sqlite_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msomdec/recipe-community/internal/domain"
	"github.com/msomdec/recipe-community/internal/repository/sqlite"
)

var _ domain.Database = (*sqlite.DB)(nil)

func TestNew_Pragmas(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file: %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	var mode string
	if err := db.SqlDB.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("expected journal_mode wal, got %q", mode)
	}

	var fk int
	if err := db.SqlDB.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrate_CreatesTables(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{
		"users", "posts", "comments", "post_likes", "follows",
		"recipes", "recipe_favorites", "photos", "file_blobs",
	} {
		var name string
		err := db.SqlDB.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestDeleteUser_Cascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com", "Alice")
	bob := seedUser(t, db, "bob@example.com", "Bob")

	alicePost := seedPost(t, db, alice, "Sourdough starter, day 5")
	bobPost := seedPost(t, db, bob, "Weeknight ramen")
	if _, _, err := db.Posts().ToggleLike(ctx, bobPost, alice); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if err := db.Posts().AddComment(ctx, &domain.Comment{PostID: bobPost, UserID: alice, Content: "Recipe please"}); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if err := db.Follows().Follow(ctx, alice, bob); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if err := db.Follows().Follow(ctx, bob, alice); err != nil {
		t.Fatalf("Follow: %v", err)
	}

	recipe := &domain.Recipe{UserID: bob, Name: "Ramen"}
	if err := db.Recipes().Create(ctx, recipe); err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if _, err := db.Recipes().ToggleFavorite(ctx, recipe.ID, alice); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if err := db.Photos().Create(ctx, &domain.Photo{Key: "photos/alice", OwnerID: alice, ContentType: "image/png", Size: 3}); err != nil {
		t.Fatalf("create photo: %v", err)
	}

	if _, err := db.SqlDB.ExecContext(ctx, "DELETE FROM users WHERE id = ?", alice); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	counts := []struct {
		name  string
		query string
		args  []any
		want  int
	}{
		{"posts", "SELECT COUNT(*) FROM posts WHERE user_id = ?", []any{alice}, 0},
		{"likes", "SELECT COUNT(*) FROM post_likes WHERE user_id = ?", []any{alice}, 0},
		{"comments", "SELECT COUNT(*) FROM comments WHERE user_id = ?", []any{alice}, 0},
		{"follows", "SELECT COUNT(*) FROM follows WHERE follower_id = ? OR followee_id = ?", []any{alice, alice}, 0},
		{"favorites", "SELECT COUNT(*) FROM recipe_favorites WHERE user_id = ?", []any{alice}, 0},
		{"photos", "SELECT COUNT(*) FROM photos WHERE owner_id = ?", []any{alice}, 0},
		{"other user's post", "SELECT COUNT(*) FROM posts WHERE id = ?", []any{bobPost}, 1},
		{"other user's recipe", "SELECT COUNT(*) FROM recipes WHERE id = ?", []any{recipe.ID}, 1},
	}
	for _, c := range counts {
		var n int
		if err := db.SqlDB.QueryRowContext(ctx, c.query, c.args...).Scan(&n); err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if n != c.want {
			t.Errorf("%s: expected %d rows, got %d", c.name, c.want, n)
		}
	}

	if _, err := db.Posts().GetByID(ctx, alicePost, 0); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted author's post, got %v", err)
	}
}
