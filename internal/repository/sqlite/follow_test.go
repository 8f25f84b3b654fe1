package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/recipe-community/internal/domain"
)

func TestFollowRepository_FollowUnfollow(t *testing.T) {
	db := newTestDB(t)
	repo := db.Follows()
	ctx := context.Background()
	a := seedUser(t, db, "a@example.com", "A")
	b := seedUser(t, db, "b@example.com", "B")

	if err := repo.Follow(ctx, a, b); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	// Following twice is a no-op.
	if err := repo.Follow(ctx, a, b); err != nil {
		t.Fatalf("Follow (again): %v", err)
	}

	ok, err := repo.IsFollowing(ctx, a, b)
	if err != nil {
		t.Fatalf("IsFollowing: %v", err)
	}
	if !ok {
		t.Fatal("expected a to follow b")
	}

	stats, err := repo.Stats(ctx, b)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Followers != 1 || stats.Following != 0 {
		t.Fatalf("unexpected stats for b: %+v", stats)
	}

	followers, err := repo.ListFollowers(ctx, b)
	if err != nil {
		t.Fatalf("ListFollowers: %v", err)
	}
	if len(followers) != 1 || followers[0].ID != a {
		t.Fatalf("expected followers [a], got %+v", followers)
	}

	following, err := repo.ListFollowing(ctx, a)
	if err != nil {
		t.Fatalf("ListFollowing: %v", err)
	}
	if len(following) != 1 || following[0].ID != b {
		t.Fatalf("expected following [b], got %+v", following)
	}

	if err := repo.Unfollow(ctx, a, b); err != nil {
		t.Fatalf("Unfollow: %v", err)
	}
	ok, err = repo.IsFollowing(ctx, a, b)
	if err != nil {
		t.Fatalf("IsFollowing: %v", err)
	}
	if ok {
		t.Fatal("expected a to no longer follow b")
	}
}

func TestFollowRepository_Follow_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	a := seedUser(t, db, "lonely@example.com", "Lonely")

	err := db.Follows().Follow(context.Background(), a, 9999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFollowRepository_Suggestions(t *testing.T) {
	db := newTestDB(t)
	repo := db.Follows()
	ctx := context.Background()

	me := seedUser(t, db, "me@example.com", "Me")
	friend := seedUser(t, db, "friend@example.com", "Friend")
	chef := seedUser(t, db, "chef@example.com", "Chef")
	baker := seedUser(t, db, "baker@example.com", "Baker")
	stranger := seedUser(t, db, "stranger@example.com", "Stranger")

	mustFollow := func(a, b int64) {
		t.Helper()
		if err := repo.Follow(ctx, a, b); err != nil {
			t.Fatalf("Follow(%d, %d): %v", a, b, err)
		}
	}
	mustFollow(me, friend)
	mustFollow(friend, chef)    // chef: 1 mutual
	mustFollow(stranger, baker) // baker: 0 mutual, 1 follower

	got, err := repo.Suggestions(ctx, me, 10)
	if err != nil {
		t.Fatalf("Suggestions: %v", err)
	}

	var ids []int64
	for _, s := range got {
		if s.User.ID == me || s.User.ID == friend {
			t.Fatalf("suggestions must exclude self and followed users, got %d", s.User.ID)
		}
		ids = append(ids, s.User.ID)
	}
	want := []int64{chef, baker, stranger}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
	if got[0].MutualCount != 1 {
		t.Fatalf("expected chef to have 1 mutual, got %d", got[0].MutualCount)
	}

	limited, err := repo.Suggestions(ctx, me, 1)
	if err != nil {
		t.Fatalf("Suggestions (limit): %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(limited))
	}
}
