package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/msomdec/recipe-community/internal/domain"
)

type followRepo struct {
	db *sql.DB
}

func (r *followRepo) Follow(ctx context.Context, followerID, followeeID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		followerID, followeeID, time.Now().UTC(),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert follow: %w", err)
	}
	return nil
}

func (r *followRepo) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM follows WHERE follower_id = ? AND followee_id = ?", followerID, followeeID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

func (r *followRepo) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var following bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = ? AND followee_id = ?)",
		followerID, followeeID,
	).Scan(&following)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return following, nil
}

func (r *followRepo) ListFollowers(ctx context.Context, userID int64) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+prefixed("u", userColumns)+` FROM follows f JOIN users u ON u.id = f.follower_id
		 WHERE f.followee_id = ? ORDER BY f.created_at DESC, u.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *followRepo) ListFollowing(ctx context.Context, userID int64) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+prefixed("u", userColumns)+` FROM follows f JOIN users u ON u.id = f.followee_id
		 WHERE f.follower_id = ? ORDER BY f.created_at DESC, u.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *followRepo) Stats(ctx context.Context, userID int64) (domain.FollowStats, error) {
	var s domain.FollowStats
	err := r.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM follows WHERE followee_id = ?),
		        (SELECT COUNT(*) FROM follows WHERE follower_id = ?)`,
		userID, userID,
	).Scan(&s.Followers, &s.Following)
	if err != nil {
		return s, fmt.Errorf("follow stats: %w", err)
	}
	return s, nil
}

// Suggestions ranks users the viewer does not follow by how many of the
// viewer's followees follow them, then by popularity, then by recency.
func (r *followRepo) Suggestions(ctx context.Context, userID int64, limit int) ([]domain.Suggestion, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+prefixed("u", userColumns)+`,
		   (SELECT COUNT(*) FROM follows m
		     WHERE m.followee_id = u.id
		       AND m.follower_id IN (SELECT followee_id FROM follows WHERE follower_id = ?)) AS mutual,
		   (SELECT COUNT(*) FROM follows f WHERE f.followee_id = u.id) AS followers
		 FROM users u
		 WHERE u.id <> ?
		   AND u.id NOT IN (SELECT followee_id FROM follows WHERE follower_id = ?)
		 ORDER BY mutual DESC, followers DESC, u.created_at DESC, u.id DESC
		 LIMIT ?`,
		userID, userID, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer rows.Close()

	var out []domain.Suggestion
	for rows.Next() {
		var s domain.Suggestion
		u := &s.User
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Bio, &u.PasswordHash, &u.PhotoKey,
			&u.CreatedAt, &u.UpdatedAt, &s.MutualCount, &s.FollowerCount); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
