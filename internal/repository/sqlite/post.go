package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/recipe-community/internal/domain"
)

// postRepo implements domain.PostRepository using SQLite.
type postRepo struct {
	db *sql.DB
}

// postSelect reads a post with its author and engagement counters. The single
// placeholder is the viewer ID used for liked_by_viewer.
const postSelect = `SELECT p.id, p.user_id, p.content, p.photo_key, p.created_at, p.updated_at, p.edited_at,
	u.display_name, u.photo_key,
	(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id),
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
	EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = ?)
	FROM posts p JOIN users u ON u.id = p.user_id`

func scanPost(row rowScanner, p *domain.Post) error {
	var editedAt sql.NullTime
	if err := row.Scan(&p.ID, &p.UserID, &p.Content, &p.PhotoKey, &p.CreatedAt, &p.UpdatedAt, &editedAt,
		&p.AuthorName, &p.AuthorPhotoKey, &p.LikeCount, &p.CommentCount, &p.LikedByViewer); err != nil {
		return err
	}
	if editedAt.Valid {
		t := editedAt.Time
		p.EditedAt = &t
	}
	return nil
}

func (r *postRepo) Create(ctx context.Context, post *domain.Post) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (user_id, content, photo_key, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		post.UserID, post.Content, post.PhotoKey, now, now,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get post id: %w", err)
	}

	post.ID = id
	post.CreatedAt = now
	post.UpdatedAt = now
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id, viewerID int64) (*domain.Post, error) {
	p := &domain.Post{}
	row := r.db.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, viewerID, id)
	if err := scanPost(row, p); err != nil {
		return nil, notFoundOr(err, "get post")
	}
	return p, nil
}

func (r *postRepo) List(ctx context.Context, q domain.PostQuery) ([]domain.Post, error) {
	var (
		where []string
		args  = []any{q.ViewerID}
	)
	if q.AuthorID != 0 {
		where = append(where, "p.user_id = ?")
		args = append(args, q.AuthorID)
	}
	if q.FollowedBy != 0 {
		where = append(where, "p.user_id IN (SELECT followee_id FROM follows WHERE follower_id = ?)")
		args = append(args, q.FollowedBy)
	}
	if q.LikedBy != 0 {
		where = append(where, "EXISTS (SELECT 1 FROM post_likes lb WHERE lb.post_id = p.id AND lb.user_id = ?)")
		args = append(args, q.LikedBy)
	}
	if q.WithPhotoOnly {
		where = append(where, "p.photo_key <> ''")
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		where = append(where, "("+containsFold+"(p.content, ?) OR "+containsFold+"(u.display_name, ?))")
		args = append(args, s, s)
	}

	query := postSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC, p.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *postRepo) UpdateContent(ctx context.Context, id int64, content string) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET content = ?, updated_at = ?, edited_at = ? WHERE id = ?`,
		content, now, now, id,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return requireRow(result)
}

func (r *postRepo) SetPhotoKey(ctx context.Context, id int64, key string) (string, error) {
	return swapPhotoKey(ctx, r.db, "posts", id, key)
}

func (r *postRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return requireRow(result)
}

func (r *postRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts WHERE user_id = ?", userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// ToggleLike flips the (post, user) like row inside one transaction, so two
// users liking at the same time both land and a double toggle by one user
// always ends where it started.
func (r *postRepo) ToggleLike(ctx context.Context, postID, userID int64) (bool, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM posts WHERE id = ?", postID).Scan(&exists); err != nil {
		return false, 0, notFoundOr(err, "check post")
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM post_likes WHERE post_id = ? AND user_id = ?", postID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("delete like: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("rows affected: %w", err)
	}

	liked := removed == 0
	if liked {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO post_likes (post_id, user_id, created_at) VALUES (?, ?, ?)",
			postID, userID, time.Now().UTC(),
		); err != nil {
			return false, 0, fmt.Errorf("insert like: %w", err)
		}
	}

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM post_likes WHERE post_id = ?", postID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("count likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("commit: %w", err)
	}
	return liked, count, nil
}

const commentSelect = `SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, u.display_name, u.photo_key
	FROM comments c JOIN users u ON u.id = c.user_id`

func scanComment(row rowScanner, c *domain.Comment) error {
	return row.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.AuthorName, &c.AuthorPhotoKey)
}

func (r *postRepo) AddComment(ctx context.Context, comment *domain.Comment) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (post_id, user_id, content, created_at) VALUES (?, ?, ?, ?)`,
		comment.PostID, comment.UserID, comment.Content, now,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get comment id: %w", err)
	}
	comment.ID = id
	comment.CreatedAt = now
	return nil
}

func (r *postRepo) GetComment(ctx context.Context, id int64) (*domain.Comment, error) {
	c := &domain.Comment{}
	if err := scanComment(r.db.QueryRowContext(ctx, commentSelect+` WHERE c.id = ?`, id), c); err != nil {
		return nil, notFoundOr(err, "get comment")
	}
	return c, nil
}

func (r *postRepo) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, commentSelect+` WHERE c.post_id = ? ORDER BY c.created_at, c.id`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := scanComment(rows, &c); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *postRepo) DeleteComment(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return requireRow(result)
}
