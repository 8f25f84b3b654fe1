package domain

import (
	"context"
	"time"
)

// Post is a single entry in the community feed.
type Post struct {
	ID        int64
	UserID    int64
	Content   string
	PhotoKey  string
	CreatedAt time.Time
	UpdatedAt time.Time
	EditedAt  *time.Time

	// Derived on read.
	AuthorName     string
	AuthorPhotoKey string
	LikeCount      int
	CommentCount   int
	LikedByViewer  bool
	Comments       []Comment
}

// Engagement is the number of likes plus comments on the post.
func (p *Post) Engagement() int {
	return p.LikeCount + p.CommentCount
}

// Comment is a reply on a post.
type Comment struct {
	ID        int64
	PostID    int64
	UserID    int64
	Content   string
	CreatedAt time.Time

	AuthorName     string
	AuthorPhotoKey string
}

// PostQuery selects posts for a feed read. Zero values mean "no constraint".
type PostQuery struct {
	ViewerID      int64
	AuthorID      int64
	FollowedBy    int64 // only posts whose author is followed by this user
	LikedBy       int64 // only posts liked by this user
	WithPhotoOnly bool
	Search        string
}

// PostRepository handles post, comment and like persistence.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id, viewerID int64) (*Post, error)
	List(ctx context.Context, q PostQuery) ([]Post, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	// SetPhotoKey replaces the post photo key and returns the previous one.
	SetPhotoKey(ctx context.Context, id int64, key string) (string, error)
	Delete(ctx context.Context, id int64) error
	CountByUser(ctx context.Context, userID int64) (int, error)

	// ToggleLike adds the like if absent or removes it if present, atomically.
	ToggleLike(ctx context.Context, postID, userID int64) (liked bool, count int, err error)

	AddComment(ctx context.Context, comment *Comment) error
	GetComment(ctx context.Context, id int64) (*Comment, error)
	ListComments(ctx context.Context, postID int64) ([]Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}
