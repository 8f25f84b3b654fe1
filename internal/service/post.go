package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/msomdec/recipe-community/internal/domain"
)

const (
	maxPostLen    = 2000
	maxCommentLen = 500
)

// PostService handles feed posts, their photos, likes and comments.
type PostService struct {
	posts  domain.PostRepository
	photos *PhotoService
	events domain.EventPublisher
}

// NewPostService creates a new PostService. events may be nil.
func NewPostService(posts domain.PostRepository, photos *PhotoService, events domain.EventPublisher) *PostService {
	return &PostService{posts: posts, photos: photos, events: events}
}

// Create publishes a new post. Text may be empty only when a photo is attached.
func (s *PostService) Create(ctx context.Context, userID int64, content string, photo *PhotoUpload) (*domain.Post, error) {
	content = strings.TrimSpace(content)
	if err := validatePostContent(content, photo != nil); err != nil {
		return nil, err
	}

	post := &domain.Post{UserID: userID, Content: content}
	if photo != nil {
		stored, err := s.photos.Upload(ctx, userID, *photo)
		if err != nil {
			return nil, fmt.Errorf("upload photo: %w", err)
		}
		post.PhotoKey = stored.Key
	}

	if err := s.posts.Create(ctx, post); err != nil {
		s.photos.replaced(ctx, post.PhotoKey)
		return nil, fmt.Errorf("create post: %w", err)
	}

	publish(ctx, s.events, domain.EventPostCreated, post.ID, userID)
	return s.posts.GetByID(ctx, post.ID, userID)
}

// Get returns a post with its comments, as seen by viewerID.
func (s *PostService) Get(ctx context.Context, viewerID, postID int64) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	comments, err := s.posts.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	post.Comments = comments
	return post, nil
}

// Update replaces the text of a post. Only the author may edit.
func (s *PostService) Update(ctx context.Context, userID, postID int64, content string) (*domain.Post, error) {
	post, err := s.authored(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if err := validatePostContent(content, post.PhotoKey != ""); err != nil {
		return nil, err
	}

	if err := s.posts.UpdateContent(ctx, postID, content); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	publish(ctx, s.events, domain.EventPostUpdated, postID, userID)
	return s.posts.GetByID(ctx, postID, userID)
}

// Delete removes a post along with its comments, likes and photo.
func (s *PostService) Delete(ctx context.Context, userID, postID int64) error {
	post, err := s.authored(ctx, userID, postID)
	if err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.photos.replaced(ctx, post.PhotoKey)

	publish(ctx, s.events, domain.EventPostDeleted, postID, userID)
	return nil
}

// AttachPhoto stores a photo and makes it the post's photo, replacing any
// previous one.
func (s *PostService) AttachPhoto(ctx context.Context, userID, postID int64, upload PhotoUpload) (*domain.Post, error) {
	if _, err := s.authored(ctx, userID, postID); err != nil {
		return nil, err
	}

	photo, err := s.photos.Upload(ctx, userID, upload)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	old, err := s.posts.SetPhotoKey(ctx, postID, photo.Key)
	if err != nil {
		s.photos.replaced(ctx, photo.Key)
		return nil, fmt.Errorf("set post photo: %w", err)
	}
	s.photos.replaced(ctx, old)

	publish(ctx, s.events, domain.EventPostUpdated, postID, userID)
	return s.posts.GetByID(ctx, postID, userID)
}

// RemovePhoto detaches the post's photo. A post without text must keep its photo.
func (s *PostService) RemovePhoto(ctx context.Context, userID, postID int64) (*domain.Post, error) {
	post, err := s.authored(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if post.PhotoKey == "" {
		return post, nil
	}
	if post.Content == "" {
		return nil, fmt.Errorf("%w: a post without text needs its photo", domain.ErrInvalidInput)
	}

	old, err := s.posts.SetPhotoKey(ctx, postID, "")
	if err != nil {
		return nil, fmt.Errorf("clear post photo: %w", err)
	}
	s.photos.replaced(ctx, old)

	publish(ctx, s.events, domain.EventPostUpdated, postID, userID)
	return s.posts.GetByID(ctx, postID, userID)
}

// ToggleLike likes the post if the user has not liked it yet, otherwise
// removes the like. It returns the new state and like count.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID int64) (bool, int, error) {
	liked, count, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}

	typ := domain.EventPostUnliked
	if liked {
		typ = domain.EventPostLiked
	}
	publish(ctx, s.events, typ, postID, userID)
	return liked, count, nil
}

// AddComment appends a comment to a post.
func (s *PostService) AddComment(ctx context.Context, userID, postID int64, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return nil, fmt.Errorf("%w: comment must be %d characters or fewer", domain.ErrInvalidInput, maxCommentLen)
	}

	comment := &domain.Comment{PostID: postID, UserID: userID, Content: content}
	if err := s.posts.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	publish(ctx, s.events, domain.EventCommentAdded, postID, userID)
	return s.posts.GetComment(ctx, comment.ID)
}

// DeleteComment removes a comment. The comment author and the post author
// may both delete it.
func (s *PostService) DeleteComment(ctx context.Context, userID, commentID int64) error {
	comment, err := s.posts.GetComment(ctx, commentID)
	if err != nil {
		return fmt.Errorf("get comment: %w", err)
	}

	if comment.UserID != userID {
		post, err := s.posts.GetByID(ctx, comment.PostID, userID)
		if err != nil {
			return fmt.Errorf("get post: %w", err)
		}
		if post.UserID != userID {
			return domain.ErrForbidden
		}
	}

	if err := s.posts.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	publish(ctx, s.events, domain.EventCommentDeleted, comment.PostID, userID)
	return nil
}

func (s *PostService) authored(ctx context.Context, userID, postID int64) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return post, nil
}

func validatePostContent(content string, hasPhoto bool) error {
	if content == "" && !hasPhoto {
		return fmt.Errorf("%w: post cannot be empty", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxPostLen {
		return fmt.Errorf("%w: post must be %d characters or fewer", domain.ErrInvalidInput, maxPostLen)
	}
	return nil
}

func publish(ctx context.Context, events domain.EventPublisher, typ domain.EventType, postID, userID int64) {
	if events == nil {
		return
	}
	events.Publish(ctx, domain.Event{Type: typ, PostID: postID, UserID: userID, At: time.Now().UTC()})
}
