package domain

import (
	"context"
	"time"
)

type EventType string

const (
	EventPostCreated    EventType = "post.created"
	EventPostUpdated    EventType = "post.updated"
	EventPostDeleted    EventType = "post.deleted"
	EventPostLiked      EventType = "post.liked"
	EventPostUnliked    EventType = "post.unliked"
	EventCommentAdded   EventType = "comment.added"
	EventCommentDeleted EventType = "comment.deleted"
	EventUserFollowed   EventType = "user.followed"
	EventUserUnfollowed EventType = "user.unfollowed"
)

// Event describes a mutation of the feed or the follow graph.
type Event struct {
	Type   EventType `json:"type"`
	PostID int64     `json:"postId,omitempty"`
	UserID int64     `json:"userId"`
	At     time.Time `json:"at"`
}

// EventPublisher delivers events to interested parties. Publishing never
// fails the mutation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}
