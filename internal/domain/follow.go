package domain

import "context"

// FollowStats summarizes a user's position in the follow graph.
type FollowStats struct {
	Followers int
	Following int
}

// Suggestion is a candidate for the "who to follow" panel.
type Suggestion struct {
	User          User
	MutualCount   int // Followees of the viewer who already follow this user
	FollowerCount int
}

// FollowRepository persists the directed follow graph, one row per edge.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID int64) error
	Unfollow(ctx context.Context, followerID, followeeID int64) error
	IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error)
	ListFollowers(ctx context.Context, userID int64) ([]User, error)
	ListFollowing(ctx context.Context, userID int64) ([]User, error)
	Stats(ctx context.Context, userID int64) (FollowStats, error)
	Suggestions(ctx context.Context, userID int64, limit int) ([]Suggestion, error)
}
