package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/msomdec/recipe-community/internal/domain"
)

const (
	DefaultSuggestionLimit = 5
	// maxSuggestions is how many candidates are computed and cached per
	// viewer; smaller limits are served from the same entry.
	maxSuggestions = 50
)

// SocialService manages the follow graph and "who to follow" suggestions.
type SocialService struct {
	follows domain.FollowRepository
	users   domain.UserRepository
	cache   domain.Cache
	ttl     time.Duration
	events  domain.EventPublisher
}

// NewSocialService creates a new SocialService. cache and events may be nil.
func NewSocialService(follows domain.FollowRepository, users domain.UserRepository, cache domain.Cache, ttl time.Duration, events domain.EventPublisher) *SocialService {
	return &SocialService{follows: follows, users: users, cache: cache, ttl: ttl, events: events}
}

// Follow makes followerID follow followeeID. Following twice is a no-op.
func (s *SocialService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return domain.ErrSelfFollow
	}
	if _, err := s.users.GetByID(ctx, followeeID); err != nil {
		return fmt.Errorf("get followee: %w", err)
	}
	if err := s.follows.Follow(ctx, followerID, followeeID); err != nil {
		return fmt.Errorf("follow: %w", err)
	}

	s.forgetSuggestions(ctx, followerID)
	publish(ctx, s.events, domain.EventUserFollowed, 0, followerID)
	return nil
}

// Unfollow removes the edge. Unfollowing someone not followed is a no-op.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return domain.ErrSelfFollow
	}
	if err := s.follows.Unfollow(ctx, followerID, followeeID); err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}

	s.forgetSuggestions(ctx, followerID)
	publish(ctx, s.events, domain.EventUserUnfollowed, 0, followerID)
	return nil
}

// IsFollowing reports whether followerID follows followeeID.
func (s *SocialService) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return s.follows.IsFollowing(ctx, followerID, followeeID)
}

// Followers lists the users following userID.
func (s *SocialService) Followers(ctx context.Context, userID int64) ([]domain.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.follows.ListFollowers(ctx, userID)
}

// Following lists the users userID follows.
func (s *SocialService) Following(ctx context.Context, userID int64) ([]domain.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.follows.ListFollowing(ctx, userID)
}

// Suggestions returns up to limit users the viewer might want to follow,
// best match first.
func (s *SocialService) Suggestions(ctx context.Context, userID int64, limit int) ([]domain.Suggestion, error) {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	limit = min(limit, maxSuggestions)

	all, ok := s.cachedSuggestions(ctx, userID)
	if !ok {
		var err error
		all, err = s.follows.Suggestions(ctx, userID, maxSuggestions)
		if err != nil {
			return nil, fmt.Errorf("suggestions: %w", err)
		}
		s.storeSuggestions(ctx, userID, all)
	}

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// cachedSuggestion is the cache representation of a suggestion. It leaves out
// the email and password hash of the candidate.
type cachedSuggestion struct {
	ID          int64     `json:"id"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio,omitempty"`
	PhotoKey    string    `json:"photoKey,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Mutual      int       `json:"mutual"`
	Followers   int       `json:"followers"`
}

func suggestionKey(userID int64) string {
	return "suggestions:" + strconv.FormatInt(userID, 10)
}

func (s *SocialService) cachedSuggestions(ctx context.Context, userID int64) ([]domain.Suggestion, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, suggestionKey(userID))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("read suggestion cache", "user_id", userID, "error", err)
		}
		return nil, false
	}

	var entries []cachedSuggestion
	if err := json.Unmarshal(raw, &entries); err != nil {
		slog.Warn("decode suggestion cache", "user_id", userID, "error", err)
		return nil, false
	}

	out := make([]domain.Suggestion, len(entries))
	for i, e := range entries {
		out[i] = domain.Suggestion{
			User: domain.User{
				ID:          e.ID,
				DisplayName: e.DisplayName,
				Bio:         e.Bio,
				PhotoKey:    e.PhotoKey,
				CreatedAt:   e.CreatedAt,
			},
			MutualCount:   e.Mutual,
			FollowerCount: e.Followers,
		}
	}
	return out, true
}

func (s *SocialService) storeSuggestions(ctx context.Context, userID int64, suggestions []domain.Suggestion) {
	if s.cache == nil {
		return
	}
	entries := make([]cachedSuggestion, len(suggestions))
	for i, sg := range suggestions {
		entries[i] = cachedSuggestion{
			ID:          sg.User.ID,
			DisplayName: sg.User.DisplayName,
			Bio:         sg.User.Bio,
			PhotoKey:    sg.User.PhotoKey,
			CreatedAt:   sg.User.CreatedAt,
			Mutual:      sg.MutualCount,
			Followers:   sg.FollowerCount,
		}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		slog.Warn("encode suggestion cache", "user_id", userID, "error", err)
		return
	}
	if err := s.cache.Set(ctx, suggestionKey(userID), raw, s.ttl); err != nil {
		slog.Warn("write suggestion cache", "user_id", userID, "error", err)
	}
}

func (s *SocialService) forgetSuggestions(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, suggestionKey(userID)); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Warn("invalidate suggestion cache", "user_id", userID, "error", err)
	}
}
