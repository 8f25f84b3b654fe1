package handler

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/msomdec/recipe-community/internal/domain"
	"github.com/msomdec/recipe-community/internal/service"
)

// photoURLs maps storage keys to public URLs.
type photoURLs func(key string) string

// UserDTO is the JSON representation of the signed-in user.
type UserDTO struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	PhotoURL    string `json:"photoUrl"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toUserDTO(u *domain.User, urls photoURLs) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		PhotoURL:    urls(u.PhotoKey),
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
}

// MemberDTO is another user as seen by the community. It omits the email.
type MemberDTO struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio,omitempty"`
	PhotoURL    string `json:"photoUrl"`
	JoinedAgo   string `json:"joinedAgo"`
}

func toMemberDTO(u *domain.User, urls photoURLs) MemberDTO {
	return MemberDTO{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		PhotoURL:    urls(u.PhotoKey),
		JoinedAgo:   humanize.Time(u.CreatedAt),
	}
}

func toMemberDTOs(users []domain.User, urls photoURLs) []MemberDTO {
	dtos := make([]MemberDTO, len(users))
	for i := range users {
		dtos[i] = toMemberDTO(&users[i], urls)
	}
	return dtos
}

// SuggestionDTO is an entry of the "who to follow" panel.
type SuggestionDTO struct {
	MemberDTO
	MutualCount   int `json:"mutualCount"`
	FollowerCount int `json:"followerCount"`
}

func toSuggestionDTOs(suggestions []domain.Suggestion, urls photoURLs) []SuggestionDTO {
	dtos := make([]SuggestionDTO, len(suggestions))
	for i := range suggestions {
		dtos[i] = SuggestionDTO{
			MemberDTO:     toMemberDTO(&suggestions[i].User, urls),
			MutualCount:   suggestions[i].MutualCount,
			FollowerCount: suggestions[i].FollowerCount,
		}
	}
	return dtos
}

// CommentDTO is the JSON representation of a comment.
type CommentDTO struct {
	ID          int64  `json:"id"`
	PostID      int64  `json:"postId"`
	UserID      int64  `json:"userId"`
	AuthorName  string `json:"authorName"`
	AuthorPhoto string `json:"authorPhotoUrl"`
	Content     string `json:"content"`
	CreatedAt   string `json:"createdAt"`
	CreatedAgo  string `json:"createdAgo"`
}

func toCommentDTO(c *domain.Comment, urls photoURLs) CommentDTO {
	return CommentDTO{
		ID:          c.ID,
		PostID:      c.PostID,
		UserID:      c.UserID,
		AuthorName:  c.AuthorName,
		AuthorPhoto: urls(c.AuthorPhotoKey),
		Content:     c.Content,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		CreatedAgo:  humanize.Time(c.CreatedAt),
	}
}

// PostDTO is the JSON representation of a feed post.
type PostDTO struct {
	ID            int64        `json:"id"`
	UserID        int64        `json:"userId"`
	AuthorName    string       `json:"authorName"`
	AuthorPhoto   string       `json:"authorPhotoUrl"`
	Content       string       `json:"content"`
	PhotoURL      string       `json:"photoUrl,omitempty"`
	LikeCount     int          `json:"likeCount"`
	CommentCount  int          `json:"commentCount"`
	LikedByViewer bool         `json:"likedByViewer"`
	CreatedAt     string       `json:"createdAt"`
	CreatedAgo    string       `json:"createdAgo"`
	EditedAt      string       `json:"editedAt,omitempty"`
	Comments      []CommentDTO `json:"comments,omitempty"`
}

func toPostDTO(p *domain.Post, urls photoURLs) PostDTO {
	dto := PostDTO{
		ID:            p.ID,
		UserID:        p.UserID,
		AuthorName:    p.AuthorName,
		AuthorPhoto:   urls(p.AuthorPhotoKey),
		Content:       p.Content,
		LikeCount:     p.LikeCount,
		CommentCount:  p.CommentCount,
		LikedByViewer: p.LikedByViewer,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		CreatedAgo:    humanize.Time(p.CreatedAt),
	}
	if p.PhotoKey != "" {
		dto.PhotoURL = urls(p.PhotoKey)
	}
	if p.EditedAt != nil {
		dto.EditedAt = p.EditedAt.Format(time.RFC3339)
	}
	for i := range p.Comments {
		dto.Comments = append(dto.Comments, toCommentDTO(&p.Comments[i], urls))
	}
	return dto
}

// FeedPageDTO is one page of the feed.
type FeedPageDTO struct {
	Posts  []PostDTO `json:"posts"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

func toFeedPageDTO(page *service.FeedPage, urls photoURLs) FeedPageDTO {
	dto := FeedPageDTO{
		Posts:  make([]PostDTO, len(page.Posts)),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	for i := range page.Posts {
		dto.Posts[i] = toPostDTO(&page.Posts[i], urls)
	}
	return dto
}

// RecipeDTO is the JSON representation of a recipe.
type RecipeDTO struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"userId"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PhotoURL      string `json:"photoUrl,omitempty"`
	FavoriteCount int    `json:"favoriteCount"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

func toRecipeDTO(rc *domain.Recipe, urls photoURLs) RecipeDTO {
	dto := RecipeDTO{
		ID:            rc.ID,
		UserID:        rc.UserID,
		Name:          rc.Name,
		Description:   rc.Description,
		FavoriteCount: rc.FavoriteCount,
		CreatedAt:     rc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     rc.UpdatedAt.Format(time.RFC3339),
	}
	if rc.PhotoKey != "" {
		dto.PhotoURL = urls(rc.PhotoKey)
	}
	return dto
}

func toRecipeDTOs(recipes []domain.Recipe, urls photoURLs) []RecipeDTO {
	dtos := make([]RecipeDTO, len(recipes))
	for i := range recipes {
		dtos[i] = toRecipeDTO(&recipes[i], urls)
	}
	return dtos
}

// ProfileDTO is the JSON representation of a profile page.
type ProfileDTO struct {
	User           MemberDTO `json:"user"`
	FollowerCount  int       `json:"followerCount"`
	FollowingCount int       `json:"followingCount"`
	RecipeCount    int       `json:"recipeCount"`
	PostCount      int       `json:"postCount"`
	ViewerFollows  bool      `json:"viewerFollows"`
	IsSelf         bool      `json:"isSelf"`
}

func toProfileDTO(p *service.Profile, urls photoURLs) ProfileDTO {
	return ProfileDTO{
		User:           toMemberDTO(&p.User, urls),
		FollowerCount:  p.Stats.Followers,
		FollowingCount: p.Stats.Following,
		RecipeCount:    p.RecipeCount,
		PostCount:      p.PostCount,
		ViewerFollows:  p.ViewerFollows,
		IsSelf:         p.IsSelf,
	}
}
