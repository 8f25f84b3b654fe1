package handler

import (
	"net/http"
	"strconv"

	"github.com/msomdec/recipe-community/internal/service"
)

// SocialHandler serves the follow graph and follow suggestions.
type SocialHandler struct {
	social *service.SocialService
	urls   photoURLs
}

// NewSocialHandler creates a new SocialHandler.
func NewSocialHandler(social *service.SocialService, photos *service.PhotoService) *SocialHandler {
	return &SocialHandler{social: social, urls: photos.URL}
}

// HandleSuggestions lists users the viewer might want to follow.
// GET /api/suggestions?limit=
func (h *SocialHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	suggestions, err := h.social.Suggestions(r.Context(), UserFromContext(r.Context()).ID, limit)
	if err != nil {
		writeServiceError(w, err, "list suggestions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": toSuggestionDTOs(suggestions, h.urls)})
}

// HandleFollow follows a user.
// POST /api/users/{id}/follow
func (h *SocialHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.social.Follow(r.Context(), UserFromContext(r.Context()).ID, id); err != nil {
		writeServiceError(w, err, "follow user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"following": true})
}

// HandleUnfollow unfollows a user.
// DELETE /api/users/{id}/follow
func (h *SocialHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.social.Unfollow(r.Context(), UserFromContext(r.Context()).ID, id); err != nil {
		writeServiceError(w, err, "unfollow user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"following": false})
}

// HandleFollowers lists a user's followers.
// GET /api/users/{id}/followers
func (h *SocialHandler) HandleFollowers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	users, err := h.social.Followers(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "list followers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": toMemberDTOs(users, h.urls)})
}

// HandleFollowing lists the users a user follows.
// GET /api/users/{id}/following
func (h *SocialHandler) HandleFollowing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	users, err := h.social.Following(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "list following")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": toMemberDTOs(users, h.urls)})
}
