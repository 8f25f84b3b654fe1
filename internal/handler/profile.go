package handler

import (
	"net/http"

	"github.com/msomdec/recipe-community/internal/service"
)

// ProfileHandler serves user profiles.
type ProfileHandler struct {
	profiles *service.ProfileService
	urls     photoURLs
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService, photos *service.PhotoService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, urls: photos.URL}
}

// HandleGet returns a user's profile with counts.
// GET /api/users/{id}
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	profile, err := h.profiles.GetProfile(r.Context(), viewerID(r), id)
	if err != nil {
		writeServiceError(w, err, "get profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": toProfileDTO(profile, h.urls)})
}

// HandleRecipes lists the recipes a user published.
// GET /api/users/{id}/recipes
func (h *ProfileHandler) HandleRecipes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	recipes, err := h.profiles.ListRecipes(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "list recipes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipes": toRecipeDTOs(recipes, h.urls)})
}

// HandleFavorites lists the recipes a user favorited.
// GET /api/users/{id}/favorites
func (h *ProfileHandler) HandleFavorites(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	recipes, err := h.profiles.ListFavorites(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "list favorites")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipes": toRecipeDTOs(recipes, h.urls)})
}

// HandleUpdateMe edits the signed-in user's display name and bio.
// PUT /api/me
func (h *ProfileHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"displayName"`
		Bio         string `json:"bio"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.profiles.UpdateProfile(r.Context(), UserFromContext(r.Context()).ID, req.DisplayName, req.Bio)
	if err != nil {
		writeServiceError(w, err, "update profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserDTO(user, h.urls)})
}

// HandleUploadPhoto replaces the signed-in user's profile photo with the
// multipart "photo" file.
// POST /api/me/photo
func (h *ProfileHandler) HandleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	upload, ok := requireUpload(w, r, "photo")
	if !ok {
		return
	}
	user, err := h.profiles.UploadProfilePhoto(r.Context(), UserFromContext(r.Context()).ID, *upload)
	if err != nil {
		writeServiceError(w, err, "upload profile photo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserDTO(user, h.urls)})
}
