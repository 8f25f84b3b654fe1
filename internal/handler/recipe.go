package handler

import (
	"net/http"

	"github.com/msomdec/recipe-community/internal/service"
)

// RecipeHandler serves recipes and favorites.
type RecipeHandler struct {
	recipes *service.RecipeService
	urls    photoURLs
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(recipes *service.RecipeService, photos *service.PhotoService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, urls: photos.URL}
}

type recipeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreate publishes a recipe.
// POST /api/recipes
func (h *RecipeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	recipe, err := h.recipes.Create(r.Context(), UserFromContext(r.Context()).ID, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, err, "create recipe")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"recipe": toRecipeDTO(recipe, h.urls)})
}

// HandleGet returns a recipe.
// GET /api/recipes/{id}
func (h *RecipeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get recipe")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipe": toRecipeDTO(recipe, h.urls)})
}

// HandleUpdate edits a recipe.
// PUT /api/recipes/{id}
func (h *RecipeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req recipeRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	recipe, err := h.recipes.Update(r.Context(), UserFromContext(r.Context()).ID, id, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, err, "update recipe")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipe": toRecipeDTO(recipe, h.urls)})
}

// HandleDelete removes a recipe.
// DELETE /api/recipes/{id}
func (h *RecipeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.recipes.Delete(r.Context(), UserFromContext(r.Context()).ID, id); err != nil {
		writeServiceError(w, err, "delete recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAttachPhoto sets the recipe photo from a multipart "photo" file.
// POST /api/recipes/{id}/photo
func (h *RecipeHandler) HandleAttachPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	upload, ok := requireUpload(w, r, "photo")
	if !ok {
		return
	}
	recipe, err := h.recipes.AttachPhoto(r.Context(), UserFromContext(r.Context()).ID, id, *upload)
	if err != nil {
		writeServiceError(w, err, "attach recipe photo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipe": toRecipeDTO(recipe, h.urls)})
}

// HandleToggleFavorite adds or removes a recipe from the viewer's favorites.
// POST /api/recipes/{id}/favorite
func (h *RecipeHandler) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	favorited, err := h.recipes.ToggleFavorite(r.Context(), UserFromContext(r.Context()).ID, id)
	if err != nil {
		writeServiceError(w, err, "toggle favorite")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"favorited": favorited})
}
