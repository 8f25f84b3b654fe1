package handler

import (
	"net/http"
	"strconv"

	"github.com/msomdec/recipe-community/internal/service"
)

// PhotoHandler serves stored photo bytes.
type PhotoHandler struct {
	photos *service.PhotoService
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(photos *service.PhotoService) *PhotoHandler {
	return &PhotoHandler{photos: photos}
}

// HandleServe serves photo bytes with their sniffed Content-Type. Keys are
// never reused, so responses are cacheable forever.
// GET /photos/{key}
func (h *PhotoHandler) HandleServe(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	data, contentType, err := h.photos.Get(r.Context(), key)
	if err != nil {
		writeServiceError(w, err, "serve photo")
		return
	}

	etag := `"` + key + `"`
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
