package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/msomdec/recipe-community/internal/domain"
	"github.com/msomdec/recipe-community/internal/service"
)

const (
	maxJSONBody   = 1 << 20  // 1MB
	maxUploadBody = 11 << 20 // 10MB photo plus form overhead
	maxPhotoBytes = 10 << 20
)

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeError sends a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// readJSON decodes the request body into the given destination.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeServiceError maps a service error to its HTTP status. Anything that is
// not a known domain error is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, publicMessage(err, domain.ErrNotFound))
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, publicMessage(err, domain.ErrUnauthorized))
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, publicMessage(err, domain.ErrForbidden))
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, publicMessage(err, domain.ErrInvalidInput))
	case errors.Is(err, domain.ErrSelfFollow):
		writeError(w, http.StatusUnprocessableEntity, domain.ErrSelfFollow.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "An account with that email already exists.")
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}

// publicMessage drops the internal operation prefixes from a wrapped error,
// keeping the sentinel text and any detail after it.
func publicMessage(err, sentinel error) string {
	s := err.Error()
	if i := strings.Index(s, sentinel.Error()); i >= 0 {
		return s[i:]
	}
	return sentinel.Error()
}

// pathID parses a numeric path value.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+name+".")
		return 0, false
	}
	return id, true
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// readUpload parses a multipart body and returns the named file, or nil when
// the field is absent.
func readUpload(w http.ResponseWriter, r *http.Request, field string) (*service.PhotoUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: photo exceeds 10MB limit", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: malformed multipart body", domain.ErrInvalidInput)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &service.PhotoUpload{Filename: header.Filename, Data: data}, nil
}

// requireUpload is readUpload for endpoints where the file is mandatory.
func requireUpload(w http.ResponseWriter, r *http.Request, field string) (*service.PhotoUpload, bool) {
	upload, err := readUpload(w, r, field)
	if err != nil {
		writeServiceError(w, err, "read upload")
		return nil, false
	}
	if upload == nil {
		writeError(w, http.StatusUnprocessableEntity, "No "+field+" file provided.")
		return nil, false
	}
	return upload, true
}
