package handler

import (
	"net/http"
	"strconv"

	"github.com/msomdec/recipe-community/internal/service"
)

// PostHandler serves the community feed and post mutations.
type PostHandler struct {
	posts *service.PostService
	feed  *service.FeedService
	urls  photoURLs
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *service.PostService, feed *service.FeedService, photos *service.PhotoService) *PostHandler {
	return &PostHandler{posts: posts, feed: feed, urls: photos.URL}
}

// feedOptions reads sort, filter, q, limit and offset from the query string.
func feedOptions(r *http.Request) (service.FeedOptions, error) {
	q := r.URL.Query()
	sort, err := service.ParseFeedSort(q.Get("sort"))
	if err != nil {
		return service.FeedOptions{}, err
	}
	filter, err := service.ParseFeedFilter(q.Get("filter"))
	if err != nil {
		return service.FeedOptions{}, err
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return service.FeedOptions{
		ViewerID: viewerID(r),
		Sort:     sort,
		Filter:   filter,
		Search:   q.Get("q"),
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// HandleList returns a page of the feed.
// GET /api/posts?sort=&filter=&q=&limit=&offset=
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts, err := feedOptions(r)
	if err != nil {
		writeServiceError(w, err, "parse feed options")
		return
	}

	page, err := h.feed.List(r.Context(), opts)
	if err != nil {
		writeServiceError(w, err, "list feed")
		return
	}
	writeJSON(w, http.StatusOK, toFeedPageDTO(page, h.urls))
}

// HandleCreate publishes a post. The body is either JSON {"content": "..."}
// or a multipart form with a content field and an optional photo file.
// POST /api/posts
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var (
		content string
		photo   *service.PhotoUpload
	)
	if isMultipart(r) {
		var err error
		if photo, err = readUpload(w, r, "photo"); err != nil {
			writeServiceError(w, err, "read post photo")
			return
		}
		content = r.FormValue("content")
	} else {
		var req struct {
			Content string `json:"content"`
		}
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		content = req.Content
	}

	post, err := h.posts.Create(r.Context(), user.ID, content, photo)
	if err != nil {
		writeServiceError(w, err, "create post")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"post": toPostDTO(post, h.urls)})
}

// HandleGet returns a post with its comments.
// GET /api/posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	post, err := h.posts.Get(r.Context(), viewerID(r), id)
	if err != nil {
		writeServiceError(w, err, "get post")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": toPostDTO(post, h.urls)})
}

// HandleUpdate edits the text of a post.
// PUT /api/posts/{id}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	post, err := h.posts.Update(r.Context(), UserFromContext(r.Context()).ID, id, req.Content)
	if err != nil {
		writeServiceError(w, err, "update post")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": toPostDTO(post, h.urls)})
}

// HandleDelete removes a post.
// DELETE /api/posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.posts.Delete(r.Context(), UserFromContext(r.Context()).ID, id); err != nil {
		writeServiceError(w, err, "delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAttachPhoto sets the photo of a post from a multipart "photo" file.
// POST /api/posts/{id}/photo
func (h *PostHandler) HandleAttachPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	upload, ok := requireUpload(w, r, "photo")
	if !ok {
		return
	}

	post, err := h.posts.AttachPhoto(r.Context(), UserFromContext(r.Context()).ID, id, *upload)
	if err != nil {
		writeServiceError(w, err, "attach post photo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": toPostDTO(post, h.urls)})
}

// HandleRemovePhoto detaches the photo of a post.
// DELETE /api/posts/{id}/photo
func (h *PostHandler) HandleRemovePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	post, err := h.posts.RemovePhoto(r.Context(), UserFromContext(r.Context()).ID, id)
	if err != nil {
		writeServiceError(w, err, "remove post photo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": toPostDTO(post, h.urls)})
}

// HandleToggleLike likes or unlikes a post.
// POST /api/posts/{id}/like
// Response: {"liked": true, "likeCount": 3}
func (h *PostHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	liked, count, err := h.posts.ToggleLike(r.Context(), UserFromContext(r.Context()).ID, id)
	if err != nil {
		writeServiceError(w, err, "toggle like")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"liked": liked, "likeCount": count})
}

// HandleAddComment adds a comment to a post.
// POST /api/posts/{id}/comments
func (h *PostHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	comment, err := h.posts.AddComment(r.Context(), UserFromContext(r.Context()).ID, id, req.Content)
	if err != nil {
		writeServiceError(w, err, "add comment")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"comment": toCommentDTO(comment, h.urls)})
}

// HandleDeleteComment removes a comment.
// DELETE /api/comments/{id}
func (h *PostHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.posts.DeleteComment(r.Context(), UserFromContext(r.Context()).ID, id); err != nil {
		writeServiceError(w, err, "delete comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
