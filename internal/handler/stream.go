package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/recipe-community/internal/domain"
	"github.com/msomdec/recipe-community/internal/service"
	"github.com/msomdec/recipe-community/internal/view"
)

// EventSource hands out feed event subscriptions.
type EventSource interface {
	Subscribe(buffer int) (<-chan domain.Event, func())
}

// StreamHandler pushes live feed updates to browsers over datastar SSE.
type StreamHandler struct {
	feed   *service.FeedService
	events EventSource
	urls   photoURLs
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(feed *service.FeedService, events EventSource, photos *service.PhotoService) *StreamHandler {
	return &StreamHandler{feed: feed, events: events, urls: photos.URL}
}

// HandleStream renders the requested feed page once, then re-renders it every
// time a feed event arrives until the client disconnects.
// GET /api/feed/stream?sort=&filter=&q=&limit=&offset=
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	opts, err := feedOptions(r)
	if err != nil {
		writeServiceError(w, err, "parse feed options")
		return
	}
	// Reject bad filters before switching to SSE.
	if _, err := h.feed.List(r.Context(), opts); err != nil {
		writeServiceError(w, err, "list feed")
		return
	}

	updates, cancel := h.events.Subscribe(0)
	defer cancel()

	sse := datastar.NewSSE(w, r)
	if err := h.patchFeed(r.Context(), sse, opts); err != nil {
		slog.Error("stream feed", "error", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-updates:
			if !ok {
				return
			}
			slog.Debug("feed event", "type", event.Type, "post_id", event.PostID)
			if err := h.patchFeed(r.Context(), sse, opts); err != nil {
				if r.Context().Err() == nil {
					slog.Error("stream feed", "error", err)
				}
				return
			}
		}
	}
}

func (h *StreamHandler) patchFeed(ctx context.Context, sse *datastar.ServerSentEventGenerator, opts service.FeedOptions) error {
	page, err := h.feed.List(ctx, opts)
	if err != nil {
		return err
	}
	if err := sse.PatchElementTempl(
		view.FeedList(page.Posts, view.PhotoURLFunc(h.urls), time.Now()),
		datastar.WithSelectorID(view.FeedListID),
		datastar.WithModeInner(),
	); err != nil {
		return err
	}
	return sse.MarshalAndPatchSignals(map[string]any{"postCount": page.Total})
}
