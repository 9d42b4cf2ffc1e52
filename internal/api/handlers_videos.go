package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/videotube-app/videotube/internal/auth"
	"github.com/videotube-app/videotube/internal/store"
	"github.com/videotube-app/videotube/internal/util"
)

const maxQueryLen = 200

type reactionReq struct {
	Type string `json:"type" validate:"required,oneof=like dislike"`
}

// SearchVideos matches public video titles case-insensitively, newest first.
func (h *handlers) SearchVideos(w http.ResponseWriter, r *http.Request) {
	f := store.SearchFilter{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if len(f.Query) > maxQueryLen {
		util.WriteError(w, http.StatusBadRequest, "invalid_request", "q is too long")
		return
	}
	if s := r.URL.Query().Get("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid category_id")
			return
		}
		f.CategoryID = id.String()
	}
	req, ok := h.pageRequest(w, r, searchCursor)
	if !ok {
		return
	}
	page, err := h.Videos.SearchVideos(r.Context(), f, req)
	if err != nil {
		h.fail(w, r, err, "video")
		return
	}
	util.WriteJSONWithETag(w, r, newPageResponse(page, searchCursor))
}

func (h *handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Categories.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, err, "category")
		return
	}
	if cats == nil {
		cats = []*store.Category{}
	}
	util.WriteJSONWithETag(w, r, map[string]any{"items": cats})
}

func (h *handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "videoID")
	if !ok {
		return
	}
	v, err := h.Videos.GetVideo(r.Context(), id, auth.ViewerID(r.Context()))
	if err != nil {
		h.fail(w, r, err, "video")
		return
	}
	util.WriteJSONWithETag(w, r, v)
}

func (h *handlers) PutReaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "videoID")
	if !ok {
		return
	}
	var body reactionReq
	if !h.decode(w, r, &body) {
		return
	}
	if err := h.Engagement.SetReaction(r.Context(), principal(r), id, body.Type); err != nil {
		h.fail(w, r, err, "video")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) DeleteReaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "videoID")
	if !ok {
		return
	}
	if err := h.Engagement.ClearReaction(r.Context(), principal(r), id); err != nil {
		h.fail(w, r, err, "reaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) PostView(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "videoID")
	if !ok {
		return
	}
	if err := h.Engagement.RecordView(r.Context(), principal(r), id); err != nil {
		h.fail(w, r, err, "video")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) PostSubscription(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	viewerID := principal(r)
	if creatorID == viewerID {
		util.WriteError(w, http.StatusBadRequest, "invalid_request", "cannot subscribe to yourself")
		return
	}
	if err := h.Engagement.Subscribe(r.Context(), viewerID, creatorID); err != nil {
		h.fail(w, r, err, "subscription")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if err := h.Engagement.Unsubscribe(r.Context(), principal(r), creatorID); err != nil {
		h.fail(w, r, err, "subscription")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
