package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/videotube-app/videotube/internal/store"
	"github.com/videotube-app/videotube/internal/util"
)

const untitledVideo = "Untitled"

type patchVideoReq struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Visibility  *string `json:"visibility" validate:"omitempty,oneof=public private"`
	CategoryID  *string `json:"category_id"`
}

type createVideoResp struct {
	Video     *store.Video `json:"video"`
	UploadURL string       `json:"upload_url"`
}

func (h *handlers) ListStudioVideos(w http.ResponseWriter, r *http.Request) {
	req, ok := h.pageRequest(w, r, studioCursor)
	if !ok {
		return
	}
	page, err := h.Videos.ListStudioVideos(r.Context(), principal(r), req)
	if err != nil {
		h.fail(w, r, err, "video")
		return
	}
	util.WriteJSONWithETag(w, r, newPageResponse(page, studioCursor))
}

// PostStudioVideo creates a private placeholder video and an upload slot for
// its file.
func (h *handlers) PostStudioVideo(w http.ResponseWriter, r *http.Request) {
	userID := principal(r)
	up, err := h.Uploads.CreateUpload(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err, "upload")
		return
	}
	v := &store.Video{
		Title:       untitledVideo,
		UserID:      userID,
		Visibility:  store.VisibilityPrivate,
		MuxStatus:   store.MuxStatusWaiting,
		MuxUploadID: up.ID,
	}
	if err := h.Videos.CreateVideo(r.Context(), v); err != nil {
		h.fail(w, r, err, "video")
		return
	}
	util.WriteJSON(w, http.StatusCreated, createVideoResp{Video: v, UploadURL: up.URL})
}

func (h *handlers) GetStudioVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "videoID")
	if !ok {
		return
	}
	v, err := h.Videos.GetOwnedVideo(r.Context(), principal(r), id)
	if err != nil {
		h.fail(w, r, err, "video")
		return
	}
	util.WriteJSONWithETag(w, r, v)
}

// PatchStudioVideo updates the fields present in the body. An empty
// category_id clears the category.
func (h *handlers) PatchStudioVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "videoID")
	if !ok {
		return
	}
	var body patchVideoReq
	if !h.decode(w, r, &body) {
		return
	}
	if body.CategoryID != nil && *body.CategoryID != "" {
		cat, err := uuid.Parse(*body.CategoryID)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "invalid_request", "field 'category_id' must be a UUID")
			return
		}
		s := cat.String()
		body.CategoryID = &s
	}

	v, err := h.Videos.UpdateVideo(r.Context(), principal(r), id, store.VideoPatch{
		Title:       body.Title,
		Description: body.Description,
		Visibility:  body.Visibility,
		CategoryID:  body.CategoryID,
	})
	if err != nil {
		h.fail(w, r, err, "video or category")
		return
	}
	util.WriteJSON(w, http.StatusOK, v)
}

func (h *handlers) DeleteStudioVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "videoID")
	if !ok {
		return
	}
	if err := h.Videos.DeleteVideo(r.Context(), principal(r), id); err != nil {
		h.fail(w, r, err, "video")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
