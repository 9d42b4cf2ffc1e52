package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/videotube-app/videotube/internal/auth"
	"github.com/videotube-app/videotube/internal/store"
	"github.com/videotube-app/videotube/internal/util"
)

type createCommentReq struct {
	Value    string  `json:"value" validate:"required,max=5000"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

// ListComments lists the top-level comments of a video, or the replies to
// the comment named by the parent_id query parameter.
func (h *handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	videoID, ok := pathID(w, r, "videoID")
	if !ok {
		return
	}
	f := store.CommentFilter{VideoID: videoID, ViewerID: auth.ViewerID(r.Context())}
	if s := r.URL.Query().Get("parent_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid parent_id")
			return
		}
		parent := id.String()
		f.ParentID = &parent
	}
	req, ok := h.pageRequest(w, r, commentsCursor)
	if !ok {
		return
	}

	res, err := h.Comments.ListComments(r.Context(), f, req)
	if err != nil {
		h.fail(w, r, err, "video")
		return
	}
	resp := newPageResponse(res.Page, commentsCursor)
	resp.TotalCount = &res.TotalCount
	util.WriteJSONWithETag(w, r, resp)
}

func (h *handlers) PostComment(w http.ResponseWriter, r *http.Request) {
	videoID, ok := pathID(w, r, "videoID")
	if !ok {
		return
	}
	var body createCommentReq
	if !h.decode(w, r, &body) {
		return
	}

	c := &store.Comment{UserID: principal(r), VideoID: videoID, Value: body.Value}
	if body.ParentID != nil {
		parent := uuid.MustParse(*body.ParentID).String()
		c.ParentID = &parent
	}
	if err := h.Comments.CreateComment(r.Context(), c); err != nil {
		h.fail(w, r, err, "video or parent comment")
		return
	}
	util.WriteJSON(w, http.StatusCreated, c)
}

func (h *handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "commentID")
	if !ok {
		return
	}
	c, err := h.Comments.DeleteComment(r.Context(), principal(r), id)
	if err != nil {
		h.fail(w, r, err, "comment")
		return
	}
	util.WriteJSON(w, http.StatusOK, c)
}
