package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/videotube-app/videotube/internal/auth"
	"github.com/videotube-app/videotube/internal/paging"
	"github.com/videotube-app/videotube/internal/store"
	"github.com/videotube-app/videotube/internal/upload"
	"github.com/videotube-app/videotube/internal/util"
)

// Cursor codecs, one per collection ordering. A cursor issued by one is
// rejected by the others.
var (
	commentsCursor          = paging.Codec{Key: "comments.updated_at"}
	playlistsCursor         = paging.Codec{Key: "playlists.updated_at"}
	playlistsForVideoCursor = paging.Codec{Key: "playlists_for_video.updated_at"}
	likedCursor             = paging.Codec{Key: "videos.liked_at"}
	historyCursor           = paging.Codec{Key: "videos.viewed_at"}
	playlistVideosCursor    = paging.Codec{Key: "playlist_videos.added_at"}
	searchCursor            = paging.Codec{Key: "videos.updated_at"}
	studioCursor            = paging.Codec{Key: "studio.updated_at"}
)

type pageResponse[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor"`
	TotalCount *int64  `json:"total_count,omitempty"`
}

func newPageResponse[T any](p *paging.Page[T], codec paging.Codec) pageResponse[T] {
	resp := pageResponse[T]{Items: p.Items}
	if resp.Items == nil {
		resp.Items = []T{}
	}
	if p.NextCursor != nil {
		tok := codec.Encode(p.NextCursor)
		resp.NextCursor = &tok
	}
	return resp
}

// pageRequest parses limit and cursor, answering 400 on failure.
func (h *handlers) pageRequest(w http.ResponseWriter, r *http.Request, codec paging.Codec) (paging.Request, bool) {
	req, err := util.ParsePageRequest(r, codec, h.defaultLimit)
	if err != nil {
		util.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return paging.Request{}, false
	}
	return req, true
}

// pathID reads a UUID path parameter in canonical lowercase form.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		util.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid "+name)
		return "", false
	}
	return id.String(), true
}

// decode reads and validates a JSON request body.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := util.DecodeJSON(w, r, h.maxBody, v); err != nil {
		util.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return false
	}
	if err := util.Validate(v); err != nil {
		util.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return false
	}
	return true
}

// principal returns the authenticated user id. Routes using it sit behind
// auth.Middleware with required set.
func principal(r *http.Request) string {
	return auth.ViewerID(r.Context())
}

// fail maps an error onto the response taxonomy. what names the entity in
// not-found and conflict messages.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, paging.ErrInvalidLimit), errors.Is(err, paging.ErrInvalidCursor):
		util.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, store.ErrNotFound):
		util.WriteError(w, http.StatusNotFound, "not_found", what+" not found")
	case errors.Is(err, store.ErrConflict):
		util.WriteError(w, http.StatusConflict, "conflict", what+" already exists")
	case errors.Is(err, upload.ErrDisabled):
		util.WriteError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	default:
		h.Log.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).
			Errorf("%s %s failed", r.Method, r.URL.Path)
		util.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
