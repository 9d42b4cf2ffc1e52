package api

import (
	"net/http"

	"github.com/videotube-app/videotube/internal/store"
	"github.com/videotube-app/videotube/internal/util"
)

type createPlaylistReq struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

func (h *handlers) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	req, ok := h.pageRequest(w, r, playlistsCursor)
	if !ok {
		return
	}
	page, err := h.Playlists.ListPlaylists(r.Context(), principal(r), req)
	if err != nil {
		h.fail(w, r, err, "playlist")
		return
	}
	util.WriteJSONWithETag(w, r, newPageResponse(page, playlistsCursor))
}

// ListPlaylistsForVideo lists the caller's playlists, each marked with
// whether it contains the video.
func (h *handlers) ListPlaylistsForVideo(w http.ResponseWriter, r *http.Request) {
	videoID, ok := pathID(w, r, "videoID")
	if !ok {
		return
	}
	req, ok := h.pageRequest(w, r, playlistsForVideoCursor)
	if !ok {
		return
	}
	page, err := h.Playlists.ListPlaylistsForVideo(r.Context(), principal(r), videoID, req)
	if err != nil {
		h.fail(w, r, err, "video")
		return
	}
	util.WriteJSONWithETag(w, r, newPageResponse(page, playlistsForVideoCursor))
}

func (h *handlers) PostPlaylist(w http.ResponseWriter, r *http.Request) {
	var body createPlaylistReq
	if !h.decode(w, r, &body) {
		return
	}
	p := &store.Playlist{UserID: principal(r), Name: body.Name, Description: body.Description}
	if err := h.Playlists.CreatePlaylist(r.Context(), p); err != nil {
		h.fail(w, r, err, "playlist")
		return
	}
	util.WriteJSON(w, http.StatusCreated, p)
}

func (h *handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playlistID")
	if !ok {
		return
	}
	p, err := h.Playlists.GetPlaylist(r.Context(), principal(r), id)
	if err != nil {
		h.fail(w, r, err, "playlist")
		return
	}
	util.WriteJSONWithETag(w, r, p)
}

func (h *handlers) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playlistID")
	if !ok {
		return
	}
	p, err := h.Playlists.DeletePlaylist(r.Context(), principal(r), id)
	if err != nil {
		h.fail(w, r, err, "playlist")
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}

func (h *handlers) ListLikedVideos(w http.ResponseWriter, r *http.Request) {
	req, ok := h.pageRequest(w, r, likedCursor)
	if !ok {
		return
	}
	page, err := h.Videos.ListLikedVideos(r.Context(), principal(r), req)
	if err != nil {
		h.fail(w, r, err, "video")
		return
	}
	util.WriteJSONWithETag(w, r, newPageResponse(page, likedCursor))
}

func (h *handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	req, ok := h.pageRequest(w, r, historyCursor)
	if !ok {
		return
	}
	page, err := h.Videos.ListHistory(r.Context(), principal(r), req)
	if err != nil {
		h.fail(w, r, err, "video")
		return
	}
	util.WriteJSONWithETag(w, r, newPageResponse(page, historyCursor))
}

func (h *handlers) ListPlaylistVideos(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "playlistID")
	if !ok {
		return
	}
	req, ok := h.pageRequest(w, r, playlistVideosCursor)
	if !ok {
		return
	}
	page, err := h.Playlists.ListPlaylistVideos(r.Context(), principal(r), id, req)
	if err != nil {
		h.fail(w, r, err, "playlist")
		return
	}
	util.WriteJSONWithETag(w, r, newPageResponse(page, playlistVideosCursor))
}

func (h *handlers) PostPlaylistVideo(w http.ResponseWriter, r *http.Request) {
	playlistID, ok := pathID(w, r, "playlistID")
	if !ok {
		return
	}
	videoID, ok := pathID(w, r, "videoID")
	if !ok {
		return
	}
	pv, err := h.Playlists.AddVideo(r.Context(), principal(r), playlistID, videoID)
	if err != nil {
		h.fail(w, r, err, "playlist video")
		return
	}
	util.WriteJSON(w, http.StatusCreated, pv)
}

func (h *handlers) DeletePlaylistVideo(w http.ResponseWriter, r *http.Request) {
	playlistID, ok := pathID(w, r, "playlistID")
	if !ok {
		return
	}
	videoID, ok := pathID(w, r, "videoID")
	if !ok {
		return
	}
	pv, err := h.Playlists.RemoveVideo(r.Context(), principal(r), playlistID, videoID)
	if err != nil {
		h.fail(w, r, err, "playlist video")
		return
	}
	util.WriteJSON(w, http.StatusOK, pv)
}
