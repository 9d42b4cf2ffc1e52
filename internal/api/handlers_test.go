package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videotube-app/videotube/internal/store"
)

func (s *testServer) do(method, path, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		req.Header.Set("X-Auth-Subject", user)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

type listBody struct {
	Items      []map[string]any `json:"items"`
	NextCursor *string          `json:"next_cursor"`
	TotalCount *int64           `json:"total_count"`
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) listBody {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var b listBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b
}

func card(id string, at time.Time) *store.VideoCard {
	return &store.VideoCard{Video: store.Video{ID: id, Title: "t", UserID: bobID, Visibility: store.VisibilityPublic, UpdatedAt: at}}
}

func TestSearch_PagesThroughTies(t *testing.T) {
	s := newTestServer()
	t3 := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := "a0000000-0000-0000-0000-000000000000"
	b := "b0000000-0000-0000-0000-000000000000"
	c := "c0000000-0000-0000-0000-000000000000"
	s.videos.cards = []*store.VideoCard{card(a, t3), card(b, t3), card(c, t1)}

	first := decodeList(t, s.do(http.MethodGet, "/v1/search?q=t&limit=2", "", ""))
	require.Len(t, first.Items, 2)
	assert.Equal(t, b, first.Items[0]["id"])
	assert.Equal(t, a, first.Items[1]["id"])
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, "t", s.videos.search.Query)

	second := decodeList(t, s.do(http.MethodGet, "/v1/search?q=t&limit=2&cursor="+*first.NextCursor, "", ""))
	require.Len(t, second.Items, 1)
	assert.Equal(t, c, second.Items[0]["id"])
	assert.Nil(t, second.NextCursor)
}

func TestSearch_DefaultLimitAndEmpty(t *testing.T) {
	s := newTestServer()
	rec := s.do(http.MethodGet, "/v1/search", "", "")
	assert.JSONEq(t, `{"items":[],"next_cursor":null}`, rec.Body.String())
}

func TestSearch_RejectsBadInput(t *testing.T) {
	s := newTestServer()
	for _, q := range []string{"limit=0", "limit=101", "limit=x", "cursor=@@@", "category_id=nope"} {
		rec := s.do(http.MethodGet, "/v1/search?"+q, "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Contains(t, rec.Body.String(), `"invalid_request"`, q)
	}
}

func TestCursorFromAnotherCollectionIsRejected(t *testing.T) {
	s := newTestServer()
	now := time.Now()
	s.videos.cards = []*store.VideoCard{
		card("a0000000-0000-0000-0000-000000000000", now),
		card("b0000000-0000-0000-0000-000000000000", now),
	}
	liked := decodeList(t, s.do(http.MethodGet, "/v1/playlists/liked?limit=1", "alice", ""))
	require.NotNil(t, liked.NextCursor)

	rec := s.do(http.MethodGet, "/v1/playlists/history?cursor="+*liked.NextCursor, "alice", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_StoreFailureIs500(t *testing.T) {
	s := newTestServer()
	s.videos.err = errBoom
	rec := s.do(http.MethodGet, "/v1/search", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"internal","message":"internal error"}}`, rec.Body.String())
}

func TestListETag(t *testing.T) {
	s := newTestServer()
	s.videos.cards = []*store.VideoCard{card(video1ID, time.Now())}

	rec := s.do(http.MethodGet, "/v1/search", "", "")
	tag := rec.Header().Get("ETag")
	require.NotEmpty(t, tag)

	req := httptest.NewRequest(http.MethodGet, "/v1/search", nil)
	req.Header.Set("If-None-Match", tag)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestListComments(t *testing.T) {
	s := newTestServer()
	now := time.Now()
	for i := 0; i < 3; i++ {
		s.comments.items = append(s.comments.items, &store.Comment{
			ID:        fmt.Sprintf("c000000%d-0000-0000-0000-000000000000", 3-i),
			VideoID:   video1ID,
			UpdatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}

	b := decodeList(t, s.do(http.MethodGet, "/v1/videos/"+video1ID+"/comments", "alice", ""))
	assert.Len(t, b.Items, 2)
	require.NotNil(t, b.TotalCount)
	assert.EqualValues(t, 3, *b.TotalCount)
	assert.Equal(t, aliceID, s.comments.last.ViewerID)
	assert.Nil(t, s.comments.last.ParentID)

	parent := "C0000001-0000-0000-0000-000000000000"
	decodeList(t, s.do(http.MethodGet, "/v1/videos/"+video1ID+"/comments?parent_id="+parent, "", ""))
	require.NotNil(t, s.comments.last.ParentID)
	assert.Equal(t, strings.ToLower(parent), *s.comments.last.ParentID)
	assert.Empty(t, s.comments.last.ViewerID)

	rec := s.do(http.MethodGet, "/v1/videos/"+bobID+"/comments", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/v1/videos/not-a-uuid/comments", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostComment(t *testing.T) {
	s := newTestServer()
	path := "/v1/videos/" + video1ID + "/comments"

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, path, "", `{"value":"hi"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, path, "mallory", `{"value":"hi"}`).Code)

	rec := s.do(http.MethodPost, path, "alice", `{"value":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "field 'value' is required")

	rec = s.do(http.MethodPost, path, "alice", `{"value":"hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"user_id":"`+aliceID+`"`)

	rec = s.do(http.MethodPost, "/v1/videos/"+bobID+"/comments", "alice", `{"value":"hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaylistMembership(t *testing.T) {
	s := newTestServer()
	path := "/v1/playlists/60000000-0000-0000-0000-000000000001/videos/" + video1ID

	assert.Equal(t, http.StatusCreated, s.do(http.MethodPost, path, "alice", "").Code)
	rec := s.do(http.MethodPost, path, "alice", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"conflict"`)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, path, "alice", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, "alice", "").Code)

	assert.Equal(t, http.StatusNotFound,
		s.do(http.MethodGet, "/v1/playlists/60000000-0000-0000-0000-000000000001/videos", "alice", "").Code)
}

func TestPostPlaylist(t *testing.T) {
	s := newTestServer()
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/v1/playlists", "alice", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/v1/playlists", "alice", `{"name":"x","extra":1}`).Code)

	rec := s.do(http.MethodPost, "/v1/playlists", "alice", `{"name":"Mix"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Mix"`)

	b := decodeList(t, s.do(http.MethodGet, "/v1/playlists", "alice", ""))
	assert.Empty(t, b.Items)
}

func TestReactions(t *testing.T) {
	s := newTestServer()
	path := "/v1/videos/" + video1ID + "/reaction"

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, path, "alice", `{"type":"meh"}`).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPut, path, "alice", `{"type":"like"}`).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPut, path, "alice", `{"type":"dislike"}`).Code)
	assert.Equal(t, "dislike", s.engagement.reactions[aliceID+video1ID])

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, path, "alice", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, "alice", "").Code)
}

func TestSubscriptions(t *testing.T) {
	s := newTestServer()
	path := "/v1/users/" + bobID + "/subscription"

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/v1/users/"+aliceID+"/subscription", "alice", "").Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPost, path, "alice", "").Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, path, "alice", "").Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, path, "alice", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, "alice", "").Code)
}

func TestGetVideoVisibility(t *testing.T) {
	s := newTestServer()
	private := card(video1ID, time.Now())
	private.Visibility = store.VisibilityPrivate
	s.videos.cards = []*store.VideoCard{private}

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/v1/videos/"+video1ID, "", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/v1/videos/"+video1ID, "alice", "").Code)
	rec := s.do(http.MethodGet, "/v1/videos/"+video1ID, "bob", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "X-Auth-Subject", rec.Header().Get("Vary"))
	assert.Equal(t, "private", rec.Header().Get("Cache-Control"))

	req := httptest.NewRequest(http.MethodGet, "/v1/videos/"+video1ID, nil)
	req.Header.Set("X-Auth-Subject", "bob")
	req.Header.Set("If-None-Match", rec.Header().Get("ETag"))
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Equal(t, "private", rec.Header().Get("Cache-Control"))
}

func TestStudio(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodPost, "/v1/studio/videos", "bob", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Untitled", s.videos.created.Title)
	assert.Equal(t, store.VisibilityPrivate, s.videos.created.Visibility)
	assert.Equal(t, store.MuxStatusWaiting, s.videos.created.MuxStatus)
	assert.Equal(t, "up-1", s.videos.created.MuxUploadID)
	assert.Contains(t, rec.Body.String(), `"upload_url":"https://upload.example/up-1"`)

	s.videos.cards = []*store.VideoCard{card(video1ID, time.Now())}
	path := "/v1/studio/videos/" + video1ID
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPatch, path, "alice", `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, path, "bob", `{"visibility":"secret"}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, path, "bob", `{"category_id":"nope"}`).Code)

	rec = s.do(http.MethodPatch, path, "bob", `{"title":"Renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Renamed"`)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, path, "bob", "").Code)

	b := decodeList(t, s.do(http.MethodGet, "/v1/studio/videos", "bob", ""))
	assert.Len(t, b.Items, 1)
}

func TestStudioUploadsDisabled(t *testing.T) {
	s := newTestServer(func(d *Deps) { d.Uploads = fakeUploads{disabled: true} })

	rec := s.do(http.MethodPost, "/v1/studio/videos", "bob", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Nil(t, s.videos.created)
}

func TestCategoriesAndHealth(t *testing.T) {
	s := newTestServer()
	b := decodeList(t, s.do(http.MethodGet, "/v1/categories", "", ""))
	require.Len(t, b.Items, 1)
	assert.Equal(t, "Music", b.Items[0]["name"])

	rec := s.do(http.MethodGet, "/v1/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)
}

func TestUserWebhook(t *testing.T) {
	s := newTestServer()
	send := func(secret, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/users/webhook", strings.NewReader(body))
		if secret != "" {
			req.Header.Set("X-Webhook-Secret", secret)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		return rec.Code
	}

	created := `{"type":"user.created","data":{"id":"carol","first_name":"Carol","last_name":"Jones","image_url":"https://img/c"}}`
	assert.Equal(t, http.StatusUnauthorized, send("", created))
	assert.Equal(t, http.StatusUnauthorized, send("wrong", created))
	assert.Equal(t, http.StatusOK, send("hook", created))
	require.Contains(t, s.users.byExt, "carol")
	assert.Equal(t, "Carol Jones", s.users.byExt["carol"].Name)

	updated := `{"type":"user.updated","data":{"id":"carol","first_name":"Caz","last_name":""}}`
	assert.Equal(t, http.StatusOK, send("hook", updated))
	assert.Equal(t, "Caz", s.users.byExt["carol"].Name)

	assert.Equal(t, http.StatusOK, send("hook", `{"type":"user.deleted","data":{"id":"carol"}}`))
	assert.NotContains(t, s.users.byExt, "carol")
	assert.Equal(t, http.StatusOK, send("hook", `{"type":"user.deleted","data":{"id":"carol"}}`))

	assert.Equal(t, http.StatusBadRequest, send("hook", `{"type":"user.deleted","data":{}}`))
	assert.Equal(t, http.StatusOK, send("hook", `{"type":"session.created","data":{"id":"x"}}`))
}
