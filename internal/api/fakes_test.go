package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/videotube-app/videotube/internal/auth"
	"github.com/videotube-app/videotube/internal/config"
	"github.com/videotube-app/videotube/internal/paging"
	"github.com/videotube-app/videotube/internal/store"
	"github.com/videotube-app/videotube/internal/upload"
)

const (
	aliceID  = "00000000-0000-0000-0000-00000000000a"
	bobID    = "00000000-0000-0000-0000-00000000000b"
	video1ID = "10000000-0000-0000-0000-000000000001"
)

// memPage pages a slice already sorted by (key DESC, id DESC).
func memPage[T any](ctx context.Context, items []T, key func(T) paging.Cursor, req paging.Request) (*paging.Page[T], error) {
	return paging.Paginate(ctx, req, key, func(_ context.Context, after *paging.Cursor, n int) ([]T, error) {
		var out []T
		for _, it := range items {
			if after != nil && !after.Before(key(it)) {
				continue
			}
			out = append(out, it)
			if len(out) == n {
				break
			}
		}
		return out, nil
	})
}

type fakeUsers struct{ byExt map[string]*store.User }

func (f *fakeUsers) GetUserByExternalID(_ context.Context, ext string) (*store.User, error) {
	if u, ok := f.byExt[ext]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*store.User, error) {
	for _, u := range f.byExt {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) UpsertUser(_ context.Context, u *store.User) error {
	if old, ok := f.byExt[u.ExternalID]; ok {
		u.ID = old.ID
	} else {
		u.ID = "20000000-0000-0000-0000-000000000001"
	}
	f.byExt[u.ExternalID] = u
	return nil
}

func (f *fakeUsers) DeleteUserByExternalID(_ context.Context, ext string) error {
	if _, ok := f.byExt[ext]; !ok {
		return store.ErrNotFound
	}
	delete(f.byExt, ext)
	return nil
}

func (f *fakeUsers) ListCategories(context.Context) ([]*store.Category, error) {
	return []*store.Category{{ID: "30000000-0000-0000-0000-000000000001", Name: "Music"}}, nil
}

type fakeVideos struct {
	cards   []*store.VideoCard
	err     error
	created *store.Video
	search  store.SearchFilter
}

func cardKey(c *store.VideoCard) paging.Cursor { return paging.Cursor{ID: c.ID, SortKey: c.UpdatedAt} }

func (f *fakeVideos) sorted() []*store.VideoCard {
	out := append([]*store.VideoCard(nil), f.cards...)
	sort.Slice(out, func(i, j int) bool { return cardKey(out[i]).Before(cardKey(out[j])) })
	return out
}

func (f *fakeVideos) CreateVideo(_ context.Context, v *store.Video) error {
	v.ID = "40000000-0000-0000-0000-000000000001"
	f.created = v
	return nil
}

func (f *fakeVideos) GetVideo(_ context.Context, id, viewerID string) (*store.VideoDetail, error) {
	for _, c := range f.cards {
		if c.ID == id && (c.Visibility == store.VisibilityPublic || c.UserID == viewerID) {
			return &store.VideoDetail{VideoCard: *c}, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeVideos) GetOwnedVideo(_ context.Context, ownerID, id string) (*store.Video, error) {
	for _, c := range f.cards {
		if c.ID == id && c.UserID == ownerID {
			return &c.Video, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeVideos) UpdateVideo(ctx context.Context, ownerID, id string, p store.VideoPatch) (*store.Video, error) {
	v, err := f.GetOwnedVideo(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		v.Title = *p.Title
	}
	return v, nil
}

func (f *fakeVideos) DeleteVideo(ctx context.Context, ownerID, id string) error {
	_, err := f.GetOwnedVideo(ctx, ownerID, id)
	return err
}

func (f *fakeVideos) SearchVideos(ctx context.Context, sf store.SearchFilter, req paging.Request) (*paging.Page[*store.VideoCard], error) {
	f.search = sf
	if f.err != nil {
		return nil, f.err
	}
	return memPage(ctx, f.sorted(), cardKey, req)
}

func (f *fakeVideos) ListStudioVideos(ctx context.Context, _ string, req paging.Request) (*paging.Page[*store.VideoCard], error) {
	return memPage(ctx, f.sorted(), cardKey, req)
}

func (f *fakeVideos) ListLikedVideos(ctx context.Context, _ string, req paging.Request) (*paging.Page[*store.VideoCard], error) {
	return memPage(ctx, f.sorted(), cardKey, req)
}

func (f *fakeVideos) ListHistory(ctx context.Context, _ string, req paging.Request) (*paging.Page[*store.VideoCard], error) {
	return memPage(ctx, f.sorted(), cardKey, req)
}

type fakeComments struct {
	items []*store.Comment
	last  store.CommentFilter
}

func commentKey(c *store.Comment) paging.Cursor { return paging.Cursor{ID: c.ID, SortKey: c.UpdatedAt} }

func (f *fakeComments) CreateComment(_ context.Context, c *store.Comment) error {
	if c.VideoID != video1ID {
		return store.ErrNotFound
	}
	c.ID = "50000000-0000-0000-0000-000000000001"
	return nil
}

func (f *fakeComments) DeleteComment(_ context.Context, userID, id string) (*store.Comment, error) {
	for _, c := range f.items {
		if c.ID == id && c.UserID == userID {
			return c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeComments) ListComments(ctx context.Context, cf store.CommentFilter, req paging.Request) (*store.CommentPage, error) {
	f.last = cf
	if cf.VideoID != video1ID {
		return nil, store.ErrNotFound
	}
	page, err := memPage(ctx, f.items, commentKey, req)
	if err != nil {
		return nil, err
	}
	return &store.CommentPage{Page: page, TotalCount: int64(len(f.items))}, nil
}

type fakePlaylists struct {
	members map[string]bool
}

func (f *fakePlaylists) CreatePlaylist(_ context.Context, p *store.Playlist) error {
	p.ID = "60000000-0000-0000-0000-000000000001"
	return nil
}

func (f *fakePlaylists) GetPlaylist(context.Context, string, string) (*store.Playlist, error) {
	return nil, store.ErrNotFound
}

func (f *fakePlaylists) DeletePlaylist(context.Context, string, string) (*store.Playlist, error) {
	return nil, store.ErrNotFound
}

func (f *fakePlaylists) ListPlaylists(ctx context.Context, _ string, req paging.Request) (*paging.Page[*store.Playlist], error) {
	return memPage(ctx, []*store.Playlist{}, func(p *store.Playlist) paging.Cursor {
		return paging.Cursor{ID: p.ID, SortKey: p.UpdatedAt}
	}, req)
}

func (f *fakePlaylists) ListPlaylistsForVideo(ctx context.Context, ownerID, _ string, req paging.Request) (*paging.Page[*store.Playlist], error) {
	return f.ListPlaylists(ctx, ownerID, req)
}

func (f *fakePlaylists) ListPlaylistVideos(context.Context, string, string, paging.Request) (*paging.Page[*store.VideoCard], error) {
	return nil, store.ErrNotFound
}

func (f *fakePlaylists) AddVideo(_ context.Context, _, playlistID, videoID string) (*store.PlaylistVideo, error) {
	if f.members[videoID] {
		return nil, store.ErrConflict
	}
	f.members[videoID] = true
	return &store.PlaylistVideo{PlaylistID: playlistID, VideoID: videoID}, nil
}

func (f *fakePlaylists) RemoveVideo(_ context.Context, _, playlistID, videoID string) (*store.PlaylistVideo, error) {
	if !f.members[videoID] {
		return nil, store.ErrNotFound
	}
	delete(f.members, videoID)
	return &store.PlaylistVideo{PlaylistID: playlistID, VideoID: videoID}, nil
}

type fakeEngagement struct {
	reactions map[string]string
	subs      map[string]bool
}

func (f *fakeEngagement) SetReaction(_ context.Context, userID, videoID, kind string) error {
	f.reactions[userID+videoID] = kind
	return nil
}

func (f *fakeEngagement) ClearReaction(_ context.Context, userID, videoID string) error {
	if _, ok := f.reactions[userID+videoID]; !ok {
		return store.ErrNotFound
	}
	delete(f.reactions, userID+videoID)
	return nil
}

func (f *fakeEngagement) RecordView(context.Context, string, string) error { return nil }

func (f *fakeEngagement) Subscribe(_ context.Context, viewerID, creatorID string) error {
	if f.subs[viewerID+creatorID] {
		return store.ErrConflict
	}
	f.subs[viewerID+creatorID] = true
	return nil
}

func (f *fakeEngagement) Unsubscribe(_ context.Context, viewerID, creatorID string) error {
	if !f.subs[viewerID+creatorID] {
		return store.ErrNotFound
	}
	delete(f.subs, viewerID+creatorID)
	return nil
}

type fakeUploads struct{ disabled bool }

func (f fakeUploads) CreateUpload(context.Context, string) (*upload.Upload, error) {
	if f.disabled {
		return nil, upload.ErrDisabled
	}
	return &upload.Upload{ID: "up-1", URL: "https://upload.example/up-1"}, nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type testServer struct {
	http.Handler
	users      *fakeUsers
	videos     *fakeVideos
	comments   *fakeComments
	playlists  *fakePlaylists
	engagement *fakeEngagement
}

func newTestServer(opts ...func(*Deps)) *testServer {
	log := logrus.New()
	log.SetOutput(io.Discard)

	s := &testServer{
		users: &fakeUsers{byExt: map[string]*store.User{
			"alice": {ID: aliceID, ExternalID: "alice", Name: "Alice"},
			"bob":   {ID: bobID, ExternalID: "bob", Name: "Bob"},
		}},
		videos:     &fakeVideos{},
		comments:   &fakeComments{},
		playlists:  &fakePlaylists{members: map[string]bool{}},
		engagement: &fakeEngagement{reactions: map[string]string{}, subs: map[string]bool{}},
	}
	d := Deps{
		Users:      s.users,
		Categories: s.users,
		Videos:     s.videos,
		Comments:   s.comments,
		Playlists:  s.playlists,
		Engagement: s.engagement,
		Uploads:    fakeUploads{},
		Resolver:   auth.HeaderResolver{Header: "X-Auth-Subject"},
		Webhooks:   auth.SharedSecretVerifier{Secret: "hook"},
		DB:         pinger{},
		Log:        log,
	}
	for _, o := range opts {
		o(&d)
	}
	s.Handler = NewRouter(d, config.Config{
		MaxBodyBytes:   1 << 16,
		RequestTimeout: 5 * time.Second,
		DefaultLimit:   2,
	})
	return s
}

var errBoom = errors.New("boom")
