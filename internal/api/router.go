package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/videotube-app/videotube/internal/auth"
	"github.com/videotube-app/videotube/internal/config"
	"github.com/videotube-app/videotube/internal/logx"
	"github.com/videotube-app/videotube/internal/store"
	"github.com/videotube-app/videotube/internal/upload"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers depend on.
type Deps struct {
	Users      store.UserRepo
	Categories store.CategoryRepo
	Videos     store.VideoRepo
	Comments   store.CommentRepo
	Playlists  store.PlaylistRepo
	Engagement store.EngagementRepo

	Uploads  upload.Provider
	Resolver auth.Resolver
	Webhooks auth.WebhookVerifier
	DB       Pinger
	Log      logrus.FieldLogger
}

// NewRouter creates the HTTP router with all v1 endpoints.
func NewRouter(d Deps, cfg config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger(d.Log))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	h := &handlers{Deps: d, maxBody: cfg.MaxBodyBytes, defaultLimit: cfg.DefaultLimit}

	r.Get("/v1/health", h.GetHealth)
	r.Post("/api/users/webhook", h.PostUserWebhook)

	r.Route("/v1", func(r chi.Router) {
		// Anonymous access allowed; the viewer, when known, widens visibility.
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(d.Resolver, d.Users, false))

			r.Get("/categories", h.ListCategories)
			r.Get("/search", h.SearchVideos)
			r.Get("/videos/{videoID}", h.GetVideo)
			r.Get("/videos/{videoID}/comments", h.ListComments)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(d.Resolver, d.Users, true))

			r.Post("/videos/{videoID}/comments", h.PostComment)
			r.Delete("/comments/{commentID}", h.DeleteComment)

			r.Put("/videos/{videoID}/reaction", h.PutReaction)
			r.Delete("/videos/{videoID}/reaction", h.DeleteReaction)
			r.Post("/videos/{videoID}/views", h.PostView)
			r.Get("/videos/{videoID}/playlists", h.ListPlaylistsForVideo)

			r.Post("/users/{userID}/subscription", h.PostSubscription)
			r.Delete("/users/{userID}/subscription", h.DeleteSubscription)

			r.Get("/playlists", h.ListPlaylists)
			r.Post("/playlists", h.PostPlaylist)
			r.Get("/playlists/liked", h.ListLikedVideos)
			r.Get("/playlists/history", h.ListHistory)
			r.Get("/playlists/{playlistID}", h.GetPlaylist)
			r.Delete("/playlists/{playlistID}", h.DeletePlaylist)
			r.Get("/playlists/{playlistID}/videos", h.ListPlaylistVideos)
			r.Post("/playlists/{playlistID}/videos/{videoID}", h.PostPlaylistVideo)
			r.Delete("/playlists/{playlistID}/videos/{videoID}", h.DeletePlaylistVideo)

			r.Get("/studio/videos", h.ListStudioVideos)
			r.Post("/studio/videos", h.PostStudioVideo)
			r.Get("/studio/videos/{videoID}", h.GetStudioVideo)
			r.Patch("/studio/videos/{videoID}", h.PatchStudioVideo)
			r.Delete("/studio/videos/{videoID}", h.DeleteStudioVideo)
		})
	})

	return r
}

type handlers struct {
	Deps
	maxBody      int64
	defaultLimit int
}
