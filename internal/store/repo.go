package store

import (
	"context"

	"github.com/videotube-app/videotube/internal/paging"
)

// UserRepo stores users mirrored from the identity provider.
type UserRepo interface {
	// GetUserByExternalID resolves an identity-provider subject. Returns ErrNotFound if unknown.
	GetUserByExternalID(ctx context.Context, externalID string) (*User, error)

	GetUser(ctx context.Context, id string) (*User, error)

	// UpsertUser inserts or updates by ExternalID and fills ID and timestamps.
	UpsertUser(ctx context.Context, u *User) error

	DeleteUserByExternalID(ctx context.Context, externalID string) error
}

// CategoryRepo lists video categories.
type CategoryRepo interface {
	ListCategories(ctx context.Context) ([]*Category, error)
}

// VideoRepo stores videos and serves the video collections.
// All list methods order by (sort key DESC, id DESC).
type VideoRepo interface {
	CreateVideo(ctx context.Context, v *Video) error

	// GetVideo returns a public video, or a private one owned by viewerID.
	GetVideo(ctx context.Context, id, viewerID string) (*VideoDetail, error)

	GetOwnedVideo(ctx context.Context, ownerID, id string) (*Video, error)
	UpdateVideo(ctx context.Context, ownerID, id string, patch VideoPatch) (*Video, error)
	DeleteVideo(ctx context.Context, ownerID, id string) error

	SearchVideos(ctx context.Context, f SearchFilter, req paging.Request) (*paging.Page[*VideoCard], error)
	ListStudioVideos(ctx context.Context, ownerID string, req paging.Request) (*paging.Page[*VideoCard], error)

	// ListLikedVideos is ordered by the time of the user's like.
	ListLikedVideos(ctx context.Context, userID string, req paging.Request) (*paging.Page[*VideoCard], error)

	// ListHistory is ordered by the time of the user's last view.
	ListHistory(ctx context.Context, userID string, req paging.Request) (*paging.Page[*VideoCard], error)
}

// CommentRepo stores comments.
type CommentRepo interface {
	// CreateComment fills ID, timestamps and User. Returns ErrNotFound if the
	// video or parent comment is missing.
	CreateComment(ctx context.Context, c *Comment) error

	DeleteComment(ctx context.Context, userID, id string) (*Comment, error)
	ListComments(ctx context.Context, f CommentFilter, req paging.Request) (*CommentPage, error)
}

// PlaylistRepo stores playlists and their membership. Every method is scoped
// to the owner; other users' playlists are reported as ErrNotFound.
type PlaylistRepo interface {
	CreatePlaylist(ctx context.Context, p *Playlist) error
	GetPlaylist(ctx context.Context, ownerID, id string) (*Playlist, error)
	DeletePlaylist(ctx context.Context, ownerID, id string) (*Playlist, error)

	ListPlaylists(ctx context.Context, ownerID string, req paging.Request) (*paging.Page[*Playlist], error)

	// ListPlaylistsForVideo annotates each playlist with ContainsVideo.
	ListPlaylistsForVideo(ctx context.Context, ownerID, videoID string, req paging.Request) (*paging.Page[*Playlist], error)

	// ListPlaylistVideos is ordered by the time each video was added.
	ListPlaylistVideos(ctx context.Context, ownerID, playlistID string, req paging.Request) (*paging.Page[*VideoCard], error)

	// AddVideo returns ErrConflict if the video is already in the playlist.
	AddVideo(ctx context.Context, ownerID, playlistID, videoID string) (*PlaylistVideo, error)
	RemoveVideo(ctx context.Context, ownerID, playlistID, videoID string) (*PlaylistVideo, error)
}

// EngagementRepo records reactions, views and subscriptions.
type EngagementRepo interface {
	// SetReaction keeps one reaction per (user, video); the latest call wins.
	SetReaction(ctx context.Context, userID, videoID, kind string) error
	ClearReaction(ctx context.Context, userID, videoID string) error

	// RecordView keeps one view per (user, video) and bumps its time.
	RecordView(ctx context.Context, userID, videoID string) error

	Subscribe(ctx context.Context, viewerID, creatorID string) error
	Unsubscribe(ctx context.Context, viewerID, creatorID string) error
}
