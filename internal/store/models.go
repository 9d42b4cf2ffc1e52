package store

import (
	"time"

	"github.com/videotube-app/videotube/internal/paging"
)

// Video visibility values.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Reaction types.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// MuxStatusWaiting marks a video whose upload has not been processed yet.
const MuxStatusWaiting = "waiting"

// User is a row in the users table. ExternalID is the identity provider's
// subject id.
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"-"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"image_url"`
	BannerURL  string    `json:"banner_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserSummary is the author block embedded in list items.
type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// Category groups videos for search filtering.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Video is a row in the videos table.
type Video struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	UserID        string    `json:"user_id"`
	CategoryID    *string   `json:"category_id"`
	Visibility    string    `json:"visibility"`
	MuxStatus     string    `json:"mux_status"`
	MuxUploadID   string    `json:"mux_upload_id,omitempty"`
	MuxAssetID    string    `json:"mux_asset_id,omitempty"`
	MuxPlaybackID string    `json:"mux_playback_id,omitempty"`
	MuxTrackID    string    `json:"mux_track_id,omitempty"`
	ThumbnailURL  string    `json:"thumbnail_url,omitempty"`
	PreviewURL    string    `json:"preview_url,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VideoPatch carries the studio-editable fields; nil fields are left alone.
type VideoPatch struct {
	Title       *string
	Description *string
	Visibility  *string
	CategoryID  *string
}

// VideoCard is a video as it appears in lists: its author and aggregate
// counts. Exactly one of LikedAt, ViewedAt or AddedAt is set when the list is
// ordered by the viewer's reaction, view or playlist membership.
type VideoCard struct {
	Video
	User         UserSummary `json:"user"`
	ViewCount    int64       `json:"view_count"`
	LikeCount    int64       `json:"like_count"`
	DislikeCount int64       `json:"dislike_count"`
	CommentCount int64       `json:"comment_count"`
	LikedAt      *time.Time  `json:"liked_at,omitempty"`
	ViewedAt     *time.Time  `json:"viewed_at,omitempty"`
	AddedAt      *time.Time  `json:"added_at,omitempty"`

	sortKey time.Time
}

// VideoDetail is a single video with the viewer's own state.
type VideoDetail struct {
	VideoCard
	SubscriberCount  int64   `json:"subscriber_count"`
	ViewerReaction   *string `json:"viewer_reaction"`
	ViewerSubscribed bool    `json:"viewer_subscribed"`
}

// SearchFilter narrows public video search.
type SearchFilter struct {
	Query      string
	CategoryID string
}

// Comment is a row in the comments table with its author.
type Comment struct {
	ID         string      `json:"id"`
	ParentID   *string     `json:"parent_id"`
	UserID     string      `json:"user_id"`
	VideoID    string      `json:"video_id"`
	Value      string      `json:"value"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	User       UserSummary `json:"user"`
	ReplyCount int64       `json:"reply_count"`

	sortKey time.Time
}

// CommentFilter selects the comments of one video. A nil ParentID selects
// top-level comments; otherwise the replies to that comment. ViewerID may be
// empty for anonymous readers.
type CommentFilter struct {
	VideoID  string
	ParentID *string
	ViewerID string
}

// CommentPage is a page of comments plus the number of comments matching the
// filter regardless of the cursor.
type CommentPage struct {
	Page       *paging.Page[*Comment]
	TotalCount int64
}

// Playlist is a row in the playlists table with aggregates.
type Playlist struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	UserID        string       `json:"user_id"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	User          *UserSummary `json:"user,omitempty"`
	VideoCount    int64        `json:"video_count"`
	ThumbnailURL  string       `json:"thumbnail_url,omitempty"`
	ContainsVideo *bool        `json:"contains_video,omitempty"`

	sortKey time.Time
}

// PlaylistVideo is a playlist membership row.
type PlaylistVideo struct {
	PlaylistID string    `json:"playlist_id"`
	VideoID    string    `json:"video_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
