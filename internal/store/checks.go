package store

import (
	"context"
	"fmt"
)

// check is one pre-condition of a conditional write: an EXISTS query, the
// result it must have, and the error reported when it does not.
type check struct {
	query string
	args  []any
	want  bool
	err   error
}

// runChecks evaluates checks in order and stops at the first failure.
func runChecks(ctx context.Context, q querier, checks ...check) error {
	for _, c := range checks {
		var ok bool
		if err := q.QueryRow(ctx, c.query, c.args...).Scan(&ok); err != nil {
			return fmt.Errorf("check: %w", err)
		}
		if ok != c.want {
			return c.err
		}
	}
	return nil
}

func playlistOwned(ownerID, playlistID string) check {
	return check{
		query: `SELECT EXISTS (SELECT 1 FROM playlists WHERE id = $1 AND user_id = $2)`,
		args:  []any{playlistID, ownerID},
		want:  true,
		err:   ErrNotFound,
	}
}

// videoVisible passes for public videos and for the viewer's own videos.
func videoVisible(viewerID, videoID string) check {
	return check{
		query: `SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1 AND (visibility = 'public' OR user_id = $2))`,
		args:  []any{videoID, nullable(viewerID)},
		want:  true,
		err:   ErrNotFound,
	}
}

func playlistHasVideo(playlistID, videoID string, want bool, err error) check {
	return check{
		query: `SELECT EXISTS (SELECT 1 FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2)`,
		args:  []any{playlistID, videoID},
		want:  want,
		err:   err,
	}
}

func userExists(id string) check {
	return check{
		query: `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`,
		args:  []any{id},
		want:  true,
		err:   ErrNotFound,
	}
}

// topLevelComment passes when parentID is a top-level comment on videoID.
func topLevelComment(videoID, parentID string) check {
	return check{
		query: `SELECT EXISTS (SELECT 1 FROM comments WHERE id = $1 AND video_id = $2 AND parent_id IS NULL)`,
		args:  []any{parentID, videoID},
		want:  true,
		err:   ErrNotFound,
	}
}
