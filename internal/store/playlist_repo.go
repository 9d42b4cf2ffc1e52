package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube-app/videotube/internal/paging"
)

const playlistColumns = "p.id, p.name, p.description, p.user_id, p.created_at, p.updated_at"

var playlistKeyset = paging.Keyset{SortColumn: "p.updated_at", IDColumn: "p.id"}

// playlistAggregates: the thumbnail is that of the most recently added video.
var playlistAggregates = []aggregate{
	countOf("video_count", "playlist_videos pvc", "pvc.playlist_id = p.id"),
	{name: "thumbnail_url", expr: `COALESCE((SELECT tv.thumbnail_url FROM playlist_videos tpv
            JOIN videos tv ON tv.id = tpv.video_id
            WHERE tpv.playlist_id = p.id
            ORDER BY tpv.updated_at DESC, tpv.video_id DESC LIMIT 1), '')`},
}

func (p *Playlist) fields() []any {
	return []any{&p.ID, &p.Name, &p.Description, &p.UserID, &p.CreatedAt, &p.UpdatedAt}
}

func playlistKey(p *Playlist) paging.Cursor {
	return paging.Cursor{ID: p.ID, SortKey: p.sortKey}
}

const playlistVideoColumns = "playlist_id, video_id, created_at, updated_at"

func (pv *PlaylistVideo) fields() []any {
	return []any{&pv.PlaylistID, &pv.VideoID, &pv.CreatedAt, &pv.UpdatedAt}
}

// PostgresPlaylistRepo implements PlaylistRepo using PostgreSQL.
type PostgresPlaylistRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresPlaylistRepo creates a PostgresPlaylistRepo.
func NewPostgresPlaylistRepo(pool *pgxpool.Pool) *PostgresPlaylistRepo {
	return &PostgresPlaylistRepo{pool: pool}
}

func (r *PostgresPlaylistRepo) CreatePlaylist(ctx context.Context, p *Playlist) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	const q = `
INSERT INTO playlists (id, name, description, user_id)
VALUES ($1,$2,$3,$4)
RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, p.ID, p.Name, p.Description, p.UserID).Scan(&p.CreatedAt, &p.UpdatedAt)
	return wrapErr("insert playlist", err)
}

func (r *PostgresPlaylistRepo) GetPlaylist(ctx context.Context, ownerID, id string) (*Playlist, error) {
	q := fmt.Sprintf(`
SELECT %s,
       u.id, u.name, u.image_url,
       %s
FROM playlists p
JOIN users u ON u.id = p.user_id
WHERE p.id = $1 AND p.user_id = $2`, playlistColumns, aggregateColumns(playlistAggregates))

	p := &Playlist{User: &UserSummary{}}
	dest := append(p.fields(), &p.User.ID, &p.User.Name, &p.User.ImageURL, &p.VideoCount, &p.ThumbnailURL)
	if err := r.pool.QueryRow(ctx, q, id, ownerID).Scan(dest...); err != nil {
		return nil, wrapErr("get playlist", err)
	}
	return p, nil
}

func (r *PostgresPlaylistRepo) DeletePlaylist(ctx context.Context, ownerID, id string) (*Playlist, error) {
	q := `DELETE FROM playlists p WHERE p.id = $1 AND p.user_id = $2 RETURNING ` + playlistColumns
	p := &Playlist{}
	if err := r.pool.QueryRow(ctx, q, id, ownerID).Scan(p.fields()...); err != nil {
		return nil, wrapErr("delete playlist", err)
	}
	return p, nil
}

func (r *PostgresPlaylistRepo) ListPlaylists(ctx context.Context, ownerID string, req paging.Request) (*paging.Page[*Playlist], error) {
	q := newListQuery("playlists p\nJOIN users u ON u.id = p.user_id", playlistKeyset)
	q.columns = []string{playlistColumns, "u.id", "u.name", "u.image_url"}
	q.aggs = playlistAggregates
	q.filter("p.user_id = " + q.bind(ownerID))

	return r.listPlaylists(ctx, q, req, func(row pgx.CollectableRow) (*Playlist, error) {
		p := &Playlist{User: &UserSummary{}}
		dest := append(p.fields(), &p.User.ID, &p.User.Name, &p.User.ImageURL, &p.VideoCount, &p.ThumbnailURL, &p.sortKey)
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		return p, nil
	})
}

func (r *PostgresPlaylistRepo) ListPlaylistsForVideo(ctx context.Context, ownerID, videoID string, req paging.Request) (*paging.Page[*Playlist], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := runChecks(ctx, r.pool, videoVisible(ownerID, videoID)); err != nil {
		return nil, err
	}

	q := newListQuery("playlists p", playlistKeyset)
	q.columns = []string{playlistColumns}
	q.aggs = append(append([]aggregate(nil), playlistAggregates...),
		existsOf("contains_video", "playlist_videos cpv", "cpv.playlist_id = p.id AND cpv.video_id = "+q.bind(videoID)))
	q.filter("p.user_id = " + q.bind(ownerID))

	return r.listPlaylists(ctx, q, req, func(row pgx.CollectableRow) (*Playlist, error) {
		p := &Playlist{ContainsVideo: new(bool)}
		dest := append(p.fields(), &p.VideoCount, &p.ThumbnailURL, p.ContainsVideo, &p.sortKey)
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		return p, nil
	})
}

func (r *PostgresPlaylistRepo) listPlaylists(ctx context.Context, q *listQuery, req paging.Request, scan pgx.RowToFunc[*Playlist]) (*paging.Page[*Playlist], error) {
	return paging.Paginate(ctx, req, playlistKey, func(ctx context.Context, after *paging.Cursor, n int) ([]*Playlist, error) {
		sql, vals := q.build(after, n)
		rows, err := r.pool.Query(ctx, sql, vals...)
		if err != nil {
			return nil, fmt.Errorf("list playlists: %w", err)
		}
		items, err := pgx.CollectRows(rows, scan)
		if err != nil {
			return nil, fmt.Errorf("scan playlists: %w", err)
		}
		return items, nil
	})
}

// ListPlaylistVideos hides private videos of other users that were added
// before they were made private.
func (r *PostgresPlaylistRepo) ListPlaylistVideos(ctx context.Context, ownerID, playlistID string, req paging.Request) (*paging.Page[*VideoCard], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := runChecks(ctx, r.pool, playlistOwned(ownerID, playlistID)); err != nil {
		return nil, err
	}

	q := videoCardQuery(videoCardFrom+"\nJOIN playlist_videos pv ON pv.video_id = v.id",
		paging.Keyset{SortColumn: "pv.updated_at", IDColumn: "v.id"})
	q.filter("pv.playlist_id = " + q.bind(playlistID))
	q.filter("(v.visibility = 'public' OR v.user_id = " + q.bind(ownerID) + ")")
	return listVideoCards(ctx, r.pool, q, req, func(c *VideoCard) {
		t := c.sortKey
		c.AddedAt = &t
	})
}

func (r *PostgresPlaylistRepo) AddVideo(ctx context.Context, ownerID, playlistID, videoID string) (*PlaylistVideo, error) {
	pv := &PlaylistVideo{}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := runChecks(ctx, tx,
			playlistOwned(ownerID, playlistID),
			videoVisible(ownerID, videoID),
			playlistHasVideo(playlistID, videoID, false, ErrConflict),
		); err != nil {
			return err
		}

		q := `
INSERT INTO playlist_videos (playlist_id, video_id)
VALUES ($1,$2)
ON CONFLICT DO NOTHING
RETURNING ` + playlistVideoColumns
		if err := tx.QueryRow(ctx, q, playlistID, videoID).Scan(pv.fields()...); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrConflict
			}
			return wrapErr("insert playlist video", err)
		}
		return touchPlaylist(ctx, tx, playlistID)
	})
	if err != nil {
		return nil, err
	}
	return pv, nil
}

func (r *PostgresPlaylistRepo) RemoveVideo(ctx context.Context, ownerID, playlistID, videoID string) (*PlaylistVideo, error) {
	pv := &PlaylistVideo{}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := runChecks(ctx, tx,
			playlistOwned(ownerID, playlistID),
			playlistHasVideo(playlistID, videoID, true, ErrNotFound),
		); err != nil {
			return err
		}

		q := `DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2 RETURNING ` + playlistVideoColumns
		if err := tx.QueryRow(ctx, q, playlistID, videoID).Scan(pv.fields()...); err != nil {
			return wrapErr("delete playlist video", err)
		}
		return touchPlaylist(ctx, tx, playlistID)
	})
	if err != nil {
		return nil, err
	}
	return pv, nil
}

// touchPlaylist moves a playlist to the front of its owner's list.
func touchPlaylist(ctx context.Context, q querier, id string) error {
	if _, err := q.Exec(ctx, `UPDATE playlists SET updated_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("touch playlist: %w", err)
	}
	return nil
}
