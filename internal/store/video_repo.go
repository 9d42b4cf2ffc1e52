package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube-app/videotube/internal/paging"
)

const videoColumns = `v.id, v.title, v.description, v.user_id, v.category_id, v.visibility,
       v.mux_status, v.mux_upload_id, v.mux_asset_id, v.mux_playback_id, v.mux_track_id,
       v.thumbnail_url, v.preview_url, v.duration_ms, v.created_at, v.updated_at`

func (v *Video) fields() []any {
	return []any{
		&v.ID, &v.Title, &v.Description, &v.UserID, &v.CategoryID, &v.Visibility,
		&v.MuxStatus, &v.MuxUploadID, &v.MuxAssetID, &v.MuxPlaybackID, &v.MuxTrackID,
		&v.ThumbnailURL, &v.PreviewURL, &v.DurationMS, &v.CreatedAt, &v.UpdatedAt,
	}
}

// videoAggregates are selected for every video card, in this order.
var videoAggregates = []aggregate{
	countOf("view_count", "video_views vv", "vv.video_id = v.id"),
	countOf("like_count", "video_reactions vr", "vr.video_id = v.id AND vr.type = 'like'"),
	countOf("dislike_count", "video_reactions vr", "vr.video_id = v.id AND vr.type = 'dislike'"),
	countOf("comment_count", "comments cm", "cm.video_id = v.id"),
}

const videoCardFrom = "videos v\nJOIN users u ON u.id = v.user_id"

func videoCardQuery(from string, keyset paging.Keyset) *listQuery {
	q := newListQuery(from, keyset)
	q.columns = []string{videoColumns, "u.id", "u.name", "u.image_url"}
	q.aggs = videoAggregates
	return q
}

func (c *VideoCard) fields() []any {
	return append(c.Video.fields(),
		&c.User.ID, &c.User.Name, &c.User.ImageURL,
		&c.ViewCount, &c.LikeCount, &c.DislikeCount, &c.CommentCount,
	)
}

func scanVideoCard(row pgx.CollectableRow) (*VideoCard, error) {
	c := &VideoCard{}
	if err := row.Scan(append(c.fields(), &c.sortKey)...); err != nil {
		return nil, err
	}
	return c, nil
}

func videoCardKey(c *VideoCard) paging.Cursor {
	return paging.Cursor{ID: c.ID, SortKey: c.sortKey}
}

// listVideoCards runs a video card query through the pagination engine.
// mark, if set, copies the sort key into the field the collection exposes.
func listVideoCards(ctx context.Context, db querier, q *listQuery, req paging.Request, mark func(*VideoCard)) (*paging.Page[*VideoCard], error) {
	return paging.Paginate(ctx, req, videoCardKey, func(ctx context.Context, after *paging.Cursor, n int) ([]*VideoCard, error) {
		sql, vals := q.build(after, n)
		rows, err := db.Query(ctx, sql, vals...)
		if err != nil {
			return nil, fmt.Errorf("list videos: %w", err)
		}
		cards, err := pgx.CollectRows(rows, scanVideoCard)
		if err != nil {
			return nil, fmt.Errorf("scan videos: %w", err)
		}
		if mark != nil {
			for _, c := range cards {
				mark(c)
			}
		}
		return cards, nil
	})
}

func aggregateColumns(aggs []aggregate) string {
	cols := make([]string, len(aggs))
	for i, a := range aggs {
		cols[i] = a.expr + " AS " + a.name
	}
	return strings.Join(cols, ",\n       ")
}

// PostgresVideoRepo implements VideoRepo using PostgreSQL.
type PostgresVideoRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresVideoRepo creates a PostgresVideoRepo.
func NewPostgresVideoRepo(pool *pgxpool.Pool) *PostgresVideoRepo {
	return &PostgresVideoRepo{pool: pool}
}

func (r *PostgresVideoRepo) CreateVideo(ctx context.Context, v *Video) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Visibility == "" {
		v.Visibility = VisibilityPrivate
	}
	const q = `
INSERT INTO videos (id, title, description, user_id, category_id, visibility, mux_status, mux_upload_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, q,
		v.ID, v.Title, v.Description, v.UserID, v.CategoryID, v.Visibility, v.MuxStatus, v.MuxUploadID,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	return wrapErr("insert video", err)
}

func (r *PostgresVideoRepo) GetVideo(ctx context.Context, id, viewerID string) (*VideoDetail, error) {
	a := &args{}
	idP := a.Bind(id)
	viewer := a.Bind(nullable(viewerID))
	q := fmt.Sprintf(`
SELECT %s,
       u.id, u.name, u.image_url,
       %s,
       (SELECT count(*) FROM subscriptions s WHERE s.creator_id = v.user_id) AS subscriber_count,
       (SELECT r.type FROM video_reactions r WHERE r.video_id = v.id AND r.user_id = %s) AS viewer_reaction,
       EXISTS (SELECT 1 FROM subscriptions s WHERE s.creator_id = v.user_id AND s.viewer_id = %s) AS viewer_subscribed
FROM %s
WHERE v.id = %s AND (v.visibility = 'public' OR v.user_id = %s)`,
		videoColumns, aggregateColumns(videoAggregates), viewer, viewer, videoCardFrom, idP, viewer)

	d := &VideoDetail{}
	dest := append(d.VideoCard.fields(), &d.SubscriberCount, &d.ViewerReaction, &d.ViewerSubscribed)
	if err := r.pool.QueryRow(ctx, q, a.vals...).Scan(dest...); err != nil {
		return nil, wrapErr("get video", err)
	}
	return d, nil
}

func (r *PostgresVideoRepo) GetOwnedVideo(ctx context.Context, ownerID, id string) (*Video, error) {
	q := `SELECT ` + videoColumns + ` FROM videos v WHERE v.id = $1 AND v.user_id = $2`
	v := &Video{}
	if err := r.pool.QueryRow(ctx, q, id, ownerID).Scan(v.fields()...); err != nil {
		return nil, wrapErr("get video", err)
	}
	return v, nil
}

func (r *PostgresVideoRepo) UpdateVideo(ctx context.Context, ownerID, id string, p VideoPatch) (*Video, error) {
	a := &args{}
	sets := []string{"updated_at = now()"}
	if p.Title != nil {
		sets = append(sets, "title = "+a.Bind(*p.Title))
	}
	if p.Description != nil {
		sets = append(sets, "description = "+a.Bind(*p.Description))
	}
	if p.Visibility != nil {
		sets = append(sets, "visibility = "+a.Bind(*p.Visibility))
	}
	if p.CategoryID != nil {
		sets = append(sets, "category_id = "+a.Bind(nullable(*p.CategoryID)))
	}
	q := fmt.Sprintf(`UPDATE videos v SET %s WHERE v.id = %s AND v.user_id = %s RETURNING %s`,
		strings.Join(sets, ", "), a.Bind(id), a.Bind(ownerID), videoColumns)

	v := &Video{}
	if err := r.pool.QueryRow(ctx, q, a.vals...).Scan(v.fields()...); err != nil {
		return nil, wrapErr("update video", err)
	}
	return v, nil
}

func (r *PostgresVideoRepo) DeleteVideo(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return wrapErr("delete video", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresVideoRepo) SearchVideos(ctx context.Context, f SearchFilter, req paging.Request) (*paging.Page[*VideoCard], error) {
	q := videoCardQuery(videoCardFrom, paging.Keyset{SortColumn: "v.updated_at", IDColumn: "v.id"})
	q.filter("v.visibility = 'public'")
	if f.Query != "" {
		q.filter("v.title ILIKE " + q.bind(likePattern(f.Query)))
	}
	if f.CategoryID != "" {
		q.filter("v.category_id = " + q.bind(f.CategoryID))
	}
	return listVideoCards(ctx, r.pool, q, req, nil)
}

func (r *PostgresVideoRepo) ListStudioVideos(ctx context.Context, ownerID string, req paging.Request) (*paging.Page[*VideoCard], error) {
	q := videoCardQuery(videoCardFrom, paging.Keyset{SortColumn: "v.updated_at", IDColumn: "v.id"})
	q.filter("v.user_id = " + q.bind(ownerID))
	return listVideoCards(ctx, r.pool, q, req, nil)
}

func (r *PostgresVideoRepo) ListLikedVideos(ctx context.Context, userID string, req paging.Request) (*paging.Page[*VideoCard], error) {
	q := videoCardQuery(videoCardFrom+"\nJOIN liked ON liked.video_id = v.id",
		paging.Keyset{SortColumn: "liked.liked_at", IDColumn: "v.id"})
	q.with = "liked AS (SELECT video_id, updated_at AS liked_at FROM video_reactions WHERE user_id = " +
		q.bind(userID) + " AND type = 'like')"
	q.filter("v.visibility = 'public'")
	return listVideoCards(ctx, r.pool, q, req, func(c *VideoCard) {
		t := c.sortKey
		c.LikedAt = &t
	})
}

func (r *PostgresVideoRepo) ListHistory(ctx context.Context, userID string, req paging.Request) (*paging.Page[*VideoCard], error) {
	q := videoCardQuery(videoCardFrom+"\nJOIN seen ON seen.video_id = v.id",
		paging.Keyset{SortColumn: "seen.viewed_at", IDColumn: "v.id"})
	q.with = "seen AS (SELECT video_id, updated_at AS viewed_at FROM video_views WHERE user_id = " +
		q.bind(userID) + ")"
	q.filter("v.visibility = 'public'")
	return listVideoCards(ctx, r.pool, q, req, func(c *VideoCard) {
		t := c.sortKey
		c.ViewedAt = &t
	})
}
