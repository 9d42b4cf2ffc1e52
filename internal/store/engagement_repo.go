package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresEngagementRepo implements EngagementRepo using PostgreSQL.
type PostgresEngagementRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresEngagementRepo creates a PostgresEngagementRepo.
func NewPostgresEngagementRepo(pool *pgxpool.Pool) *PostgresEngagementRepo {
	return &PostgresEngagementRepo{pool: pool}
}

func (r *PostgresEngagementRepo) SetReaction(ctx context.Context, userID, videoID, kind string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := runChecks(ctx, tx, videoVisible(userID, videoID)); err != nil {
			return err
		}
		const q = `
INSERT INTO video_reactions (user_id, video_id, type)
VALUES ($1,$2,$3)
ON CONFLICT (user_id, video_id) DO UPDATE
SET type = EXCLUDED.type, updated_at = now()`
		_, err := tx.Exec(ctx, q, userID, videoID, kind)
		return wrapErr("upsert reaction", err)
	})
}

func (r *PostgresEngagementRepo) ClearReaction(ctx context.Context, userID, videoID string) error {
	return deleteOne(ctx, r.pool, "delete reaction",
		`DELETE FROM video_reactions WHERE user_id = $1 AND video_id = $2`, userID, videoID)
}

func (r *PostgresEngagementRepo) RecordView(ctx context.Context, userID, videoID string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := runChecks(ctx, tx, videoVisible(userID, videoID)); err != nil {
			return err
		}
		const q = `
INSERT INTO video_views (user_id, video_id)
VALUES ($1,$2)
ON CONFLICT (user_id, video_id) DO UPDATE
SET updated_at = now()`
		_, err := tx.Exec(ctx, q, userID, videoID)
		return wrapErr("upsert view", err)
	})
}

func (r *PostgresEngagementRepo) Subscribe(ctx context.Context, viewerID, creatorID string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := runChecks(ctx, tx, userExists(creatorID)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO subscriptions (viewer_id, creator_id) VALUES ($1,$2)`, viewerID, creatorID)
		return wrapErr("insert subscription", err)
	})
}

func (r *PostgresEngagementRepo) Unsubscribe(ctx context.Context, viewerID, creatorID string) error {
	return deleteOne(ctx, r.pool, "delete subscription",
		`DELETE FROM subscriptions WHERE viewer_id = $1 AND creator_id = $2`, viewerID, creatorID)
}

// deleteOne runs a DELETE and reports ErrNotFound when nothing matched.
func deleteOne(ctx context.Context, q querier, op, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return wrapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
