package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/videotube-app/videotube/internal/paging"
)

const commentColumns = "c.id, c.parent_id, c.user_id, c.video_id, c.value, c.created_at, c.updated_at"

var commentKeyset = paging.Keyset{SortColumn: "c.updated_at", IDColumn: "c.id"}

func (c *Comment) fields() []any {
	return []any{&c.ID, &c.ParentID, &c.UserID, &c.VideoID, &c.Value, &c.CreatedAt, &c.UpdatedAt}
}

func scanComment(row pgx.CollectableRow) (*Comment, error) {
	c := &Comment{}
	dest := append(c.fields(), &c.User.ID, &c.User.Name, &c.User.ImageURL, &c.ReplyCount, &c.sortKey)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return c, nil
}

func commentKey(c *Comment) paging.Cursor {
	return paging.Cursor{ID: c.ID, SortKey: c.sortKey}
}

// PostgresCommentRepo implements CommentRepo using PostgreSQL.
type PostgresCommentRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresCommentRepo creates a PostgresCommentRepo.
func NewPostgresCommentRepo(pool *pgxpool.Pool) *PostgresCommentRepo {
	return &PostgresCommentRepo{pool: pool}
}

func (r *PostgresCommentRepo) CreateComment(ctx context.Context, c *Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		checks := []check{videoVisible(c.UserID, c.VideoID)}
		if c.ParentID != nil {
			checks = append(checks, topLevelComment(c.VideoID, *c.ParentID))
		}
		if err := runChecks(ctx, tx, checks...); err != nil {
			return err
		}

		const q = `
WITH ins AS (
    INSERT INTO comments (id, parent_id, user_id, video_id, value)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING user_id, created_at, updated_at
)
SELECT ins.created_at, ins.updated_at, u.id, u.name, u.image_url
FROM ins JOIN users u ON u.id = ins.user_id`
		err := tx.QueryRow(ctx, q, c.ID, c.ParentID, c.UserID, c.VideoID, c.Value).
			Scan(&c.CreatedAt, &c.UpdatedAt, &c.User.ID, &c.User.Name, &c.User.ImageURL)
		return wrapErr("insert comment", err)
	})
}

func (r *PostgresCommentRepo) DeleteComment(ctx context.Context, userID, id string) (*Comment, error) {
	const q = `DELETE FROM comments c WHERE c.id = $1 AND c.user_id = $2 RETURNING ` + commentColumns
	c := &Comment{}
	if err := r.pool.QueryRow(ctx, q, id, userID).Scan(c.fields()...); err != nil {
		return nil, wrapErr("delete comment", err)
	}
	return c, nil
}

// ListComments runs the page query and the total count concurrently.
func (r *PostgresCommentRepo) ListComments(ctx context.Context, f CommentFilter, req paging.Request) (*CommentPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	checks := []check{videoVisible(f.ViewerID, f.VideoID)}
	if f.ParentID != nil {
		checks = append(checks, topLevelComment(f.VideoID, *f.ParentID))
	}
	if err := runChecks(ctx, r.pool, checks...); err != nil {
		return nil, err
	}

	q := newListQuery("comments c\nJOIN users u ON u.id = c.user_id", commentKeyset)
	q.columns = []string{commentColumns, "u.id", "u.name", "u.image_url"}
	q.aggs = []aggregate{countOf("reply_count", "comments rc", "rc.parent_id = c.id")}
	q.filter("c.video_id = " + q.bind(f.VideoID))
	if f.ParentID != nil {
		q.filter("c.parent_id = " + q.bind(*f.ParentID))
	} else {
		q.filter("c.parent_id IS NULL")
	}

	out := &CommentPage{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sql, vals := countQuery(q)
		if err := r.pool.QueryRow(gctx, sql, vals...).Scan(&out.TotalCount); err != nil {
			return fmt.Errorf("count comments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		page, err := paging.Paginate(gctx, req, commentKey, func(ctx context.Context, after *paging.Cursor, n int) ([]*Comment, error) {
			sql, vals := q.build(after, n)
			rows, err := r.pool.Query(ctx, sql, vals...)
			if err != nil {
				return nil, fmt.Errorf("list comments: %w", err)
			}
			items, err := pgx.CollectRows(rows, scanComment)
			if err != nil {
				return nil, fmt.Errorf("scan comments: %w", err)
			}
			return items, nil
		})
		out.Page = page
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// countQuery counts the rows of q's base relation, ignoring any cursor.
func countQuery(q *listQuery) (string, []any) {
	sql := "SELECT count(*) FROM " + q.from
	if len(q.where) > 0 {
		sql += "\nWHERE " + joinWhere(q.where)
	}
	return sql, q.args.clone().vals
}
