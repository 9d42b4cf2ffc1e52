package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = "id, external_id, name, image_url, banner_url, created_at, updated_at"

func (u *User) fields() []any {
	return []any{&u.ID, &u.ExternalID, &u.Name, &u.ImageURL, &u.BannerURL, &u.CreatedAt, &u.UpdatedAt}
}

// PostgresUserRepo implements UserRepo and CategoryRepo using PostgreSQL.
type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepo creates a PostgresUserRepo.
func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) GetUserByExternalID(ctx context.Context, externalID string) (*User, error) {
	u := &User{}
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE external_id = $1`, externalID).
		Scan(u.fields()...)
	if err != nil {
		return nil, wrapErr("get user", err)
	}
	return u, nil
}

func (r *PostgresUserRepo) GetUser(ctx context.Context, id string) (*User, error) {
	u := &User{}
	if err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).Scan(u.fields()...); err != nil {
		return nil, wrapErr("get user", err)
	}
	return u, nil
}

func (r *PostgresUserRepo) UpsertUser(ctx context.Context, u *User) error {
	const q = `
INSERT INTO users (id, external_id, name, image_url, banner_url)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (external_id) DO UPDATE
SET name = EXCLUDED.name,
    image_url = EXCLUDED.image_url,
    banner_url = EXCLUDED.banner_url,
    updated_at = now()
RETURNING ` + userColumns
	err := r.pool.QueryRow(ctx, q, uuid.NewString(), u.ExternalID, u.Name, u.ImageURL, u.BannerURL).
		Scan(u.fields()...)
	return wrapErr("upsert user", err)
}

func (r *PostgresUserRepo) DeleteUserByExternalID(ctx context.Context, externalID string) error {
	return deleteOne(ctx, r.pool, "delete user", `DELETE FROM users WHERE external_id = $1`, externalID)
}

func (r *PostgresUserRepo) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	cats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Category, error) {
		c := &Category{}
		return c, row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	return cats, nil
}
