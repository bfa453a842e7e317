package token

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, t Token) error {
	const q = `
INSERT INTO tokens (token_hash, user_id, kind, expires_at)
VALUES ($1, $2::uuid, $3, $4)
`
	_, err := r.pool.Exec(ctx, q, Digest(t.Token), t.UserID, t.Kind, t.ExpiresAt)
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return domain.ErrAlreadyExists
	case errors.As(err, &pgErr) && pgErr.Code == "23503":
		return domain.ErrNotFound
	default:
		return err
	}
}

func (r *postgresRepo) Get(ctx context.Context, raw string) (*Token, error) {
	const q = `
SELECT user_id::text, kind, expires_at, created_at
FROM tokens
WHERE token_hash = $1
`
	out := Token{Token: raw}
	err := r.pool.QueryRow(ctx, q, Digest(raw)).Scan(&out.UserID, &out.Kind, &out.ExpiresAt, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, raw string) error {
	n, err := r.exec(ctx, `DELETE FROM tokens WHERE token_hash = $1`, Digest(raw))
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return r.exec(ctx, `DELETE FROM tokens WHERE user_id::text = $1`, userID)
}

func (r *postgresRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM tokens WHERE expires_at <= $1`, now)
}

func (r *postgresRepo) exec(ctx context.Context, q string, args ...any) (int64, error) {
	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
