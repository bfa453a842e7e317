package user

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id::text, name, email, password_hash, phone, role, address, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	addrJSON, err := json.Marshal(u.Address)
	if err != nil {
		return nil, err
	}
	role := u.Role
	if role == "" {
		role = domain.RoleUser
	}

	const q = `
INSERT INTO users (name, email, password_hash, phone, role, address)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(
		ctx,
		q,
		u.Name,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.Phone,
		string(role),
		addrJSON,
	))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE lower(email) = lower($1)
LIMIT 1
`
	return r.scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id::text = $1
LIMIT 1
`
	return r.scanUser(r.pool.QueryRow(ctx, q, id))
}

// Update overwrites the mutable profile fields, credentials and role.
func (r *postgresRepo) Update(ctx context.Context, u domain.User) (*domain.User, error) {
	addrJSON, err := json.Marshal(u.Address)
	if err != nil {
		return nil, err
	}
	const q = `
UPDATE users
SET name = $1, email = $2, password_hash = $3, phone = $4, role = $5, address = $6
WHERE id::text = $7
RETURNING ` + userColumns
	updated, err := r.scanUser(r.pool.QueryRow(
		ctx,
		q,
		u.Name,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.Phone,
		string(u.Role),
		addrJSON,
		u.ID,
	))
	if err != nil {
		return nil, err
	}
	r.logger.Printf("user repo: updated id=%s", updated.ID)
	return updated, nil
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string
	var addrJSON []byte
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Phone,
		&role,
		&addrJSON,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("user repo: scan error=%v", err)
		return nil, err
	}
	u.Role = domain.Role(role)
	if len(addrJSON) > 0 {
		if err := json.Unmarshal(addrJSON, &u.Address); err != nil {
			r.logger.Printf("user repo: decode address id=%s err=%v", u.ID, err)
			return nil, err
		}
	}
	return &u, nil
}
