package cart

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const foreignKeyViolation = "23503"

const linesQuery = `
SELECT product_id::text, quantity, added_at
FROM cart_lines
WHERE user_id = $1
ORDER BY position ASC
`

type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := loadLines(ctx, r.pool, userID)
	if err != nil {
		r.logger.Printf("cart repo: get user=%s error=%v", userID, err)
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepo) Mutate(ctx context.Context, userID string, fn MutateFunc) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var locked string
	err = tx.QueryRow(ctx, `SELECT id::text FROM users WHERE id::text = $1 FOR UPDATE`, userID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("cart repo: lock user=%s error=%v", userID, err)
		return nil, err
	}

	cart, err := loadLines(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, locked); err != nil {
		r.logger.Printf("cart repo: clear user=%s error=%v", userID, err)
		return nil, err
	}
	if len(cart.Lines) > 0 {
		batch := &pgx.Batch{}
		for i, line := range cart.Lines {
			batch.Queue(`
INSERT INTO cart_lines (user_id, product_id, quantity, position, added_at)
VALUES ($1, $2, $3, $4, $5)
`, locked, line.ProductID, line.Quantity, i, line.AddedAt)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			// The product was deleted after the caller checked it.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
				return nil, domain.ErrNotFound
			}
			r.logger.Printf("cart repo: write lines user=%s error=%v", userID, err)
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("cart repo: saved user=%s lines=%d", userID, len(cart.Lines))
	return cart, nil
}

func loadLines(ctx context.Context, q querier, userID string) (*domain.Cart, error) {
	rows, err := q.Query(ctx, linesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart := &domain.Cart{UserID: userID}
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.AddedAt); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cart, nil
}
