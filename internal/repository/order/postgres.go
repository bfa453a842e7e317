package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderSelect = `
SELECT o.id::text, o.user_id::text, u.name, u.email, o.items, o.shipping_address, o.payment_method,
       o.payment_result, o.items_price, o.tax_price, o.shipping_price, o.total_price, o.is_paid,
       o.paid_at, o.is_delivered, o.delivered_at, o.status, o.created_at, o.updated_at
FROM orders o
JOIN users u ON u.id = o.user_id
`

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

func (r *postgresRepo) CreateAndClearCart(ctx context.Context, o domain.Order) (*domain.Order, error) {
	items, shipping, payment, err := encodeOrder(o)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var userID string
	err = tx.QueryRow(ctx, `SELECT id::text FROM users WHERE id::text = $1 FOR UPDATE`, o.UserID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	status := o.Status
	if status == "" {
		status = domain.StatusPending
	}
	const insert = `
INSERT INTO orders (user_id, items, shipping_address, payment_method, payment_result, items_price,
                    tax_price, shipping_price, total_price, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id::text
`
	var id string
	if err := tx.QueryRow(ctx, insert,
		userID,
		items,
		shipping,
		o.PaymentMethod,
		payment,
		db.Numeric(o.ItemsPrice),
		db.Numeric(o.TaxPrice),
		db.Numeric(o.ShippingPrice),
		db.Numeric(o.TotalPrice),
		string(status),
	).Scan(&id); err != nil {
		r.logger.Printf("order repo: insert user=%s error=%v", userID, err)
		return nil, err
	}

	cleared, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Printf("order repo: clear cart user=%s error=%v", userID, err)
		return nil, err
	}

	created, err := scanOrder(tx.QueryRow(ctx, orderSelect+`WHERE o.id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created id=%s user=%s items=%d cleared_lines=%d", id, userID, len(o.Items), cleared.RowsAffected())
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, orderSelect+`WHERE o.id::text = $1`, id))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
	}
	return o, err
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, orderSelect+`WHERE o.user_id::text = $1 ORDER BY o.created_at DESC, o.id`, userID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, orderSelect+`ORDER BY o.created_at DESC, o.id`)
}

func (r *postgresRepo) Mutate(ctx context.Context, id string, fn MutateFunc) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	o, err := scanOrder(tx.QueryRow(ctx, orderSelect+`WHERE o.id::text = $1 FOR UPDATE OF o`, id))
	if err != nil {
		return nil, err
	}
	if err := fn(o); err != nil {
		return nil, err
	}

	_, _, payment, err := encodeOrder(*o)
	if err != nil {
		return nil, err
	}
	const update = `
UPDATE orders
SET payment_result = $1, is_paid = $2, paid_at = $3, is_delivered = $4, delivered_at = $5,
    status = $6, updated_at = $7
WHERE id = $8
`
	updatedAt := o.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	if _, err := tx.Exec(ctx, update,
		payment,
		o.IsPaid,
		o.PaidAt,
		o.IsDelivered,
		o.DeliveredAt,
		string(o.Status),
		updatedAt,
		o.ID,
	); err != nil {
		r.logger.Printf("order repo: update id=%s error=%v", id, err)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	o.UpdatedAt = updatedAt
	r.logger.Printf("order repo: updated id=%s status=%s paid=%t delivered=%t", o.ID, o.Status, o.IsPaid, o.IsDelivered)
	return o, nil
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func encodeOrder(o domain.Order) (items, shipping, payment []byte, err error) {
	lines := o.Items
	if lines == nil {
		lines = []domain.OrderItem{}
	}
	if items, err = json.Marshal(lines); err != nil {
		return nil, nil, nil, err
	}
	if shipping, err = json.Marshal(o.ShippingAddress); err != nil {
		return nil, nil, nil, err
	}
	if o.PaymentResult != nil {
		if payment, err = json.Marshal(o.PaymentResult); err != nil {
			return nil, nil, nil, err
		}
	}
	return items, shipping, payment, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                            domain.Order
		customer                     domain.OrderCustomer
		items, shipping, payment     []byte
		itemsPrice, tax, ship, total pgtype.Numeric
		status                       string
	)
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&customer.Name,
		&customer.Email,
		&items,
		&shipping,
		&o.PaymentMethod,
		&payment,
		&itemsPrice,
		&tax,
		&ship,
		&total,
		&o.IsPaid,
		&o.PaidAt,
		&o.IsDelivered,
		&o.DeliveredAt,
		&status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	customer.ID = o.UserID
	o.Customer = &customer
	o.Status = domain.OrderStatus(status)
	o.ItemsPrice = db.Decimal(itemsPrice)
	o.TaxPrice = db.Decimal(tax)
	o.ShippingPrice = db.Decimal(ship)
	o.TotalPrice = db.Decimal(total)

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order %s items: %w", o.ID, err)
	}
	if len(shipping) > 0 {
		if err := json.Unmarshal(shipping, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("decode order %s shipping: %w", o.ID, err)
		}
	}
	if len(payment) > 0 {
		var pr domain.PaymentResult
		if err := json.Unmarshal(payment, &pr); err != nil {
			return nil, fmt.Errorf("decode order %s payment: %w", o.ID, err)
		}
		o.PaymentResult = &pr
	}
	return &o, nil
}
