package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id::text, name, brand, category, subcategory, description, price, original_price, discount,
       rating, reviews, image, images, features, specifications, tags, seller, warranty, return_policy,
       in_stock, stock_quantity, fast_delivery, created_at, updated_at`

var sortClauses = map[string]string{
	SortNewest:    "created_at DESC, id",
	SortPriceAsc:  "price ASC, id",
	SortPriceDesc: "price DESC, id",
	SortRating:    "rating DESC, id",
	SortDiscount:  "discount DESC, id",
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

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Product, int, error) {
	var (
		where []string
		args  []interface{}
	)
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR brand ILIKE $%d OR category ILIKE $%d OR description ILIKE $%d)", n, n, n, n))
	}
	if f.Category != "" {
		args = append(args, string(f.Category))
		where = append(where, fmt.Sprintf("lower(category) = lower($%d)", len(args)))
	}
	order, ok := sortClauses[f.Sort]
	if !ok {
		order = sortClauses[SortNewest]
	}

	q := `SELECT ` + productColumns + `, count(*) OVER () FROM products`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + order
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, 0, err
	}
	defer rows.Close()

	var (
		result []domain.Product
		total  int
	)
	for rows.Next() {
		p, err := scanProduct(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, 0, err
	}
	r.logger.Printf("product repo: list search=%q category=%q sort=%s count=%d total=%d", f.Search, f.Category, f.Sort, len(result), total)
	return result, total, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id::text = $1`
	rows, err := r.pool.Query(ctx, q, id)
	if err != nil {
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		r.logger.Printf("product repo: get id=%s not found", id)
		return nil, domain.ErrNotFound
	}
	p, err := scanProduct(rows, nil)
	if err != nil {
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + productColumns + ` FROM products WHERE id::text = ANY($1::text[])`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		r.logger.Printf("product repo: get many count=%d error=%v", len(ids), err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows, nil)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	args, err := writeArgs(p)
	if err != nil {
		return nil, err
	}
	q := `
INSERT INTO products (name, brand, category, subcategory, description, price, original_price, discount,
                      rating, reviews, image, images, features, specifications, tags, seller, warranty,
                      return_policy, in_stock, stock_quantity, fast_delivery)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
RETURNING ` + productColumns
	created, err := r.one(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: create name=%q brand=%q error=%v", p.Name, p.Brand, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s name=%q", created.ID, created.Name)
	return created, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	args, err := writeArgs(p)
	if err != nil {
		return nil, err
	}
	args = append(args, p.ID)
	q := `
UPDATE products SET
    name = $1, brand = $2, category = $3, subcategory = $4, description = $5, price = $6,
    original_price = $7, discount = $8, rating = $9, reviews = $10, image = $11, images = $12,
    features = $13, specifications = $14, tags = $15, seller = $16, warranty = $17,
    return_policy = $18, in_stock = $19, stock_quantity = $20, fast_delivery = $21, updated_at = now()
WHERE id::text = $22
RETURNING ` + productColumns
	updated, err := r.one(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: update id=%s error=%v", p.ID, err)
		return nil, err
	}
	r.logger.Printf("product repo: updated id=%s discount=%d", updated.ID, updated.Discount)
	return updated, nil
}

// Upsert keys products by (brand, name) so seeds and imports can be re-run.
func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	args, err := writeArgs(p)
	if err != nil {
		return nil, err
	}
	q := `
INSERT INTO products (name, brand, category, subcategory, description, price, original_price, discount,
                      rating, reviews, image, images, features, specifications, tags, seller, warranty,
                      return_policy, in_stock, stock_quantity, fast_delivery)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
ON CONFLICT (brand, name) DO UPDATE SET
    category = EXCLUDED.category,
    subcategory = EXCLUDED.subcategory,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    original_price = EXCLUDED.original_price,
    discount = EXCLUDED.discount,
    rating = EXCLUDED.rating,
    reviews = EXCLUDED.reviews,
    image = EXCLUDED.image,
    images = EXCLUDED.images,
    features = EXCLUDED.features,
    specifications = EXCLUDED.specifications,
    tags = EXCLUDED.tags,
    seller = EXCLUDED.seller,
    warranty = EXCLUDED.warranty,
    return_policy = EXCLUDED.return_policy,
    in_stock = EXCLUDED.in_stock,
    stock_quantity = EXCLUDED.stock_quantity,
    fast_delivery = EXCLUDED.fast_delivery,
    updated_at = now()
RETURNING ` + productColumns
	res, err := r.one(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: upsert name=%q brand=%q error=%v", p.Name, p.Brand, err)
		return nil, err
	}
	r.logger.Printf("product repo: upserted id=%s name=%q", res.ID, res.Name)
	return res, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id::text = $1`, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: deleted id=%s", id)
	return nil
}

func (r *postgresRepo) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT category, count(*) FROM products GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Category]int)
	for rows.Next() {
		var (
			cat   string
			count int
		)
		if err := rows.Scan(&cat, &count); err != nil {
			return nil, err
		}
		counts[domain.Category(cat)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]CategoryCount, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		out = append(out, CategoryCount{Category: c, Count: counts[c]})
	}
	return out, nil
}

func (r *postgresRepo) one(ctx context.Context, q string, args ...interface{}) (*domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, mapWriteErr(err)
		}
		return nil, domain.ErrNotFound
	}
	p, err := scanProduct(rows, nil)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	rows.Close()
	return p, mapWriteErr(rows.Err())
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrAlreadyExists
	}
	return err
}

func writeArgs(p domain.Product) ([]interface{}, error) {
	images, err := json.Marshal(nonNil(p.Images))
	if err != nil {
		return nil, err
	}
	features, err := json.Marshal(nonNil(p.Features))
	if err != nil {
		return nil, err
	}
	specs := p.Specifications
	if specs == nil {
		specs = map[string]string{}
	}
	specJSON, err := json.Marshal(specs)
	if err != nil {
		return nil, err
	}
	tags, err := json.Marshal(nonNil(p.Tags))
	if err != nil {
		return nil, err
	}
	return []interface{}{
		p.Name,
		p.Brand,
		string(p.Category),
		p.Subcategory,
		p.Description,
		db.Numeric(p.Price),
		db.Numeric(p.OriginalPrice),
		p.Discount,
		p.Rating,
		p.Reviews,
		p.Image,
		images,
		features,
		specJSON,
		tags,
		p.Seller,
		p.Warranty,
		p.ReturnPolicy,
		p.InStock,
		p.StockQuantity,
		p.FastDelivery,
	}, nil
}

// scanProduct reads one row selected with productColumns. When total is not
// nil the row carries a trailing window count.
func scanProduct(row pgx.Row, total *int) (*domain.Product, error) {
	var (
		p                             domain.Product
		category                      string
		price, originalPrice          pgtype.Numeric
		images, features, specs, tags []byte
	)
	dest := []interface{}{
		&p.ID, &p.Name, &p.Brand, &category, &p.Subcategory, &p.Description, &price, &originalPrice, &p.Discount,
		&p.Rating, &p.Reviews, &p.Image, &images, &features, &specs, &tags, &p.Seller, &p.Warranty, &p.ReturnPolicy,
		&p.InStock, &p.StockQuantity, &p.FastDelivery, &p.CreatedAt, &p.UpdatedAt,
	}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.Category = domain.Category(category)
	p.Price = db.Decimal(price)
	p.OriginalPrice = db.Decimal(originalPrice)
	for _, field := range []struct {
		raw []byte
		dst interface{}
	}{
		{images, &p.Images},
		{features, &p.Features},
		{specs, &p.Specifications},
		{tags, &p.Tags},
	} {
		if len(field.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(field.raw, field.dst); err != nil {
			return nil, fmt.Errorf("decode product %s: %w", p.ID, err)
		}
	}
	return &p, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
