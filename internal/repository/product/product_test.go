package product

import (
	"context"
	"errors"
	"os"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func TestPostgres_CreateListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	phone, err := repo.Create(ctx, sampleProduct("iPhone 14 Pro", "Apple", domain.CategoryElectronics, 89900, 99900))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if phone.ID == "" || !phone.Price.Equal(decimal.NewFromInt(89900)) {
		t.Fatalf("unexpected product %+v", phone)
	}
	if phone.Specifications["Storage"] != "128GB" {
		t.Fatalf("specifications not round-tripped: %+v", phone.Specifications)
	}
	if _, err := repo.Create(ctx, sampleProduct("The Alchemist", "HarperCollins", domain.CategoryBooks, 199, 299)); err != nil {
		t.Fatalf("Create book: %v", err)
	}

	list, total, err := repo.List(ctx, ListFilter{Search: "iphone"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != phone.ID {
		t.Fatalf("expected search to find phone, got total=%d %+v", total, list)
	}

	list, total, err = repo.List(ctx, ListFilter{Sort: SortPriceAsc, Limit: 1})
	if err != nil {
		t.Fatalf("List sorted: %v", err)
	}
	if total != 2 || len(list) != 1 || list[0].Name != "The Alchemist" {
		t.Fatalf("expected cheapest first with total 2, got total=%d %+v", total, list)
	}

	got, err := repo.GetByID(ctx, phone.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != phone.Name || len(got.Images) != 1 {
		t.Fatalf("unexpected product %+v", got)
	}

	many, err := repo.GetByIDs(ctx, []string{phone.ID, "missing"})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(many) != 1 {
		t.Fatalf("expected 1 product, got %d", len(many))
	}

	counts, err := repo.CategoryCounts(ctx)
	if err != nil {
		t.Fatalf("CategoryCounts: %v", err)
	}
	if len(counts) != len(domain.Categories) {
		t.Fatalf("expected every category, got %+v", counts)
	}
	for _, c := range counts {
		if c.Category == domain.CategoryElectronics && c.Count != 1 {
			t.Fatalf("expected one electronics product, got %d", c.Count)
		}
	}
}

func TestPostgres_UpsertUpdateDelete(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	first, err := repo.Upsert(ctx, sampleProduct("Air Force 1", "Nike", domain.CategoryFashion, 7495, 8995))
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	again := sampleProduct("Air Force 1", "Nike", domain.CategoryFashion, 6995, 8995)
	second, err := repo.Upsert(ctx, again)
	if err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if second.ID != first.ID || !second.Price.Equal(decimal.NewFromInt(6995)) {
		t.Fatalf("expected upsert to update in place, got %+v", second)
	}

	if _, err := repo.Create(ctx, again); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	second.Discount = 22
	updated, err := repo.Update(ctx, *second)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Discount != 22 {
		t.Fatalf("expected discount 22, got %d", updated.Discount)
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func sampleProduct(name, brand string, cat domain.Category, price, original int64) domain.Product {
	return domain.Product{
		Name:           name,
		Brand:          brand,
		Category:       cat,
		Subcategory:    "General",
		Description:    name + " description",
		Price:          decimal.NewFromInt(price),
		OriginalPrice:  decimal.NewFromInt(original),
		Image:          "https://example.com/" + brand + ".jpg",
		Images:         []string{"https://example.com/" + brand + "-1.jpg"},
		Specifications: map[string]string{"Storage": "128GB"},
		Seller:         "Flipkart",
		Warranty:       "1 year",
		ReturnPolicy:   "7 days return policy",
		InStock:        true,
		StockQuantity:  10,
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE orders, cart_lines, tokens, products, users CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
