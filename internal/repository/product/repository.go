package product

import (
	"context"

	"storefront/internal/domain"
)

// Sort orders accepted by List.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortDiscount  = "discount"
)

// ListFilter narrows and orders a catalog listing.
type ListFilter struct {
	Search   string
	Category domain.Category
	Sort     string
	Limit    int
	Offset   int
}

// CategoryCount is the number of products in one category.
type CategoryCount struct {
	Category domain.Category `json:"category"`
	Count    int             `json:"count"`
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]domain.Product, int, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	CategoryCounts(ctx context.Context) ([]CategoryCount, error)
}
