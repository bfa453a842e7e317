package order

import (
	"context"

	"storefront/internal/domain"
)

// MutateFunc edits a locked order in place. Returning an error aborts the change.
type MutateFunc func(o *domain.Order) error

type Repository interface {
	// CreateAndClearCart stores the order and empties the owner's cart in one
	// transaction.
	CreateAndClearCart(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	Mutate(ctx context.Context, id string, fn MutateFunc) (*domain.Order, error)
}
