package cart

import (
	"context"

	"storefront/internal/domain"
)

// MutateFunc edits a cart in place. Returning an error aborts the change.
type MutateFunc func(c *domain.Cart) error

type Repository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	// Mutate loads the user's cart under a row lock, applies fn and
	// persists the resulting lines atomically.
	Mutate(ctx context.Context, userID string, fn MutateFunc) (*domain.Cart, error)
}
