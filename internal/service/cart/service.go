package cart

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/pricing"
	cartrepo "storefront/internal/repository/cart"
)

type Service struct {
	repo     cartRepo
	products productLookup
	metrics  *metrics.Metrics
	logger   *log.Logger
	now      func() time.Time
}

type cartRepo interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Mutate(ctx context.Context, userID string, fn cartrepo.MutateFunc) (*domain.Cart, error)
}

type productLookup interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error)
}

func New(repo cartRepo, products productLookup, m *metrics.Metrics, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		repo:     repo,
		products: products,
		metrics:  m,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// View is a cart with each line joined to its current product and a priced
// summary.
type View struct {
	Items   []domain.CartLine `json:"items"`
	Summary pricing.Summary   `json:"summary"`
}

func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// AddItem adds quantity units of productID, merging with an existing line.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.Invalid("product id is required")
	}
	if quantity <= 0 {
		return nil, domain.Invalid("quantity must be positive")
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}
	now := s.now()
	return s.mutate(ctx, userID, "add", func(c *domain.Cart) error {
		return c.AddItem(productID, quantity, now)
	})
}

// SetQuantity overwrites a line's quantity; non-positive values remove it.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	return s.mutate(ctx, userID, "set_quantity", func(c *domain.Cart) error {
		return c.SetQuantity(productID, quantity)
	})
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*View, error) {
	return s.mutate(ctx, userID, "remove", func(c *domain.Cart) error {
		c.RemoveItem(productID)
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, userID string) (*View, error) {
	return s.mutate(ctx, userID, "clear", func(c *domain.Cart) error {
		c.Clear()
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, userID, op string, fn cartrepo.MutateFunc) (*View, error) {
	c, err := s.repo.Mutate(ctx, userID, fn)
	if err != nil {
		return nil, err
	}
	s.metrics.CartOperation(op)
	s.logger.Printf("cart service: %s user=%s lines=%d", op, userID, len(c.Lines))
	return s.view(ctx, c)
}

func (s *Service) view(ctx context.Context, c *domain.Cart) (*View, error) {
	ids := make([]string, 0, len(c.Lines))
	for _, line := range c.Lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]domain.CartLine, 0, len(c.Lines))
	for _, line := range c.Lines {
		p, ok := products[line.ProductID]
		if !ok {
			continue
		}
		line.Product = &p
		items = append(items, line)
	}
	return &View{Items: items, Summary: pricing.Summarize(items)}, nil
}
