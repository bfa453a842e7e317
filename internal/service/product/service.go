package product

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/pricing"
	productrepo "storefront/internal/repository/product"
)

const (
	nameMax        = 200
	descriptionMax = 2000
	defaultLimit   = 50
	maxLimit       = 100

	defaultSeller       = "Flipkart"
	defaultWarranty     = "No warranty"
	defaultReturnPolicy = "7 days return policy"
)

type Service struct {
	repo     productrepo.Repository
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	logger   *log.Logger
}

type Option func(*Service)

// WithCache enables read-through caching of single product lookups.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(repo productrepo.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Page is one slice of a catalog listing.
type Page struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

func (s *Service) List(ctx context.Context, f productrepo.ListFilter) (*Page, error) {
	if f.Category != "" && !f.Category.Valid() {
		return nil, domain.Invalid("unknown category %q", f.Category)
	}
	switch {
	case f.Limit <= 0:
		f.Limit = defaultLimit
	case f.Limit > maxLimit:
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	products, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return &Page{Products: products, Total: total}, nil
}

func (s *Service) Categories(ctx context.Context) ([]productrepo.CategoryCount, error) {
	return s.repo.CategoryCounts(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if p, ok := s.cached(ctx, id); ok {
		return p, nil
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(ctx, p)
	return p, nil
}

// GetMany returns the products that exist among ids, keyed by id.
func (s *Service) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	products, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := Prepare(&p); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

// Update replaces the stored product identified by p.ID.
func (s *Service) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := Prepare(&p); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, updated.ID)
	return updated, nil
}

// Upsert creates or refreshes a product keyed by brand and name.
func (s *Service) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := Prepare(&p); err != nil {
		return nil, err
	}
	res, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, res.ID)
	return res, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, id)
	return nil
}

// Prepare validates p, fills defaults and derives the discount.
func Prepare(p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Brand = strings.TrimSpace(p.Brand)
	p.Subcategory = strings.TrimSpace(p.Subcategory)
	p.Description = strings.TrimSpace(p.Description)
	p.Image = strings.TrimSpace(p.Image)

	switch {
	case p.Name == "":
		return domain.Invalid("product name is required")
	case len([]rune(p.Name)) > nameMax:
		return domain.Invalid("product name cannot exceed %d characters", nameMax)
	case p.Brand == "":
		return domain.Invalid("brand is required")
	case !p.Category.Valid():
		return domain.Invalid("unknown category %q", p.Category)
	case p.Subcategory == "":
		return domain.Invalid("subcategory is required")
	case p.Description == "":
		return domain.Invalid("product description is required")
	case len([]rune(p.Description)) > descriptionMax:
		return domain.Invalid("description cannot exceed %d characters", descriptionMax)
	case p.Price.IsNegative():
		return domain.Invalid("price cannot be negative")
	case p.OriginalPrice.IsNegative():
		return domain.Invalid("original price cannot be negative")
	case p.Price.GreaterThan(p.OriginalPrice):
		return domain.Invalid("price cannot exceed original price")
	case p.Rating < 0 || p.Rating > 5:
		return domain.Invalid("rating must be between 0 and 5")
	case p.Reviews < 0:
		return domain.Invalid("reviews cannot be negative")
	case p.StockQuantity < 0:
		return domain.Invalid("stock quantity cannot be negative")
	case p.Image == "":
		return domain.Invalid("product image is required")
	}

	if p.Seller == "" {
		p.Seller = defaultSeller
	}
	if p.Warranty == "" {
		p.Warranty = defaultWarranty
	}
	if p.ReturnPolicy == "" {
		p.ReturnPolicy = defaultReturnPolicy
	}
	p.Discount = pricing.DiscountPercent(p.Price, p.OriginalPrice)
	return nil
}

func (s *Service) cached(ctx context.Context, id string) (*domain.Product, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cache.GenerateKey("product", id))
	if err != nil {
		s.logger.Printf("product service: cache get id=%s error=%v", id, err)
		return nil, false
	}
	if raw == "" {
		s.metrics.CacheLookup(false)
		return nil, false
	}
	var p domain.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.Printf("product service: cache decode id=%s error=%v", id, err)
		return nil, false
	}
	s.metrics.CacheLookup(true)
	return &p, true
}

func (s *Service) store(ctx context.Context, p *domain.Product) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.GenerateKey("product", p.ID), raw, s.cacheTTL); err != nil {
		s.logger.Printf("product service: cache set id=%s error=%v", p.ID, err)
	}
}

func (s *Service) evict(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cache.GenerateKey("product", id)); err != nil {
		s.logger.Printf("product service: cache evict id=%s error=%v", id, err)
	}
}
