package order

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/pricing"
	orderrepo "storefront/internal/repository/order"

	"github.com/shopspring/decimal"
)

type Service struct {
	repo      orderRepo
	publisher publisher
	metrics   *metrics.Metrics
	logger    *log.Logger
	now       func() time.Time
}

type orderRepo interface {
	CreateAndClearCart(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	Mutate(ctx context.Context, id string, fn orderrepo.MutateFunc) (*domain.Order, error)
}

type publisher interface {
	PublishJSON(ctx context.Context, subject string, v any) error
}

func New(repo orderRepo, pub publisher, m *metrics.Metrics, logger *log.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		repo:      repo,
		publisher: pub,
		metrics:   m,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput is the checkout payload. Monetary fields are stored as given.
type CreateInput struct {
	OrderItems      []domain.OrderItem `json:"orderItems"`
	ShippingAddress domain.Address     `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	ItemsPrice      decimal.Decimal    `json:"itemsPrice"`
	TaxPrice        decimal.Decimal    `json:"taxPrice"`
	ShippingPrice   decimal.Decimal    `json:"shippingPrice"`
	TotalPrice      decimal.Decimal    `json:"totalPrice"`
}

// Create places an order for the actor and empties their cart.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.Order, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	if sum := pricing.ItemsPrice(in.OrderItems); !sum.Equal(in.ItemsPrice) {
		s.logger.Printf("order service: items price mismatch user=%s supplied=%s computed=%s", actor.UserID, in.ItemsPrice, sum)
	}

	created, err := s.repo.CreateAndClearCart(ctx, domain.Order{
		UserID:          actor.UserID,
		Items:           in.OrderItems,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
		ItemsPrice:      in.ItemsPrice,
		TaxPrice:        in.TaxPrice,
		ShippingPrice:   in.ShippingPrice,
		TotalPrice:      in.TotalPrice,
		Status:          domain.StatusPending,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.OrderCreated()
	s.logger.Printf("order service: created id=%s user=%s total=%s", created.ID, created.UserID, created.TotalPrice)
	s.publish(ctx, events.SubjectOrderCreated, created, "", false)
	return created, nil
}

func (s *Service) ListMine(ctx context.Context, actor domain.Actor) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, actor.UserID)
}

// Get returns the order when the actor owns it or is an admin.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.VisibleTo(actor) {
		return nil, fmt.Errorf("%w: not authorized to view this order", domain.ErrUnauthorized)
	}
	return o, nil
}

func (s *Service) ListAll(ctx context.Context, actor domain.Actor) ([]domain.Order, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin access required", domain.ErrForbidden)
	}
	return s.repo.ListAll(ctx)
}

// MarkPaid records the gateway payment on an order owned by the actor.
func (s *Service) MarkPaid(ctx context.Context, actor domain.Actor, id string, payment domain.PaymentResult) (*domain.Order, error) {
	var from domain.OrderStatus
	now := s.now()
	o, err := s.repo.Mutate(ctx, id, func(o *domain.Order) error {
		if !o.OwnedBy(actor.UserID) {
			return fmt.Errorf("%w: not authorized to pay this order", domain.ErrUnauthorized)
		}
		from = o.Status
		return o.MarkPaid(payment, now)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("order service: paid id=%s payment=%s", o.ID, payment.ID)
	s.transitioned(ctx, events.SubjectOrderPaid, o, from, false)
	return o, nil
}

// MarkDelivered moves an order to Delivered. force skips the transition table.
func (s *Service) MarkDelivered(ctx context.Context, actor domain.Actor, id string, force bool) (*domain.Order, error) {
	return s.SetStatus(ctx, actor, id, string(domain.StatusDelivered), force)
}

// SetStatus applies an admin-requested status change.
func (s *Service) SetStatus(ctx context.Context, actor domain.Actor, id, status string, force bool) (*domain.Order, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin access required", domain.ErrForbidden)
	}
	to, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	var from domain.OrderStatus
	now := s.now()
	o, err := s.repo.Mutate(ctx, id, func(o *domain.Order) error {
		from = o.Status
		return o.SetStatus(to, now, force)
	})
	if err != nil {
		return nil, err
	}
	if force && !domain.CanTransition(from, to) {
		s.logger.Printf("order service: forced transition id=%s from=%s to=%s by=%s", o.ID, from, to, actor.UserID)
	}
	s.transitioned(ctx, events.SubjectOrderStatusChanged, o, from, force)
	return o, nil
}

func (s *Service) transitioned(ctx context.Context, subject string, o *domain.Order, from domain.OrderStatus, force bool) {
	s.metrics.StatusTransition(string(from), string(o.Status))
	s.logger.Printf("order service: status id=%s from=%s to=%s", o.ID, from, o.Status)
	s.publish(ctx, subject, o, from, force)
}

func (s *Service) publish(ctx context.Context, subject string, o *domain.Order, from domain.OrderStatus, force bool) {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	evt := events.OrderEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		From:       string(from),
		To:         string(o.Status),
		Forced:     force,
		TotalPrice: o.TotalPrice,
		ItemCount:  count,
		OccurredAt: s.now(),
	}
	if err := s.publisher.PublishJSON(ctx, subject, evt); err != nil {
		s.logger.Printf("order service: publish subject=%s id=%s error=%v", subject, o.ID, err)
	}
}

func validateCreate(in CreateInput) error {
	if len(in.OrderItems) == 0 {
		return domain.Invalid("no order items")
	}
	for i, item := range in.OrderItems {
		switch {
		case strings.TrimSpace(item.ProductID) == "":
			return domain.Invalid("order item %d: product is required", i+1)
		case item.Quantity < 1:
			return domain.Invalid("order item %d: quantity must be at least 1", i+1)
		case item.Quantity > domain.MaxQuantity:
			return domain.Invalid("order item %d: quantity too large", i+1)
		}
		if err := domain.CheckAmount(fmt.Sprintf("order item %d: price", i+1), item.Price); err != nil {
			return err
		}
	}
	a := in.ShippingAddress
	for _, f := range []struct{ name, value string }{
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"zipCode", a.ZipCode},
		{"country", a.Country},
	} {
		if strings.TrimSpace(f.value) == "" {
			return domain.Invalid("shipping address %s is required", f.name)
		}
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return domain.Invalid("payment method is required")
	}
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"itemsPrice", in.ItemsPrice},
		{"taxPrice", in.TaxPrice},
		{"shippingPrice", in.ShippingPrice},
		{"totalPrice", in.TotalPrice},
	} {
		if err := domain.CheckAmount(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}
