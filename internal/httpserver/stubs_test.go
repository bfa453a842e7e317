package httpserver

import (
	"context"
	"io"
	"log"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	usersvc "storefront/internal/service/user"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// stubUserService authenticates the token "user-token" as a shopper and
// "admin-token" as an admin.
type stubUserService struct {
	session     *usersvc.Session
	registerErr error
	loginErr    error
	updated     *domain.User
	updateErr   error
	lastProfile usersvc.ProfileInput
	loggedOut   string
	revokedFor  string
}

var (
	shopperUser = &domain.User{ID: "11111111-1111-1111-1111-111111111111", Name: "Shopper", Email: "shopper@example.com", Role: domain.RoleUser}
	adminUser   = &domain.User{ID: "22222222-2222-2222-2222-222222222222", Name: "Admin User", Email: "admin@flipkart.com", Role: domain.RoleAdmin}
)

func (s *stubUserService) Register(_ context.Context, _ usersvc.RegisterInput) (*usersvc.Session, error) {
	return s.session, s.registerErr
}

func (s *stubUserService) Login(_ context.Context, _, _ string) (*usersvc.Session, error) {
	return s.session, s.loginErr
}

func (s *stubUserService) LookupByToken(_ context.Context, token string) (*domain.User, error) {
	switch token {
	case "user-token":
		return shopperUser, nil
	case "admin-token":
		return adminUser, nil
	}
	return nil, usersvc.ErrInvalidToken
}

func (s *stubUserService) Logout(_ context.Context, token string) error {
	s.loggedOut = token
	return nil
}

func (s *stubUserService) LogoutAll(_ context.Context, userID string) (int64, error) {
	s.revokedFor = userID
	return 3, nil
}

func (s *stubUserService) UpdateProfile(_ context.Context, _ string, in usersvc.ProfileInput) (*domain.User, error) {
	s.lastProfile = in
	return s.updated, s.updateErr
}

type stubProductService struct {
	page       *productsvc.Page
	product    *domain.Product
	err        error
	lastFilter productrepo.ListFilter
	lastWrite  domain.Product
	deletedID  string
}

func (s *stubProductService) List(_ context.Context, f productrepo.ListFilter) (*productsvc.Page, error) {
	s.lastFilter = f
	if s.page == nil {
		return &productsvc.Page{Products: []domain.Product{}}, s.err
	}
	return s.page, s.err
}

func (s *stubProductService) Categories(_ context.Context) ([]productrepo.CategoryCount, error) {
	return []productrepo.CategoryCount{{Category: domain.CategoryBooks, Count: 2}}, s.err
}

func (s *stubProductService) Get(_ context.Context, _ string) (*domain.Product, error) {
	if s.product == nil {
		return nil, domain.ErrNotFound
	}
	clone := *s.product
	return &clone, s.err
}

func (s *stubProductService) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.lastWrite = p
	if s.err != nil {
		return nil, s.err
	}
	p.ID = "33333333-3333-3333-3333-333333333333"
	return &p, nil
}

func (s *stubProductService) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.lastWrite = p
	if s.err != nil {
		return nil, s.err
	}
	return &p, nil
}

func (s *stubProductService) Delete(_ context.Context, id string) error {
	s.deletedID = id
	return s.err
}

type stubCartService struct {
	view        *cartsvc.View
	err         error
	lastUser    string
	lastProduct string
	lastQty     int
	cleared     bool
}

func (s *stubCartService) result() (*cartsvc.View, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.view == nil {
		return &cartsvc.View{Items: []domain.CartLine{}}, nil
	}
	return s.view, nil
}

func (s *stubCartService) Get(_ context.Context, userID string) (*cartsvc.View, error) {
	s.lastUser = userID
	return s.result()
}

func (s *stubCartService) AddItem(_ context.Context, userID, productID string, quantity int) (*cartsvc.View, error) {
	s.lastUser, s.lastProduct, s.lastQty = userID, productID, quantity
	return s.result()
}

func (s *stubCartService) SetQuantity(_ context.Context, userID, productID string, quantity int) (*cartsvc.View, error) {
	s.lastUser, s.lastProduct, s.lastQty = userID, productID, quantity
	return s.result()
}

func (s *stubCartService) RemoveItem(_ context.Context, userID, productID string) (*cartsvc.View, error) {
	s.lastUser, s.lastProduct = userID, productID
	return s.result()
}

func (s *stubCartService) Clear(_ context.Context, userID string) (*cartsvc.View, error) {
	s.lastUser = userID
	s.cleared = true
	return s.result()
}

type stubOrderService struct {
	order       *domain.Order
	orders      []domain.Order
	err         error
	lastActor   domain.Actor
	lastInput   ordersvc.CreateInput
	lastPayment domain.PaymentResult
	lastStatus  string
	lastForce   bool
}

func (s *stubOrderService) Create(_ context.Context, actor domain.Actor, in ordersvc.CreateInput) (*domain.Order, error) {
	s.lastActor, s.lastInput = actor, in
	return s.order, s.err
}

func (s *stubOrderService) ListMine(_ context.Context, actor domain.Actor) ([]domain.Order, error) {
	s.lastActor = actor
	return s.orders, s.err
}

func (s *stubOrderService) Get(_ context.Context, actor domain.Actor, _ string) (*domain.Order, error) {
	s.lastActor = actor
	return s.order, s.err
}

func (s *stubOrderService) ListAll(_ context.Context, actor domain.Actor) ([]domain.Order, error) {
	s.lastActor = actor
	return s.orders, s.err
}

func (s *stubOrderService) MarkPaid(_ context.Context, actor domain.Actor, _ string, payment domain.PaymentResult) (*domain.Order, error) {
	s.lastActor, s.lastPayment = actor, payment
	return s.order, s.err
}

func (s *stubOrderService) MarkDelivered(_ context.Context, actor domain.Actor, _ string, force bool) (*domain.Order, error) {
	s.lastActor, s.lastForce = actor, force
	return s.order, s.err
}

func (s *stubOrderService) SetStatus(_ context.Context, actor domain.Actor, _ string, status string, force bool) (*domain.Order, error) {
	s.lastActor, s.lastStatus, s.lastForce = actor, status, force
	return s.order, s.err
}
