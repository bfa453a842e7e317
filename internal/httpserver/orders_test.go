package httpserver

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

const orderID = "44444444-4444-4444-4444-444444444444"

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:         orderID,
		UserID:     shopperUser.ID,
		Items:      []domain.OrderItem{{ProductID: productID, Name: "Kindle", Price: decimal.NewFromInt(100), Quantity: 2}},
		ItemsPrice: decimal.NewFromInt(200),
		TotalPrice: decimal.NewFromInt(236),
		Status:     domain.StatusPending,
	}
}

func TestCreateOrder(t *testing.T) {
	orders := &stubOrderService{order: sampleOrder()}
	router := newTestRouter(t, &testDeps{orders: orders})

	body := fmt.Sprintf(`{
		"orderItems":[{"product":%q,"name":"Kindle","price":100,"quantity":2}],
		"shippingAddress":{"street":"1 MG Road","city":"Bengaluru","state":"KA","zipCode":"560001","country":"India"},
		"paymentMethod":"COD",
		"itemsPrice":200,"taxPrice":36,"shippingPrice":0,"totalPrice":236
	}`, productID)
	rec := do(router, http.MethodPost, "/api/orders", "user-token", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	in := orders.lastInput
	if len(in.OrderItems) != 1 || in.OrderItems[0].ProductID != productID || in.OrderItems[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", in.OrderItems)
	}
	if !in.TotalPrice.Equal(decimal.NewFromInt(236)) || in.ShippingAddress.City != "Bengaluru" {
		t.Fatalf("unexpected input %+v", in)
	}
	if orders.lastActor != (domain.Actor{UserID: shopperUser.ID, Role: domain.RoleUser}) {
		t.Fatalf("unexpected actor %+v", orders.lastActor)
	}

	orders.err = fmt.Errorf("%w: no order items", domain.ErrValidation)
	rec = do(router, http.MethodPost, "/api/orders", "user-token", `{"orderItems":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListOrders(t *testing.T) {
	orders := &stubOrderService{}
	router := newTestRouter(t, &testDeps{orders: orders})

	rec := do(router, http.MethodGet, "/api/orders/my", "user-token", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Fatalf("expected empty list, got %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(router, http.MethodGet, "/api/orders", "user-token", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for shopper listing all orders, got %d", rec.Code)
	}

	orders.orders = []domain.Order{*sampleOrder()}
	rec = do(router, http.MethodGet, "/api/orders", "admin-token", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), orderID) {
		t.Fatalf("expected admin listing, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestGetOrder(t *testing.T) {
	orders := &stubOrderService{order: sampleOrder()}
	router := newTestRouter(t, &testDeps{orders: orders})

	if rec := do(router, http.MethodGet, "/api/orders/"+orderID, "user-token", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/api/orders/123", "user-token", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed id, got %d", rec.Code)
	}

	orders.err = fmt.Errorf("%w: not authorized to view this order", domain.ErrUnauthorized)
	if rec := do(router, http.MethodGet, "/api/orders/"+orderID, "user-token", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign order, got %d", rec.Code)
	}
}

func TestPayOrder_MapsGatewayFields(t *testing.T) {
	orders := &stubOrderService{order: sampleOrder()}
	router := newTestRouter(t, &testDeps{orders: orders})

	rec := do(router, http.MethodPut, "/api/orders/"+orderID+"/pay", "user-token",
		`{"id":"PAY-1","status":"COMPLETED","update_time":"2024-01-01T00:00:00Z","email_address":"payer@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	want := domain.PaymentResult{ID: "PAY-1", Status: "COMPLETED", UpdateTime: "2024-01-01T00:00:00Z", EmailAddress: "payer@example.com"}
	if orders.lastPayment != want {
		t.Fatalf("unexpected payment %+v", orders.lastPayment)
	}
}

func TestDeliverOrder_ForceQuery(t *testing.T) {
	orders := &stubOrderService{order: sampleOrder()}
	router := newTestRouter(t, &testDeps{orders: orders})

	if rec := do(router, http.MethodPut, "/api/orders/"+orderID+"/deliver", "user-token", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for shopper, got %d", rec.Code)
	}

	do(router, http.MethodPut, "/api/orders/"+orderID+"/deliver", "admin-token", "")
	if orders.lastForce {
		t.Fatal("force must default to false")
	}
	do(router, http.MethodPut, "/api/orders/"+orderID+"/deliver?force=true", "admin-token", "")
	if !orders.lastForce {
		t.Fatal("expected force=true forwarded")
	}
	if rec := do(router, http.MethodPut, "/api/orders/"+orderID+"/deliver?force=maybe", "admin-token", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad force, got %d", rec.Code)
	}

	orders.err = &domain.ValidationError{Msg: "cannot move order from Pending to Delivered"}
	rec := do(router, http.MethodPut, "/api/orders/"+orderID+"/deliver", "admin-token", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for illegal transition, got %d", rec.Code)
	}
}

func TestSetOrderStatus(t *testing.T) {
	orders := &stubOrderService{order: sampleOrder()}
	router := newTestRouter(t, &testDeps{orders: orders})

	if rec := do(router, http.MethodPut, "/api/orders/"+orderID+"/status", "admin-token", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without status, got %d", rec.Code)
	}
	rec := do(router, http.MethodPut, "/api/orders/"+orderID+"/status", "admin-token", `{"status":"Shipped","force":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if orders.lastStatus != "Shipped" || !orders.lastForce || !orders.lastActor.IsAdmin() {
		t.Fatalf("unexpected call status=%q force=%v actor=%+v", orders.lastStatus, orders.lastForce, orders.lastActor)
	}
}
