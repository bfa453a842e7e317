package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is the priced snapshot of one purchased product.
type OrderItem struct {
	ProductID string          `json:"product"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// PaymentResult is the gateway payload stored verbatim on payment.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"updateTime"`
	EmailAddress string `json:"emailAddress"`
}

// OrderCustomer is the owning user's public identity, joined on reads.
type OrderCustomer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Customer        *OrderCustomer  `json:"user,omitempty"`
	Items           []OrderItem     `json:"orderItems"`
	ShippingAddress Address         `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty"`
	ItemsPrice      decimal.Decimal `json:"itemsPrice"`
	TaxPrice        decimal.Decimal `json:"taxPrice"`
	ShippingPrice   decimal.Decimal `json:"shippingPrice"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	IsDelivered     bool            `json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OwnedBy reports whether userID placed the order.
func (o *Order) OwnedBy(userID string) bool {
	return o.UserID == userID
}

// VisibleTo reports whether the actor may read the order.
func (o *Order) VisibleTo(actor Actor) bool {
	return o.OwnedBy(actor.UserID) || actor.IsAdmin()
}
