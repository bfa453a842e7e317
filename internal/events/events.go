// Package events publishes order lifecycle notifications.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SubjectOrderCreated       = "orders.created"
	SubjectOrderStatusChanged = "orders.status_changed"
	SubjectOrderPaid          = "orders.paid"
)

// OrderEvent is the payload for every order subject.
type OrderEvent struct {
	OrderID    string          `json:"orderId"`
	UserID     string          `json:"userId"`
	From       string          `json:"from,omitempty"`
	To         string          `json:"to"`
	Forced     bool            `json:"forced,omitempty"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	ItemCount  int             `json:"itemCount"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type Publisher interface {
	PublishJSON(ctx context.Context, subject string, v any) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishJSON(context.Context, string, any) error { return nil }

func (Nop) Close() error { return nil }
