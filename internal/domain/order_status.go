package domain

import (
	"strings"
	"time"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var orderStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// statusTransitions lists the legal next states for every state.
// Delivered and Cancelled are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusDelivered, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
}

// ParseOrderStatus matches s case-insensitively against the known statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range orderStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", Invalid("unknown order status %q", s)
}

func (s OrderStatus) Valid() bool {
	for _, st := range orderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether from -> to is listed in the transition table.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to OrderStatus, force bool) error {
	if force || CanTransition(from, to) {
		return nil
	}
	return Invalid("cannot move order from %s to %s", from, to)
}

// MarkPaid records a gateway payment and moves the order to Processing.
func (o *Order) MarkPaid(payment PaymentResult, now time.Time) error {
	if o.IsPaid {
		return Invalid("order is already paid")
	}
	if err := checkTransition(o.Status, StatusProcessing, false); err != nil {
		return err
	}
	o.IsPaid = true
	o.PaidAt = &now
	o.Status = StatusProcessing
	o.PaymentResult = &payment
	o.UpdatedAt = now
	return nil
}

// MarkDelivered moves the order to Delivered. force skips the transition table.
func (o *Order) MarkDelivered(now time.Time, force bool) error {
	return o.SetStatus(StatusDelivered, now, force)
}

// SetStatus applies an operator-requested transition and its side effects.
func (o *Order) SetStatus(to OrderStatus, now time.Time, force bool) error {
	if !to.Valid() {
		return Invalid("unknown order status %q", to)
	}
	if err := checkTransition(o.Status, to, force); err != nil {
		return err
	}
	o.Status = to
	if to == StatusDelivered {
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
	o.UpdatedAt = now
	return nil
}
