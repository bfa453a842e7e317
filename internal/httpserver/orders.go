package httpserver

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"storefront/internal/domain"
	ordersvc "storefront/internal/service/order"

	"github.com/gin-gonic/gin"
)

type orderService interface {
	Create(ctx context.Context, actor domain.Actor, in ordersvc.CreateInput) (*domain.Order, error)
	ListMine(ctx context.Context, actor domain.Actor) ([]domain.Order, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Order, error)
	ListAll(ctx context.Context, actor domain.Actor) ([]domain.Order, error)
	MarkPaid(ctx context.Context, actor domain.Actor, id string, payment domain.PaymentResult) (*domain.Order, error)
	MarkDelivered(ctx context.Context, actor domain.Actor, id string, force bool) (*domain.Order, error)
	SetStatus(ctx context.Context, actor domain.Actor, id, status string, force bool) (*domain.Order, error)
}

// paymentRequest is the gateway callback body.
type paymentRequest struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
	Force  bool   `json:"force"`
}

type orderHandlers struct {
	orders orderService
	logger *log.Logger
}

func (h *orderHandlers) create(c *gin.Context) {
	var req ordersvc.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	o, err := h.orders.Create(c.Request.Context(), currentActor(c), req)
	if err != nil {
		failErr(c, h.logger, err, "Order")
		return
	}
	respond(c, http.StatusCreated, "Order created successfully", o)
}

func (h *orderHandlers) mine(c *gin.Context) {
	orders, err := h.orders.ListMine(c.Request.Context(), currentActor(c))
	if err != nil {
		failErr(c, h.logger, err, "Order")
		return
	}
	respond(c, http.StatusOK, "", nonNilOrders(orders))
}

func (h *orderHandlers) all(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context(), currentActor(c))
	if err != nil {
		failErr(c, h.logger, err, "Order")
		return
	}
	respond(c, http.StatusOK, "", nonNilOrders(orders))
}

func (h *orderHandlers) get(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}
	o, err := h.orders.Get(c.Request.Context(), currentActor(c), id)
	if err != nil {
		failErr(c, h.logger, err, "Order")
		return
	}
	respond(c, http.StatusOK, "", o)
}

func (h *orderHandlers) pay(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	o, err := h.orders.MarkPaid(c.Request.Context(), currentActor(c), id, domain.PaymentResult{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	})
	if err != nil {
		failErr(c, h.logger, err, "Order")
		return
	}
	respond(c, http.StatusOK, "Order updated to paid", o)
}

func (h *orderHandlers) deliver(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}
	force, err := strconv.ParseBool(c.DefaultQuery("force", "false"))
	if err != nil {
		fail(c, http.StatusBadRequest, "force must be a boolean")
		return
	}
	o, err := h.orders.MarkDelivered(c.Request.Context(), currentActor(c), id, force)
	if err != nil {
		failErr(c, h.logger, err, "Order")
		return
	}
	respond(c, http.StatusOK, "Order updated to delivered", o)
}

func (h *orderHandlers) setStatus(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "status is required")
		return
	}
	o, err := h.orders.SetStatus(c.Request.Context(), currentActor(c), id, req.Status, req.Force)
	if err != nil {
		failErr(c, h.logger, err, "Order")
		return
	}
	respond(c, http.StatusOK, "Order status updated", o)
}

func nonNilOrders(orders []domain.Order) []domain.Order {
	if orders == nil {
		return []domain.Order{}
	}
	return orders
}
