package httpserver

import (
	"context"
	"log"
	"net/http"

	cartsvc "storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type cartService interface {
	Get(ctx context.Context, userID string) (*cartsvc.View, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*cartsvc.View, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) (*cartsvc.View, error)
	RemoveItem(ctx context.Context, userID, productID string) (*cartsvc.View, error)
	Clear(ctx context.Context, userID string) (*cartsvc.View, error)
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type cartHandlers struct {
	carts  cartService
	logger *log.Logger
}

func (h *cartHandlers) get(c *gin.Context) {
	view, err := h.carts.Get(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		failErr(c, h.logger, err, "Cart")
		return
	}
	respond(c, http.StatusOK, "", view)
}

func (h *cartHandlers) add(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validID(req.ProductID) {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	view, err := h.carts.AddItem(c.Request.Context(), currentUser(c).ID, req.ProductID, qty)
	if err != nil {
		failErr(c, h.logger, err, "Product")
		return
	}
	respond(c, http.StatusOK, "Item added to cart", view)
}

func (h *cartHandlers) setQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		fail(c, http.StatusBadRequest, "quantity is required")
		return
	}
	view, err := h.carts.SetQuantity(c.Request.Context(), currentUser(c).ID, c.Param("productId"), *req.Quantity)
	if err != nil {
		failErr(c, h.logger, err, "Item in cart")
		return
	}
	respond(c, http.StatusOK, "Cart updated", view)
}

func (h *cartHandlers) remove(c *gin.Context) {
	view, err := h.carts.RemoveItem(c.Request.Context(), currentUser(c).ID, c.Param("productId"))
	if err != nil {
		failErr(c, h.logger, err, "Cart")
		return
	}
	respond(c, http.StatusOK, "Item removed from cart", view)
}

func (h *cartHandlers) clear(c *gin.Context) {
	view, err := h.carts.Clear(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		failErr(c, h.logger, err, "Cart")
		return
	}
	respond(c, http.StatusOK, "Cart cleared", view)
}
