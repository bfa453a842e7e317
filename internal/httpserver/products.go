package httpserver

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	productsvc "storefront/internal/service/product"

	"github.com/gin-gonic/gin"
)

type productService interface {
	List(ctx context.Context, f productrepo.ListFilter) (*productsvc.Page, error)
	Categories(ctx context.Context) ([]productrepo.CategoryCount, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type productHandlers struct {
	products productService
	logger   *log.Logger
}

func (h *productHandlers) list(c *gin.Context) {
	f := productrepo.ListFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Category: domain.Category(strings.TrimSpace(c.Query("category"))),
		Sort:     c.DefaultQuery("sort", productrepo.SortNewest),
	}
	var err error
	if f.Limit, err = queryInt(c, "limit"); err != nil {
		fail(c, http.StatusBadRequest, "limit must be a number")
		return
	}
	if f.Offset, err = queryInt(c, "offset"); err != nil {
		fail(c, http.StatusBadRequest, "offset must be a number")
		return
	}
	if strings.EqualFold(string(f.Category), "all") {
		f.Category = ""
	}
	page, err := h.products.List(c.Request.Context(), f)
	if err != nil {
		failErr(c, h.logger, err, "Product")
		return
	}
	respond(c, http.StatusOK, "", page)
}

func (h *productHandlers) categories(c *gin.Context) {
	counts, err := h.products.Categories(c.Request.Context())
	if err != nil {
		failErr(c, h.logger, err, "Category")
		return
	}
	respond(c, http.StatusOK, "", counts)
}

func (h *productHandlers) get(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, h.logger, err, "Product")
		return
	}
	respond(c, http.StatusOK, "", p)
}

func (h *productHandlers) create(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = ""
	created, err := h.products.Create(c.Request.Context(), p)
	if err != nil {
		failErr(c, h.logger, err, "Product")
		return
	}
	respond(c, http.StatusCreated, "Product created successfully", created)
}

// update overlays the request body onto the stored product.
func (h *productHandlers) update(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	existing, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, h.logger, err, "Product")
		return
	}
	p := *existing
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	updated, err := h.products.Update(c.Request.Context(), p)
	if err != nil {
		failErr(c, h.logger, err, "Product")
		return
	}
	respond(c, http.StatusOK, "Product updated successfully", updated)
}

func (h *productHandlers) delete(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		failErr(c, h.logger, err, "Product")
		return
	}
	respond(c, http.StatusOK, "Product deleted successfully", nil)
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
