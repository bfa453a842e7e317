package httpserver

import (
	"errors"
	"log"
	"time"

	"storefront/internal/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps carries the services the router dispatches to.
type Deps struct {
	UserSvc     userService
	ProductSvc  productService
	CartSvc     cartService
	OrderSvc    orderService
	Metrics     *metrics.Metrics
	CORSOrigins []string
	// Checks are probed by /readyz.
	Checks []Check
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	if deps.UserSvc == nil || deps.ProductSvc == nil || deps.CartSvc == nil || deps.OrderSvc == nil {
		return nil, errors.New("httpserver: all services are required")
	}

	router := gin.New()
	router.Use(
		requestIDMiddleware(),
		gin.LoggerWithWriter(logger.Writer()),
		gin.Recovery(),
		metricsMiddleware(deps.Metrics),
	)
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(logger, deps.Checks))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	requireAuth := authMiddleware(deps.UserSvc)
	api := router.Group("/api")

	auth := &authHandlers{users: deps.UserSvc, logger: logger}
	authGroup := api.Group("/auth")
	authGroup.POST("/register", auth.register)
	authGroup.POST("/login", auth.login)
	authGroup.POST("/logout", requireAuth, auth.logout)
	authGroup.POST("/logout-all", requireAuth, auth.logoutAll)
	authGroup.GET("/me", requireAuth, auth.me)
	authGroup.PUT("/profile", requireAuth, auth.updateProfile)

	products := &productHandlers{products: deps.ProductSvc, logger: logger}
	productGroup := api.Group("/products")
	productGroup.GET("", products.list)
	productGroup.GET("/categories", products.categories)
	productGroup.GET("/:id", products.get)
	productGroup.POST("", requireAuth, adminOnly(), products.create)
	productGroup.PUT("/:id", requireAuth, adminOnly(), products.update)
	productGroup.DELETE("/:id", requireAuth, adminOnly(), products.delete)

	carts := &cartHandlers{carts: deps.CartSvc, logger: logger}
	cartGroup := api.Group("/cart", requireAuth)
	cartGroup.GET("", carts.get)
	cartGroup.POST("", carts.add)
	cartGroup.PUT("/:productId", carts.setQuantity)
	cartGroup.DELETE("/:productId", carts.remove)
	cartGroup.DELETE("", carts.clear)

	orders := &orderHandlers{orders: deps.OrderSvc, logger: logger}
	orderGroup := api.Group("/orders", requireAuth)
	orderGroup.POST("", orders.create)
	orderGroup.GET("/my", orders.mine)
	orderGroup.GET("", adminOnly(), orders.all)
	orderGroup.GET("/:id", orders.get)
	orderGroup.PUT("/:id/pay", orders.pay)
	orderGroup.PUT("/:id/deliver", adminOnly(), orders.deliver)
	orderGroup.PUT("/:id/status", adminOnly(), orders.setStatus)

	return router, nil
}
