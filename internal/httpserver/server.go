package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
	readyCheckTimeout = time.Second
)

// Check is a named dependency probed by /readyz.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Server owns the HTTP listener for the storefront API.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

func New(addr string, logger *log.Logger, deps Deps) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	router, err := buildRouter(logger, deps)
	if err != nil {
		return nil, err
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			ErrorLog:          logger,
		},
		logger: logger,
	}, nil
}

func (s *Server) ListenAndServe() error {
	s.logger.Printf("http: listening addr=%s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readyHandler probes every check and reports per-component status. With no
// checks configured the service is never ready.
func readyHandler(logger *log.Logger, checks []Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(checks) == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "no dependencies configured"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyCheckTimeout)
		defer cancel()

		status := http.StatusOK
		components := make(gin.H, len(checks))
		for _, check := range checks {
			if err := check.Ping(ctx); err != nil {
				logger.Printf("http: readiness check=%s error=%v", check.Name, err)
				components[check.Name] = "unreachable"
				status = http.StatusServiceUnavailable
				continue
			}
			components[check.Name] = "ok"
		}
		overall := "ready"
		if status != http.StatusOK {
			overall = "unavailable"
		}
		c.JSON(status, gin.H{"status": overall, "components": components})
	}
}
