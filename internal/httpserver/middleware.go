package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
	userKey         = "user"
)

type tokenLookup interface {
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
}

// requestIDMiddleware reuses a well-formed inbound X-Request-ID or mints one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// authMiddleware resolves the bearer token into the current user.
func authMiddleware(users tokenLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			fail(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		u, err := users.LookupByToken(c.Request.Context(), token)
		if err != nil || u == nil {
			fail(c, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil || u.Role != domain.RoleAdmin {
			fail(c, http.StatusForbidden, "Not authorized as an admin")
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

func currentActor(c *gin.Context) domain.Actor {
	if u := currentUser(c); u != nil {
		return domain.ActorOf(u)
	}
	return domain.Actor{}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// validID reports whether id is a canonical uuid. Malformed ids are answered
// with 404 without reaching the store.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
