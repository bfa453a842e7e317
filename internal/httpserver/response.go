package httpserver

import (
	"errors"
	"log"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

// envelope is the body shape of every API response.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message})
}

// failErr maps a service error onto a status code. resource names the entity
// in not-found messages.
func failErr(c *gin.Context, logger *log.Logger, err error, resource string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, domain.ErrValidation):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, resource+" not found")
	case errors.Is(err, domain.ErrUnauthorized):
		fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		fail(c, http.StatusConflict, err.Error())
	default:
		logger.Printf("http: %s %s request_id=%s error=%v", c.Request.Method, c.FullPath(), requestIDFrom(c), err)
		fail(c, http.StatusInternalServerError, "Server error")
	}
}
