package httpserver

import (
	"context"
	"log"
	"net/http"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"

	"github.com/gin-gonic/gin"
)

type userService interface {
	Register(ctx context.Context, in usersvc.RegisterInput) (*usersvc.Session, error)
	Login(ctx context.Context, email, password string) (*usersvc.Session, error)
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
	LogoutAll(ctx context.Context, userID string) (int64, error)
	UpdateProfile(ctx context.Context, id string, in usersvc.ProfileInput) (*domain.User, error)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authHandlers struct {
	users  userService
	logger *log.Logger
}

func (h *authHandlers) register(c *gin.Context) {
	var req usersvc.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	session, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		failErr(c, h.logger, err, "User")
		return
	}
	respond(c, http.StatusCreated, "User registered successfully", session)
}

func (h *authHandlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Please provide email and password")
		return
	}
	session, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failErr(c, h.logger, err, "User")
		return
	}
	respond(c, http.StatusOK, "Login successful", session)
}

func (h *authHandlers) logout(c *gin.Context) {
	if err := h.users.Logout(c.Request.Context(), bearerToken(c.GetHeader("Authorization"))); err != nil {
		failErr(c, h.logger, err, "Token")
		return
	}
	respond(c, http.StatusOK, "Logged out", nil)
}

func (h *authHandlers) logoutAll(c *gin.Context) {
	n, err := h.users.LogoutAll(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		failErr(c, h.logger, err, "User")
		return
	}
	respond(c, http.StatusOK, "Logged out of all sessions", gin.H{"revoked": n})
}

func (h *authHandlers) me(c *gin.Context) {
	respond(c, http.StatusOK, "", currentUser(c))
}

func (h *authHandlers) updateProfile(c *gin.Context) {
	var req usersvc.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		failErr(c, h.logger, err, "User")
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", u)
}
