package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sparkathon/middleware"
	"sparkathon/models"
	"sparkathon/services/identity"
	"sparkathon/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler exposes the identity gateway over HTTP.
type AuthHandler struct {
	Identity  identity.Gateway
	Heartbeat time.Duration
}

func NewAuthHandler(gw identity.Gateway) *AuthHandler {
	return &AuthHandler{Identity: gw, Heartbeat: 25 * time.Second}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// sessionResponse wraps the signed-in user; User is null when signed out.
type sessionResponse struct {
	User *models.User `json:"user"`
}

// SignupHandler creates an account and signs it in.
func (h *AuthHandler) SignupHandler(c *gin.Context) {
	h.authenticate(c, "signup", h.Identity.SignUp, http.StatusBadRequest)
}

// LoginHandler signs an existing account in.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	h.authenticate(c, "login", h.Identity.SignIn, http.StatusUnauthorized)
}

type authFunc func(ctx context.Context, email, password string) (*models.AuthResponse, error)

func (h *AuthHandler) authenticate(c *gin.Context, op string, fn authFunc, rejectStatus int) {
	logger := getLogger(c)

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	resp, err := fn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var authErr *identity.AuthError
		if errors.As(err, &authErr) {
			utils.JSONError(c, rejectStatus, authErr.Message, "")
			return
		}
		logger.Error(op+" failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Authentication unavailable", "")
		return
	}
	status := http.StatusOK
	if op == "signup" {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// LogoutHandler ends the caller's session.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	sessionID := middleware.CurrentSessionID(c)
	if err := h.Identity.SignOut(c.Request.Context(), sessionID); err != nil {
		getLogger(c).Error("logout failed", zap.String("session", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Logout failed", "")
		return
	}
	c.JSON(http.StatusOK, sessionResponse{})
}

// SessionHandler returns the signed-in user or null.
func (h *AuthHandler) SessionHandler(c *gin.Context) {
	user, err := h.Identity.CurrentUser(c.Request.Context(), middleware.CurrentSessionID(c))
	if err != nil {
		getLogger(c).Error("failed to read session", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to read session", "")
		return
	}
	c.JSON(http.StatusOK, sessionResponse{User: user})
}

// SessionEventsHandler streams the session's user (or null) as server-sent
// events: the current value first, then every change.
func (h *AuthHandler) SessionEventsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := middleware.CurrentSessionID(c)

	updates, err := h.Identity.ObserveSession(ctx, sessionID)
	if err != nil {
		getLogger(c).Error("failed to observe session", zap.String("session", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to observe session", "")
		return
	}

	streamHeaders(c)
	heartbeat := time.NewTicker(h.heartbeat())
	defer heartbeat.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			writeEvent(c, "ping", gin.H{"at": time.Now()})
		case user, ok := <-updates:
			if !ok {
				return
			}
			writeEvent(c, "session", sessionResponse{User: user})
		}
	}
}

func (h *AuthHandler) heartbeat() time.Duration {
	if h.Heartbeat > 0 {
		return h.Heartbeat
	}
	return 25 * time.Second
}
