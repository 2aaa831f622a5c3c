package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	httpapi "github.com/sentinel-red/sentinel-backend/internal/api/http"
	"github.com/sentinel-red/sentinel-backend/internal/auth"
	"github.com/sentinel-red/sentinel-backend/internal/auth/domain"
)

// Login exchanges credentials for a mock token pair
func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid JSON body"})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		httpapi.WriteError(c, "auth.login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": resp.User, "token": resp.Token, "refresh_token": resp.RefreshToken})
}

// RegisterUser creates an account after checking the password confirmation
func (h *Handler) RegisterUser(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid JSON body"})
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		httpapi.WriteError(c, "auth.register", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": resp.User, "token": resp.Token, "refresh_token": resp.RefreshToken})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid JSON body"})
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		httpapi.WriteError(c, "auth.forgot_password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid JSON body"})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		httpapi.WriteError(c, "auth.reset_password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me returns the user behind the bearer token, or behind the persisted
// token when the request carries none.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), auth.Token(c))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
			return
		}
		httpapi.WriteError(c, "auth.me", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), auth.Token(c)); err != nil {
		httpapi.WriteError(c, "auth.logout", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
