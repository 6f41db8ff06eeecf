package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invocation-adapter/internal/middleware"
)

// AuthHandler issues development tokens
type AuthHandler struct {
	authService *middleware.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *middleware.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// TokenRequest is the body accepted by IssueToken
type TokenRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
}

// IssueToken returns a signed token for the given username
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	token, err := h.authService.GenerateToken(req.Username, req.Username, []string{"admin"})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to issue token",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "token_type": "Bearer"})
}
