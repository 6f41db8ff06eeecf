package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"invocation-adapter/internal/models"
	"invocation-adapter/internal/services"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns the newest users. status_code mirrors the HTTP status for
// callers that only see the decoded body.
func (h *UserHandler) ListUsers(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 {
			limit = val
		}
	}

	users, err := h.userService.ListUsers(c.Request.Context(), limit)
	if err != nil {
		c.JSON(statusForError(err), ErrorResponse{
			Error:   "Failed to list users",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status_code": http.StatusOK,
		"count":       len(users),
		"users":       users,
	})
}

// CreateUser registers a user from a JSON or form body
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		c.JSON(statusForError(err), ErrorResponse{
			Error:   "Failed to create user",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetUser returns one user
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), ErrorResponse{
			Error:   "Failed to get user",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes one user
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(statusForError(err), ErrorResponse{
			Error:   "Failed to delete user",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status_code": http.StatusOK, "message": "user deleted"})
}

// RedirectToUser sends short links to the canonical user route
func (h *UserHandler) RedirectToUser(c *gin.Context) {
	c.Redirect(http.StatusFound, "/users/"+c.Param("id"))
}
