package handlers

import (
	"net/http"

	"invocation-adapter/internal/repositories"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusForError maps repository errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case repositories.IsNotFound(err):
		return http.StatusNotFound
	case repositories.IsDuplicate(err):
		return http.StatusConflict
	case repositories.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
