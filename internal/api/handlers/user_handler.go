package handlers

import (
	"net/http"

	"github.com/isdelr/quill-be/internal/auth"
	"github.com/isdelr/quill-be/internal/models"
	"github.com/isdelr/quill-be/internal/services"
)

// UserHandler handles HTTP requests for accounts and the current user.
type UserHandler struct {
	service services.UserServiceProvider
	guard   *auth.Guard
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, guard *auth.Guard) *UserHandler {
	return &UserHandler{service: service, guard: guard}
}

// UserResponse wraps a user in the response envelope.
type UserResponse struct {
	User models.AuthenticatedUser `json:"user"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		User models.RegisterInput `json:"user"`
	}
	if !decode(w, r, &payload) {
		return
	}

	user, err := h.service.Register(r.Context(), payload.User)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, UserResponse{User: user})
}

// Login handles user authentication.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		User models.LoginInput `json:"user"`
	}
	if !decode(w, r, &payload) {
		return
	}

	user, err := h.service.Login(r.Context(), payload.User)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, UserResponse{User: user})
}

// GetCurrent returns the authenticated user.
func (h *UserHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	id, err := h.guard.Require(r.Header.Get("Authorization"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.service.CurrentUser(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, UserResponse{User: user})
}

// Update applies a partial update to the authenticated user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.guard.Require(r.Header.Get("Authorization"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	var payload struct {
		User models.UpdateUserInput `json:"user"`
	}
	if !decode(w, r, &payload) {
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, payload.User)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, UserResponse{User: user})
}
