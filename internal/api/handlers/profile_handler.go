package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/quill-be/internal/auth"
	"github.com/isdelr/quill-be/internal/models"
	"github.com/isdelr/quill-be/internal/services"
)

// ProfileHandler handles profile lookups and follow edges.
type ProfileHandler struct {
	service services.UserServiceProvider
	guard   *auth.Guard
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service services.UserServiceProvider, guard *auth.Guard) *ProfileHandler {
	return &ProfileHandler{service: service, guard: guard}
}

// ProfileResponse wraps a profile in the response envelope.
type ProfileResponse struct {
	Profile models.Profile `json:"profile"`
}

// Get returns a profile. Authentication is optional.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.guard.Optional(r.Header.Get("Authorization"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	profile, err := h.service.Profile(r.Context(), viewer, chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, ProfileResponse{Profile: profile})
}

// Follow makes the authenticated user follow the profile.
func (h *ProfileHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.changeFollow(w, r, h.service.Follow)
}

// Unfollow removes the authenticated user's follow edge.
func (h *ProfileHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.changeFollow(w, r, h.service.Unfollow)
}

type followFunc func(ctx context.Context, id auth.Identity, username string) (models.Profile, error)

func (h *ProfileHandler) changeFollow(w http.ResponseWriter, r *http.Request, change followFunc) {
	id, err := h.guard.Require(r.Header.Get("Authorization"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	profile, err := change(r.Context(), id, chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, ProfileResponse{Profile: profile})
}
