package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/quill-be/internal/models"
	"github.com/isdelr/quill-be/internal/services"
)

const (
	defaultEventLimit = 20
	maxEventLimit     = 100
)

// EventHandler handles HTTP requests related to activity events.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// EventsResponse wraps the activity feed in the response envelope.
type EventsResponse struct {
	Events []models.Event `json:"events"`
}

// GetRecent handles the request to get recent activity.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultEventLimit
	}
	limit = min(limit, maxEventLimit)

	events, err := h.service.RecentEvents(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, EventsResponse{Events: events})
}
