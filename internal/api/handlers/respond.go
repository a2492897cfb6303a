package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/isdelr/quill-be/internal/models"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Errors ErrorList `json:"errors"`
}

// ErrorList holds human-readable failure lines.
type ErrorList struct {
	Body []string `json:"body"`
}

// StatusFor maps a failure kind to its HTTP status.
func StatusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation, models.KindConflict:
		return http.StatusUnprocessableEntity
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindUnauthorized, models.KindInvalidToken, models.KindInvalidCredentials:
		return http.StatusUnauthorized
	case models.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError renders err with the status of its kind. Internal details never leave the process.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(models.KindOf(err))
	body := []string{"internal server error"}

	var appErr *models.AppError
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")
	} else if errors.As(err, &appErr) {
		body = appErr.Messages()
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Errors: ErrorList{Body: body}})
}

// respondMessage renders a plain failure that did not come from a use-case.
func respondMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Errors: ErrorList{Body: []string{message}}})
}

// respond renders v with status.
func respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// decode reads a JSON body into v, answering 422 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("Invalid request body")
		respondMessage(w, r, http.StatusUnprocessableEntity, "body is not valid JSON")
		return false
	}
	return true
}
