package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/isdelr/quill-be/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind models.ErrorKind
		want int
	}{
		{models.KindValidation, http.StatusUnprocessableEntity},
		{models.KindConflict, http.StatusUnprocessableEntity},
		{models.KindNotFound, http.StatusNotFound},
		{models.KindUnauthorized, http.StatusUnauthorized},
		{models.KindInvalidToken, http.StatusUnauthorized},
		{models.KindInvalidCredentials, http.StatusUnauthorized},
		{models.KindForbidden, http.StatusForbidden},
		{models.KindInternal, http.StatusInternalServerError},
		{models.ErrorKind("mystery"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.kind))
		})
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "field messages",
			err:    models.NewValidationError(map[string]string{"email": "cannot be blank", "body": "is required"}),
			status: http.StatusUnprocessableEntity,
			body:   `{"errors":{"body":["body is required","email cannot be blank"]}}`,
		},
		{
			name:   "conflict",
			err:    models.NewConflictError("username"),
			status: http.StatusUnprocessableEntity,
			body:   `{"errors":{"body":["username has already been taken"]}}`,
		},
		{
			name:   "not found",
			err:    models.NewNotFoundError("article"),
			status: http.StatusNotFound,
			body:   `{"errors":{"body":["article not found"]}}`,
		},
		{
			name:   "internal details hidden",
			err:    errors.New("pq: connection refused"),
			status: http.StatusInternalServerError,
			body:   `{"errors":{"body":["internal server error"]}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestDecode_InvalidJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))

	var v struct{}
	assert.False(t, decode(rec, req, &v))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
