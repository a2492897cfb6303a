package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/isdelr/quill-be/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordUseCase(t *testing.T) {
	c := NewCollector()
	c.RecordUseCase("register", nil)
	c.RecordUseCase("register", nil)
	c.RecordUseCase("register", models.NewConflictError("username"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.usecases.WithLabelValues("register", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.usecases.WithLabelValues("register", "conflict")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.RecordUseCase("login", models.ErrInvalidCredentials)
	c.ObserveHTTP(http.MethodPost, "/api/users/login", http.StatusUnauthorized, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `quill_usecase_total{outcome="invalid_credentials",usecase="login"} 1`)
	assert.Contains(t, body, "quill_http_request_duration_seconds_bucket")
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NotPanics(t, func() { r.RecordUseCase("anything", nil) })
}
