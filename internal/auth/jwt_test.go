package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/quill-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager("test-secret", "quill", time.Hour)
	require.NoError(t, err)
	return m
}

func TestJWTManager_IssueAndVerify(t *testing.T) {
	m := newTestManager(t)

	tokA, err := m.Issue("user-a")
	require.NoError(t, err)
	tokB, err := m.Issue("user-b")
	require.NoError(t, err)

	idA, err := m.Verify(tokA)
	require.NoError(t, err)
	idB, err := m.Verify(tokB)
	require.NoError(t, err)

	assert.Equal(t, "user-a", idA.UserID)
	assert.Equal(t, tokA, idA.Token)
	assert.Equal(t, "user-b", idB.UserID)
	assert.NotEqual(t, idA.UserID, idB.UserID)
}

func TestJWTManager_VerifyFailures(t *testing.T) {
	m := newTestManager(t)
	valid, err := m.Issue("user-a")
	require.NoError(t, err)

	other, err := NewJWTManager("other-secret", "quill", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue("user-a")
	require.NoError(t, err)

	expiredMgr := newTestManager(t)
	expiredMgr.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredMgr.Issue("user-a")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-a"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not-a-jwt"},
		{"wrong signature", foreign},
		{"expired", expired},
		{"alg none", unsigned},
		{"tampered", valid + "x"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			require.Error(t, err)
			assert.Equal(t, models.KindInvalidToken, models.KindOf(err))
		})
	}
}

func TestNewJWTManager_RejectsBadConfig(t *testing.T) {
	_, err := NewJWTManager("", "quill", time.Hour)
	assert.Error(t, err)
	_, err = NewJWTManager("secret", "quill", 0)
	assert.Error(t, err)
}

func TestJWTManager_IssueEmptyUser(t *testing.T) {
	_, err := newTestManager(t).Issue("")
	assert.Error(t, err)
}
