package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/quill-be/internal/models"
)

// Identity is the acting user resolved from a token. The zero value is anonymous.
type Identity struct {
	UserID string
	Token  string
}

// Anonymous reports whether no user was resolved.
func (i Identity) Anonymous() bool {
	return i.UserID == ""
}

// TokenManager issues and verifies identity tokens.
type TokenManager interface {
	Issue(userID string) (string, error)
	Verify(token string) (Identity, error)
}

// Claims defines the JWT claims structure.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// JWTManager signs HS256 tokens with a shared secret.
type JWTManager struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager creates a JWTManager. An empty secret is rejected.
func NewJWTManager(secret, issuer string, ttl time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &JWTManager{key: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue creates a new JWT for a given user.
func (m *JWTManager) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("cannot issue token for empty user id")
	}
	now := m.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a JWT string.
func (m *JWTManager) Verify(tokenStr string) (Identity, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	}, opts...)
	if err != nil {
		return Identity{}, models.NewInvalidTokenError(err)
	}
	if !token.Valid || claims.UserID == "" || claims.UserID != claims.Subject {
		return Identity{}, models.NewInvalidTokenError(errors.New("token claims are inconsistent"))
	}
	return Identity{UserID: claims.UserID, Token: tokenStr}, nil
}
