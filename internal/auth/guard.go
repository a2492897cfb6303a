package auth

import (
	"strings"

	"github.com/isdelr/quill-be/internal/models"
)

// Guard turns a raw Authorization header into an Identity before any use-case runs.
type Guard struct {
	tokens TokenManager
}

// NewGuard creates a Guard backed by tokens.
func NewGuard(tokens TokenManager) *Guard {
	return &Guard{tokens: tokens}
}

// Require resolves the identity or fails with an Unauthorized error.
// Both "Token <jwt>" and "Bearer <jwt>" schemes are accepted.
func (g *Guard) Require(header string) (Identity, error) {
	tokenStr, ok := parseHeader(header)
	if !ok {
		return Identity{}, models.NewUnauthorizedError("missing or malformed authorization header")
	}

	identity, err := g.tokens.Verify(tokenStr)
	if err != nil {
		return Identity{}, &models.AppError{
			Kind:    models.KindUnauthorized,
			Message: "invalid auth token",
			Err:     err,
		}
	}
	return identity, nil
}

// Optional resolves the identity when a header is present and returns an anonymous
// identity when it is absent. A present but invalid header still fails.
func (g *Guard) Optional(header string) (Identity, error) {
	if strings.TrimSpace(header) == "" {
		return Identity{}, nil
	}
	return g.Require(header)
}

func parseHeader(header string) (string, bool) {
	scheme, tokenStr, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tokenStr = strings.TrimSpace(tokenStr)
	return tokenStr, tokenStr != ""
}
