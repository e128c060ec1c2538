package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/avschaefer/cloudhire-ai-api/internal/api/shared"
)

// AuthMiddleware guards the public submission endpoint with a static
// bearer token shared with the calling system.
type AuthMiddleware struct {
	token string
}

// NewAuthMiddleware creates an AuthMiddleware for the given token.
func NewAuthMiddleware(token string) *AuthMiddleware {
	return &AuthMiddleware{token: token}
}

// Authenticate rejects requests whose Authorization header does not carry
// the expected bearer token. The comparison is constant time.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(m.token)) != 1 {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
