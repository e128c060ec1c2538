package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/avschaefer/cloudhire-ai-api/internal/api/shared"
)

// TokenValidator verifies an OIDC identity token against an audience.
// idtoken.Validate satisfies it; tests substitute a local check.
type TokenValidator func(ctx context.Context, token, audience string) error

// GoogleTokenValidator validates tokens against Google's public keys,
// matching the identity tokens Cloud Tasks attaches to its deliveries.
func GoogleTokenValidator(ctx context.Context, token, audience string) error {
	_, err := idtoken.Validate(ctx, token, audience)
	return err
}

// OIDCMiddleware guards the internal task endpoint. The task queue calls
// it with an identity token minted for the worker's service account; any
// other caller is rejected. An empty audience disables the check, which
// is the local development mode.
type OIDCMiddleware struct {
	audience string
	validate TokenValidator
}

// NewOIDCMiddleware creates an OIDCMiddleware. A nil validator defaults
// to GoogleTokenValidator.
func NewOIDCMiddleware(audience string, validate TokenValidator) *OIDCMiddleware {
	if validate == nil {
		validate = GoogleTokenValidator
	}
	return &OIDCMiddleware{
		audience: audience,
		validate: validate,
	}
}

// Verify checks the identity token on the internal endpoint.
func (m *OIDCMiddleware) Verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.audience == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Identity token required")
			return
		}

		if err := m.validate(r.Context(), parts[1], m.audience); err != nil {
			slog.Warn("rejected task delivery with invalid identity token",
				"error", err,
				"remote_addr", r.RemoteAddr)
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid identity token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
