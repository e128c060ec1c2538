package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avschaefer/cloudhire-ai-api/internal/api/middleware"
)

func oidcProtected(audience string, validate middleware.TokenValidator) http.Handler {
	oidc := middleware.NewOIDCMiddleware(audience, validate)
	return oidc.Verify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestVerifyAcceptsValidIdentityToken(t *testing.T) {
	t.Parallel()

	var gotToken, gotAudience string
	handler := oidcProtected("https://worker.example.com", func(ctx context.Context, token, audience string) error {
		gotToken, gotAudience = token, audience
		return nil
	})

	req := httptest.NewRequest(http.MethodPost, "/internal/tasks/grade", nil)
	req.Header.Set("Authorization", "Bearer id-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "id-token", gotToken)
	assert.Equal(t, "https://worker.example.com", gotAudience)
}

func TestVerifyRejectsInvalidIdentityToken(t *testing.T) {
	t.Parallel()

	handler := oidcProtected("https://worker.example.com", func(ctx context.Context, token, audience string) error {
		return errors.New("bad signature")
	})

	req := httptest.NewRequest(http.MethodPost, "/internal/tasks/grade", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyRejectsMissingIdentityToken(t *testing.T) {
	t.Parallel()

	handler := oidcProtected("https://worker.example.com", func(ctx context.Context, token, audience string) error {
		return nil
	})

	req := httptest.NewRequest(http.MethodPost, "/internal/tasks/grade", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifySkipsCheckWithoutAudience(t *testing.T) {
	t.Parallel()

	handler := oidcProtected("", func(ctx context.Context, token, audience string) error {
		t.Fatal("validator must not be called when no audience is configured")
		return nil
	})

	req := httptest.NewRequest(http.MethodPost, "/internal/tasks/grade", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
